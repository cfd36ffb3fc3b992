// Package pattern holds the data behind jitcheck's end-of-run summary.
// Patterns are pure data; pkg/render decides how they look.
package pattern

// PatternType identifies the kind of summary block.
type PatternType string

const (
	PatternTypeSummary     PatternType = "summary"
	PatternTypeLeaderboard PatternType = "leaderboard"
	PatternTypeTestTable   PatternType = "test-table"
	PatternTypeSparkline   PatternType = "sparkline"
	PatternTypeComparison  PatternType = "comparison"
)

// Pattern is implemented by every summary block.
type Pattern interface {
	Type() PatternType
}

// Kind selects the colouring of a value.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)
