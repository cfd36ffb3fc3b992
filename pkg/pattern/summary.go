package pattern

// Summary is a block of headline counts for a run.
type Summary struct {
	Label   string
	Metrics []SummaryItem
}

// SummaryItem is one count, e.g. "passed: 12".
type SummaryItem struct {
	Label string
	Value string
	Kind  Kind
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
