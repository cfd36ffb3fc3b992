package pattern

// Comparison shows how speedup ratios moved since the previous run.
type Comparison struct {
	Label   string
	Changes []ComparisonItem
}

// ComparisonItem is a single test's previous and current ratio.
type ComparisonItem struct {
	Label  string
	Before float64
	After  float64
}

// Change is After minus Before; positive means the JIT gained ground.
func (c ComparisonItem) Change() float64 { return c.After - c.Before }

func (c *Comparison) Type() PatternType { return PatternTypeComparison }
