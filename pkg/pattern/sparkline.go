package pattern

// Sparkline is a one-line trend of ratios in run order.
type Sparkline struct {
	Label  string
	Values []float64
	// Min and Max pin the scale; both zero means auto-detect.
	Min float64
	Max float64
}

func (s *Sparkline) Type() PatternType { return PatternTypeSparkline }
