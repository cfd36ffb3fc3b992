package pattern

// Leaderboard ranks tests by speedup ratio.
type Leaderboard struct {
	Label      string
	Items      []LeaderboardItem
	TotalCount int // tests ranked before cutting to len(Items)
}

// LeaderboardItem is one ranked test.
type LeaderboardItem struct {
	Rank   int
	Name   string
	Metric string  // formatted ratio
	Value  float64 // raw ratio, used for colouring
}

func (l *Leaderboard) Type() PatternType { return PatternTypeLeaderboard }
