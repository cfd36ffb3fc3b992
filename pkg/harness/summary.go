package harness

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dkoosis/jitcheck/pkg/pattern"
)

// leaderboardSize caps the slowest-tests leaderboard.
const leaderboardSize = 5

// Patterns converts the totals into summary patterns.
// Returns: Summary + failed TestTable + slowest Leaderboard + ratio Sparkline
// + history Comparison. Empty sections are omitted.
func Patterns(t *Totals) []pattern.Pattern {
	patterns := []pattern.Pattern{summary(t)}

	if table := failedTable(t); table != nil {
		patterns = append(patterns, table)
	}
	if board := slowestBoard(t); board != nil {
		patterns = append(patterns, board)
	}
	if spark := ratioSparkline(t); spark != nil {
		patterns = append(patterns, spark)
	}
	if cmp := historyComparison(t); cmp != nil {
		patterns = append(patterns, cmp)
	}
	return patterns
}

func summary(t *Totals) *pattern.Summary {
	metrics := []pattern.SummaryItem{
		{Label: "passed", Value: strconv.Itoa(t.Passed), Kind: pattern.KindSuccess},
		{Label: "failed", Value: strconv.Itoa(t.Failed), Kind: failedKind(t.Failed)},
	}
	if t.Skipped > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "skipped", Value: strconv.Itoa(t.Skipped), Kind: pattern.KindWarning,
		})
	}
	if t.TimedOut > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "timed out", Value: strconv.Itoa(t.TimedOut), Kind: pattern.KindError,
		})
	}
	label := "Summary"
	if t.Elapsed > 0 {
		label = fmt.Sprintf("Summary (%.1fs)", t.Elapsed.Seconds())
	}
	return &pattern.Summary{Label: label, Metrics: metrics}
}

func failedKind(n int) pattern.Kind {
	if n > 0 {
		return pattern.KindError
	}
	return pattern.KindInfo
}

func failedTable(t *Totals) *pattern.TestTable {
	var items []pattern.TestTableItem
	for _, v := range t.Verdicts {
		if v.Status != StatusFailed {
			continue
		}
		items = append(items, pattern.TestTableItem{
			Name:    v.Test.InputPath,
			Status:  v.Status.String(),
			Details: v.Reason,
		})
	}
	if len(items) == 0 {
		return nil
	}
	return &pattern.TestTable{
		Label:   fmt.Sprintf("Failed tests (%d)", len(items)),
		Results: items,
	}
}

// slowestBoard ranks passed tests by ascending ratio, so the tests the JIT
// helps least come first.
func slowestBoard(t *Totals) *pattern.Leaderboard {
	var timed []Verdict
	for _, v := range t.Verdicts {
		if v.Ratio != nil && v.Ratio.Defined {
			timed = append(timed, v)
		}
	}
	if len(timed) == 0 {
		return nil
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].Ratio.Value < timed[j].Ratio.Value
	})

	n := min(len(timed), leaderboardSize)
	items := make([]pattern.LeaderboardItem, 0, n)
	for i, v := range timed[:n] {
		metric := v.Ratio.Format()
		if v.Approximate {
			metric = "~" + metric
		}
		items = append(items, pattern.LeaderboardItem{
			Rank:   i + 1,
			Name:   v.Test.InputPath,
			Metric: metric,
			Value:  v.Ratio.Value,
		})
	}
	return &pattern.Leaderboard{
		Label:      "Least JIT speedup",
		Items:      items,
		TotalCount: len(timed),
	}
}

func ratioSparkline(t *Totals) *pattern.Sparkline {
	var values []float64
	for _, v := range t.Verdicts {
		if v.Ratio != nil && v.Ratio.Defined {
			values = append(values, v.Ratio.Value)
		}
	}
	if len(values) < 2 {
		return nil
	}
	return &pattern.Sparkline{Label: "Speedup", Values: values}
}

func historyComparison(t *Totals) *pattern.Comparison {
	var changes []pattern.ComparisonItem
	for _, v := range t.Verdicts {
		if v.Previous == nil || v.Ratio == nil || !v.Ratio.Defined {
			continue
		}
		changes = append(changes, pattern.ComparisonItem{
			Label:  v.Test.InputPath,
			Before: *v.Previous,
			After:  v.Ratio.Value,
		})
	}
	if len(changes) == 0 {
		return nil
	}
	return &pattern.Comparison{Label: "Since last run", Changes: changes}
}
