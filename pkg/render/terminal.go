package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/jitcheck/pkg/pattern"
)

var _ Renderer = (*Terminal)(nil)

// maxNameWidth caps the test-name column of tables and leaderboards.
const maxNameWidth = 60

// Terminal renders summary patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
	title cases.Caser
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, title: cases.Title(language.English)}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

// renderOne dispatches on the pattern's declared type. A pattern whose type is
// unknown, or whose value does not match its declared type, renders nothing.
func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch p.Type() {
	case pattern.PatternTypeSummary:
		if v, ok := p.(*pattern.Summary); ok {
			return t.renderSummary(v)
		}
	case pattern.PatternTypeLeaderboard:
		if v, ok := p.(*pattern.Leaderboard); ok {
			return t.renderLeaderboard(v)
		}
	case pattern.PatternTypeTestTable:
		if v, ok := p.(*pattern.TestTable); ok {
			return t.renderTestTable(v)
		}
	case pattern.PatternTypeSparkline:
		if v, ok := p.(*pattern.Sparkline); ok {
			return t.renderSparkline(v)
		}
	case pattern.PatternTypeComparison:
		if v, ok := p.(*pattern.Comparison); ok {
			return t.renderComparison(v)
		}
	}
	return ""
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Paint(StatusBold, s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, status := t.kindIconStatus(m.Kind)
		sb.WriteString(t.theme.Paint(status, icon+" "+t.title.String(m.Label)+": "+m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (%d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Paint(StatusBold, header))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, t.nameWidth())

	for _, item := range l.Items {
		sb.WriteString("  ")
		sb.WriteString(t.theme.Paint(StatusMuted, fmt.Sprintf("%2d. ", item.Rank)))
		sb.WriteString(padRight(truncate(item.Name, maxName), maxName))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Paint(t.ratioStatus(item.Value), padLeft(item.Metric, maxMetric)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderTestTable(tt *pattern.TestTable) string {
	if len(tt.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	if tt.Label != "" {
		sb.WriteString(t.theme.Paint(StatusBold, tt.Label))
		sb.WriteString("\n")
	}

	maxName := 0
	for _, r := range tt.Results {
		maxName = max(maxName, runewidth.StringWidth(r.Name))
	}
	maxName = min(maxName, t.nameWidth())

	for _, r := range tt.Results {
		sb.WriteString("  ")
		icon, status := t.statusIconStatus(r.Status)
		sb.WriteString(t.theme.Paint(status, icon+" "))
		if r.Ratio != "" {
			sb.WriteString(padRight(truncate(r.Name, maxName), maxName))
			sb.WriteString("  ")
			sb.WriteString(t.theme.Paint(StatusMuted, r.Ratio))
		} else {
			sb.WriteString(truncate(r.Name, maxName))
		}
		if r.Details != "" {
			for _, line := range strings.Split(r.Details, "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Paint(StatusMuted, line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderSparkline(s *pattern.Sparkline) string {
	if len(s.Values) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Paint(StatusBold, s.Label+": "))
	}

	minVal, maxVal := s.Min, s.Max
	if minVal == 0 && maxVal == 0 {
		minVal, maxVal = s.Values[0], s.Values[0]
		for _, v := range s.Values {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	valueRange := maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var spark strings.Builder
	sum := 0.0
	for _, v := range s.Values {
		idx := int((v - minVal) / valueRange * 7)
		idx = max(0, min(7, idx))
		spark.WriteRune(blocks[idx])
		sum += v
	}
	mean := sum / float64(len(s.Values))
	sb.WriteString(t.theme.Paint(t.ratioStatus(mean), spark.String()))
	sb.WriteString(t.theme.Paint(StatusMuted, fmt.Sprintf(" mean %.2f", mean)))
	sb.WriteString("\n")
	return sb.String()
}

func (t *Terminal) renderComparison(c *pattern.Comparison) string {
	if len(c.Changes) == 0 {
		return ""
	}
	var sb strings.Builder
	if c.Label != "" {
		sb.WriteString(t.theme.Paint(StatusBold, c.Label))
		sb.WriteString("\n")
	}
	for _, item := range c.Changes {
		sb.WriteString("  ")
		sb.WriteString(item.Label + ": ")
		sb.WriteString(t.theme.Paint(StatusMuted, fmt.Sprintf("%.2f → %.2f", item.Before, item.After)))
		sb.WriteString(" ")

		change := item.Change()
		var arrow string
		var status Status
		switch {
		case change > 0:
			arrow, status = t.theme.Icons.Up, StatusFast
		case change < 0:
			arrow, status = t.theme.Icons.Down, StatusSlow
		default:
			arrow, status = t.theme.Icons.Same, StatusMuted
		}
		sb.WriteString(t.theme.Paint(status, fmt.Sprintf("%s %.2f", arrow, math.Abs(change))))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) nameWidth() int {
	return max(10, min(maxNameWidth, t.width-20))
}

func (t *Terminal) ratioStatus(v float64) Status {
	if v < 0 {
		return StatusSlow
	}
	return StatusFast
}

func (t *Terminal) kindIconStatus(kind pattern.Kind) (string, Status) {
	switch kind {
	case pattern.KindSuccess:
		return t.theme.Icons.Pass, StatusPass
	case pattern.KindError:
		return t.theme.Icons.Fail, StatusFail
	case pattern.KindWarning:
		return t.theme.Icons.Skip, StatusWarn
	default:
		return "·", StatusMuted
	}
}

func (t *Terminal) statusIconStatus(status string) (string, Status) {
	switch status {
	case "pass":
		return t.theme.Icons.Pass, StatusPass
	case "fail":
		return t.theme.Icons.Fail, StatusFail
	case "skip":
		return t.theme.Icons.Skip, StatusWarn
	default:
		return "·", StatusMuted
	}
}

// truncate shortens s to width display cells, ending in "...".
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
