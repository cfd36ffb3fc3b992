package render

import "github.com/charmbracelet/lipgloss"

// Status is the semantic meaning of a piece of report text. Themes map each
// status to a style; callers never pick colours directly.
type Status int

const (
	StatusPass Status = iota // test passed
	StatusFail               // test failed
	StatusFast               // non-negative speedup ratio
	StatusSlow               // negative speedup ratio
	StatusWarn               // skipped test, busy host
	StatusMuted              // secondary detail
	StatusBold               // headings
)

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name  string
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Fast  lipgloss.Style
	Slow  lipgloss.Style
	Warn  lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style
	Icons ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass string
	Fail string
	Skip string
	Up   string
	Down string
	Same string
}

// Style returns the style for s.
func (t Theme) Style(s Status) lipgloss.Style {
	switch s {
	case StatusPass:
		return t.Pass
	case StatusFail:
		return t.Fail
	case StatusFast:
		return t.Fast
	case StatusSlow:
		return t.Slow
	case StatusWarn:
		return t.Warn
	case StatusBold:
		return t.Bold
	default:
		return t.Muted
	}
}

// Paint renders text in the style for s. Output carries no escape codes when
// the theme's renderer has no color profile.
func (t Theme) Paint(s Status, text string) string {
	return t.Style(s).Render(text)
}

func rendererOrDefault(r *lipgloss.Renderer) *lipgloss.Renderer {
	if r == nil {
		return lipgloss.DefaultRenderer()
	}
	return r
}

// DefaultTheme uses the classic bright ANSI palette: green pass, red fail,
// blue for a JIT win, yellow for a JIT loss.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	r = rendererOrDefault(r)
	return Theme{
		Name:  "default",
		Pass:  r.NewStyle().Foreground(lipgloss.Color("10")), // bright green
		Fail:  r.NewStyle().Foreground(lipgloss.Color("9")),  // bright red
		Fast:  r.NewStyle().Foreground(lipgloss.Color("12")), // bright blue
		Slow:  r.NewStyle().Foreground(lipgloss.Color("11")), // bright yellow
		Warn:  r.NewStyle().Foreground(lipgloss.Color("11")),
		Muted: r.NewStyle().Foreground(lipgloss.Color("8")), // gray
		Bold:  r.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass: "✓",
			Fail: "✗",
			Skip: "⚠",
			Up:   "↑",
			Down: "↓",
			Same: "=",
		},
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme(r *lipgloss.Renderer) Theme {
	r = rendererOrDefault(r)
	return Theme{
		Name:  "orca",
		Pass:  r.NewStyle().Foreground(lipgloss.Color("108")), // sage green
		Fail:  r.NewStyle().Foreground(lipgloss.Color("167")), // muted red
		Fast:  r.NewStyle().Foreground(lipgloss.Color("75")),  // pale blue
		Slow:  r.NewStyle().Foreground(lipgloss.Color("179")), // muted gold
		Warn:  r.NewStyle().Foreground(lipgloss.Color("179")),
		Muted: r.NewStyle().Foreground(lipgloss.Color("245")), // lighter gray
		Bold:  r.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass: "✓",
			Fail: "✗",
			Skip: "!",
			Up:   "↑",
			Down: "↓",
			Same: "=",
		},
	}
}

// MonoTheme returns a monochrome theme with ASCII icons.
func MonoTheme(r *lipgloss.Renderer) Theme {
	r = rendererOrDefault(r)
	return Theme{
		Name:  "mono",
		Pass:  r.NewStyle(),
		Fail:  r.NewStyle(),
		Fast:  r.NewStyle(),
		Slow:  r.NewStyle(),
		Warn:  r.NewStyle(),
		Muted: r.NewStyle(),
		Bold:  r.NewStyle(),
		Icons: ThemeIcons{
			Pass: "+",
			Fail: "x",
			Skip: "!",
			Up:   "^",
			Down: "v",
			Same: "=",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string, r *lipgloss.Renderer) Theme {
	switch name {
	case "orca":
		return OrcaTheme(r)
	case "mono":
		return MonoTheme(r)
	default:
		return DefaultTheme(r)
	}
}
