package render

import "github.com/charmbracelet/lipgloss"

// Theme defines the styles used for console output.
type Theme struct {
	Name    string
	Rule    lipgloss.Style
	Title   lipgloss.Style
	Passed  lipgloss.Style
	Failed  lipgloss.Style
	Skipped lipgloss.Style
	Muted   lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons prefix outcome labels.
type ThemeIcons struct {
	Pass string
	Fail string
	Skip string
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Title:   lipgloss.NewStyle().Bold(true),
		Passed:  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Icons:   ThemeIcons{Pass: "✓", Fail: "✗", Skip: "○"},
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	return Theme{
		Name:    "orca",
		Rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true), // pale blue
		Passed:  lipgloss.NewStyle().Foreground(lipgloss.Color("108")),           // sage green
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("167")),           // muted red
		Skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("179")),           // muted gold
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Icons:   ThemeIcons{Pass: "✓", Fail: "✗", Skip: "·"},
	}
}

// MonoTheme returns a monochrome theme (no colors).
func MonoTheme() Theme {
	return Theme{
		Name:    "mono",
		Rule:    lipgloss.NewStyle(),
		Title:   lipgloss.NewStyle(),
		Passed:  lipgloss.NewStyle(),
		Failed:  lipgloss.NewStyle(),
		Skipped: lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Icons:   ThemeIcons{Pass: "+", Fail: "x", Skip: "-"},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}

// outcome returns the icon and style for a result label such as "Passed".
func (t Theme) outcome(result string) (string, lipgloss.Style) {
	switch result {
	case "Passed":
		return t.Icons.Pass, t.Passed
	case "Failed", "Error":
		return t.Icons.Fail, t.Failed
	default:
		return t.Icons.Skip, t.Skipped
	}
}
