// Package browse is an interactive terminal viewer for the results of a
// finished report: a result list on the left and the selected result's log
// on the right.
package browse

import (
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/testhtml/pkg/reportdata"
	"github.com/dkoosis/testhtml/pkg/render"
)

// Item is one result row.
type Item struct {
	ID       string
	Result   string
	Duration float64
	Log      string
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Items flattens the report data into rows, problems first.
func Items(d *reportdata.Data) []Item {
	var items []Item
	for _, id := range d.NodeIDs() {
		for _, e := range d.Tests(id) {
			items = append(items, Item{
				ID:       e.TestID,
				Result:   e.Result,
				Duration: e.Duration,
				Log:      html.UnescapeString(tagRe.ReplaceAllString(e.Log, "")),
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := problem(items[i].Result), problem(items[j].Result)
		if pi != pj {
			return pi
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func problem(result string) bool {
	return result == "Failed" || result == "Error"
}

// Run shows items until the user quits. A nil in reads keys from the
// controlling terminal, for when stdin carries the test stream.
func Run(ctx context.Context, items []Item, theme render.Theme, in io.Reader, out io.Writer) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out), tea.WithAltScreen()}
	if in == nil {
		opts = append(opts, tea.WithInputTTY())
	} else {
		opts = append(opts, tea.WithInput(in))
	}
	_, err := tea.NewProgram(newModel(items, theme), opts...).Run()
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

type model struct {
	all       []Item
	items     []Item
	theme     render.Theme
	selected  int
	onlyFails bool
	viewport  viewport.Model
	ready     bool
	width     int
	height    int
	listWidth int
}

func newModel(items []Item, theme render.Theme) model {
	vp := viewport.New(0, 0)
	vp.SetContent("No results")
	m := model{all: items, items: items, theme: theme, viewport: vp}
	m.refreshViewport()
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refreshViewport()
			}
		case "down", "j":
			if m.selected < len(m.items)-1 {
				m.selected++
				m.refreshViewport()
			}
		case "f":
			m.toggleFailures()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.listWidth = m.width / 3
		if m.listWidth < 24 {
			m.listWidth = 24
		}
		m.viewport.Width = m.width - m.listWidth - 3
		m.viewport.Height = m.height - 4
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}
		m.ready = true
		m.refreshViewport()
	}
	return m, nil
}

func (m *model) toggleFailures() {
	m.onlyFails = !m.onlyFails
	if !m.onlyFails {
		m.items = m.all
	} else {
		m.items = nil
		for _, it := range m.all {
			if problem(it.Result) {
				m.items = append(m.items, it)
			}
		}
	}
	m.selected = 0
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	if m.selected < 0 || m.selected >= len(m.items) {
		m.viewport.SetContent("No results")
		return
	}
	m.viewport.SetContent(m.items[m.selected].Log)
	m.viewport.GotoTop()
}

func (m model) View() string {
	if !m.ready {
		return "Loading results..."
	}

	contentHeight := m.height - 3
	if contentHeight < 3 {
		contentHeight = 3
	}

	lines := m.listLines()
	if len(lines) > contentHeight {
		// Keep the selection visible.
		start := m.selected - contentHeight + 1
		if start < 0 {
			start = 0
		}
		lines = lines[start : start+contentHeight]
	}
	list := lipgloss.NewStyle().Width(m.listWidth).Render(strings.Join(lines, "\n"))

	detail := m.theme.Muted.Render("No results")
	if m.selected < len(m.items) {
		it := m.items[m.selected]
		detail = m.theme.Title.Render(it.ID) + "\n" + m.viewport.View()
	}
	panels := lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail)

	filter := "all"
	if m.onlyFails {
		filter = "problems"
	}
	help := m.theme.Muted.Render(fmt.Sprintf("↑/↓ select • pgup/pgdn scroll • f filter (%s) • q quit", filter))
	return lipgloss.JoinVertical(lipgloss.Left, panels, help)
}

func (m model) listLines() []string {
	lines := make([]string, 0, len(m.items))
	for i, it := range m.items {
		marker := "  "
		if i == m.selected {
			marker = "▶ "
		}
		label := fmt.Sprintf("%s %s (%.2fs)", resultIcon(m.theme, it.Result), it.ID, it.Duration)
		if i == m.selected {
			label = lipgloss.NewStyle().Bold(true).Render(label)
		}
		lines = append(lines, marker+label)
	}
	return lines
}

func resultIcon(theme render.Theme, result string) string {
	switch result {
	case "Passed":
		return theme.Passed.Render(theme.Icons.Pass)
	case "Failed", "Error":
		return theme.Failed.Render(theme.Icons.Fail)
	default:
		return theme.Skipped.Render(theme.Icons.Skip)
	}
}
