package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Terminal writes styled console output. It implements host.Terminal.
type Terminal struct {
	w     io.Writer
	theme Theme
	width int
}

// NewTerminal creates a console writer with the given theme. A width of
// zero or less means DefaultWidth.
func NewTerminal(w io.Writer, theme Theme, width int) *Terminal {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Terminal{w: w, theme: theme, width: width}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of w, defaulting to DefaultWidth.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return DefaultWidth
}

// WriteSep writes title centred in a line of sep filling the width.
func (t *Terminal) WriteSep(sep, title string) {
	fmt.Fprintln(t.w, t.sepLine(sep, title))
}

func (t *Terminal) sepLine(sep, title string) string {
	if sep == "" {
		sep = "-"
	}
	if title == "" {
		return t.theme.Rule.Render(fill(sep, t.width))
	}
	title = " " + title + " "
	rest := t.width - runewidth.StringWidth(title)
	if rest < 2 {
		return t.theme.Title.Render(strings.TrimSpace(title))
	}
	left := rest / 2
	return t.theme.Rule.Render(fill(sep, left)) +
		t.theme.Title.Render(title) +
		t.theme.Rule.Render(fill(sep, rest-left))
}

// fill repeats sep to exactly width display columns.
func fill(sep string, width int) string {
	sw := runewidth.StringWidth(sep)
	if sw == 0 || width <= 0 {
		return ""
	}
	s := strings.Repeat(sep, width/sw)
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}

// WriteTotals writes a table of result counts. Labels are the report's
// result names ("Passed", "Error", ...).
func (t *Terminal) WriteTotals(counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	labels := make([]string, 0, len(counts))
	total := 0
	for label, n := range counts {
		labels = append(labels, label)
		total += n
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := rank(labels[i]), rank(labels[j])
		if ri != rj {
			return ri < rj
		}
		return labels[i] < labels[j]
	})

	tw := table.NewWriter()
	tw.SetOutputMirror(t.w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Result", "Count"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Count", Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	for _, label := range labels {
		icon, style := t.theme.outcome(label)
		tw.AppendRow(table.Row{style.Render(icon + " " + label), counts[label]})
	}
	tw.AppendFooter(table.Row{"Total", total})
	tw.Render()
}

// rank orders results the way the report's filters do.
func rank(result string) int {
	order := []string{"Failed", "Passed", "Skipped", "XFailed", "XPassed", "Error", "Rerun"}
	for i, r := range order {
		if r == result {
			return i
		}
	}
	return len(order)
}
