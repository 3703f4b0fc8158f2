// Package htmlutil holds the small helpers shared by the report generator:
// ANSI escape handling for captured logs, stylesheet assembly and JSON-safety
// coercion of report data.
package htmlutil

import (
	"fmt"
	"html"
	"strings"

	"github.com/acarl005/stripansi"
	terminal "github.com/buildkite/terminal-to-html/v3"
)

// ANSIMode selects how escape sequences in captured logs are handled.
type ANSIMode string

const (
	// ANSIHTML converts escape sequences to styled spans.
	ANSIHTML ANSIMode = "html"
	// ANSIStrip removes escape sequences.
	ANSIStrip ANSIMode = "strip"
)

// ParseANSIMode validates a mode name. Empty means ANSIHTML.
func ParseANSIMode(s string) (ANSIMode, error) {
	switch ANSIMode(strings.ToLower(s)) {
	case "", ANSIHTML:
		return ANSIHTML, nil
	case ANSIStrip:
		return ANSIStrip, nil
	default:
		return "", fmt.Errorf("unknown ansi mode %q (expected html or strip)", s)
	}
}

// Converter turns captured terminal output into report-safe markup.
type Converter struct {
	mode ANSIMode
}

// NewConverter returns a converter for mode.
func NewConverter(mode ANSIMode) *Converter {
	if mode == "" {
		mode = ANSIHTML
	}
	return &Converter{mode: mode}
}

// Mode returns the active mode.
func (c *Converter) Mode() ANSIMode {
	return c.mode
}

// Convert renders s as HTML-escaped text. In html mode escape sequences
// become colour spans; in strip mode they are removed.
func (c *Converter) Convert(s string) string {
	if c.mode == ANSIStrip {
		return html.EscapeString(stripansi.Strip(s))
	}
	return terminal.Render([]byte(s))
}

// Styles returns the CSS rules for the spans emitted in html mode, one rule
// per line. Strip mode needs none.
func (c *Converter) Styles() []string {
	if c.mode != ANSIHTML {
		return nil
	}
	return ansiStyles
}

var ansiStyles = buildANSIStyles()

func buildANSIStyles() []string {
	palette := []string{"#000000", "#cd0000", "#00cd00", "#cdcd00", "#0000ee", "#cd00cd", "#00cdcd", "#e5e5e5"}
	bright := []string{"#7f7f7f", "#ff0000", "#00ff00", "#ffff00", "#5c5cff", "#ff00ff", "#00ffff", "#ffffff"}

	styles := []string{
		".term-fg1 { font-weight: bold; }",
		".term-fg2 { opacity: 0.6; }",
		".term-fg3 { font-style: italic; }",
		".term-fg4 { text-decoration: underline; }",
		".term-fg9 { text-decoration: line-through; }",
	}
	for i, color := range palette {
		styles = append(styles,
			fmt.Sprintf(".term-fg%d { color: %s; }", 30+i, color),
			fmt.Sprintf(".term-bg%d { background-color: %s; }", 40+i, color))
	}
	for i, color := range bright {
		styles = append(styles,
			fmt.Sprintf(".term-fg%d { color: %s; }", 90+i, color),
			fmt.Sprintf(".term-bg%d { background-color: %s; }", 100+i, color))
	}
	return styles
}
