package htmlreport

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed resources/index.html.tmpl resources/app.js
var resourceFS embed.FS

//go:embed resources/style.css
var defaultCSS string

type outcomeFilter struct {
	Key   string
	Label string
}

// filters are the summary checkboxes, in display order.
var filters = []outcomeFilter{
	{"failed", "Failed"},
	{"passed", "Passed"},
	{"skipped", "Skipped"},
	{"xfailed", "Expected failures"},
	{"xpassed", "Unexpected passes"},
	{"error", "Errors"},
	{"rerun", "Reruns"},
}

func parseTemplate() (*template.Template, error) {
	js, err := resourceFS.ReadFile("resources/app.js")
	if err != nil {
		return nil, fmt.Errorf("reading app.js: %w", err)
	}
	tmpl, err := template.New("index.html.tmpl").
		Funcs(template.FuncMap{
			"appJS":    func() template.JS { return template.JS(js) }, //nolint:gosec // embedded asset
			"outcomes": func() []outcomeFilter { return filters },
		}).
		ParseFS(resourceFS, "resources/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return tmpl, nil
}
