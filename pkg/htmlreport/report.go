// Package htmlreport renders test results into a single HTML page.
//
// A Report is a host.Plugin: the host calls it at session start, after
// collection, once per test phase, at session finish and for the terminal
// summary. The page is rewritten in full after every accepted result, so a
// report opened mid-run shows progress.
package htmlreport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkoosis/testhtml/internal/version"
	"github.com/dkoosis/testhtml/pkg/host"
	"github.com/dkoosis/testhtml/pkg/htmlutil"
	"github.com/dkoosis/testhtml/pkg/reportdata"
	"github.com/dkoosis/testhtml/pkg/table"
)

// Options configure a Report.
type Options struct {
	// Path of the HTML file. Environment variables and a leading ~ are
	// expanded; missing parent directories are created.
	Path string
	// SelfContained inlines CSS and extras instead of writing assets.
	SelfContained bool
	// CSS lists stylesheets appended to the default one.
	CSS []string
	// RedactList holds patterns; environment keys matching one at their
	// start have their value masked.
	RedactList []string
	// MaxAssetFilenameLength bounds asset names; zero means 255.
	MaxAssetFilenameLength int
	// RenderCollapsed lists outcomes whose rows start collapsed.
	RenderCollapsed string
	// Title overrides the default title, the report file name.
	Title string
	// ANSI selects how escape sequences in logs are handled.
	ANSI htmlutil.ANSIMode
	// Hooks run in order for every extension point.
	Hooks []Hooks
	// Now is the clock used for the generation timestamp.
	Now func() time.Time
}

// Report accumulates results and writes the HTML page.
type Report struct {
	path        string
	tmpl        *template.Template
	content     contentStrategy
	data        *reportdata.Data
	hooks       []Hooks
	redact      *redactor
	maxAssetLen int
	now         func() time.Time
}

var _ host.Plugin = (*Report)(nil)

// New prepares a report. Nothing is written until SessionStart, except the
// stylesheet asset when the report is not self-contained.
func New(opts Options) (*Report, error) {
	path, err := expandPath(opts.Path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	tmpl, err := parseTemplate()
	if err != nil {
		return nil, err
	}

	conv := htmlutil.NewConverter(opts.ANSI)
	css, err := htmlutil.ProcessCSS(defaultCSS, opts.CSS, conv.Styles())
	if err != nil {
		return nil, err
	}

	var content contentStrategy
	if opts.SelfContained {
		content = &selfContainedContent{css: css}
	} else {
		content, err = newAssetsContent(filepath.Dir(path), css)
		if err != nil {
			return nil, err
		}
	}

	redact, err := newRedactor(opts.RedactList)
	if err != nil {
		return nil, err
	}

	maxLen := opts.MaxAssetFilenameLength
	if maxLen <= 0 {
		maxLen = DefaultMaxAssetFilenameLength
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	data := reportdata.New(filepath.Base(path), opts.RenderCollapsed, conv)
	if opts.Title != "" {
		data.SetTitle(opts.Title)
	}

	return &Report{
		path:        path,
		tmpl:        tmpl,
		content:     content,
		data:        data,
		hooks:       opts.Hooks,
		redact:      redact,
		maxAssetLen: maxLen,
		now:         now,
	}, nil
}

// Path returns the absolute path of the report file.
func (r *Report) Path() string { return r.path }

// Data exposes the report data for hooks and summaries.
func (r *Report) Data() *reportdata.Data { return r.data }

// SessionStart records the environment, runs the title and header hooks and
// writes the first version of the page.
func (r *Report) SessionStart(s *host.Session) error {
	if len(s.Metadata) > 0 {
		r.data.SetEnvironment(r.redact.apply(s.Metadata))
	}

	for _, h := range r.hooks {
		h.ReportTitle(r.data)
	}

	header := table.NewHeader()
	for _, h := range r.hooks {
		h.ResultsTableHeader(header)
	}
	r.data.SetResultsTableHeader(header.HTML(), header.Pops())

	r.data.SetRunningState(reportdata.StateStarted)
	return r.generate()
}

// CollectionFinish records how many tests were collected.
func (r *Report) CollectionFinish(s *host.Session) error {
	r.data.SetCollectedItems(len(s.Items))
	return nil
}

// RuntestLogreport adds one phase result and rewrites the page when the
// result is kept.
func (r *Report) RuntestLogreport(report *host.TestReport) error {
	if report.DurationFormatter != "" {
		htmlutil.Deprecated("'duration_formatter' has been removed and no longer has any effect!")
	}

	testID := report.NodeID
	if report.When != host.PhaseCall {
		testID += "::" + string(report.When)
	}

	row := table.NewRow()
	for _, h := range r.hooks {
		h.ResultsTableRow(report, row)
	}
	cells := row.HTML()
	if cells == nil {
		return nil
	}

	detail := table.NewHTML()
	for _, h := range r.hooks {
		h.ResultsTableHTML(report, detail)
	}

	ex, err := r.processExtras(report, testID)
	if err != nil {
		return fmt.Errorf("processing extras of %s: %w", testID, err)
	}

	entry := &reportdata.Entry{
		Duration:        report.Duration,
		TestID:          testID,
		ResultsTableRow: cells,
		TableHTML:       detail.Fragments(),
		Result:          Outcome(report),
		Extras:          ex,
	}
	if r.data.AddTest(entry, report, row, detail.ReplaceLog()) {
		return r.generate()
	}
	return nil
}

// SessionFinish runs the summary hooks and writes the final page.
func (r *Report) SessionFinish(*host.Session) error {
	sum := r.data.Summary()
	for _, h := range r.hooks {
		h.ResultsSummary(&sum.Prefix, &sum.Summary, &sum.Postfix)
	}
	r.data.SetRunningState(reportdata.StateFinished)
	return r.generate()
}

// TerminalSummary prints where the report was written.
func (r *Report) TerminalSummary(t host.Terminal) error {
	t.WriteSep("-", "Generated html report: file://"+r.path)
	return nil
}

type page struct {
	Title         string
	Date          string
	Time          string
	Version       string
	Styles        string
	InlineStyles  template.CSS
	SelfContained bool
	TestData      string
	Prefix        []template.HTML
	Summary       []template.HTML
	Postfix       []template.HTML
}

func (r *Report) generate() error {
	data, err := json.Marshal(htmlutil.CleanupUnserializable(r.data.Map()))
	if err != nil {
		return fmt.Errorf("encoding report data: %w", err)
	}

	generated := r.now()
	sum := r.data.Summary()
	p := page{
		Title:         r.data.Title(),
		Date:          generated.Format("02-Jan-2006"),
		Time:          generated.Format("15:04:05"),
		Version:       version.Version,
		Styles:        r.content.styles(),
		SelfContained: r.content.selfContained(),
		TestData:      string(data),
		Prefix:        trusted(sum.Prefix),
		Summary:       trusted(sum.Summary),
		Postfix:       trusted(sum.Postfix),
	}

	if p.SelfContained {
		p.InlineStyles = template.CSS(p.Styles) //nolint:gosec // assembled from embedded and user-supplied stylesheets
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := os.WriteFile(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// trusted marks hook-supplied summary fragments as markup.
func trusted(fragments []string) []template.HTML {
	out := make([]template.HTML, len(fragments))
	for i, f := range fragments {
		out[i] = template.HTML(f) //nolint:gosec // hooks supply HTML by contract
	}
	return out
}

func expandPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("report path is empty")
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding ~: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving report path: %w", err)
	}
	return abs, nil
}
