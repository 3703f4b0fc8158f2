// Package reportdata is the in-memory store behind the HTML report: every
// accepted result entry keyed by test node id, plus the run-wide metadata the
// template needs.
package reportdata

import (
	"encoding/json"
	"strings"

	"github.com/dkoosis/testhtml/pkg/extras"
	"github.com/dkoosis/testhtml/pkg/host"
	"github.com/dkoosis/testhtml/pkg/htmlutil"
	"github.com/dkoosis/testhtml/pkg/table"
)

// Running states shown by the report while the run is in progress.
const (
	StateNotStarted = "not_started"
	StateStarted    = "Started"
	StateFinished   = "Finished"
)

// NoLogOutput is the log shown for a result without any captured output.
const NoLogOutput = "No log output captured."

// Entry is one recorded phase of one test.
type Entry struct {
	Duration        float64
	TestID          string
	ResultsTableRow []string
	TableHTML       []string
	Result          string
	Extras          []extras.Extra

	Log    string
	HasLog bool

	// Sortables are the values extracted from the row's extra cells; they are
	// serialized as top-level keys so the client can sort on them.
	Sortables map[string]string
}

// MarshalJSON flattens sortables into the entry object.
func (e *Entry) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"duration":        e.Duration,
		"testId":          e.TestID,
		"resultsTableRow": nonNil(e.ResultsTableRow),
		"tableHtml":       nonNil(e.TableHTML),
		"result":          e.Result,
		"extras":          e.extras(),
	}
	if e.HasLog {
		m["log"] = e.Log
	}
	for k, v := range e.Sortables {
		m[k] = v
	}
	return json.Marshal(m)
}

func (e *Entry) extras() []extras.Extra {
	if e.Extras == nil {
		return []extras.Extra{}
	}
	return e.Extras
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Summary holds the free-form HTML shown above the results table.
type Summary struct {
	Prefix  []string `json:"prefix"`
	Summary []string `json:"summary"`
	Postfix []string `json:"postfix"`
}

// Data is the report data store. It is not safe for concurrent use; the
// host dispatches hooks sequentially.
type Data struct {
	title          string
	collectedItems int
	runningState   string
	environment    map[string]any
	tests          map[string][]*Entry
	header         []string
	headerPops     int
	summary        Summary
	collapsed      []string
	custom         map[string]any

	conv *htmlutil.Converter
}

// New returns an empty store. collapsed is the render_collapsed setting: a
// comma-separated list of outcomes whose rows start collapsed ("all" for
// every row, "none" for none); empty leaves the client default. conv renders
// ANSI sequences in logs; nil strips them.
func New(title, collapsed string, conv *htmlutil.Converter) *Data {
	if conv == nil {
		conv = htmlutil.NewConverter(htmlutil.ANSIStrip)
	}
	d := &Data{
		title:        title,
		runningState: StateNotStarted,
		environment:  map[string]any{},
		tests:        make(map[string][]*Entry),
		header:       []string{},
		summary:      Summary{Prefix: []string{}, Summary: []string{}, Postfix: []string{}},
		custom:       make(map[string]any),
		conv:         conv,
	}
	if collapsed != "" {
		if strings.EqualFold(collapsed, "true") {
			htmlutil.Deprecated("'render_collapsed = True' is deprecated and support will be removed in the next major release. Please use 'render_collapsed = all' instead.")
		}
		for _, o := range strings.Split(collapsed, ",") {
			d.collapsed = append(d.collapsed, strings.ToLower(o))
		}
	}
	return d
}

// Title returns the report title.
func (d *Data) Title() string { return d.title }

// SetTitle replaces the report title.
func (d *Data) SetTitle(title string) { d.title = title }

// Collapsed returns the outcomes whose rows start collapsed.
func (d *Data) Collapsed() []string { return d.collapsed }

func (d *Data) RunningState() string { return d.runningState }

func (d *Data) SetRunningState(state string) { d.runningState = state }

func (d *Data) CollectedItems() int { return d.collectedItems }

func (d *Data) SetCollectedItems(n int) { d.collectedItems = n }

func (d *Data) Environment() map[string]any { return d.environment }

func (d *Data) SetEnvironment(env map[string]any) { d.environment = env }

// SetResultsTableHeader stores the extra header cells and how many default
// columns the client must drop.
func (d *Data) SetResultsTableHeader(html []string, pops int) {
	d.header = html
	d.headerPops = pops
}

// Summary returns the additional summary, modifiable in place by hooks.
func (d *Data) Summary() *Summary { return &d.summary }

// Set stores an arbitrary value under key for custom templates. Values that
// cannot be JSON-encoded are rendered as strings.
func (d *Data) Set(key string, value any) { d.custom[key] = value }

// Tests returns the entries recorded for a node id.
func (d *Data) Tests(nodeID string) []*Entry { return d.tests[nodeID] }

// NodeIDs returns every node id with at least one entry.
func (d *Data) NodeIDs() []string {
	ids := make([]string, 0, len(d.tests))
	for id := range d.tests {
		ids = append(ids, id)
	}
	return ids
}

// Outcomes counts recorded entries by result label.
func (d *Data) Outcomes() map[string]int {
	counts := make(map[string]int)
	for _, entries := range d.tests {
		for _, e := range entries {
			counts[e.Result]++
		}
	}
	return counts
}

// AddTest records entry for report when the inclusion rule allows it and
// reports whether it did. Only call phases and failed or skipped setup and
// teardown phases are recorded. A teardown always contributes its log to the
// call entry of the same test, whatever its outcome. removeLog leaves the
// default log out, for hooks that render their own.
func (d *Data) AddTest(entry *Entry, report *host.TestReport, row *table.Row, removeLog bool) bool {
	if entry.Sortables == nil {
		entry.Sortables = make(map[string]string)
	}
	for k, v := range row.Sortables() {
		entry.Sortables[k] = v
	}

	if report.When == host.PhaseTeardown && !removeLog {
		d.UpdateTestLog(report)
	}

	if report.When == host.PhaseCall ||
		(report.When == host.PhaseSetup || report.When == host.PhaseTeardown) && report.Outcome != host.OutcomePassed {
		if !removeLog {
			entry.Log = d.conv.Convert(processLogs(report))
			entry.HasLog = true
		}
		d.tests[report.NodeID] = append(d.tests[report.NodeID], entry)
		return true
	}
	return false
}

// UpdateTestLog appends the teardown sections of report to the log of the
// call entries already recorded for the same test.
func (d *Data) UpdateTestLog(report *host.TestReport) {
	for _, entry := range d.tests[report.NodeID] {
		if entry.TestID != report.NodeID || !entry.HasLog {
			continue
		}
		var log []string
		for _, s := range report.Sections {
			if strings.Contains(s.Header, "teardown") {
				log = append(log, center(" "+s.Header+" ", 80, '-'), s.Content)
			}
		}
		if len(log) == 0 {
			continue
		}
		entry.Log += d.conv.Convert(strings.Join(log, "\n"))
	}
}

// Map returns the JSON view consumed by the report template.
func (d *Data) Map() map[string]any {
	m := make(map[string]any, len(d.custom)+10)
	for k, v := range d.custom {
		m[k] = v
	}
	m["title"] = d.title
	m["collectedItems"] = d.collectedItems
	m["runningState"] = d.runningState
	m["environment"] = d.environment
	m["tests"] = d.tests
	m["resultsTableHeader"] = d.header
	m["headerPops"] = d.headerPops
	m["additionalSummary"] = d.summary
	if d.collapsed != nil {
		m["collapsed"] = d.collapsed
	}
	return m
}

// processLogs assembles the default log of a result: the failure text, then
// every captured section under an 80-column rule. The result is plain text;
// the converter escapes it.
func processLogs(report *host.TestReport) string {
	var log []string
	if report.LongReprText != "" {
		log = append(log, report.LongReprText+"\n")
	}
	for _, s := range report.Sections {
		log = append(log, center(" "+s.Header+" ", 80, '-'), s.Content)

		if strings.Contains(s.Header, "log") {
			log = append(log, "")
			if strings.Contains(s.Header, "call") {
				log = append(log, "")
			}
		}
	}
	if len(log) == 0 {
		log = append(log, NoLogOutput)
	}
	return strings.Join(log, "\n")
}

// center pads s with fill on both sides to width; odd padding goes right.
func center(s string, width int, fill rune) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	pad := width - n
	left := pad / 2
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), pad-left)
}
