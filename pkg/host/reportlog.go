package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dkoosis/testhtml/pkg/extras"
	"github.com/dkoosis/testhtml/pkg/htmlutil"
)

// Report-log record types.
const (
	RecordSessionStart  = "SessionStart"
	RecordCollectReport = "CollectReport"
	RecordTestReport    = "TestReport"
	RecordSessionFinish = "SessionFinish"
)

// collector node types that are containers, not tests.
var containerTypes = map[string]bool{
	"Session": true, "Package": true, "Module": true, "Class": true,
	"Instance": true, "Dir": true, "Directory": true, "DoctestModule": true,
}

type logRecord struct {
	Type string `json:"$report_type"`

	NodeID            string          `json:"nodeid"`
	When              Phase           `json:"when"`
	Outcome           Outcome         `json:"outcome"`
	Duration          float64         `json:"duration"`
	LongRepr          json.RawMessage `json:"longrepr"`
	Sections          [][2]string     `json:"sections"`
	WasXFail          *string         `json:"wasxfail"`
	Rerun             *int            `json:"rerun"`
	Extras            []extras.Extra  `json:"extras"`
	Extra             []extras.Extra  `json:"extra"`
	DurationFormatter string          `json:"duration_formatter"`
	Result            []collectedNode `json:"result"`
	PytestVersion     string          `json:"pytest_version"`
	ExitStatus        *int            `json:"exitstatus"`
}

type collectedNode struct {
	NodeID string `json:"nodeid"`
	Type   string `json:"type"`
}

// ReportLog replays a pytest --report-log file onto a plugin.
type ReportLog struct {
	plugin  Plugin
	session *Session
	term    Terminal

	started   bool
	collected bool
	finished  bool
	seen      map[string]bool
	failed    bool
}

// NewReportLog returns a report-log driver reporting to p.
func NewReportLog(p Plugin, session *Session, term Terminal) *ReportLog {
	if session == nil {
		session = &Session{}
	}
	return &ReportLog{plugin: p, session: session, term: term, seen: make(map[string]bool)}
}

// RunReportLog reads every record from r and finishes the session.
// Returns the number of malformed lines skipped.
func RunReportLog(ctx context.Context, r io.Reader, p Plugin, session *Session, term Terminal) (int, error) {
	d := NewReportLog(p, session, term)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var malformed int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return malformed, err
		}
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var rec logRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.Type == "" {
			malformed++
			continue
		}
		if err := d.handle(&rec); err != nil {
			return malformed, err
		}
	}
	if err := scanner.Err(); err != nil {
		return malformed, fmt.Errorf("scanning report log: %w", err)
	}
	return malformed, d.Finish()
}

// Failed reports whether any phase failed.
func (d *ReportLog) Failed() bool {
	return d.failed
}

// handle dispatches one record.
func (d *ReportLog) handle(rec *logRecord) error {
	switch rec.Type {
	case RecordSessionStart:
		if rec.PytestVersion != "" {
			d.metadata()["pytest"] = rec.PytestVersion
		}
		return d.start()
	case RecordCollectReport:
		if err := d.start(); err != nil {
			return err
		}
		for _, n := range rec.Result {
			if n.NodeID == "" || containerTypes[n.Type] || d.seen[n.NodeID] {
				continue
			}
			d.seen[n.NodeID] = true
			d.session.Items = append(d.session.Items, n.NodeID)
		}
		if rec.Outcome == OutcomeFailed {
			d.failed = true
		}
	case RecordTestReport:
		if err := d.start(); err != nil {
			return err
		}
		if err := d.collect(); err != nil {
			return err
		}
		tr := rec.testReport()
		if tr.Outcome == OutcomeFailed {
			d.failed = true
		}
		if err := d.plugin.RuntestLogreport(tr); err != nil {
			return fmt.Errorf("logreport %s: %w", tr.NodeID, err)
		}
	case RecordSessionFinish:
		if rec.ExitStatus != nil && *rec.ExitStatus != 0 {
			d.failed = true
		}
		return d.Finish()
	}
	return nil
}

// Finish closes the session. It is safe to call more than once.
func (d *ReportLog) Finish() error {
	if d.finished {
		return nil
	}
	d.finished = true
	if err := d.start(); err != nil {
		return err
	}
	if err := d.collect(); err != nil {
		return err
	}
	if err := d.plugin.SessionFinish(d.session); err != nil {
		return fmt.Errorf("session finish: %w", err)
	}
	if d.term == nil {
		return nil
	}
	if err := d.plugin.TerminalSummary(d.term); err != nil {
		return fmt.Errorf("terminal summary: %w", err)
	}
	return nil
}

func (d *ReportLog) start() error {
	if d.started {
		return nil
	}
	d.started = true
	if err := d.plugin.SessionStart(d.session); err != nil {
		return fmt.Errorf("session start: %w", err)
	}
	return nil
}

func (d *ReportLog) collect() error {
	if d.collected {
		return nil
	}
	d.collected = true
	if err := d.plugin.CollectionFinish(d.session); err != nil {
		return fmt.Errorf("collection finish: %w", err)
	}
	return nil
}

func (d *ReportLog) metadata() map[string]any {
	if d.session.Metadata == nil {
		d.session.Metadata = make(map[string]any)
	}
	return d.session.Metadata
}

func (rec *logRecord) testReport() *TestReport {
	tr := &TestReport{
		NodeID:            rec.NodeID,
		When:              rec.When,
		Outcome:           rec.Outcome,
		Duration:          rec.Duration,
		LongReprText:      longReprText(rec.LongRepr),
		WasXFail:          rec.WasXFail,
		Rerun:             rec.Rerun,
		Extras:            rec.Extras,
		DurationFormatter: rec.DurationFormatter,
	}
	if tr.When == "" {
		tr.When = PhaseCall
	}
	if len(rec.Extra) > 0 {
		htmlutil.Deprecated("The 'extra' field is deprecated and will be removed in a future release, use 'extras' instead.")
		tr.Extras = append(tr.Extras, rec.Extra...)
	}
	for _, s := range rec.Sections {
		tr.Sections = append(tr.Sections, Section{Header: s[0], Content: s[1]})
	}
	return tr
}

// longReprText flattens the serialized failure representation: a plain
// string, a skip triple [path, line, message], or a structured traceback.
func longReprText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var triple []any
	if err := json.Unmarshal(raw, &triple); err == nil {
		if len(triple) == 3 {
			return fmt.Sprintf("%v:%v: %v", triple[0], triple[1], triple[2])
		}
		return fmt.Sprint(triple...)
	}

	var tb struct {
		ReprCrash *struct {
			Path    string `json:"path"`
			Lineno  int    `json:"lineno"`
			Message string `json:"message"`
		} `json:"reprcrash"`
		ReprTraceback struct {
			ReprEntries []struct {
				Data struct {
					Lines []string `json:"lines"`
				} `json:"data"`
			} `json:"reprentries"`
		} `json:"reprtraceback"`
	}
	if err := json.Unmarshal(raw, &tb); err != nil {
		return string(raw)
	}
	var lines []string
	for _, e := range tb.ReprTraceback.ReprEntries {
		lines = append(lines, e.Data.Lines...)
	}
	if tb.ReprCrash != nil {
		lines = append(lines, fmt.Sprintf("%s:%d: %s", tb.ReprCrash.Path, tb.ReprCrash.Lineno, tb.ReprCrash.Message))
	}
	if len(lines) == 0 {
		return string(raw)
	}
	return strings.Join(lines, "\n")
}
