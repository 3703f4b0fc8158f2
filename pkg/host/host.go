// Package host defines the contract between a test-execution engine and a
// report plugin, plus drivers that replay real runner output onto it.
//
// The engine calls the plugin sequentially: SessionStart, CollectionFinish,
// RuntestLogreport for every setup/call/teardown phase of every test,
// SessionFinish, and finally TerminalSummary.
package host

import (
	"github.com/dkoosis/testhtml/pkg/extras"
)

// Phase is the stage of a test a report belongs to.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)

// Outcome is the raw result of one phase.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Section is a titled block of captured output, e.g. "Captured stdout call".
type Section struct {
	Header  string
	Content string
}

// TestReport is the result of one phase of one test.
type TestReport struct {
	NodeID       string
	When         Phase
	Outcome      Outcome
	Duration     float64 // seconds
	LongReprText string
	Sections     []Section
	Extras       []extras.Extra

	// WasXFail is set when the test was expected to fail; the value is the
	// stated reason, possibly empty.
	WasXFail *string
	// Rerun is set by rerun-aware engines; 0 is the first rerun.
	Rerun *int
	// DurationFormatter is a legacy field that no longer has any effect.
	DurationFormatter string
}

// Session describes the whole run.
type Session struct {
	// Metadata is the environment table, e.g. Go version and platform.
	Metadata map[string]any
	// Items are the ids of every collected test.
	Items []string
}

// Terminal is the engine's console.
type Terminal interface {
	// WriteSep writes title centred in a rule of sep characters.
	WriteSep(sep, title string)
}

// Plugin receives the engine lifecycle callbacks.
type Plugin interface {
	SessionStart(s *Session) error
	CollectionFinish(s *Session) error
	RuntestLogreport(r *TestReport) error
	SessionFinish(s *Session) error
	TerminalSummary(t Terminal) error
}
