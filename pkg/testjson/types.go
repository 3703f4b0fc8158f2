// Package testjson reads go test -json NDJSON streams.
package testjson

import "time"

// Actions emitted by test2json.
const (
	ActionStart  = "start"
	ActionRun    = "run"
	ActionPause  = "pause"
	ActionCont   = "cont"
	ActionPass   = "pass"
	ActionBench  = "bench"
	ActionFail   = "fail"
	ActionOutput = "output"
	ActionSkip   = "skip"

	// Emitted by go 1.24+ for package builds; these carry ImportPath
	// instead of Package.
	ActionBuildOutput = "build-output"
	ActionBuildFail   = "build-fail"
)

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`

	// ImportPath identifies the build of a build-output or build-fail event.
	ImportPath string `json:"ImportPath,omitempty"`
	// FailedBuild is set on a package fail event caused by a failed build
	// and names the ImportPath of that build.
	FailedBuild string `json:"FailedBuild,omitempty"`
}

// ProcessFunc handles one event. A non-nil error stops the stream.
type ProcessFunc func(TestEvent) error

// IsValidAction reports whether a is an action test2json emits.
func IsValidAction(a string) bool {
	switch a {
	case ActionStart, ActionRun, ActionPause, ActionCont, ActionPass,
		ActionBench, ActionFail, ActionOutput, ActionSkip,
		ActionBuildOutput, ActionBuildFail:
		return true
	}
	return false
}
