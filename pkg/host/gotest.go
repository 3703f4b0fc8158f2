package host

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dkoosis/testhtml/pkg/testjson"
)

// CapturedCall is the section header used for output of a passing or skipped
// test.
const CapturedCall = "Captured stdout call"

// framingRe matches the lines go test writes around each test's own output.
var framingRe = regexp.MustCompile(`^\s*(=== (RUN|PAUSE|CONT|NAME)\s|--- (PASS|FAIL|SKIP):\s)`)

// GoTest maps a go test -json event stream onto the plugin lifecycle.
//
// Every test result becomes a call-phase report with node id
// "<package>::<Test>". A package that fails before any test reports (build
// failure, TestMain exiting early) becomes a failed setup phase of
// "<package>"; a package that fails after all of its tests passed becomes a
// failed teardown phase. Compiler output from go 1.24+ build events is
// attached to the package whose fail event names that build.
type GoTest struct {
	plugin  Plugin
	session *Session
	term    Terminal

	started  bool
	finished bool
	seen     map[string]bool
	pkgs     map[string]*goPkg
	builds   map[string][]string
	failed   bool
}

type goPkg struct {
	output   []string
	tests    map[string]*goTest
	order    []string
	results  int
	failures int
}

type goTest struct {
	output []string
	done   bool
}

// NewGoTest returns a driver that reports to p. session carries the
// environment metadata; its Items are filled as tests are seen.
func NewGoTest(p Plugin, session *Session, term Terminal) *GoTest {
	if session == nil {
		session = &Session{}
	}
	return &GoTest{
		plugin:  p,
		session: session,
		term:    term,
		seen:    make(map[string]bool),
		pkgs:    make(map[string]*goPkg),
		builds:  make(map[string][]string),
	}
}

// RunGoTest streams r through a new driver and finishes the session.
// Returns the number of malformed lines skipped.
func RunGoTest(ctx context.Context, r io.Reader, p Plugin, session *Session, term Terminal) (int, error) {
	g := NewGoTest(p, session, term)
	malformed, err := testjson.Stream(ctx, r, g.Handle)
	if err != nil {
		return malformed, err
	}
	return malformed, g.Finish()
}

// Failed reports whether any test or package failed.
func (g *GoTest) Failed() bool {
	return g.failed
}

// Handle processes one event.
func (g *GoTest) Handle(e testjson.TestEvent) error {
	if !g.started {
		g.started = true
		if err := g.plugin.SessionStart(g.session); err != nil {
			return fmt.Errorf("session start: %w", err)
		}
	}

	switch e.Action {
	case testjson.ActionBuildOutput:
		if line := strings.TrimRight(e.Output, "\n"); line != "" {
			g.builds[e.ImportPath] = append(g.builds[e.ImportPath], line)
		}
		return nil
	case testjson.ActionBuildFail:
		return nil
	}

	pkg := g.pkg(e.Package)
	if e.Test == "" {
		return g.handlePackage(e, pkg)
	}

	switch e.Action {
	case testjson.ActionRun:
		// A repeated run (-count=N) starts the test over.
		t := pkg.test(e.Test)
		t.output = nil
		t.done = false
		id := nodeID(e.Package, e.Test)
		if !g.seen[id] {
			g.seen[id] = true
			g.session.Items = append(g.session.Items, id)
			if err := g.plugin.CollectionFinish(g.session); err != nil {
				return fmt.Errorf("collection finish: %w", err)
			}
		}
	case testjson.ActionOutput:
		t := pkg.test(e.Test)
		if line := strings.TrimRight(e.Output, "\n"); line != "" {
			t.output = append(t.output, line)
		}
	case testjson.ActionPass, testjson.ActionFail, testjson.ActionSkip:
		return g.finishTest(e, pkg)
	}
	return nil
}

func (g *GoTest) handlePackage(e testjson.TestEvent, pkg *goPkg) error {
	switch e.Action {
	case testjson.ActionOutput:
		if line := strings.TrimRight(e.Output, "\n"); line != "" {
			pkg.output = append(pkg.output, line)
		}
	case testjson.ActionFail:
		g.failed = true
		return g.failPackage(e, pkg)
	}
	return nil
}

func (g *GoTest) finishTest(e testjson.TestEvent, pkg *goPkg) error {
	t := pkg.test(e.Test)
	t.done = true
	pkg.results++

	r := &TestReport{
		NodeID:   nodeID(e.Package, e.Test),
		When:     PhaseCall,
		Duration: e.Elapsed,
	}
	body := strings.Join(stripFraming(t.output), "\n")
	switch e.Action {
	case testjson.ActionPass:
		r.Outcome = OutcomePassed
	case testjson.ActionSkip:
		r.Outcome = OutcomeSkipped
		r.LongReprText = body
		body = ""
	case testjson.ActionFail:
		r.Outcome = OutcomeFailed
		r.LongReprText = body
		body = ""
		pkg.failures++
		g.failed = true
	}
	if body != "" {
		r.Sections = []Section{{Header: CapturedCall, Content: body}}
	}
	return g.report(r)
}

// failPackage reports tests that never finished (the binary died under
// them), then the package-level failure itself.
func (g *GoTest) failPackage(e testjson.TestEvent, pkg *goPkg) error {
	for _, name := range pkg.order {
		t := pkg.tests[name]
		if t.done {
			continue
		}
		t.done = true
		pkg.results++
		pkg.failures++
		err := g.report(&TestReport{
			NodeID:       nodeID(e.Package, name),
			When:         PhaseCall,
			Outcome:      OutcomeFailed,
			LongReprText: strings.Join(stripFraming(t.output), "\n"),
		})
		if err != nil {
			return err
		}
	}

	output := pkg.output
	if build := g.builds[e.FailedBuild]; e.FailedBuild != "" && len(build) > 0 {
		output = append(append([]string(nil), build...), output...)
	}
	text := strings.Join(output, "\n")
	switch {
	case pkg.results == 0:
		return g.report(&TestReport{
			NodeID:       e.Package,
			When:         PhaseSetup,
			Outcome:      OutcomeFailed,
			Duration:     e.Elapsed,
			LongReprText: text,
		})
	case pkg.failures == 0:
		return g.report(&TestReport{
			NodeID:       e.Package,
			When:         PhaseTeardown,
			Outcome:      OutcomeFailed,
			Duration:     e.Elapsed,
			LongReprText: text,
		})
	}
	return nil
}

func (g *GoTest) report(r *TestReport) error {
	if err := g.plugin.RuntestLogreport(r); err != nil {
		return fmt.Errorf("logreport %s: %w", r.NodeID, err)
	}
	return nil
}

// Finish closes the session. It is safe to call more than once.
func (g *GoTest) Finish() error {
	if g.finished {
		return nil
	}
	g.finished = true
	if !g.started {
		g.started = true
		if err := g.plugin.SessionStart(g.session); err != nil {
			return fmt.Errorf("session start: %w", err)
		}
	}
	if err := g.plugin.CollectionFinish(g.session); err != nil {
		return fmt.Errorf("collection finish: %w", err)
	}
	if err := g.plugin.SessionFinish(g.session); err != nil {
		return fmt.Errorf("session finish: %w", err)
	}
	if g.term == nil {
		return nil
	}
	if err := g.plugin.TerminalSummary(g.term); err != nil {
		return fmt.Errorf("terminal summary: %w", err)
	}
	return nil
}

func (g *GoTest) pkg(name string) *goPkg {
	if p, ok := g.pkgs[name]; ok {
		return p
	}
	p := &goPkg{tests: make(map[string]*goTest)}
	g.pkgs[name] = p
	return p
}

func (p *goPkg) test(name string) *goTest {
	if t, ok := p.tests[name]; ok {
		return t
	}
	t := &goTest{}
	p.tests[name] = t
	p.order = append(p.order, name)
	return t
}

func nodeID(pkg, test string) string {
	return pkg + "::" + test
}

func stripFraming(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if framingRe.MatchString(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}
