package htmlreport

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/testhtml/pkg/host"
)

// Result labels shown in the report.
const (
	ResultPassed  = "Passed"
	ResultFailed  = "Failed"
	ResultSkipped = "Skipped"
	ResultError   = "Error"
	ResultXFailed = "XFailed"
	ResultXPassed = "XPassed"
	ResultRerun   = "Rerun"
)

func isError(r *host.TestReport) bool {
	return (r.When == host.PhaseSetup || r.When == host.PhaseTeardown) && r.Outcome == host.OutcomeFailed
}

// Outcome classifies a phase result: failed setup or teardown is an Error,
// an expected failure that passed is XPassed and one that was skipped is
// XFailed; anything else is the capitalized raw outcome.
func Outcome(r *host.TestReport) string {
	if isError(r) {
		return ResultError
	}
	if r.WasXFail != nil {
		switch r.Outcome {
		case host.OutcomePassed, host.OutcomeFailed:
			return ResultXPassed
		case host.OutcomeSkipped:
			return ResultXFailed
		}
	}
	return cases.Title(language.English).String(string(r.Outcome))
}

// redactor blanks out environment values whose key matches a pattern.
type redactor struct {
	patterns []*regexp.Regexp
}

// redactRune replaces every character of a redacted value.
const redactRune = '▓'

func newRedactor(patterns []string) (*redactor, error) {
	r := &redactor{}
	for _, p := range patterns {
		// Patterns match at the start of the key only.
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

func (r *redactor) redactable(key string) bool {
	for _, re := range r.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// apply returns a copy of metadata with redactable values masked.
func (r *redactor) apply(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if r.redactable(k) {
			v = strings.Repeat(string(redactRune), utf8.RuneCountInString(fmt.Sprint(v)))
		}
		out[k] = v
	}
	return out
}
