// Package detect sniffs stdin to determine the input format.
package detect

import (
	"bytes"
	"encoding/json"

	"github.com/dkoosis/testhtml/pkg/testjson"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown    Format = iota
	GoTestJSON        // go test -json NDJSON stream
	ReportLog         // pytest --report-log NDJSON stream
)

func (f Format) String() string {
	switch f {
	case GoTestJSON:
		return "go test -json"
	case ReportLog:
		return "report-log"
	default:
		return "unknown"
	}
}

// Sniff examines the first bytes of input to determine format.
// Input must contain at least the first line.
func Sniff(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 || data[0] != '{' {
		return Unknown
	}

	firstLine := data
	if end := bytes.IndexByte(data, '\n'); end >= 0 {
		firstLine = data[:end]
	}

	var probe struct {
		ReportType string `json:"$report_type"`
		Action     string `json:"Action"`
	}
	if err := json.Unmarshal(firstLine, &probe); err != nil {
		return Unknown
	}
	switch {
	case probe.ReportType != "":
		return ReportLog
	case testjson.IsValidAction(probe.Action):
		return GoTestJSON
	}
	return Unknown
}
