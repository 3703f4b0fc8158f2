package detect

import "testing"

func TestSniff_GoTestJSON(t *testing.T) {
	input := `{"Time":"2024-01-01T00:00:00Z","Action":"start","Package":"example.com/pkg"}` + "\n"
	if got := Sniff([]byte(input)); got != GoTestJSON {
		t.Errorf("expected GoTestJSON, got %v", got)
	}
}

func TestSniff_GoTestJSON_OutputAction(t *testing.T) {
	input := `{"Time":"2024-01-01T00:00:00Z","Action":"output","Package":"example.com/pkg","Output":"=== RUN TestFoo\n"}` + "\n"
	if got := Sniff([]byte(input)); got != GoTestJSON {
		t.Errorf("expected GoTestJSON, got %v", got)
	}
}

func TestSniff_GoTestJSON_UnknownAction(t *testing.T) {
	input := `{"Action":"explode","Package":"x"}` + "\n"
	if got := Sniff([]byte(input)); got != Unknown {
		t.Errorf("expected Unknown for unknown action, got %v", got)
	}
}

func TestSniff_ReportLog(t *testing.T) {
	input := `{"pytest_version": "8.1.0", "$report_type": "SessionStart"}` + "\n" +
		`{"nodeid": "", "outcome": "passed", "$report_type": "CollectReport"}` + "\n"
	if got := Sniff([]byte(input)); got != ReportLog {
		t.Errorf("expected ReportLog, got %v", got)
	}
}

func TestSniff_OnlyFirstLineCounts(t *testing.T) {
	input := "{\"Foo\":1}\n{\"$report_type\":\"SessionStart\"}\n"
	if got := Sniff([]byte(input)); got != Unknown {
		t.Errorf("expected Unknown, got %v", got)
	}
}

func TestSniff_Empty(t *testing.T) {
	if got := Sniff([]byte("")); got != Unknown {
		t.Errorf("expected Unknown for empty, got %v", got)
	}
}

func TestSniff_PlainText(t *testing.T) {
	if got := Sniff([]byte("this is not json")); got != Unknown {
		t.Errorf("expected Unknown for plain text, got %v", got)
	}
}

func TestSniff_InvalidJSON(t *testing.T) {
	if got := Sniff([]byte("{invalid")); got != Unknown {
		t.Errorf("expected Unknown for invalid JSON, got %v", got)
	}
}

func TestSniff_LeadingWhitespace(t *testing.T) {
	input := `  {"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"x"}` + "\n"
	if got := Sniff([]byte(input)); got != GoTestJSON {
		t.Errorf("expected GoTestJSON with leading whitespace, got %v", got)
	}
}

func TestFormat_String(t *testing.T) {
	for f, want := range map[Format]string{GoTestJSON: "go test -json", ReportLog: "report-log", Unknown: "unknown"} {
		if got := f.String(); got != want {
			t.Errorf("Format(%d).String() = %q, want %q", int(f), got, want)
		}
	}
}

func TestSniff_GoTestJSON_BuildOutputFirst(t *testing.T) {
	input := `{"ImportPath":"example.com/broken [example.com/broken.test]","Action":"build-output","Output":"# example.com/broken\n"}` + "\n"
	if got := Sniff([]byte(input)); got != GoTestJSON {
		t.Errorf("expected GoTestJSON, got %v", got)
	}
}
