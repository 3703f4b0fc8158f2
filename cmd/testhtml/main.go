// testhtml renders test results into a static HTML report.
//
// Usage:
//
//	go test -json ./... | testhtml --report out/report.html
//	testhtml --self-contained < report-log.jsonl
//
// Accepts two input formats on stdin:
//   - go test -json (test execution events)
//   - pytest --report-log (one JSON record per session event and test phase)
//
// The report is rewritten after every result, so it can be opened while the
// run is still in progress. Exit status is 1 when any test failed or errored,
// 2 on usage or input errors, 0 otherwise.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/dkoosis/testhtml/internal/config"
	"github.com/dkoosis/testhtml/internal/detect"
	"github.com/dkoosis/testhtml/internal/version"
	"github.com/dkoosis/testhtml/pkg/browse"
	"github.com/dkoosis/testhtml/pkg/host"
	"github.com/dkoosis/testhtml/pkg/htmlreport"
	"github.com/dkoosis/testhtml/pkg/render"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("testhtml", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var css stringList
	reportFlag := fs.String("report", config.DefaultReportPath, "Path of the HTML report")
	selfContained := fs.Bool("self-contained", false, "Inline styles and extras into the report")
	fs.Var(&css, "css", "Additional stylesheet (repeatable)")
	titleFlag := fs.String("title", "", "Report title (default: report file name)")
	collapsedFlag := fs.String("collapsed", "", "Outcomes whose rows start collapsed: all, none, or a list")
	ansiFlag := fs.String("ansi", config.DefaultANSI, "Escape sequences in logs: html, strip")
	themeFlag := fs.String("theme", "", "Terminal theme: default, orca, mono")
	browseFlag := fs.Bool("browse", false, "Browse results interactively when finished (TTY only)")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *versionFlag {
		fmt.Fprintf(stdout, "testhtml %s (commit %s, built %s)\n", version.Version, version.CommitHash, version.BuildDate)
		return 0
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "testhtml: unexpected argument %q (input is read from stdin)\n", fs.Arg(0))
		return 2
	}

	cli := config.CliFlags{
		ReportPath:    *reportFlag,
		SelfContained: *selfContained,
		CSS:           css,
		Title:         *titleFlag,
		Collapsed:     *collapsedFlag,
		ANSI:          *ansiFlag,
		ThemeName:     *themeFlag,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "report":
			cli.ReportPathSet = true
		case "self-contained":
			cli.SelfContainedSet = true
		case "title":
			cli.TitleSet = true
		case "collapsed":
			cli.CollapsedSet = true
		case "ansi":
			cli.ANSISet = true
		}
	})

	cfg, err := config.ResolveConfig(cli)
	if err != nil {
		fmt.Fprintf(stderr, "testhtml: %v\n", err)
		return 2
	}
	configureLogging(stderr, cfg.Debug)

	// Peek stdin to detect format without consuming
	br := bufio.NewReaderSize(stdin, 8*1024)
	peeked := peekLine(br)
	if len(peeked) == 0 {
		fmt.Fprintf(stderr, "testhtml: no input on stdin\n")
		return 2
	}
	format := detect.Sniff(peeked)
	if format == detect.Unknown {
		fmt.Fprintf(stderr, "testhtml: unrecognized input format (expected go test -json or report-log)\n")
		return 2
	}
	slog.Debug("detected input", "format", format.String())

	report, err := htmlreport.New(htmlreport.Options{
		Path:                   cfg.ReportPath,
		SelfContained:          cfg.SelfContained,
		CSS:                    cfg.CSS,
		RedactList:             cfg.RedactList,
		MaxAssetFilenameLength: cfg.MaxAssetFilenameLength,
		RenderCollapsed:        cfg.RenderCollapsed,
		Title:                  cfg.Title,
		ANSI:                   cfg.ANSI,
	})
	if err != nil {
		fmt.Fprintf(stderr, "testhtml: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// Close the underlying reader on cancel to unblock the scanner.
	if c, ok := stdin.(io.Closer); ok {
		stopClose := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stopClose()
	}

	theme := render.ThemeByName(cfg.ThemeName)
	term := render.NewTerminal(stdout, theme, render.Width(stdout))
	session := &host.Session{Metadata: metadata(cfg)}

	var malformed int
	switch format {
	case detect.ReportLog:
		malformed, err = host.RunReportLog(ctx, br, report, session, term)
	default:
		malformed, err = host.RunGoTest(ctx, br, report, session, term)
	}
	if malformed > 0 {
		fmt.Fprintf(stderr, "testhtml: warning: %d malformed line(s) skipped\n", malformed)
	}
	if err != nil {
		fmt.Fprintf(stderr, "testhtml: %v\n", err)
		return 2
	}

	outcomes := report.Data().Outcomes()
	term.WriteTotals(outcomes)

	if *browseFlag {
		if render.IsTTY(stdout) {
			if err := browse.Run(ctx, browse.Items(report.Data()), theme, nil, stdout); err != nil {
				slog.Warn("interactive browser failed", "err", err)
			}
		} else {
			slog.Warn("--browse needs a terminal on stdout; skipped")
		}
	}
	return exitCode(outcomes)
}

// peekLine returns the buffered input once it holds a full first line, the
// buffer is full, or the input ended. It never waits for more than the next
// read, so a live pipe is sniffed as soon as its first event arrives.
func peekLine(br *bufio.Reader) []byte {
	n := 1
	for {
		peeked, err := br.Peek(n)
		if buffered := br.Buffered(); buffered > len(peeked) {
			peeked, _ = br.Peek(buffered)
		}
		if err != nil || bytes.IndexByte(peeked, '\n') >= 0 || len(peeked) >= br.Size() {
			return peeked
		}
		n = len(peeked) + 1
	}
}

// configureLogging installs the default slog handler for diagnostics and
// deprecation warnings.
func configureLogging(w io.Writer, debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// metadata builds the environment table: runtime facts, then the
// configured entries on top.
func metadata(cfg *config.ResolvedConfig) map[string]any {
	m := map[string]any{
		"Go":       runtime.Version(),
		"Platform": runtime.GOOS + "-" + runtime.GOARCH,
		"testhtml": version.Version,
	}
	for k, v := range cfg.Metadata {
		m[k] = v
	}
	return m
}

// exitCode returns 1 when any result failed or errored, 0 otherwise.
func exitCode(outcomes map[string]int) int {
	if outcomes[htmlreport.ResultFailed] > 0 || outcomes[htmlreport.ResultError] > 0 {
		return 1
	}
	return 0
}
