package htmlutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseANSIMode(t *testing.T) {
	m, err := ParseANSIMode("")
	require.NoError(t, err)
	assert.Equal(t, ANSIHTML, m)

	m, err = ParseANSIMode("STRIP")
	require.NoError(t, err)
	assert.Equal(t, ANSIStrip, m)

	_, err = ParseANSIMode("sepia")
	assert.Error(t, err)
}

func TestConverter_Strip(t *testing.T) {
	c := NewConverter(ANSIStrip)
	assert.Equal(t, "red text", c.Convert("\x1b[31mred\x1b[0m text"))
	assert.Equal(t, "a &lt;b&gt;", c.Convert("a <b>"))
	assert.Empty(t, c.Styles())
}

func TestConverter_HTML(t *testing.T) {
	c := NewConverter(ANSIHTML)
	out := c.Convert("\x1b[31mred\x1b[0m <tag>")
	assert.Contains(t, out, "term-fg31")
	assert.Contains(t, out, "red")
	assert.NotContains(t, out, "\x1b")
	assert.NotContains(t, out, "<tag>")
	assert.NotEmpty(t, c.Styles())
}

func TestProcessCSS_DefaultOnly(t *testing.T) {
	css, err := ProcessCSS("body {}", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "body {}", css)
}

func TestProcessCSS_CustomAndANSI(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.css")
	require.NoError(t, os.WriteFile(custom, []byte("h1 { color: red; }"), 0o600))

	css, err := ProcessCSS("body {}", []string{custom}, []string{".a {}", ".b {}"})
	require.NoError(t, err)

	want := "body {}" +
		"\n/******************************" +
		"\n * CUSTOM CSS" +
		"\n * " + custom +
		"\n ******************************/\n\n" +
		"h1 { color: red; }" +
		"\n/******************************\n * ANSI2HTML STYLES\n ******************************/\n\n.a {}\n.b {}"
	assert.Equal(t, want, css)
}

func TestProcessCSS_MissingFile(t *testing.T) {
	_, err := ProcessCSS("", []string{filepath.Join(t.TempDir(), "nope.css")}, nil)
	assert.Error(t, err)
}

func TestCleanupUnserializable(t *testing.T) {
	in := map[string]any{
		"ok":   []int{1, 2},
		"chan": make(chan int),
		"fn":   func() {},
	}
	out := CleanupUnserializable(in)

	assert.Equal(t, []int{1, 2}, out["ok"])
	assert.IsType(t, "", out["chan"])
	assert.IsType(t, "", out["fn"])
	// input untouched
	assert.IsType(t, make(chan int), in["chan"])
}

func TestDeprecated_LogsWarning(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	Deprecated("old thing")

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=WARN"), out)
	assert.Contains(t, out, "category=deprecation")
}
