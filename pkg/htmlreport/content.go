package htmlreport

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/dkoosis/testhtml/pkg/extras"
	"github.com/dkoosis/testhtml/pkg/host"
)

// DefaultMaxAssetFilenameLength bounds asset file names.
const DefaultMaxAssetFilenameLength = 255

// contentStrategy decides how extras and the stylesheet reach the page:
// inlined as data URIs, or written next to the report as asset files.
type contentStrategy interface {
	// dataContent stores text data and returns the reference to use.
	dataContent(content, assetName, mimeType string) (string, error)
	// mediaContent stores base64 media. Content that is not base64 is a
	// path or link and is returned unchanged.
	mediaContent(content, assetName, mimeType string) (string, error)
	// styles returns the template value for the stylesheet.
	styles() string
	selfContained() bool
}

type selfContainedContent struct {
	css string
}

func (s *selfContainedContent) dataContent(content, _, mimeType string) (string, error) {
	data := base64.StdEncoding.EncodeToString([]byte(content))
	return "data:" + mimeType + ";charset=utf-8;base64," + data, nil
}

func (s *selfContainedContent) mediaContent(content, _, mimeType string) (string, error) {
	if _, err := base64.StdEncoding.DecodeString(content); err != nil {
		slog.Warn("Self-contained HTML report includes link to external resource: " + content)
		return content, nil
	}
	return "data:" + mimeType + ";base64," + content, nil
}

func (s *selfContainedContent) styles() string { return s.css }

func (s *selfContainedContent) selfContained() bool { return true }

// assetsContent writes extras and CSS under <report dir>/assets.
type assetsContent struct {
	reportDir string
	assetsDir string
}

const assetsDirName = "assets"

func newAssetsContent(reportDir, css string) (*assetsContent, error) {
	a := &assetsContent{
		reportDir: reportDir,
		assetsDir: filepath.Join(reportDir, assetsDirName),
	}
	if _, err := a.write([]byte(css), "style.css"); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *assetsContent) dataContent(content, assetName, _ string) (string, error) {
	return a.write([]byte(content), assetName)
}

func (a *assetsContent) mediaContent(content, assetName, _ string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return content, nil
	}
	return a.write(data, assetName)
}

func (a *assetsContent) styles() string { return assetsDirName + "/style.css" }

func (a *assetsContent) selfContained() bool { return false }

// write stores data under the assets directory and returns its path
// relative to the report, with forward slashes.
func (a *assetsContent) write(data []byte, assetName string) (string, error) {
	path := filepath.Join(a.assetsDir, assetName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating assets directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing asset %s: %w", assetName, err)
	}
	rel, err := filepath.Rel(a.reportDir, path)
	if err != nil {
		return "", fmt.Errorf("relative asset path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// nonWordRe matches what may not appear in an asset file name.
var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_.]`)

// assetFilename derives a file name from the test id, the extra's index and
// the rerun index, keeping at most maxLen trailing characters.
func assetFilename(testID string, extraIndex, testIndex int, extension string, maxLen int) string {
	name := nonWordRe.ReplaceAllString(testID, "_") +
		"_" + strconv.Itoa(extraIndex) +
		"_" + strconv.Itoa(testIndex) +
		"." + extension
	r := []rune(name)
	if maxLen > 0 && len(r) > maxLen {
		r = r[len(r)-maxLen:]
	}
	return string(r)
}

// processExtras returns a copy of the report's extras with their content
// replaced by the data URI or asset path the page links to.
func (r *Report) processExtras(report *host.TestReport, testID string) ([]extras.Extra, error) {
	testIndex := 0
	if report.Rerun != nil {
		testIndex = *report.Rerun + 1
	}

	out := make([]extras.Extra, 0, len(report.Extras))
	for i, extra := range report.Extras {
		asset := assetFilename(testID, i, testIndex, extra.Extension, r.maxAssetLen)

		var err error
		switch extra.FormatType {
		case extras.FormatJSON:
			var b []byte
			b, err = json.Marshal(extra.Content)
			if err != nil {
				return nil, fmt.Errorf("encoding json extra %q: %w", extra.Name, err)
			}
			extra.Content, err = r.content.dataContent(string(b), asset, extra.MimeType)
		case extras.FormatText:
			extra.Content, err = r.content.dataContent(textContent(extra.Content), asset, extra.MimeType)
		case extras.FormatImage, extras.FormatVideo:
			extra.Content, err = r.content.mediaContent(mediaContent(extra.Content), asset, extra.MimeType)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, extra)
	}
	return out, nil
}

func textContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []byte:
		return string(c)
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}

// mediaContent accepts raw bytes as well as base64 text or a link.
func mediaContent(v any) string {
	if b, ok := v.([]byte); ok {
		return base64.StdEncoding.EncodeToString(b)
	}
	return textContent(v)
}
