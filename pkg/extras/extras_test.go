package extras

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_Defaults(t *testing.T) {
	tests := []struct {
		name string
		got  Extra
		want Extra
	}{
		{"png", PNG("aGVsbG8=", ""), Extra{Name: "Image", FormatType: FormatImage, Content: "aGVsbG8=", MimeType: "image/png", Extension: "png"}},
		{"jpg", JPG("x", "shot"), Extra{Name: "shot", FormatType: FormatImage, Content: "x", MimeType: "image/jpeg", Extension: "jpg"}},
		{"svg", SVG("<svg/>", ""), Extra{Name: "Image", FormatType: FormatImage, Content: "<svg/>", MimeType: "image/svg+xml", Extension: "svg"}},
		{"text", Text("hello", ""), Extra{Name: "Text", FormatType: FormatText, Content: "hello", MimeType: "text/plain", Extension: "txt"}},
		{"url", URL("https://example.com", ""), Extra{Name: "URL", FormatType: FormatURL, Content: "https://example.com"}},
		{"mp4", MP4("x", ""), Extra{Name: "Video", FormatType: FormatVideo, Content: "x", MimeType: "video/mp4", Extension: "mp4"}},
		{"html", HTML("<b>x</b>"), Extra{FormatType: FormatHTML, Content: "<b>x</b>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestJSON_KeepsValue(t *testing.T) {
	e := JSON(map[string]int{"a": 1}, "")
	assert.Equal(t, "JSON", e.Name)
	assert.Equal(t, "application/json", e.MimeType)
	assert.Equal(t, map[string]int{"a": 1}, e.Content)
}
