// Package extras describes auxiliary attachments (images, text, JSON, links,
// video, raw HTML) that a test can attach to its entry in the HTML report.
package extras

// Format identifies how an extra is rendered.
type Format string

const (
	FormatHTML  Format = "html"
	FormatImage Format = "image"
	FormatJSON  Format = "json"
	FormatText  Format = "text"
	FormatURL   Format = "url"
	FormatVideo Format = "video"
)

// Extra is one attachment. Content is format-dependent: arbitrary values for
// JSON, a string or []byte for text, base64 data or a path/link for media.
// The report generator replaces Content with a data URI or asset path.
type Extra struct {
	Name       string `json:"name,omitempty"`
	FormatType Format `json:"format_type"`
	Content    any    `json:"content"`
	MimeType   string `json:"mime_type,omitempty"`
	Extension  string `json:"extension,omitempty"`
}

// New builds an extra of any format.
func New(content any, format Format, name, mimeType, extension string) Extra {
	return Extra{
		Name:       name,
		FormatType: format,
		Content:    content,
		MimeType:   mimeType,
		Extension:  extension,
	}
}

// HTML attaches raw markup, shown inline.
func HTML(content string) Extra {
	return New(content, FormatHTML, "", "", "")
}

// Image attaches an image. Empty arguments fall back to a PNG named "Image".
func Image(content, name, mimeType, extension string) Extra {
	return New(content, FormatImage, or(name, "Image"), or(mimeType, "image/png"), or(extension, "png"))
}

func PNG(content, name string) Extra {
	return Image(content, name, "image/png", "png")
}

func JPG(content, name string) Extra {
	return Image(content, name, "image/jpeg", "jpg")
}

func SVG(content, name string) Extra {
	return Image(content, name, "image/svg+xml", "svg")
}

// JSON attaches any JSON-encodable value.
func JSON(content any, name string) Extra {
	return New(content, FormatJSON, or(name, "JSON"), "application/json", "json")
}

// Text attaches plain text. content may be a string or []byte.
func Text(content any, name string) Extra {
	return New(content, FormatText, or(name, "Text"), "text/plain", "txt")
}

// URL attaches a link.
func URL(content, name string) Extra {
	return New(content, FormatURL, or(name, "URL"), "", "")
}

// Video attaches a video. Empty arguments fall back to an MP4 named "Video".
func Video(content, name, mimeType, extension string) Extra {
	return New(content, FormatVideo, or(name, "Video"), or(mimeType, "video/mp4"), or(extension, "mp4"))
}

func MP4(content, name string) Extra {
	return Video(content, name, "", "")
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
