package activation

import (
	"html"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
)

// MaxPreviewBytes caps the content returned in a preview.
const MaxPreviewBytes = 64 << 10

// Preview is a render-safe view of a file.
type Preview struct {
	Name      string `json:"name"`
	MIME      string `json:"mime"`
	Charset   string `json:"charset,omitempty"`
	Size      int64  `json:"size"`
	HTML      string `json:"html,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

var sanitizer = bluemonday.UGCPolicy()

// extensionMIME covers the text formats the system MIME table may lack.
var extensionMIME = map[string]string{
	"txt":  "text/plain; charset=utf-8",
	"log":  "text/plain; charset=utf-8",
	"md":   "text/markdown; charset=utf-8",
	"json": "application/json",
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
}

// mimeForExtension returns the registered type of ext, or "".
func mimeForExtension(ext string) string {
	if t, ok := extensionMIME[ext]; ok {
		return t
	}
	return mime.TypeByExtension("." + ext)
}

// PreviewFile builds a preview. Files without content get metadata only.
func PreviewFile(name string, f *vfs.File) Preview {
	p := Preview{Name: name, Size: f.Size, MIME: "application/octet-stream"}
	byExt := mimeForExtension(f.Extension)
	if f.Content == nil {
		if byExt != "" {
			p.MIME = byExt
		}
		return p
	}

	data := []byte(*f.Content)
	if len(data) > MaxPreviewBytes {
		data = data[:runeBoundary(data, MaxPreviewBytes)]
		p.Truncated = true
	}
	p.Charset = detectCharset(data)

	// The extension decides; content is sniffed only when it is unknown.
	isHTML := f.Extension == "html" || f.Extension == "htm"
	if byExt != "" {
		p.MIME = byExt
	} else {
		mtype := mimetype.Detect(data)
		p.MIME = mtype.String()
		isHTML = mtype.Is("text/html")
	}

	if isHTML {
		p.HTML = sanitizer.Sanitize(string(data))
	} else {
		p.HTML = "<pre>" + html.EscapeString(string(data)) + "</pre>"
	}
	return p
}

// runeBoundary moves n back to the start of the rune it falls in.
func runeBoundary(data []byte, n int) int {
	for i := 0; i < utf8.UTFMax && n > 0 && !utf8.RuneStart(data[n]); i++ {
		n--
	}
	return n
}

func detectCharset(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}
