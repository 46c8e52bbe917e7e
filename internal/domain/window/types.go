package window

import (
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// Kind identifies what a window shows.
type Kind string

const (
	KindExplorer    Kind = "explorer"
	KindNotepad     Kind = "notepad"
	KindRecycleBin  Kind = "recycle-bin"
	KindAbout       Kind = "about"
	KindImageViewer Kind = "image-viewer"
	KindPDFViewer   Kind = "pdf-viewer"
)

// Kinds lists every window kind.
var Kinds = []Kind{KindExplorer, KindNotepad, KindRecycleBin, KindAbout, KindImageViewer, KindPDFViewer}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Point is a desktop coordinate in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window or viewport size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Payload carries kind-specific window state.
type Payload struct {
	// Path is the folder an explorer starts in, or the folder holding the
	// file a viewer or editor shows.
	Path []string `json:"path,omitempty"`
	// Name is the file shown by an editor or viewer.
	Name string `json:"name,omitempty"`
	// Content is the text loaded into a notepad.
	Content *string `json:"content,omitempty"`
}

// Window is one rectangle on the desktop.
type Window struct {
	ID        id.WindowID `json:"id"`
	Title     string      `json:"title"`
	Kind      Kind        `json:"kind"`
	Position  Point       `json:"position"`
	Size      *Size       `json:"size,omitempty"`
	Minimized bool        `json:"minimized"`
	Z         int64       `json:"z"`
	Payload   *Payload    `json:"payload,omitempty"`

	seq int64
}

func (w *Window) clone() Window {
	out := *w
	if w.Size != nil {
		s := *w.Size
		out.Size = &s
	}
	out.Payload = w.Payload.clone()
	return out
}

func (p *Payload) clone() *Payload {
	if p == nil {
		return nil
	}
	out := *p
	out.Path = append([]string(nil), p.Path...)
	if p.Content != nil {
		c := *p.Content
		out.Content = &c
	}
	return &out
}

// DefaultTitle is the title used when a window is opened without one.
func DefaultTitle(k Kind) string {
	switch k {
	case KindExplorer:
		return "File Explorer"
	case KindNotepad:
		return "Notepad"
	case KindRecycleBin:
		return "Recycle Bin"
	case KindAbout:
		return "About Me"
	case KindImageViewer:
		return "Image Viewer"
	case KindPDFViewer:
		return "Document Viewer"
	default:
		return string(k)
	}
}

// DefaultSize is the initial size for a kind. A nil size lets the client
// size the window to its content.
func DefaultSize(k Kind) *Size {
	switch k {
	case KindExplorer:
		return &Size{Width: 640, Height: 440}
	case KindNotepad:
		return &Size{Width: 560, Height: 420}
	case KindRecycleBin:
		return &Size{Width: 560, Height: 380}
	case KindImageViewer:
		return &Size{Width: 640, Height: 480}
	case KindPDFViewer:
		return &Size{Width: 720, Height: 560}
	default:
		return nil
	}
}
