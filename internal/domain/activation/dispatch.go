// Package activation decides what double-clicking a desktop icon or a
// file-browser entry does.
package activation

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
)

// Action is the kind of effect an activation has.
type Action string

const (
	ActionNone       Action = "none"
	ActionOpenWindow Action = "open-window"
	ActionOpenURL    Action = "open-url"
)

// Result describes the effect of activating an entry.
type Result struct {
	Action  Action          `json:"action"`
	Kind    window.Kind     `json:"kind,omitempty"`
	Title   string          `json:"title,omitempty"`
	Payload *window.Payload `json:"payload,omitempty"`
	URL     string          `json:"url,omitempty"`
}

// None is the no-op result.
var None = Result{Action: ActionNone}

var byExtension = map[string]window.Kind{
	"txt":  window.KindNotepad,
	"md":   window.KindNotepad,
	"log":  window.KindNotepad,
	"json": window.KindNotepad,
	"png":  window.KindImageViewer,
	"jpg":  window.KindImageViewer,
	"jpeg": window.KindImageViewer,
	"gif":  window.KindImageViewer,
	"webp": window.KindImageViewer,
	"svg":  window.KindImageViewer,
	"pdf":  window.KindPDFViewer,
}

// KindForExtension returns the window kind registered for ext.
func KindForExtension(ext string) (window.Kind, bool) {
	k, ok := byExtension[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return k, ok
}

// Built-in desktop icons that do not live in the file system.
const (
	IconComputer   = "This PC"
	IconRecycleBin = "Recycle Bin"
	IconAbout      = "About"
)

// Icon resolves one of the built-in desktop icons.
func Icon(name string) (Result, bool) {
	switch name {
	case IconComputer:
		return Result{
			Action:  ActionOpenWindow,
			Kind:    window.KindExplorer,
			Title:   IconComputer,
			Payload: &window.Payload{Path: []string{}},
		}, true
	case IconRecycleBin:
		return Result{Action: ActionOpenWindow, Kind: window.KindRecycleBin, Title: window.DefaultTitle(window.KindRecycleBin)}, true
	case IconAbout:
		return Result{Action: ActionOpenWindow, Kind: window.KindAbout, Title: window.DefaultTitle(window.KindAbout)}, true
	default:
		return None, false
	}
}

// Entry resolves the node named name inside folder.
func Entry(folder vfs.Path, name string, n vfs.Node) Result {
	switch v := n.(type) {
	case *vfs.Folder:
		return Result{
			Action:  ActionOpenWindow,
			Kind:    window.KindExplorer,
			Title:   name,
			Payload: &window.Payload{Path: folder.Join(name)},
		}
	case *vfs.File:
		return file(folder, name, v)
	case *vfs.Shortcut:
		return shortcut(name, v.Target)
	default:
		return None
	}
}

func file(folder vfs.Path, name string, f *vfs.File) Result {
	kind, ok := KindForExtension(f.Extension)
	if !ok {
		kind, ok = sniff(f)
	}
	if !ok {
		return None
	}

	payload := &window.Payload{Path: folder.Clone(), Name: name}
	if kind == window.KindNotepad {
		text := f.Text()
		payload.Content = &text
	}
	return Result{
		Action:  ActionOpenWindow,
		Kind:    kind,
		Title:   name,
		Payload: payload,
	}
}

func shortcut(name string, target vfs.ShortcutTarget) Result {
	if target.URL != "" {
		return Result{Action: ActionOpenURL, Title: name, URL: target.URL}
	}
	kind := window.Kind(target.Window)
	if !kind.Valid() {
		return None
	}
	return Result{Action: ActionOpenWindow, Kind: kind, Title: window.DefaultTitle(kind)}
}

// sniff classifies files with an unregistered extension by content.
func sniff(f *vfs.File) (window.Kind, bool) {
	if f.Content == nil || *f.Content == "" {
		return "", false
	}
	for m := mimetype.Detect([]byte(*f.Content)); m != nil; m = m.Parent() {
		switch {
		case m.Is("application/pdf"):
			return window.KindPDFViewer, true
		case strings.HasPrefix(m.String(), "image/"):
			return window.KindImageViewer, true
		case m.Is("text/plain"):
			return window.KindNotepad, true
		}
	}
	return "", false
}
