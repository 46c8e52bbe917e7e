package http

import (
	"github.com/GriffinCanCode/webdesk/internal/domain/dnd"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
)

// ViewportRequest resizes the desktop viewport.
type ViewportRequest struct {
	Width  int `json:"width" binding:"required,gt=0"`
	Height int `json:"height" binding:"required,gt=0"`
}

// OpenWindowRequest opens a window. Title defaults per kind.
type OpenWindowRequest struct {
	Kind    window.Kind     `json:"kind" binding:"required"`
	Title   string          `json:"title"`
	Payload *window.Payload `json:"payload"`
}

// MoveWindowRequest places a window's top-left corner.
type MoveWindowRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ClickRequest reports a single click on a named target.
type ClickRequest struct {
	Target string `json:"target" binding:"required"`
}

// FileRequest creates or overwrites a text file.
type FileRequest struct {
	Path    []string `json:"path"`
	Name    string   `json:"name" binding:"required"`
	Content string   `json:"content"`
}

// EntryRequest addresses one entry inside a folder.
type EntryRequest struct {
	Path []string `json:"path"`
	Name string   `json:"name" binding:"required"`
}

// RenameRequest renames an entry inside a folder.
type RenameRequest struct {
	Path []string `json:"path"`
	From string   `json:"from" binding:"required"`
	To   string   `json:"to" binding:"required"`
}

// ActivateRequest double-clicks an entry. With Icon set, Name is a desktop
// icon and Path is ignored.
type ActivateRequest struct {
	Path []string `json:"path"`
	Name string   `json:"name" binding:"required"`
	Icon bool     `json:"icon"`
}

// PressRequest starts a pointer gesture on an item.
type PressRequest struct {
	Item  dnd.Item  `json:"item"`
	Point dnd.Point `json:"point"`
}

// PointerRequest carries a pointer position.
type PointerRequest struct {
	Point dnd.Point `json:"point"`
}

// ReleaseRequest ends a pointer gesture.
type ReleaseRequest struct {
	Point          dnd.Point `json:"point"`
	OverRecycleBin bool      `json:"over_recycle_bin"`
}
