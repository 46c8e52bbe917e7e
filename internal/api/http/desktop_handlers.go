package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
)

// GetDesktop returns the windows, taskbar, viewport and desktop icons.
func (h *Handlers) GetDesktop(c *gin.Context) {
	d := desktop(c)

	icons := []string{}
	if dir, ok := d.Tree().ResolveFolder(vfs.DesktopPath); ok {
		icons = dir.Names()
	}
	body := gin.H{
		"session_id": d.ID(),
		"viewport":   d.Viewport(),
		"windows":    d.Windows(),
		"taskbar":    d.Taskbar(),
		"icons":      icons,
		"drag":       d.DragState(),
	}
	if top, ok := d.Top(); ok {
		body["focused"] = top.ID
	}
	c.JSON(http.StatusOK, body)
}

// SetViewport resizes the viewport windows are clamped to.
func (h *Handlers) SetViewport(c *gin.Context) {
	var req ViewportRequest
	if !bind(c, &req) {
		return
	}
	vp := window.Size{Width: req.Width, Height: req.Height}
	desktop(c).SetViewport(vp)
	c.JSON(http.StatusOK, gin.H{"success": true, "viewport": vp})
}

// Click registers a click and reports whether it completed a double click.
func (h *Handlers) Click(c *gin.Context) {
	var req ClickRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"double": desktop(c).Click(req.Target)})
}

// OpenWindow opens a window of the requested kind.
func (h *Handlers) OpenWindow(c *gin.Context) {
	var req OpenWindowRequest
	if !bind(c, &req) {
		return
	}
	if !req.Kind.Valid() {
		badRequest(c, "unknown window kind")
		return
	}
	w := desktop(c).OpenWindow(req.Kind, req.Title, req.Payload)
	c.JSON(http.StatusCreated, gin.H{"success": true, "window": w})
}

// CloseWindow closes a window.
func (h *Handlers) CloseWindow(c *gin.Context) {
	wid, ok := windowID(c)
	if !ok {
		return
	}
	h.result(c, "window.close", desktop(c).CloseWindow(wid), gin.H{"window_id": wid})
}

// FocusWindow raises a window to the top.
func (h *Handlers) FocusWindow(c *gin.Context) {
	wid, ok := windowID(c)
	if !ok {
		return
	}
	w, found := desktop(c).Focus(wid)
	h.result(c, "window.focus", found, windowBody(w, found))
}

// MinimizeWindow toggles a window's minimized flag.
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	wid, ok := windowID(c)
	if !ok {
		return
	}
	w, found := desktop(c).ToggleMinimize(wid)
	h.result(c, "window.minimize", found, windowBody(w, found))
}

// MoveWindow places a window, clamped to the viewport.
func (h *Handlers) MoveWindow(c *gin.Context) {
	wid, ok := windowID(c)
	if !ok {
		return
	}
	var req MoveWindowRequest
	if !bind(c, &req) {
		return
	}
	w, found := desktop(c).MoveWindow(wid, window.Point{X: req.X, Y: req.Y})
	h.result(c, "window.move", found, windowBody(w, found))
}

func windowID(c *gin.Context) (id.WindowID, bool) {
	raw := c.Param("id")
	if raw == "" {
		badRequest(c, "window id is required")
		return "", false
	}
	return id.WindowID(raw), true
}

func windowBody(w window.Window, found bool) gin.H {
	if !found {
		return nil
	}
	return gin.H{"window": w}
}
