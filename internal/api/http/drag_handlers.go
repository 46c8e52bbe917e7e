package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PressDrag starts tracking a press on an icon, entry or window.
func (h *Handlers) PressDrag(c *gin.Context) {
	var req PressRequest
	if !bind(c, &req) {
		return
	}
	if req.Item.Source == "" {
		badRequest(c, "item source is required")
		return
	}
	d := desktop(c)
	d.PressDrag(req.Item, req.Point)
	c.JSON(http.StatusOK, gin.H{"state": d.DragState()})
}

// MoveDrag reports pointer movement and returns the tracker phase.
func (h *Handlers) MoveDrag(c *gin.Context) {
	var req PointerRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": desktop(c).MoveDrag(req.Point)})
}

// ReleaseDrag ends the gesture and applies its commit.
func (h *Handlers) ReleaseDrag(c *gin.Context) {
	var req ReleaseRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, desktop(c).ReleaseDrag(req.Point, req.OverRecycleBin))
}

// CancelDrag abandons the gesture in flight.
func (h *Handlers) CancelDrag(c *gin.Context) {
	d := desktop(c)
	d.CancelDrag()
	c.JSON(http.StatusOK, gin.H{"state": d.DragState()})
}
