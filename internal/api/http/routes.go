package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts the API on group. session authenticates everything
// except session creation; stream is the websocket handler and may be nil.
func (h *Handlers) Register(group *gin.RouterGroup, session gin.HandlerFunc, stream gin.HandlerFunc) {
	group.POST("/sessions", h.CreateSession)

	api := group.Group("", session)

	// Desktop and windows
	api.GET("/desktop", h.GetDesktop)
	api.PUT("/desktop/viewport", h.SetViewport)
	api.POST("/desktop/click", h.Click)
	api.POST("/windows", h.OpenWindow)
	api.DELETE("/windows/:id", h.CloseWindow)
	api.POST("/windows/:id/focus", h.FocusWindow)
	api.POST("/windows/:id/minimize", h.MinimizeWindow)
	api.PUT("/windows/:id/position", h.MoveWindow)

	// File system
	api.GET("/fs", h.Resolve)
	api.POST("/fs/files", h.CreateFile)
	api.PUT("/fs/files", h.UpdateFile)
	api.POST("/fs/folders", h.CreateFolder)
	api.POST("/fs/rename", h.Rename)
	api.GET("/fs/search", h.Search)
	api.POST("/fs/activate", h.Activate)
	api.GET("/fs/preview", h.Preview)

	// Recycle bin
	api.POST("/recycle-bin", h.MoveToRecycleBin)
	api.GET("/recycle-bin", h.ListRecycleBin)
	api.POST("/recycle-bin/:name/restore", h.RestoreFromRecycleBin)
	api.DELETE("/recycle-bin", h.EmptyRecycleBin)

	// Pointer gestures
	api.POST("/drag/press", h.PressDrag)
	api.POST("/drag/move", h.MoveDrag)
	api.POST("/drag/release", h.ReleaseDrag)
	api.POST("/drag/cancel", h.CancelDrag)

	if stream != nil {
		api.GET("/stream", stream)
	}
}
