package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
)

// Resolve returns the node at ?path=a/b. The empty path is the root.
func (h *Handlers) Resolve(c *gin.Context) {
	p := vfs.ParsePath(c.Query("path"))
	n, ok := desktop(c).Resolve(p)
	if !ok {
		h.result(c, "fs.resolve", false, gin.H{"path": p})
		return
	}
	h.result(c, "fs.resolve", true, gin.H{"path": p, "node": vfs.ToWire(n)})
}

// CreateFile creates a text file.
func (h *Handlers) CreateFile(c *gin.Context) {
	var req FileRequest
	if !bind(c, &req) {
		return
	}
	ok := desktop(c).CreateFile(req.Path, req.Name, req.Content)
	h.result(c, "fs.create_file", ok, nil)
}

// UpdateFile replaces the content of an existing file.
func (h *Handlers) UpdateFile(c *gin.Context) {
	var req FileRequest
	if !bind(c, &req) {
		return
	}
	ok := desktop(c).UpdateFile(req.Path, req.Name, req.Content)
	h.result(c, "fs.update_file", ok, nil)
}

// CreateFolder creates an empty folder.
func (h *Handlers) CreateFolder(c *gin.Context) {
	var req EntryRequest
	if !bind(c, &req) {
		return
	}
	ok := desktop(c).CreateFolder(req.Path, req.Name)
	h.result(c, "fs.create_folder", ok, nil)
}

// Rename renames an entry within its folder.
func (h *Handlers) Rename(c *gin.Context) {
	var req RenameRequest
	if !bind(c, &req) {
		return
	}
	ok := desktop(c).Rename(req.Path, req.From, req.To)
	h.result(c, "fs.rename", ok, nil)
}

// Search matches ?pattern= against every live path.
func (h *Handlers) Search(c *gin.Context) {
	pattern := c.Query("pattern")
	if pattern == "" {
		badRequest(c, "pattern is required")
		return
	}
	matches, err := desktop(c).Search(pattern)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if matches == nil {
		matches = []vfs.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// Activate double-clicks an entry or a desktop icon.
func (h *Handlers) Activate(c *gin.Context) {
	var req ActivateRequest
	if !bind(c, &req) {
		return
	}
	d := desktop(c)
	if req.Icon {
		c.JSON(http.StatusOK, d.ActivateIcon(req.Name))
		return
	}
	c.JSON(http.StatusOK, d.Activate(req.Path, req.Name))
}

// Preview renders the file at ?path=folder/name.
func (h *Handlers) Preview(c *gin.Context) {
	p := vfs.ParsePath(c.Query("path"))
	if len(p) == 0 {
		badRequest(c, "path must name a file")
		return
	}
	preview, ok := desktop(c).Preview(p[:len(p)-1], p[len(p)-1])
	if !ok {
		h.result(c, "fs.preview", false, nil)
		return
	}
	h.result(c, "fs.preview", true, gin.H{"preview": preview})
}

// Recycle bin

// MoveToRecycleBin moves an entry into the recycle bin.
func (h *Handlers) MoveToRecycleBin(c *gin.Context) {
	var req EntryRequest
	if !bind(c, &req) {
		return
	}
	ok := desktop(c).MoveToRecycleBin(req.Path, req.Name)
	h.result(c, "fs.recycle", ok, nil)
}

// ListRecycleBin lists the recycle bin, newest first.
func (h *Handlers) ListRecycleBin(c *gin.Context) {
	entries := desktop(c).ListRecycleBin()
	if entries == nil {
		entries = []vfs.RecycleEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// RestoreFromRecycleBin puts a recycled entry back where it came from.
func (h *Handlers) RestoreFromRecycleBin(c *gin.Context) {
	name := c.Param("name")
	ok := desktop(c).RestoreFromRecycleBin(name)
	h.result(c, "fs.restore", ok, gin.H{"name": name})
}

// EmptyRecycleBin permanently drops everything in the recycle bin.
func (h *Handlers) EmptyRecycleBin(c *gin.Context) {
	h.result(c, "fs.empty_bin", desktop(c).EmptyRecycleBin(), nil)
}
