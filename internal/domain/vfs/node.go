package vfs

import (
	"path"
	"sort"
	"strings"
	"time"
)

// NodeType tags the variant held by a Node.
type NodeType string

const (
	TypeFile     NodeType = "file"
	TypeFolder   NodeType = "folder"
	TypeShortcut NodeType = "shortcut"
	TypeRecycled NodeType = "recycled"
)

// Node is a tree node. Nodes reachable from a Tree are never mutated in
// place; every change builds new folders along the modified path.
type Node interface {
	Type() NodeType
}

// File is a leaf holding optional text content.
type File struct {
	Extension string
	Size      int64
	Content   *string
}

// Type implements Node.
func (*File) Type() NodeType { return TypeFile }

// NewFile builds a file whose extension is derived from name and whose
// size is the byte length of content.
func NewFile(name, content string) *File {
	c := content
	return &File{
		Extension: ExtensionOf(name),
		Size:      int64(len(content)),
		Content:   &c,
	}
}

// Text returns the file content or "" when the file has none.
func (f *File) Text() string {
	if f.Content == nil {
		return ""
	}
	return *f.Content
}

// Folder maps child names to nodes. Names are unique by construction.
type Folder struct {
	Children map[string]Node
}

// Type implements Node.
func (*Folder) Type() NodeType { return TypeFolder }

// NewFolder returns an empty folder.
func NewFolder() *Folder {
	return &Folder{Children: make(map[string]Node)}
}

// Child looks up a direct child by name.
func (f *Folder) Child(name string) (Node, bool) {
	n, ok := f.Children[name]
	return n, ok
}

// Names returns the child names in lexical order.
func (f *Folder) Names() []string {
	names := make([]string, 0, len(f.Children))
	for name := range f.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// shallowCopy copies the child map but shares the children themselves.
func (f *Folder) shallowCopy() *Folder {
	out := &Folder{Children: make(map[string]Node, len(f.Children)+1)}
	for name, child := range f.Children {
		out.Children[name] = child
	}
	return out
}

// ShortcutTarget is the fixed action behind a shortcut entry. Exactly one
// of Window or URL is set.
type ShortcutTarget struct {
	Window string `json:"window,omitempty" yaml:"window,omitempty" toml:"window,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
}

// Shortcut is a file-browser entry bound to a fixed action.
type Shortcut struct {
	Target ShortcutTarget
}

// Type implements Node.
func (*Shortcut) Type() NodeType { return TypeShortcut }

// Recycled wraps a node that was moved to the recycle bin together with
// the location it came from.
type Recycled struct {
	Item         Node
	OriginalPath Path
	OriginalName string
	DeletedAt    time.Time
}

// Type implements Node.
func (*Recycled) Type() NodeType { return TypeRecycled }

// IsFolder reports whether n is a live folder.
func IsFolder(n Node) bool {
	_, ok := n.(*Folder)
	return ok
}

// ExtensionOf returns the lower-cased extension of name without the dot.
func ExtensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Path addresses a node by folder names from the root. The empty path is
// the root itself.
type Path []string

// ParsePath splits a slash separated path, ignoring empty segments.
func ParsePath(s string) Path {
	parts := strings.Split(s, "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			p = append(p, part)
		}
	}
	return p
}

// String joins the segments with "/".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Join returns a new path with name appended.
func (p Path) Join(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Clone returns an independent copy.
func (p Path) Clone() Path {
	if p == nil {
		return Path{}
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Equal compares two paths segment by segment.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// ValidName reports whether name can be used as a child name. Names with
// surrounding whitespace are rejected since ParsePath trims segments.
func ValidName(name string) bool {
	if name == "" || strings.TrimSpace(name) != name || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
