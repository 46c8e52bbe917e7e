package vfs

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is a search hit.
type Match struct {
	Path Path     `json:"path"`
	Type NodeType `json:"type"`
}

// Search returns every live node whose slash-joined path matches the glob
// pattern (doublestar syntax, e.g. "**/*.txt"). The recycle bin is skipped.
// Results are in depth-first lexical order.
func (t Tree) Search(pattern string) ([]Match, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid search pattern %q", pattern)
	}

	matches := []Match{}
	var walk func(dir *Folder, prefix Path)
	walk = func(dir *Folder, prefix Path) {
		for _, name := range dir.Names() {
			if len(prefix) == 0 && name == RecycleBinName {
				continue
			}
			child := dir.Children[name]
			p := prefix.Join(name)
			if ok, _ := doublestar.Match(pattern, p.String()); ok {
				matches = append(matches, Match{Path: p, Type: child.Type()})
			}
			if sub, isDir := child.(*Folder); isDir {
				walk(sub, p)
			}
		}
	}
	walk(t.Root(), Path{})

	return matches, nil
}

// Walk visits every live node below the root in depth-first lexical order.
func (t Tree) Walk(fn func(p Path, n Node)) {
	var walk func(dir *Folder, prefix Path)
	walk = func(dir *Folder, prefix Path) {
		for _, name := range dir.Names() {
			child := dir.Children[name]
			p := prefix.Join(name)
			fn(p, child)
			if sub, isDir := child.(*Folder); isDir {
				walk(sub, p)
			}
		}
	}
	walk(t.Root(), Path{})
}
