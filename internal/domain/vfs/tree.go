package vfs

import (
	"reflect"
)

// RecycleBinName is the reserved root-level folder holding recycle entries.
const RecycleBinName = "Recycle Bin"

// Tree is an immutable snapshot of the virtual file system. Mutating
// operations return a new Tree and leave the receiver untouched; unchanged
// subtrees are shared between snapshots.
type Tree struct {
	root *Folder
}

// NewTree wraps root. A nil root yields an empty tree.
func NewTree(root *Folder) Tree {
	if root == nil {
		root = NewFolder()
	}
	return Tree{root: root}
}

// Root returns the root folder. Callers must treat it as read-only.
func (t Tree) Root() *Folder {
	if t.root == nil {
		return NewFolder()
	}
	return t.root
}

// Equal reports whether both trees hold the same nodes.
func (t Tree) Equal(o Tree) bool {
	return reflect.DeepEqual(t.Root(), o.Root())
}

// Resolve walks p from the root. The empty path yields the root; every
// intermediate segment must name a folder.
func (t Tree) Resolve(p Path) (Node, bool) {
	var cur Node = t.Root()
	for _, seg := range p {
		dir, ok := cur.(*Folder)
		if !ok {
			return nil, false
		}
		next, ok := dir.Children[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// ResolveFolder is Resolve restricted to folders.
func (t Tree) ResolveFolder(p Path) (*Folder, bool) {
	n, ok := t.Resolve(p)
	if !ok {
		return nil, false
	}
	dir, ok := n.(*Folder)
	return dir, ok
}

// ResolveFile is Resolve restricted to files.
func (t Tree) ResolveFile(p Path) (*File, bool) {
	n, ok := t.Resolve(p)
	if !ok {
		return nil, false
	}
	f, ok := n.(*File)
	return f, ok
}

// CreateFile inserts a file under the folder at p, replacing an existing
// file of the same name.
func (t Tree) CreateFile(p Path, name, content string) (Tree, bool) {
	if !t.writable(p, name) {
		return t, false
	}
	return t.rewrite(p, func(dir *Folder) bool {
		if existing, ok := dir.Children[name]; ok {
			if _, isFile := existing.(*File); !isFile {
				return false
			}
		}
		dir.Children[name] = NewFile(name, content)
		return true
	})
}

// UpdateFile replaces the content of an existing file.
func (t Tree) UpdateFile(p Path, name, content string) (Tree, bool) {
	if !t.writable(p, name) {
		return t, false
	}
	return t.rewrite(p, func(dir *Folder) bool {
		if _, ok := dir.Children[name].(*File); !ok {
			return false
		}
		dir.Children[name] = NewFile(name, content)
		return true
	})
}

// CreateFolder adds an empty folder. It fails when the name is taken.
func (t Tree) CreateFolder(p Path, name string) (Tree, bool) {
	if !t.writable(p, name) {
		return t, false
	}
	return t.rewrite(p, func(dir *Folder) bool {
		if _, taken := dir.Children[name]; taken {
			return false
		}
		dir.Children[name] = NewFolder()
		return true
	})
}

// Rename moves a child to a new name within the same folder.
func (t Tree) Rename(p Path, from, to string) (Tree, bool) {
	if !t.writable(p, from) || !t.writable(p, to) {
		return t, false
	}
	if from == to {
		_, ok := t.Resolve(p.Join(from))
		return t, ok
	}
	return t.rewrite(p, func(dir *Folder) bool {
		node, ok := dir.Children[from]
		if !ok {
			return false
		}
		if _, taken := dir.Children[to]; taken {
			return false
		}
		delete(dir.Children, from)
		if f, isFile := node.(*File); isFile {
			renamed := *f
			renamed.Extension = ExtensionOf(to)
			node = &renamed
		}
		dir.Children[to] = node
		return true
	})
}

// PutNode places an arbitrary live node under the folder at p, replacing
// whatever held that name. Seeding uses it to build trees.
func (t Tree) PutNode(p Path, name string, n Node) (Tree, bool) {
	if n == nil || n.Type() == TypeRecycled || !t.writable(p, name) {
		return t, false
	}
	return t.rewrite(p, func(dir *Folder) bool {
		dir.Children[name] = n
		return true
	})
}

// writable rejects names that are not valid and targets inside the recycle
// bin or the bin itself.
func (t Tree) writable(p Path, name string) bool {
	if !ValidName(name) {
		return false
	}
	if len(p) > 0 && p[0] == RecycleBinName {
		return false
	}
	if len(p) == 0 && name == RecycleBinName {
		return false
	}
	return true
}

// rewrite copies every folder from the root down to p, applies fn to the
// copy of the target folder and returns the new tree. If fn reports false
// or p is not a folder the receiver is returned unchanged.
func (t Tree) rewrite(p Path, fn func(*Folder) bool) (Tree, bool) {
	root, ok := rewriteFolder(t.Root(), p, fn)
	if !ok {
		return t, false
	}
	return Tree{root: root}, true
}

func rewriteFolder(dir *Folder, p Path, fn func(*Folder) bool) (*Folder, bool) {
	if len(p) == 0 {
		cp := dir.shallowCopy()
		if !fn(cp) {
			return nil, false
		}
		return cp, true
	}
	child, ok := dir.Children[p[0]].(*Folder)
	if !ok {
		return nil, false
	}
	next, ok := rewriteFolder(child, p[1:], fn)
	if !ok {
		return nil, false
	}
	cp := dir.shallowCopy()
	cp.Children[p[0]] = next
	return cp, true
}
