package vfs

import (
	"fmt"
	"sort"
	"time"
)

// RecycleEntry describes one item in the recycle bin.
type RecycleEntry struct {
	Name         string    `json:"name"`
	OriginalPath Path      `json:"original_path"`
	OriginalName string    `json:"original_name"`
	DeletedAt    time.Time `json:"deleted_at"`
	IsFolder     bool      `json:"is_folder"`
	Size         int64     `json:"size"`
}

// RecycleBin returns the root-level recycle folder if it exists.
func (t Tree) RecycleBin() (*Folder, bool) {
	dir, ok := t.Root().Children[RecycleBinName].(*Folder)
	return dir, ok
}

// MoveToRecycleBin moves the child name of the folder at p into the
// recycle bin, creating the bin on first use. The returned string is the
// collision-free name the entry was stored under.
func (t Tree) MoveToRecycleBin(p Path, name string, now time.Time) (Tree, string, bool) {
	if !t.writable(p, name) {
		return t, "", false
	}
	dir, ok := t.ResolveFolder(p)
	if !ok {
		return t, "", false
	}
	item, ok := dir.Children[name]
	if !ok {
		return t, "", false
	}

	detached, ok := t.rewrite(p, func(d *Folder) bool {
		delete(d.Children, name)
		return true
	})
	if !ok {
		return t, "", false
	}

	root := detached.Root().shallowCopy()
	bin, exists := root.Children[RecycleBinName].(*Folder)
	if exists {
		bin = bin.shallowCopy()
	} else {
		bin = NewFolder()
	}

	entryName := recycleName(bin, name, now)
	bin.Children[entryName] = &Recycled{
		Item:         item,
		OriginalPath: p.Clone(),
		OriginalName: name,
		DeletedAt:    now,
	}
	root.Children[RecycleBinName] = bin

	return Tree{root: root}, entryName, true
}

// RestoreFromRecycleBin puts the entry back at its original location under
// its original name. An item already occupying that name is overwritten.
func (t Tree) RestoreFromRecycleBin(entryName string) (Tree, bool) {
	bin, ok := t.RecycleBin()
	if !ok {
		return t, false
	}
	rec, ok := bin.Children[entryName].(*Recycled)
	if !ok {
		return t, false
	}
	if !t.writable(rec.OriginalPath, rec.OriginalName) {
		return t, false
	}

	restored, ok := t.rewrite(rec.OriginalPath, func(dir *Folder) bool {
		dir.Children[rec.OriginalName] = rec.Item
		return true
	})
	if !ok {
		return t, false
	}

	root := restored.Root().shallowCopy()
	nextBin := root.Children[RecycleBinName].(*Folder).shallowCopy()
	delete(nextBin.Children, entryName)
	root.Children[RecycleBinName] = nextBin

	return Tree{root: root}, true
}

// EmptyRecycleBin drops every entry. It fails without creating anything
// when the bin does not exist.
func (t Tree) EmptyRecycleBin() (Tree, bool) {
	if _, ok := t.RecycleBin(); !ok {
		return t, false
	}
	root := t.Root().shallowCopy()
	root.Children[RecycleBinName] = NewFolder()
	return Tree{root: root}, true
}

// RecycleEntries lists the bin contents, most recently deleted first.
func (t Tree) RecycleEntries() []RecycleEntry {
	bin, ok := t.RecycleBin()
	if !ok {
		return []RecycleEntry{}
	}

	entries := make([]RecycleEntry, 0, len(bin.Children))
	for name, n := range bin.Children {
		rec, ok := n.(*Recycled)
		if !ok {
			continue
		}
		entry := RecycleEntry{
			Name:         name,
			OriginalPath: rec.OriginalPath.Clone(),
			OriginalName: rec.OriginalName,
			DeletedAt:    rec.DeletedAt,
			IsFolder:     IsFolder(rec.Item),
		}
		if f, isFile := rec.Item.(*File); isFile {
			entry.Size = f.Size
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DeletedAt.Equal(entries[j].DeletedAt) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].DeletedAt.After(entries[j].DeletedAt)
	})
	return entries
}

func recycleName(bin *Folder, name string, now time.Time) string {
	candidate := fmt.Sprintf("%s_%d", name, now.UnixMilli())
	for i := 1; ; i++ {
		if _, taken := bin.Children[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d-%d", name, now.UnixMilli(), i)
	}
}
