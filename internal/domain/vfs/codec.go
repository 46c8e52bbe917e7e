package vfs

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// FormatVersion is written into every encoded tree.
const FormatVersion = 1

// MaxDepth bounds the nesting accepted when decoding.
const MaxDepth = 64

// ErrInvalidTree is returned when a blob decodes but does not have the
// expected node shape.
var ErrInvalidTree = errors.New("invalid file system tree")

// codec sorts map keys so equal trees encode to equal bytes.
var codec = sonic.ConfigStd

// WireNode is the tagged JSON form of a node.
type WireNode struct {
	Type NodeType `json:"type"`

	// file
	Extension string  `json:"extension,omitempty"`
	Size      int64   `json:"size,omitempty"`
	Content   *string `json:"content,omitempty"`

	// folder
	Children map[string]*WireNode `json:"children,omitempty"`

	// shortcut
	Target *ShortcutTarget `json:"target,omitempty"`

	// recycled
	Item         *WireNode  `json:"item,omitempty"`
	OriginalPath Path       `json:"original_path,omitempty"`
	OriginalName string     `json:"original_name,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

type envelope struct {
	Version int       `json:"version"`
	Root    *WireNode `json:"root"`
}

// Encode serializes the whole tree.
func Encode(t Tree) ([]byte, error) {
	data, err := codec.Marshal(envelope{Version: FormatVersion, Root: ToWire(t.Root())})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	return data, nil
}

// Decode parses and validates an encoded tree.
func Decode(data []byte) (Tree, error) {
	var env envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return Tree{}, fmt.Errorf("failed to decode tree: %w", err)
	}
	if env.Version != FormatVersion {
		return Tree{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidTree, env.Version)
	}
	if env.Root == nil || env.Root.Type != TypeFolder {
		return Tree{}, fmt.Errorf("%w: root is not a folder", ErrInvalidTree)
	}

	root, err := fromWire(env.Root, 0, false, false)
	if err != nil {
		return Tree{}, err
	}
	dir := root.(*Folder)

	if bin, ok := dir.Children[RecycleBinName]; ok && !IsFolder(bin) {
		return Tree{}, fmt.Errorf("%w: %q is not a folder", ErrInvalidTree, RecycleBinName)
	}
	return Tree{root: dir}, nil
}

// ToWire converts a node into its wire form.
func ToWire(n Node) *WireNode {
	switch v := n.(type) {
	case *File:
		w := &WireNode{Type: TypeFile, Extension: v.Extension, Size: v.Size}
		if v.Content != nil {
			c := *v.Content
			w.Content = &c
		}
		return w
	case *Folder:
		w := &WireNode{Type: TypeFolder, Children: make(map[string]*WireNode, len(v.Children))}
		for name, child := range v.Children {
			w.Children[name] = ToWire(child)
		}
		return w
	case *Shortcut:
		target := v.Target
		return &WireNode{Type: TypeShortcut, Target: &target}
	case *Recycled:
		deleted := v.DeletedAt
		return &WireNode{
			Type:         TypeRecycled,
			Item:         ToWire(v.Item),
			OriginalPath: v.OriginalPath.Clone(),
			OriginalName: v.OriginalName,
			DeletedAt:    &deleted,
		}
	default:
		return nil
	}
}

// fromWire rebuilds a node. isBin marks the root recycle bin itself and inBin
// its direct children, the one place recycled entries may appear.
func fromWire(w *WireNode, depth int, inBin, isBin bool) (Node, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: null node", ErrInvalidTree)
	}
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrInvalidTree, MaxDepth)
	}

	switch w.Type {
	case TypeFile:
		if w.Size < 0 {
			return nil, fmt.Errorf("%w: negative file size", ErrInvalidTree)
		}
		f := &File{Extension: w.Extension, Size: w.Size}
		if w.Content != nil {
			c := *w.Content
			f.Content = &c
		}
		return f, nil

	case TypeFolder:
		dir := &Folder{Children: make(map[string]Node, len(w.Children))}
		for name, child := range w.Children {
			if !ValidName(name) {
				return nil, fmt.Errorf("%w: invalid name %q", ErrInvalidTree, name)
			}
			childIsBin := depth == 0 && name == RecycleBinName
			n, err := fromWire(child, depth+1, isBin, childIsBin)
			if err != nil {
				return nil, err
			}
			if n.Type() == TypeRecycled && !isBin {
				return nil, fmt.Errorf("%w: recycle entry %q outside the recycle bin", ErrInvalidTree, name)
			}
			dir.Children[name] = n
		}
		return dir, nil

	case TypeShortcut:
		if w.Target == nil || (w.Target.Window == "") == (w.Target.URL == "") {
			return nil, fmt.Errorf("%w: shortcut needs exactly one target", ErrInvalidTree)
		}
		return &Shortcut{Target: *w.Target}, nil

	case TypeRecycled:
		if !inBin {
			return nil, fmt.Errorf("%w: recycle entry outside the recycle bin", ErrInvalidTree)
		}
		if w.Item == nil || w.Item.Type == TypeRecycled {
			return nil, fmt.Errorf("%w: recycle entry without a live item", ErrInvalidTree)
		}
		if !ValidName(w.OriginalName) || w.DeletedAt == nil {
			return nil, fmt.Errorf("%w: recycle entry missing origin", ErrInvalidTree)
		}
		item, err := fromWire(w.Item, depth+1, false, false)
		if err != nil {
			return nil, err
		}
		return &Recycled{
			Item:         item,
			OriginalPath: w.OriginalPath.Clone(),
			OriginalName: w.OriginalName,
			DeletedAt:    *w.DeletedAt,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown node type %q", ErrInvalidTree, w.Type)
	}
}
