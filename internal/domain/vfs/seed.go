package vfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// SeedEntry declares one node of a seed tree. Path is slash separated and
// includes the node's own name. Intermediate folders are created as needed.
type SeedEntry struct {
	Path     string          `json:"path" yaml:"path" toml:"path"`
	Folder   bool            `json:"folder,omitempty" yaml:"folder,omitempty" toml:"folder,omitempty"`
	Content  *string         `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
	Size     int64           `json:"size,omitempty" yaml:"size,omitempty" toml:"size,omitempty"`
	Shortcut *ShortcutTarget `json:"shortcut,omitempty" yaml:"shortcut,omitempty" toml:"shortcut,omitempty"`
}

// Seed is the on-disk description of a starting tree.
type Seed struct {
	Entries []SeedEntry `json:"entries" yaml:"entries" toml:"entries"`
}

// ParseSeed decodes a seed document. format is a file extension
// ("yaml", "yml", "toml" or "json").
func ParseSeed(data []byte, format string) (*Seed, error) {
	var seed Seed
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &seed)
	case "toml":
		err = toml.Unmarshal(data, &seed)
	case "json":
		err = sonic.Unmarshal(data, &seed)
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s seed: %w", format, err)
	}
	return &seed, nil
}

// LoadSeedFile reads and builds the tree described by a seed file.
func LoadSeedFile(path string) (Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tree{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	seed, err := ParseSeed(data, filepath.Ext(path))
	if err != nil {
		return Tree{}, err
	}
	return seed.Build()
}

// Build materializes the seed into a tree.
func (s *Seed) Build() (Tree, error) {
	t := NewTree(nil)
	for i, e := range s.Entries {
		p := ParsePath(e.Path)
		if len(p) == 0 {
			return Tree{}, fmt.Errorf("entry %d: empty path", i)
		}
		parent, name := p[:len(p)-1], p[len(p)-1]

		var err error
		if t, err = ensureFolders(t, parent); err != nil {
			return Tree{}, fmt.Errorf("entry %d: %w", i, err)
		}

		node, err := e.node(name)
		if err != nil {
			return Tree{}, fmt.Errorf("entry %d: %w", i, err)
		}
		if existing, ok := t.Resolve(p); ok && IsFolder(existing) && IsFolder(node) {
			continue
		}

		next, ok := t.PutNode(parent, name, node)
		if !ok {
			return Tree{}, fmt.Errorf("entry %d: cannot place %q", i, e.Path)
		}
		t = next
	}
	return t, nil
}

func (e SeedEntry) node(name string) (Node, error) {
	switch {
	case e.Folder:
		return NewFolder(), nil
	case e.Shortcut != nil:
		if (e.Shortcut.Window == "") == (e.Shortcut.URL == "") {
			return nil, fmt.Errorf("shortcut %q needs exactly one of window or url", name)
		}
		return &Shortcut{Target: *e.Shortcut}, nil
	case e.Content != nil:
		return NewFile(name, *e.Content), nil
	default:
		if e.Size < 0 {
			return nil, fmt.Errorf("negative size for %q", name)
		}
		return &File{Extension: ExtensionOf(name), Size: e.Size}, nil
	}
}

func ensureFolders(t Tree, p Path) (Tree, error) {
	for i := range p {
		n, ok := t.Resolve(p[:i+1])
		if ok {
			if !IsFolder(n) {
				return Tree{}, fmt.Errorf("%q is not a folder", p[:i+1].String())
			}
			continue
		}
		next, created := t.CreateFolder(p[:i], p[i])
		if !created {
			return Tree{}, fmt.Errorf("cannot create folder %q", p[:i+1].String())
		}
		t = next
	}
	return t, nil
}

// ImportOptions controls ImportDir.
type ImportOptions struct {
	// Into is the tree path the directory contents are placed under.
	Into Path
	// MaxContent is the largest text file whose content is copied; larger
	// or non-text files keep only their size.
	MaxContent int64
}

// ImportDir walks a host directory and returns a seed mirroring it.
func ImportDir(ctx context.Context, dir string, opts ImportOptions) (*Seed, error) {
	var (
		mu      sync.Mutex
		entries []SeedEntry
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil || rel == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entry := SeedEntry{Path: opts.Into.Join(filepath.ToSlash(rel)).String()}
		switch {
		case d.IsDir():
			entry.Folder = true
		case d.Type().IsRegular():
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil
			}
			entry.Size = info.Size()
			if info.Size() <= opts.MaxContent && isText(p) {
				if data, readErr := os.ReadFile(p); readErr == nil {
					content := string(data)
					entry.Content = &content
				}
			}
		default:
			return nil
		}

		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", dir, err)
	}

	// parents sort before children
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return &Seed{Entries: entries}, nil
}

func isText(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
