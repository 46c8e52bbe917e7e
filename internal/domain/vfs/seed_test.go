package vfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSeed = `
entries:
  - path: C:/Documents/notes.txt
    content: "hello"
  - path: C:/Music
    folder: true
  - path: C:/Pictures/cat.png
    size: 1024
  - path: C:/Desktop/About
    shortcut:
      window: about
`

const tomlSeed = `
[[entries]]
path = "C:/Documents/notes.txt"
content = "hello"

[[entries]]
path = "C:/Music"
folder = true

[[entries]]
path = "C:/Pictures/cat.png"
size = 1024

[[entries]]
path = "C:/Desktop/About"
shortcut = { window = "about" }
`

const jsonSeed = `{"entries":[
  {"path":"C:/Documents/notes.txt","content":"hello"},
  {"path":"C:/Music","folder":true},
  {"path":"C:/Pictures/cat.png","size":1024},
  {"path":"C:/Desktop/About","shortcut":{"window":"about"}}
]}`

func TestParseSeedFormats(t *testing.T) {
	formats := map[string]string{
		"yaml": yamlSeed,
		"toml": tomlSeed,
		".json": jsonSeed,
	}

	for format, doc := range formats {
		t.Run(format, func(t *testing.T) {
			seed, err := ParseSeed([]byte(doc), format)
			require.NoError(t, err)
			require.Len(t, seed.Entries, 4)

			tree, err := seed.Build()
			require.NoError(t, err)

			f, ok := tree.ResolveFile(Path{"C:", "Documents", "notes.txt"})
			require.True(t, ok)
			assert.Equal(t, "hello", f.Text())
			assert.Equal(t, int64(5), f.Size)

			img, ok := tree.ResolveFile(Path{"C:", "Pictures", "cat.png"})
			require.True(t, ok)
			assert.Nil(t, img.Content)
			assert.Equal(t, int64(1024), img.Size)
			assert.Equal(t, "png", img.Extension)

			n, ok := tree.Resolve(Path{"C:", "Desktop", "About"})
			require.True(t, ok)
			sc, ok := n.(*Shortcut)
			require.True(t, ok)
			assert.Equal(t, "about", sc.Target.Window)

			assert.True(t, IsFolder(mustResolve(t, tree, Path{"C:", "Music"})))
		})
	}
}

func TestParseSeedUnsupportedFormat(t *testing.T) {
	_, err := ParseSeed([]byte("x"), "ini")
	assert.Error(t, err)
}

func TestSeedBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		seed Seed
	}{
		{"empty path", Seed{Entries: []SeedEntry{{Path: "/"}}}},
		{"file as parent", Seed{Entries: []SeedEntry{
			{Path: "C:/a.txt", Content: strPtr("x")},
			{Path: "C:/a.txt/b.txt", Content: strPtr("y")},
		}}},
		{"bad shortcut", Seed{Entries: []SeedEntry{{Path: "C:/s", Shortcut: &ShortcutTarget{}}}}},
		{"recycle bin", Seed{Entries: []SeedEntry{{Path: "Recycle Bin/a.txt", Content: strPtr("x")}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.seed.Build()
			assert.Error(t, err)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlSeed), 0o644))

	tree, err := LoadSeedFile(path)
	require.NoError(t, err)
	_, ok := tree.Resolve(Path{"C:", "Documents", "notes.txt"})
	assert.True(t, ok)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "a.txt"), []byte("plain text"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "deep", "b.md"), []byte("# title"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("secret"), 0o644))

	seed, err := ImportDir(context.Background(), dir, ImportOptions{Into: Path{"C:"}, MaxContent: 1024})
	require.NoError(t, err)

	tree, err := seed.Build()
	require.NoError(t, err)

	a, ok := tree.ResolveFile(Path{"C:", "notes", "a.txt"})
	require.True(t, ok)
	assert.Equal(t, "plain text", a.Text())

	b, ok := tree.ResolveFile(Path{"C:", "notes", "deep", "b.md"})
	require.True(t, ok)
	assert.Equal(t, "# title", b.Text())

	img, ok := tree.ResolveFile(Path{"C:", "image.png"})
	require.True(t, ok)
	assert.Nil(t, img.Content, "binary files keep only their size")
	assert.Equal(t, int64(16), img.Size)

	_, ok = tree.Resolve(Path{"C:", ".hidden"})
	assert.False(t, ok)
}

func TestImportDirCancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ImportDir(ctx, dir, ImportOptions{})
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
