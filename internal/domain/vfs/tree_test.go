package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmptyPathIsRoot(t *testing.T) {
	trees := []Tree{NewTree(nil), DefaultTree()}
	for _, tree := range trees {
		n, ok := tree.Resolve(nil)
		require.True(t, ok)
		assert.Same(t, tree.Root(), n)

		n, ok = tree.Resolve(Path{})
		require.True(t, ok)
		assert.Equal(t, TypeFolder, n.Type())
	}
}

func TestResolve(t *testing.T) {
	tree := DefaultTree()

	n, ok := tree.Resolve(Path{"C:", "Documents", "README.md"})
	require.True(t, ok)
	assert.Equal(t, TypeFile, n.Type())

	_, ok = tree.Resolve(Path{"C:", "Documents", "README.md", "child"})
	assert.False(t, ok, "files have no children")

	_, ok = tree.Resolve(Path{"C:", "Nope"})
	assert.False(t, ok)
}

func TestCreateFile(t *testing.T) {
	tree := DefaultTree()
	docs := Path{"C:", "Documents"}

	next, ok := tree.CreateFile(docs, "a.txt", "hello")
	require.True(t, ok)

	f, ok := next.ResolveFile(docs.Join("a.txt"))
	require.True(t, ok)
	assert.Equal(t, int64(5), f.Size)
	assert.Equal(t, "hello", f.Text())
	assert.Equal(t, "txt", f.Extension)

	_, ok = tree.Resolve(docs.Join("a.txt"))
	assert.False(t, ok, "original snapshot must be untouched")
}

func TestCreateFileOverwritesFile(t *testing.T) {
	tree, ok := DefaultTree().CreateFile(Path{"C:"}, "a.txt", "one")
	require.True(t, ok)
	tree, ok = tree.CreateFile(Path{"C:"}, "a.txt", "three")
	require.True(t, ok)

	f, _ := tree.ResolveFile(Path{"C:", "a.txt"})
	assert.Equal(t, "three", f.Text())
	assert.Equal(t, int64(5), f.Size)
}

func TestCreateFileFailures(t *testing.T) {
	tree := DefaultTree()

	tests := []struct {
		name     string
		path     Path
		fileName string
	}{
		{"missing folder", Path{"C:", "Missing"}, "a.txt"},
		{"path is a file", Path{"C:", "Documents", "README.md"}, "a.txt"},
		{"name is a folder", Path{"C:"}, "Documents"},
		{"invalid name", Path{"C:"}, "a/b"},
		{"empty name", Path{"C:"}, ""},
		{"inside recycle bin", Path{RecycleBinName}, "a.txt"},
		{"recycle bin name", Path{}, RecycleBinName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := tree.CreateFile(tt.path, tt.fileName, "x")
			assert.False(t, ok)
			assert.True(t, next.Equal(tree))
		})
	}
}

func TestUpdateFile(t *testing.T) {
	tree := DefaultTree()
	docs := Path{"C:", "Documents"}

	next, ok := tree.UpdateFile(docs, "todo.txt", "done")
	require.True(t, ok)
	f, _ := next.ResolveFile(docs.Join("todo.txt"))
	assert.Equal(t, "done", f.Text())
	assert.Equal(t, int64(4), f.Size)

	_, ok = tree.UpdateFile(docs, "missing.txt", "x")
	assert.False(t, ok)

	_, ok = tree.UpdateFile(Path{"C:"}, "Documents", "x")
	assert.False(t, ok, "folders cannot be updated")
}

func TestCreateFolderAndRename(t *testing.T) {
	tree := DefaultTree()

	next, ok := tree.CreateFolder(Path{"C:"}, "Music")
	require.True(t, ok)
	assert.True(t, IsFolder(mustResolve(t, next, Path{"C:", "Music"})))

	_, ok = next.CreateFolder(Path{"C:"}, "Music")
	assert.False(t, ok, "name already taken")

	renamed, ok := next.Rename(Path{"C:", "Documents"}, "todo.txt", "todo.md")
	require.True(t, ok)
	f, ok := renamed.ResolveFile(Path{"C:", "Documents", "todo.md"})
	require.True(t, ok)
	assert.Equal(t, "md", f.Extension)
	_, ok = renamed.Resolve(Path{"C:", "Documents", "todo.txt"})
	assert.False(t, ok)

	_, ok = renamed.Rename(Path{"C:", "Documents"}, "todo.md", "README.md")
	assert.False(t, ok, "sibling clash")

	_, ok = renamed.Rename(Path{"C:", "Documents"}, "ghost.txt", "x.txt")
	assert.False(t, ok)
}

func TestCopyOnWriteSharesUntouchedSubtrees(t *testing.T) {
	tree := DefaultTree()
	next, ok := tree.CreateFile(Path{"C:", "Documents"}, "a.txt", "x")
	require.True(t, ok)

	before := mustResolve(t, tree, Path{"C:", "Pictures"})
	after := mustResolve(t, next, Path{"C:", "Pictures"})
	assert.Same(t, before, after)
	assert.NotSame(t, tree.Root(), next.Root())
}

func TestParsePath(t *testing.T) {
	assert.Equal(t, Path{"C:", "Documents"}, ParsePath("/C:/Documents/"))
	assert.Equal(t, Path{}, ParsePath(""))
	assert.Equal(t, "C:/Documents", Path{"C:", "Documents"}.String())
	assert.True(t, ParsePath("a//b").Equal(Path{"a", "b"}))
}

func TestValidNameMatchesParsePath(t *testing.T) {
	for _, name := range []string{"notes", "Recycle Bin", "a.b", "C:"} {
		assert.True(t, ValidName(name), name)
		assert.Equal(t, Path{name}, ParsePath(name))
	}
	for _, name := range []string{"", " ", "notes ", " notes", "\tx", ".", "..", "a/b", "a\\b"} {
		assert.False(t, ValidName(name), "%q", name)
	}

	tree, ok := DefaultTree().CreateFolder(Path{"C:"}, "notes ")
	assert.False(t, ok)
	assert.True(t, tree.Equal(DefaultTree()))
}

func mustResolve(t *testing.T, tree Tree, p Path) Node {
	t.Helper()
	n, ok := tree.Resolve(p)
	require.True(t, ok, "resolve %s", p)
	return n
}
