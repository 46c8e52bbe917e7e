package vfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deletedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMoveToRecycleBin(t *testing.T) {
	tree := DefaultTree()
	docs := Path{"C:", "Documents"}

	_, hadBin := tree.RecycleBin()
	require.False(t, hadBin)

	next, entry, ok := tree.MoveToRecycleBin(docs, "todo.txt", deletedAt)
	require.True(t, ok)
	assert.Equal(t, "todo.txt_1709294400000", entry)

	_, ok = next.Resolve(docs.Join("todo.txt"))
	assert.False(t, ok)

	bin, ok := next.RecycleBin()
	require.True(t, ok)
	rec, ok := bin.Children[entry].(*Recycled)
	require.True(t, ok)
	assert.Equal(t, docs, rec.OriginalPath)
	assert.Equal(t, "todo.txt", rec.OriginalName)
	assert.Equal(t, deletedAt, rec.DeletedAt)
	assert.Equal(t, TypeFile, rec.Item.Type())
}

func TestMoveToRecycleBinCollisionFree(t *testing.T) {
	tree, ok := DefaultTree().CreateFile(Path{"C:"}, "a.txt", "1")
	require.True(t, ok)
	tree, first, ok := tree.MoveToRecycleBin(Path{"C:"}, "a.txt", deletedAt)
	require.True(t, ok)

	tree, ok = tree.CreateFile(Path{"C:"}, "a.txt", "2")
	require.True(t, ok)
	tree, second, ok := tree.MoveToRecycleBin(Path{"C:"}, "a.txt", deletedAt)
	require.True(t, ok)

	assert.NotEqual(t, first, second)
	assert.Len(t, tree.RecycleEntries(), 2)
}

func TestMoveToRecycleBinMissingLeavesTreeUnchanged(t *testing.T) {
	tree := DefaultTree()

	tests := []struct {
		name string
		path Path
		item string
	}{
		{"missing child", Path{"C:", "Documents"}, "ghost.txt"},
		{"missing folder", Path{"C:", "Ghost"}, "a.txt"},
		{"path is a file", Path{"C:", "Documents", "README.md"}, "x"},
		{"recycle bin itself", Path{}, RecycleBinName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, entry, ok := tree.MoveToRecycleBin(tt.path, tt.item, deletedAt)
			assert.False(t, ok)
			assert.Empty(t, entry)
			assert.True(t, next.Equal(tree))
			_, hasBin := next.RecycleBin()
			assert.False(t, hasBin)
		})
	}
}

func TestRecycleThenRestoreRoundTrip(t *testing.T) {
	// Start from a tree whose bin already exists so the only difference a
	// recycle/restore pair could leave behind is in the moved item.
	base, _, ok := DefaultTree().MoveToRecycleBin(Path{"C:", "Documents"}, "todo.txt", deletedAt)
	require.True(t, ok)
	base, ok = base.EmptyRecycleBin()
	require.True(t, ok)

	for _, target := range []struct {
		path Path
		name string
	}{
		{Path{"C:", "Documents"}, "README.md"},
		{Path{"C:"}, "Pictures"},
		{Path{"C:", "Desktop"}, "Typing Trainer"},
	} {
		deleted, entry, ok := base.MoveToRecycleBin(target.path, target.name, deletedAt)
		require.True(t, ok)
		restored, ok := deleted.RestoreFromRecycleBin(entry)
		require.True(t, ok)
		assert.True(t, restored.Equal(base), "restoring %s", target.name)
	}
}

func TestRestoreOnFreshTreeLeavesEmptyBin(t *testing.T) {
	tree := DefaultTree()
	deleted, entry, ok := tree.MoveToRecycleBin(Path{"C:"}, "Documents", deletedAt)
	require.True(t, ok)

	restored, ok := deleted.RestoreFromRecycleBin(entry)
	require.True(t, ok)

	bin, ok := restored.RecycleBin()
	require.True(t, ok)
	assert.Empty(t, bin.Children)
	assert.Equal(t, tree.Root().Children[DriveName], restored.Root().Children[DriveName])
}

func TestRestoreOverwritesSameName(t *testing.T) {
	tree := DefaultTree()
	docs := Path{"C:", "Documents"}

	deleted, entry, ok := tree.MoveToRecycleBin(docs, "todo.txt", deletedAt)
	require.True(t, ok)
	replaced, ok := deleted.CreateFile(docs, "todo.txt", "replacement")
	require.True(t, ok)

	restored, ok := replaced.RestoreFromRecycleBin(entry)
	require.True(t, ok)
	f, ok := restored.ResolveFile(docs.Join("todo.txt"))
	require.True(t, ok)
	assert.Equal(t, "- water the plants\n- ship the gallery\n", f.Text())
}

func TestRestoreFailures(t *testing.T) {
	tree := DefaultTree()

	_, ok := tree.RestoreFromRecycleBin("anything")
	assert.False(t, ok, "no bin")

	deleted, entry, ok := tree.MoveToRecycleBin(Path{"C:", "Documents"}, "todo.txt", deletedAt)
	require.True(t, ok)

	_, ok = deleted.RestoreFromRecycleBin("missing")
	assert.False(t, ok, "no entry")

	gone, _, ok := deleted.MoveToRecycleBin(Path{"C:"}, "Documents", deletedAt)
	require.True(t, ok)
	next, ok := gone.RestoreFromRecycleBin(entry)
	assert.False(t, ok, "original folder no longer exists")
	assert.True(t, next.Equal(gone))
}

func TestEmptyRecycleBin(t *testing.T) {
	tree := DefaultTree()

	next, ok := tree.EmptyRecycleBin()
	assert.False(t, ok)
	_, hasBin := next.RecycleBin()
	assert.False(t, hasBin, "emptying must not create the bin")

	deleted, _, ok := tree.MoveToRecycleBin(Path{"C:"}, "Pictures", deletedAt)
	require.True(t, ok)
	emptied, ok := deleted.EmptyRecycleBin()
	require.True(t, ok)
	bin, ok := emptied.RecycleBin()
	require.True(t, ok)
	assert.Empty(t, bin.Children)
	assert.Empty(t, emptied.RecycleEntries())
}

func TestRecycleEntriesNewestFirst(t *testing.T) {
	tree := DefaultTree()
	tree, _, _ = tree.MoveToRecycleBin(Path{"C:", "Documents"}, "todo.txt", deletedAt)
	tree, _, _ = tree.MoveToRecycleBin(Path{"C:"}, "Pictures", deletedAt.Add(time.Minute))

	entries := tree.RecycleEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Pictures", entries[0].OriginalName)
	assert.True(t, entries[0].IsFolder)
	assert.Equal(t, "todo.txt", entries[1].OriginalName)
	assert.Equal(t, int64(38), entries[1].Size)
}
