package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tree := DefaultTree()
	tree, _, ok := tree.MoveToRecycleBin(Path{"C:", "Documents"}, "todo.txt", deletedAt)
	require.True(t, ok)

	data, err := Encode(tree)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))

	entries := decoded.RecycleEntries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].DeletedAt.Equal(deletedAt))
	assert.Equal(t, Path{"C:", "Documents"}, entries[0].OriginalPath)

	restored, ok := decoded.RestoreFromRecycleBin(entries[0].Name)
	require.True(t, ok)
	f, ok := restored.ResolveFile(Path{"C:", "Documents", "todo.txt"})
	require.True(t, ok)
	assert.Equal(t, int64(38), f.Size)
}

func TestEncodeIsDeterministic(t *testing.T) {
	a, err := Encode(DefaultTree())
	require.NoError(t, err)
	b, err := Encode(DefaultTree())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{`},
		{"wrong version", `{"version":9,"root":{"type":"folder"}}`},
		{"missing root", `{"version":1}`},
		{"root is a file", `{"version":1,"root":{"type":"file","size":1}}`},
		{"unknown type", `{"version":1,"root":{"type":"folder","children":{"x":{"type":"socket"}}}}`},
		{"negative size", `{"version":1,"root":{"type":"folder","children":{"x":{"type":"file","size":-1}}}}`},
		{"bad name", `{"version":1,"root":{"type":"folder","children":{"a/b":{"type":"folder"}}}}`},
		{"bin is a file", `{"version":1,"root":{"type":"folder","children":{"Recycle Bin":{"type":"file"}}}}`},
		{"shortcut without target", `{"version":1,"root":{"type":"folder","children":{"s":{"type":"shortcut"}}}}`},
		{"shortcut with two targets", `{"version":1,"root":{"type":"folder","children":{"s":{"type":"shortcut","target":{"window":"about","url":"/x"}}}}}`},
		{"recycled outside bin", `{"version":1,"root":{"type":"folder","children":{"r":{"type":"recycled","item":{"type":"file"},"original_name":"a","deleted_at":"2024-03-01T12:00:00Z"}}}}`},
		{"recycled without item", `{"version":1,"root":{"type":"folder","children":{"Recycle Bin":{"type":"folder","children":{"r":{"type":"recycled","original_name":"a","deleted_at":"2024-03-01T12:00:00Z"}}}}}}`},
		{"recycled below a bin folder", `{"version":1,"root":{"type":"folder","children":{"Recycle Bin":{"type":"folder","children":{"sub":{"type":"folder","children":{"r":{"type":"recycled","item":{"type":"file"},"original_name":"a","deleted_at":"2024-03-01T12:00:00Z"}}}}}}}}`},
		{"recycled in a nested bin name", `{"version":1,"root":{"type":"folder","children":{"C:":{"type":"folder","children":{"Recycle Bin":{"type":"folder","children":{"r":{"type":"recycled","item":{"type":"file"},"original_name":"a","deleted_at":"2024-03-01T12:00:00Z"}}}}}}}}`},
		{"nested recycled", `{"version":1,"root":{"type":"folder","children":{"Recycle Bin":{"type":"folder","children":{"r":{"type":"recycled","item":{"type":"recycled"},"original_name":"a","deleted_at":"2024-03-01T12:00:00Z"}}}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDecodeAcceptsMinimalTree(t *testing.T) {
	tree, err := Decode([]byte(`{"version":1,"root":{"type":"folder"}}`))
	require.NoError(t, err)
	assert.Empty(t, tree.Root().Children)
}

func TestDecodeAcceptsRecycleEntries(t *testing.T) {
	data := `{"version":1,"root":{"type":"folder","children":{"Recycle Bin":{"type":"folder","children":{` +
		`"a.txt":{"type":"recycled","item":{"type":"file","extension":"txt","size":2,"content":"hi"},` +
		`"original_path":["C:","Documents"],"original_name":"a.txt","deleted_at":"2024-03-01T12:00:00Z"}}}}}}`

	tree, err := Decode([]byte(data))
	require.NoError(t, err)

	entries := tree.RecycleEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].OriginalName)
	assert.Equal(t, Path{"C:", "Documents"}, entries[0].OriginalPath)
}
