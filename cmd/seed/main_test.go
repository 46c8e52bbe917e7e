package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
)

func TestEncodeRoundTripsEveryFormat(t *testing.T) {
	content := "hello"
	seed := &vfs.Seed{Entries: []vfs.SeedEntry{
		{Path: "C:/Notes", Folder: true},
		{Path: "C:/Notes/a.txt", Content: &content, Size: 5},
	}}

	for _, format := range []string{"yaml", "toml", "json"} {
		t.Run(format, func(t *testing.T) {
			data, err := encode(seed, format)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "seed."+format)
			require.NoError(t, os.WriteFile(path, data, 0o644))

			tree, err := vfs.LoadSeedFile(path)
			require.NoError(t, err)
			f, ok := tree.ResolveFile(vfs.Path{"C:", "Notes", "a.txt"})
			require.True(t, ok)
			assert.Equal(t, "hello", f.Text())
		})
	}
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	_, err := encode(&vfs.Seed{}, "ini")
	assert.Error(t, err)
}
