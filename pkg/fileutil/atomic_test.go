package fileutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/bashbuiltins/internal/errors"
)

// onlyEntry asserts that dir holds exactly the named file.
func onlyEntry(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{name}, names)
}

func TestAtomicWriteFile(t *testing.T) {
	tests := map[string]struct {
		data []byte
		perm os.FileMode
	}{
		"manifest":      {data: []byte("name = \"counter\"\n"), perm: 0o644},
		"empty":         {data: []byte{}, perm: 0o644},
		"binary state":  {data: []byte{0xa2, 0x01, 0x01, 0x02, 0xa0}, perm: 0o600},
		"private write": {data: []byte("x"), perm: 0o600},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out")

			require.NoError(t, AtomicWriteFile(path, tt.data, tt.perm))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.perm, info.Mode().Perm())
			onlyEntry(t, dir, "out")
		})
	}
}

func TestAtomicWriteFile_Replaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.toml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, AtomicWriteFile(path, []byte("new"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	onlyEntry(t, dir, "counter.toml")
}

func TestAtomicWriteFile_MissingDir(t *testing.T) {
	dir := t.TempDir()
	err := AtomicWriteFile(filepath.Join(dir, "missing", "file"), []byte("data"), 0o600)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAtomicWrite_WriterFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.cbor")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	boom := errors.New("encoder failed")
	err := AtomicWrite(path, 0o600, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
	onlyEntry(t, dir, "state.cbor")
}
