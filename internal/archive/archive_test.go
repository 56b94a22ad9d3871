package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"01_flat.pdf", "02_flat.pdf", "03_flat.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.7"), 0o600))
	}
	// Subdirectories are skipped.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o750))

	zipPath := filepath.Join(t.TempDir(), "filled_forms.zip")
	count, err := Pack(dir, zipPath)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"01_flat.pdf", "02_flat.pdf", "03_flat.pdf"}, names)
}

func TestPackEmptyDir(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "empty.zip")
	count, err := Pack(t.TempDir(), zipPath)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()
	assert.Empty(t, zr.File)
}

func TestPackMissingDir(t *testing.T) {
	_, err := Pack(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "out.zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read output directory")
}
