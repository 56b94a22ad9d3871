// Package archive packages flattened outputs into a single zip for
// delivery.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Pack writes every regular file in dir into a zip archive at zipPath,
// stored under its base name with deflate compression. Returns the number
// of files packed.
func Pack(dir, zipPath string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read output directory: %w", err)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := addFile(zw, filepath.Join(dir, entry.Name()), entry.Name()); err != nil {
			zw.Close()
			return count, err
		}
		count++
	}

	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return count, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", name, err)
	}
	return nil
}
