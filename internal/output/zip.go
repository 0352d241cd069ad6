package output

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteZip packs every file under rootDir into destZipPath, store-only
// (no compression) per spec.md §6: "PGPatcher_Output.zip (when
// zip-output enabled) — contains all of the above, store-only
// compression."
func WriteZip(rootDir, destZipPath string) error {
	f, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("output: create zip: %w", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()

	return filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}

		header := &zip.FileHeader{
			Name:   filepath.ToSlash(rel),
			Method: zip.Store,
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header.Modified = info.ModTime()

		entryWriter, err := w.CreateHeader(header)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = entryWriter.Write(data)
		return err
	})
}
