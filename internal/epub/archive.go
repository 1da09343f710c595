package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Archive zips an emitted package tree into outputPath. The mimetype entry is
// written first with the Store method; container.xml and everything under OPS/
// follow deflated. Entry names are relative to rootDir.
func Archive(rootDir, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := writeArchive(f, rootDir); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeArchive(w io.Writer, rootDir string) error {
	zw := zip.NewWriter(w)

	// mimetype must be first and uncompressed
	if err := addFile(zw, rootDir, "mimetype", zip.Store); err != nil {
		return err
	}

	files := []string{ContainerPath}
	contentRoot := filepath.Join(rootDir, ContentDir)
	err := filepath.WalkDir(contentRoot, func(path string, d fs.DirEntry, err error) error {
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
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", contentRoot, err)
	}

	for _, name := range files {
		if err := addFile(zw, rootDir, name, zip.Deflate); err != nil {
			return err
		}
	}

	return zw.Close()
}

// addFile copies rootDir/name into the archive under name using method.
func addFile(zw *zip.Writer, rootDir, name string, method uint16) error {
	src := filepath.Join(rootDir, filepath.FromSlash(name))
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}

	header := &zip.FileHeader{
		Name:   name,
		Method: method,
	}
	// A modification time adds an extra field, which readers reject on the stored mimetype.
	if method != zip.Store {
		header.Modified = info.ModTime()
	}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create %s in epub: %w", name, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer in.Close()

	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
