package epub

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Fixed locations inside the package.
const (
	MimeType      = "application/epub+zip"
	ContainerPath = "META-INF/container.xml"
	ContentDir    = "OPS"
	PackagePath   = ContentDir + "/content.opf"
	NavPath       = ContentDir + "/toc.html"
	NCXPath       = ContentDir + "/toc.ncx"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="` + PackagePath + `" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// Builder writes a Book to disk as an unpacked ePub tree and archives it.
type Builder struct {
	book   *Book
	logger *slog.Logger
}

// NewBuilder creates a new epub builder.
func NewBuilder(book *Book, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		book:   book,
		logger: logger,
	}
}

// Build writes the package tree under rootDir and archives it to outputPath.
func (b *Builder) Build(rootDir, outputPath string) error {
	if err := b.Emit(rootDir); err != nil {
		return err
	}
	return Archive(rootDir, outputPath)
}

// Emit writes mimetype, container.xml, the package document, the navigation
// document and every registered item under rootDir.
func (b *Builder) Emit(rootDir string) error {
	for _, dir := range []string{"META-INF", ContentDir} {
		if err := os.MkdirAll(filepath.Join(rootDir, dir), 0o755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}

	// 1. mimetype, no trailing newline
	if err := writeFile(rootDir, "mimetype", MimeType); err != nil {
		return err
	}

	// 2. content files
	if err := b.writeItems(rootDir); err != nil {
		return err
	}

	// 3. META-INF/container.xml
	if err := writeFile(rootDir, ContainerPath, containerXML); err != nil {
		return err
	}

	// 4. OPS/content.opf
	if err := writeFile(rootDir, PackagePath, b.generatePackage()); err != nil {
		return err
	}

	// 5. navigation
	if b.book.Version == 2 {
		if err := writeFile(rootDir, NCXPath, b.generateNCX()); err != nil {
			return err
		}
	} else {
		if err := writeFile(rootDir, NavPath, b.generateNavigation()); err != nil {
			return err
		}
	}

	b.logger.Info("package written", "root", rootDir, "items", len(b.book.items), "version", b.book.Version)
	return nil
}

// writeItems writes inline items and copies file-backed ones.
func (b *Builder) writeItems(rootDir string) error {
	for _, item := range b.book.items {
		rel := ContentDir + "/" + item.DestPath
		if item.Inline {
			if err := writeFile(rootDir, rel, item.Content); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(item.SrcPath, filepath.Join(rootDir, filepath.FromSlash(rel))); err != nil {
			return fmt.Errorf("failed to copy %s: %w", item.DestPath, err)
		}
		b.logger.Debug("copied item", "src", item.SrcPath, "dest", item.DestPath)
	}
	return nil
}

// writeFile writes content to the slash-separated path rel under rootDir.
func writeFile(rootDir, rel, content string) error {
	dest := filepath.Join(rootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
