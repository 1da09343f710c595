package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirName is the default name for the x2epub home directory.
	DefaultDirName = ".x2epub"

	// WorkDirName is the subdirectory holding per-book staging trees.
	WorkDirName = "work"

	// ExportsDirName is the subdirectory for archives written without an explicit epub_path.
	ExportsDirName = "exports"

	// ConfigFileName is the default config file name.
	ConfigFileName = "x2epub.yaml"
)

// Dir represents the x2epub home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.x2epub).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// WorkPath returns the path to the staging directory root.
func (d *Dir) WorkPath() string {
	return filepath.Join(d.path, WorkDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.WorkPath(), d.ExportsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// StagingDir returns the staging directory for a source document.
// Documents with the same base name share a directory.
func (d *Dir) StagingDir(sourcePath string) string {
	return filepath.Join(d.WorkPath(), bookName(sourcePath))
}

// ExportsDir returns the directory for exported files (epub, etc.).
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, ExportsDirName)
}

// ExportPath returns the default archive path for a source document.
func (d *Dir) ExportPath(sourcePath string) string {
	return filepath.Join(d.ExportsDir(), bookName(sourcePath)+".epub")
}

func bookName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
