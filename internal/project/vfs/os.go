package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS implements FS using the operating system's file system.
type OSFS struct{}

// NewOSFS creates a new OS file system.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Ensure OSFS implements FS.
var _ FS = (*OSFS)(nil)

// ReadFile reads the entire file content.
func (f *OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating parent directories.
func (f *OSFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// Stat returns file information.
func (f *OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
