// Package vfs provides the file system abstraction used to read and write
// project files.
//
// Projects reference their audio by a path relative to the project file,
// so loading needs existence checks as well as reads. The FS interface
// covers exactly that, letting tests run against an in-memory file system.
package vfs

import (
	"errors"
	"io/fs"
)

// FS is the file system a project is loaded from and saved to.
type FS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it and its parent
	// directories if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Stat returns file information.
	Stat(path string) (fs.FileInfo, error)
}

// Exists reports whether path exists in fsys.
func Exists(fsys FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// IsRegular reports whether path is a regular file in fsys.
func IsRegular(fsys FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsNotExist reports whether err indicates a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
