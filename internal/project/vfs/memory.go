package vfs

import (
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"time"
)

// MemFS implements FS in memory. Directories are implicit.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string]*memFile)}
}

// Ensure MemFS implements FS.
var _ FS = (*MemFS)(nil)

func cleanPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}

	// Return a copy to prevent modification
	content := make([]byte, len(f.content))
	copy(content, f.content)
	return content, nil
}

// WriteFile writes data to a file, replacing any previous content.
func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	content := make([]byte, len(data))
	copy(content, data)
	m.files[cleanPath(filePath)] = &memFile{
		content: content,
		mode:    perm,
		modTime: time.Now(),
	}
	return nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
	}
	return memFileInfo{
		name:    path.Base(filePath),
		size:    int64(len(f.content)),
		mode:    f.mode,
		modTime: f.modTime,
	}, nil
}

type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() any           { return nil }
