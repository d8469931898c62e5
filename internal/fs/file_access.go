package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileAccess is the host capability used to read and rewrite source files.
type FileAccess interface {
	// ReadFile returns the UTF-8 content of path. A missing file yields a
	// *NotFoundError; an existing empty file yields "" and no error.
	ReadFile(path string) (string, error)
	// WriteFile replaces the content of path with data.
	WriteFile(path, data string) error
}

// NotFoundError reports that a file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return os.ErrNotExist
}

// OSFileAccess reads and writes the real file system.
type OSFileAccess struct{}

// NewOSFileAccess creates a new OSFileAccess.
func NewOSFileAccess() *OSFileAccess {
	return &OSFileAccess{}
}

func (a *OSFileAccess) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &NotFoundError{Path: path}
		}
		return "", err
	}
	return string(data), nil
}

// WriteFile replaces path through a temporary file in the same directory,
// so a reader never sees a partial write. The permission bits of an existing
// file are kept and a symbolic link is written through to its target.
func (a *OSFileAccess) WriteFile(path, data string) error {
	mode := os.FileMode(0o644)
	if target, err := filepath.EvalSymlinks(path); err == nil {
		path = target
	}
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(data); err != nil {
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// MemFileAccess is an in-memory FileAccess. It is safe for concurrent use.
type MemFileAccess struct {
	mu     sync.Mutex
	files  map[string]string
	reads  map[string]int
	writes map[string]int
}

// NewMemFileAccess creates a MemFileAccess seeded with files.
func NewMemFileAccess(files map[string]string) *MemFileAccess {
	m := &MemFileAccess{
		files:  make(map[string]string, len(files)),
		reads:  make(map[string]int),
		writes: make(map[string]int),
	}
	for k, v := range files {
		m.files[k] = v
	}
	return m
}

func (m *MemFileAccess) ReadFile(path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[path]++
	data, ok := m.files[path]
	if !ok {
		return "", &NotFoundError{Path: path}
	}
	return data, nil
}

func (m *MemFileAccess) WriteFile(path, data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[path]++
	m.files[path] = data
	return nil
}

// Content returns the current content of path and whether it exists.
func (m *MemFileAccess) Content(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	return data, ok
}

// Reads returns how many times path has been read.
func (m *MemFileAccess) Reads(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[path]
}

// Writes returns how many times path has been written.
func (m *MemFileAccess) Writes(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[path]
}

// Paths returns the stored paths, sorted.
func (m *MemFileAccess) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
