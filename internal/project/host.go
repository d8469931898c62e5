package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/andyballingall/kvikk-fix/internal/fs"
)

// ParseHost is the file system view the enumerator works through. Paths are
// absolute and slash-separated.
type ParseHost interface {
	UseCaseSensitiveFileNames() bool
	FileExists(path string) bool
	ReadFile(path string) (string, error)
	// ReadDirectory lists every file below root whose name ends in one of
	// extensions. skipDir prunes a directory from the walk. A missing root
	// yields no files and no error.
	ReadDirectory(root string, extensions []string, skipDir func(dir string) bool) ([]string, error)
}

// OSParseHost reads the real file system with case-sensitive file names.
type OSParseHost struct {
	files fs.FileAccess
}

// NewOSParseHost creates an OSParseHost.
func NewOSParseHost() *OSParseHost {
	return &OSParseHost{files: fs.NewOSFileAccess()}
}

func (h *OSParseHost) UseCaseSensitiveFileNames() bool {
	return true
}

func (h *OSParseHost) FileExists(path string) bool {
	info, err := os.Stat(filepath.FromSlash(path))
	return err == nil && info.Mode().IsRegular()
}

func (h *OSParseHost) ReadFile(path string) (string, error) {
	return h.files.ReadFile(filepath.FromSlash(path))
}

func (h *OSParseHost) ReadDirectory(root string, extensions []string, skipDir func(dir string) bool) ([]string, error) {
	files, err := fs.ListFiles(filepath.FromSlash(root), extensions, skipDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return files, err
}
