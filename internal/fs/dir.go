package fs

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// ListFiles walks root and returns the slash-separated paths of every regular
// file whose name ends in one of the given suffixes, sorted ascending.
// skipDir is consulted for each directory below root; returning true prunes it.
func ListFiles(root string, suffixes []string, skipDir func(path string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir != nil && skipDir(filepath.ToSlash(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if hasAnySuffix(d.Name(), suffixes) {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
