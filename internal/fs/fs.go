// Package fs holds the host capabilities that touch the environment:
// file access, path resolution and environment variables.
package fs

// defaultResolver is used by the package-level path helpers.
var defaultResolver = NewPathResolver()

// CanonicalPath returns the canonical, absolute path by resolving symlinks.
// This is a convenience function that uses the default StandardPathResolver.
func CanonicalPath(path string) (string, error) {
	return defaultResolver.CanonicalPath(path)
}

// Abs returns the absolute path.
// This is a convenience function that uses the default StandardPathResolver.
func Abs(path string) (string, error) {
	return defaultResolver.Abs(path)
}

// Display shortens path for presentation relative to base.
func Display(base, path string) string {
	return defaultResolver.Display(base, path)
}
