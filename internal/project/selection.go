package project

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// implicitExcludes are skipped by wildcard matches unless a pattern names them.
var implicitExcludes = []string{"node_modules", "bower_components", "jspm_packages"}

const defaultInclude = "**/*"

func (m *manifest) extensions() []string {
	if m.allowJs {
		return []string{".ts", ".tsx", ".js", ".jsx"}
	}
	return []string{".ts", ".tsx"}
}

// defaultExcludes lists the directories skipped when the manifest has no
// exclude list.
func (m *manifest) defaultExcludes(base string) []string {
	out := make([]string, 0, len(implicitExcludes)+2)
	for _, d := range implicitExcludes {
		out = append(out, join(base, d))
	}
	if m.outDir != "" {
		out = append(out, m.outDir)
	}
	if m.declarationDir != "" {
		out = append(out, m.declarationDir)
	}
	return out
}

func (m *manifest) excludePatterns(base string) []string {
	if m.exclude != nil {
		return m.exclude.patterns()
	}
	out := m.defaultExcludes(base)
	for i, p := range out {
		out[i] = escapeMeta(p, literalMeta)
	}
	return out
}

// rootFiles applies files, include and exclude. Explicit files come first in
// manifest order, followed by include matches.
func (m *manifest) rootFiles(host ParseHost, base string) ([]string, error) {
	exts := m.extensions()
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		key := foldCase(p, host)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	if m.files != nil {
		for _, p := range m.files.abs() {
			if host.FileExists(p) {
				add(p)
			}
		}
	}

	include := m.include
	if include == nil && m.files == nil {
		include = &globList{dir: base, entries: []string{defaultInclude}}
	}
	if include == nil {
		return out, nil
	}

	excludes := m.excludePatterns(base)
	for _, p := range excludes {
		if !doublestar.ValidatePattern(p) {
			return nil, &ManifestError{Path: m.path, Wrapped: fmt.Errorf("exclude pattern %q: %w", p, doublestar.ErrBadPattern)}
		}
	}
	excluded := func(p string) bool {
		for _, pattern := range excludes {
			if matchPath(pattern, p) || matchPath(pattern+"/**", p) {
				return true
			}
		}
		return false
	}

	for _, pattern := range include.patterns() {
		if !doublestar.ValidatePattern(pattern) {
			return nil, &ManifestError{Path: m.path, Wrapped: fmt.Errorf("include pattern %q: %w", pattern, doublestar.ErrBadPattern)}
		}
		if !hasWildcard(path.Base(pattern)) {
			if name := unescape(pattern); host.FileExists(name) {
				if hasExtension(name, exts) && !excluded(name) {
					add(name)
				}
				continue
			}
			// A plain directory name includes everything below it.
			pattern += "/" + defaultInclude
		}

		walkRoot := literalPrefix(pattern)
		skipDir := func(dir string) bool {
			return excluded(dir) || implicitlyExcluded(pattern, walkRoot, dir)
		}
		files, err := host.ReadDirectory(walkRoot, exts, skipDir)
		if err != nil {
			return nil, &ManifestError{Path: m.path, Wrapped: err}
		}
		for _, f := range files {
			if matchPath(pattern, f) && !excluded(f) && !implicitlyExcluded(pattern, walkRoot, f) {
				add(f)
			}
		}
	}
	return out, nil
}

func matchPath(pattern, p string) bool {
	ok, err := doublestar.Match(pattern, p)
	return err == nil && ok
}

// Bytes escaped so that doublestar matches them literally. Directories are
// escaped in full, manifest entries only lose their [...] and {...} forms.
const (
	literalMeta = `*?[]{}\`
	bracketMeta = `[]{}\`
)

func escapeMeta(s, meta string) string {
	if !strings.ContainsAny(s, meta) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(meta, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// hasWildcard reports whether s holds an unescaped * or ?.
func hasWildcard(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '*', '?':
			return true
		}
	}
	return false
}

func hasExtension(p string, exts []string) bool {
	for _, e := range exts {
		if strings.HasSuffix(p, e) {
			return true
		}
	}
	return false
}

// literalPrefix returns the directory part of pattern before its first
// wildcard segment, with escapes removed.
func literalPrefix(pattern string) string {
	segments := strings.Split(pattern, "/")
	i := slices.IndexFunc(segments, hasWildcard)
	if i < 0 {
		return unescape(path.Dir(pattern))
	}
	prefix := strings.Join(segments[:i], "/")
	if prefix == "" {
		return "/"
	}
	return unescape(prefix)
}

// implicitlyExcluded reports whether p sits in a package directory that the
// wildcard part of pattern does not name explicitly.
func implicitlyExcluded(pattern, walkRoot, p string) bool {
	rel := strings.TrimPrefix(strings.TrimPrefix(p, walkRoot), "/")
	for _, seg := range strings.Split(rel, "/") {
		if slices.Contains(implicitExcludes, seg) && !strings.Contains(pattern, seg) {
			return true
		}
	}
	return false
}
