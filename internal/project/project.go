// Package project enumerates the source files that belong to a TypeScript
// project described by a tsconfig.json manifest.
package project

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	// DefaultConfigFile is the manifest used when none is named.
	DefaultConfigFile = "./tsconfig.json"
	// DeclarationSuffix marks type-declaration files.
	DeclarationSuffix = ".d.ts"
)

// Options holds the enumerator inputs. The zero value of each field selects
// its default.
type Options struct {
	ConfigFile          string
	ProjectDirectory    string
	Host                ParseHost
	ExcludeDeclarations bool
}

// DefaultOptions returns ./tsconfig.json on the real file system with
// declaration files excluded.
func DefaultOptions() Options {
	return Options{
		ConfigFile:          DefaultConfigFile,
		Host:                NewOSParseHost(),
		ExcludeDeclarations: true,
	}
}

// FileNames runs GetProjectFileNames with o.
func (o Options) FileNames() ([]string, error) {
	return GetProjectFileNames(o.ConfigFile, o.ProjectDirectory, o.Host, o.ExcludeDeclarations)
}

// GetProjectFileNames returns the absolute, slash-separated paths of the
// project's compilation unit in compilation order. The manifest's selection
// rules are resolved against projectDirectory, which defaults to the
// manifest's directory. Any manifest problem is returned before a single
// source file is read.
func GetProjectFileNames(configFile, projectDirectory string, host ParseHost, excludeDeclarations bool) ([]string, error) {
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	if host == nil {
		host = NewOSParseHost()
	}

	cfgPath, err := absSlash(configFile)
	if err != nil {
		return nil, &ManifestError{Path: configFile, Wrapped: err}
	}
	base := path.Dir(cfgPath)
	if projectDirectory != "" {
		if base, err = absSlash(projectDirectory); err != nil {
			return nil, &ManifestError{Path: configFile, Wrapped: err}
		}
	}

	loader := &manifestLoader{host: host, stack: make(map[string]bool)}
	m, err := loader.load(cfgPath, base)
	if err != nil {
		return nil, err
	}

	roots, err := m.rootFiles(host, base)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 && !explicitlyEmpty(m) {
		return nil, noInputs(m, base)
	}

	names := newProgram(host, m.extensions()).build(roots)
	if !excludeDeclarations {
		return names, nil
	}
	out := names[:0]
	for _, n := range names {
		if IsNotDeclarationFile(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// IsNotDeclarationFile reports whether p does not end in .d.ts.
func IsNotDeclarationFile(p string) bool {
	return !strings.HasSuffix(p, DeclarationSuffix)
}

// explicitlyEmpty is a manifest that lists no files on purpose.
func explicitlyEmpty(m *manifest) bool {
	return m.files != nil && len(m.files.entries) == 0 && m.include == nil
}

func noInputs(m *manifest, base string) *NoInputsError {
	e := &NoInputsError{Path: m.path}
	if m.include != nil {
		e.Include = m.include.entries
	} else {
		e.Include = []string{defaultInclude}
	}
	if m.exclude != nil {
		e.Exclude = m.exclude.entries
	} else {
		for _, p := range m.defaultExcludes(base) {
			e.Exclude = append(e.Exclude, strings.TrimPrefix(strings.TrimPrefix(p, base), "/"))
		}
	}
	return e
}

func absSlash(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}
