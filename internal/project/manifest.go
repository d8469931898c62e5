package project

import (
	"fmt"
	"path"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// globList is a manifest list together with the directory its relative
// entries are resolved against.
type globList struct {
	dir     string
	entries []string
}

func (g *globList) abs() []string {
	out := make([]string, len(g.entries))
	for i, e := range g.entries {
		out[i] = join(g.dir, e)
	}
	return out
}

// patterns returns the entries as match patterns. The directory is matched
// literally, and only * and ? in an entry act as wildcards.
func (g *globList) patterns() []string {
	dir := escapeMeta(g.dir, literalMeta)
	out := make([]string, len(g.entries))
	for i, e := range g.entries {
		e = escapeMeta(e, bracketMeta)
		if path.IsAbs(e) {
			out[i] = path.Clean(e)
		} else {
			out[i] = path.Join(dir, e)
		}
	}
	return out
}

// manifest is the subset of tsconfig.json that decides project membership.
// Nil lists were not given by the manifest or anything it extends.
type manifest struct {
	path           string
	files          *globList
	include        *globList
	exclude        *globList
	allowJs        bool
	outDir         string
	declarationDir string
}

type manifestLoader struct {
	host  ParseHost
	stack map[string]bool
}

// load parses the manifest at p, resolving its own relative entries against
// dir and merging everything it extends underneath.
func (l *manifestLoader) load(p, dir string) (*manifest, error) {
	key := foldCase(p, l.host)
	if l.stack[key] {
		return nil, &ManifestError{Path: p, Wrapped: ErrExtendsCycle}
	}
	l.stack[key] = true
	defer delete(l.stack, key)

	data, err := l.host.ReadFile(p)
	if err != nil {
		return nil, &ManifestError{Path: p, Wrapped: err}
	}
	js := jsonc.ToJSON([]byte(data))
	if !gjson.ValidBytes(js) {
		return nil, &ManifestError{Path: p, Wrapped: ErrMalformed}
	}
	root := gjson.ParseBytes(js)
	if !root.IsObject() {
		return nil, &ManifestError{Path: p, Wrapped: ErrNotObject}
	}

	m := &manifest{path: p}
	if err = l.inherit(m, root.Get("extends"), path.Dir(p)); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		key    string
		target **globList
	}{
		{"files", &m.files},
		{"include", &m.include},
		{"exclude", &m.exclude},
	} {
		v := root.Get(f.key)
		if !v.Exists() {
			continue
		}
		entries, lErr := stringList(v)
		if lErr != nil {
			return nil, &ManifestError{Path: p, Wrapped: fmt.Errorf("%q: %w", f.key, lErr)}
		}
		*f.target = &globList{dir: dir, entries: entries}
	}

	opts := root.Get("compilerOptions")
	if v := opts.Get("allowJs"); v.Exists() {
		m.allowJs = v.Bool()
	}
	if v := opts.Get("outDir"); v.Type == gjson.String {
		m.outDir = join(dir, v.String())
	}
	if v := opts.Get("declarationDir"); v.Type == gjson.String {
		m.declarationDir = join(dir, v.String())
	}
	return m, nil
}

// inherit applies each extended manifest to m in order, later ones winning.
func (l *manifestLoader) inherit(m *manifest, ext gjson.Result, dir string) error {
	if !ext.Exists() {
		return nil
	}
	specs := []string{ext.String()}
	if ext.IsArray() {
		var err error
		if specs, err = stringList(ext); err != nil {
			return &ManifestError{Path: m.path, Wrapped: fmt.Errorf(`"extends": %w`, err)}
		}
	} else if ext.Type != gjson.String {
		return &ManifestError{Path: m.path, Wrapped: fmt.Errorf(`"extends" must be a string or an array of strings`)}
	}

	for _, spec := range specs {
		basePath, ok := l.resolveExtends(dir, spec)
		if !ok {
			return &ManifestError{Path: m.path, Wrapped: fmt.Errorf("extended manifest %q not found", spec)}
		}
		base, err := l.load(basePath, path.Dir(basePath))
		if err != nil {
			return err
		}
		if base.files != nil {
			m.files = base.files
		}
		if base.include != nil {
			m.include = base.include
		}
		if base.exclude != nil {
			m.exclude = base.exclude
		}
		m.allowJs = m.allowJs || base.allowJs
		if base.outDir != "" {
			m.outDir = base.outDir
		}
		if base.declarationDir != "" {
			m.declarationDir = base.declarationDir
		}
	}
	return nil
}

// resolveExtends finds an extended manifest: relative and absolute specs are
// tried as given and with .json appended, bare specs are looked up in
// node_modules directories from dir upwards.
func (l *manifestLoader) resolveExtends(dir, spec string) (string, bool) {
	if isRelative(spec) || path.IsAbs(spec) {
		return l.firstExisting(join(dir, spec), join(dir, spec)+".json")
	}
	for {
		candidate := join(dir, "node_modules/"+spec)
		if p, ok := l.firstExisting(candidate, candidate+".json", candidate+"/tsconfig.json"); ok {
			return p, true
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (l *manifestLoader) firstExisting(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if l.host.FileExists(c) {
			return c, true
		}
	}
	return "", false
}

func stringList(v gjson.Result) ([]string, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("expected an array of strings")
	}
	var out []string
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("expected an array of strings, found %s", item.Raw)
		}
		out = append(out, item.String())
	}
	return out, nil
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// join resolves p against dir unless it is already absolute.
func join(dir, p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(dir, p)
}

func foldCase(p string, host ParseHost) string {
	if host.UseCaseSensitiveFileNames() {
		return p
	}
	return strings.ToLower(p)
}
