package project

import (
	"path"
	"regexp"
	"slices"
	"strings"
)

// specifierPattern finds module specifiers: triple-slash path references,
// static import/export declarations, dynamic import() and require().
var specifierPattern = regexp.MustCompile(
	`(?m)^[ \t]*///[ \t]*<reference[ \t]+path[ \t]*=[ \t]*["']([^"'\n]+)["']` +
		`|\b(?:import|export)\s+(?:type\s+)?(?:[\w$*{}\s,]+?\s+from\s*)?["']([^"'\n]+)["']` +
		`|\b(?:import|require)\s*\(\s*["']([^"'\n]+)["']\s*\)`)

// program builds the compilation unit: every root file plus the files its
// relative imports reach, each listed after its dependencies.
type program struct {
	host  ParseHost
	exts  []string
	seen  map[string]bool
	files []string
}

func newProgram(host ParseHost, exts []string) *program {
	return &program{host: host, exts: exts, seen: make(map[string]bool)}
}

func (p *program) build(roots []string) []string {
	for _, r := range roots {
		p.visit(r)
	}
	return p.files
}

func (p *program) visit(file string) {
	key := foldCase(file, p.host)
	if p.seen[key] {
		return
	}
	p.seen[key] = true

	if src, err := p.host.ReadFile(file); err == nil {
		for _, spec := range moduleSpecifiers(src) {
			if dep, ok := p.resolve(path.Dir(file), spec); ok {
				p.visit(dep)
			}
		}
	}
	p.files = append(p.files, file)
}

// resolve maps a relative specifier to a project file. Package imports are
// left to the engine's own resolution and ignored here.
func (p *program) resolve(dir, spec string) (string, bool) {
	if !isRelative(spec) && !path.IsAbs(spec) {
		return "", false
	}
	target := join(dir, spec)

	var candidates []string
	// TypeScript sources may import their compiled .js name.
	for _, js := range []string{".js", ".jsx", ".mjs", ".cjs"} {
		if stem, ok := strings.CutSuffix(target, js); ok {
			for _, ext := range p.sourceExts() {
				candidates = append(candidates, stem+ext)
			}
		}
	}
	if hasExtension(target, p.exts) {
		candidates = append(candidates, target)
	}
	for _, ext := range p.sourceExts() {
		candidates = append(candidates, target+ext)
	}
	for _, ext := range p.sourceExts() {
		candidates = append(candidates, target+"/index"+ext)
	}

	for _, c := range candidates {
		if p.host.FileExists(c) {
			return c, true
		}
	}
	return "", false
}

// sourceExts lists the extensions tried for an extensionless specifier, in
// resolution order.
func (p *program) sourceExts() []string {
	exts := []string{".ts", ".tsx", ".d.ts"}
	if slices.Contains(p.exts, ".js") {
		exts = append(exts, ".js", ".jsx")
	}
	return exts
}

func moduleSpecifiers(src string) []string {
	var specs []string
	for _, m := range specifierPattern.FindAllStringSubmatch(src, -1) {
		for _, g := range m[1:] {
			if g != "" {
				specs = append(specs, g)
				break
			}
		}
	}
	return specs
}
