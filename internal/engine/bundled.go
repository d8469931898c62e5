package engine

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/andyballingall/kvikk-fix/internal/config"
)

var supportedParsers = []string{"acorn", "babel", "babel-ts", "espree", "flow", "meriyah", "typescript"}

// SupportedParsers lists the dialects the bundled engine accepts.
func SupportedParsers() []string {
	return slices.Clone(supportedParsers)
}

// Bundled is the Go-native fallback engine. It normalises layout only:
// quotes, intra-line spacing, indentation by bracket depth, blank lines,
// trailing whitespace and line endings. Options that need a full syntax
// tree (semi, trailingComma, printWidth, bracketSpacing, arrowParens) are
// accepted and ignored.
type Bundled struct {
	passes []pass
}

// pass rewrites the line list produced by the scanner.
type pass func(lines []docLine) []docLine

// NewBundled creates the bundled engine.
func NewBundled() *Bundled {
	return &Bundled{passes: []pass{collapseBlankLines}}
}

func (b *Bundled) Name() string {
	return "bundled"
}

func (b *Bundled) Format(path, source string, opts config.Options) (string, error) {
	parser := opts.String(config.ParserKey, config.DefaultParser)
	if !slices.Contains(supportedParsers, parser) {
		if _, ok := opts[config.ParserKey].(string); !ok {
			parser = "<non-string>"
		}
		return "", &UnsupportedParserError{Parser: parser}
	}

	lo := layoutOptions{
		tabWidth:    opts.Int("tabWidth", 2),
		useTabs:     opts.Bool("useTabs", false),
		singleQuote: opts.Bool("singleQuote", false),
		jsx:         allowsJSX(path),
	}
	if lo.tabWidth < 0 {
		lo.tabWidth = 0
	}

	eol := lineEnding(opts.String("endOfLine", "lf"), source)

	lines, err := scan(normaliseNewlines(source), lo)
	if err != nil {
		return "", err
	}
	for _, p := range b.passes {
		lines = p(lines)
	}
	return render(lines, eol), nil
}

func (b *Bundled) Check(path, source string, opts config.Options) (bool, error) {
	formatted, err := b.Format(path, source, opts)
	if err != nil {
		return false, err
	}
	return formatted == source, nil
}

// allowsJSX reports whether a '<' in expression position may open an
// element. TypeScript sources use it for type assertions instead.
func allowsJSX(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return false
	}
	return true
}

func normaliseNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// lineEnding maps endOfLine to the separator to emit. "auto" keeps the
// first line ending found in source.
func lineEnding(opt, source string) string {
	switch opt {
	case "crlf":
		return "\r\n"
	case "cr":
		return "\r"
	case "auto":
		if i := strings.IndexAny(source, "\r\n"); i >= 0 {
			if source[i] == '\n' {
				return "\n"
			}
			if strings.HasPrefix(source[i:], "\r\n") {
				return "\r\n"
			}
			return "\r"
		}
	}
	return "\n"
}

// collapseBlankLines drops leading and trailing blank lines and squeezes
// runs of blank lines to one. Lines inside literals and comments are kept.
func collapseBlankLines(lines []docLine) []docLine {
	out := make([]docLine, 0, len(lines))
	prevBlank := false
	for _, l := range lines {
		if l.blank() {
			if len(out) == 0 || prevBlank {
				continue
			}
			prevBlank = true
			out = append(out, l)
			continue
		}
		prevBlank = false
		out = append(out, l)
	}
	for len(out) > 0 && out[len(out)-1].blank() {
		out = out[:len(out)-1]
	}
	return out
}

func render(lines []docLine, eol string) string {
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.text)
		sb.WriteString(eol)
	}
	return sb.String()
}
