package config

import (
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const overridesKey = "overrides"

// applyOverrides returns the base options of raw with every matching entry
// of its "overrides" list layered on in order. Globs are matched against the
// file's path relative to the directory holding cfgPath.
func applyOverrides(cfgPath string, raw map[string]any, file string) (Options, error) {
	out := make(Options, len(raw))
	for k, v := range raw {
		if k != overridesKey {
			out[k] = v
		}
	}

	list, _ := raw[overridesKey].([]any)
	if len(list) == 0 {
		return out, nil
	}

	rel, err := filepath.Rel(filepath.Dir(cfgPath), file)
	if err != nil {
		return nil, &InvalidOptionsError{Path: cfgPath, Wrapped: err}
	}
	rel = filepath.ToSlash(rel)

	for i, item := range list {
		o, _ := item.(map[string]any)
		include, err := matchesAny(globList(o["files"]), rel)
		if err != nil {
			return nil, &InvalidOptionsError{Path: cfgPath, Wrapped: fmt.Errorf("overrides[%d].files: %w", i, err)}
		}
		if !include {
			continue
		}
		exclude, err := matchesAny(globList(o["excludeFiles"]), rel)
		if err != nil {
			return nil, &InvalidOptionsError{Path: cfgPath, Wrapped: fmt.Errorf("overrides[%d].excludeFiles: %w", i, err)}
		}
		if exclude {
			continue
		}
		if opts, ok := o["options"].(map[string]any); ok {
			maps.Copy(out, opts)
		}
	}
	return out, nil
}

func globList(v any) []string {
	switch g := v.(type) {
	case string:
		return []string{g}
	case []any:
		out := make([]string, 0, len(g))
		for _, s := range g {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// matchesAny reports whether rel matches one of patterns. A pattern without
// a slash is matched against the base name only.
func matchesAny(patterns []string, rel string) (bool, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return false, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, p)
		}
		target := rel
		if !strings.Contains(p, "/") {
			target = path.Base(rel)
		}
		ok, err := doublestar.Match(strings.TrimPrefix(p, "./"), target)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
