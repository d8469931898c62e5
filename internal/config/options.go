// Package config resolves the formatting options that apply to a source file.
package config

import (
	"encoding/json"
	"maps"
	"math"
)

const (
	// ParserKey is the option that selects the grammar the engine parses with.
	ParserKey = "parser"
	// DefaultParser is the dialect every merged configuration starts from.
	DefaultParser = "typescript"
)

// Options maps a formatting option name to its value. Values come straight
// from JSON, YAML or TOML decoders, so numbers may be any numeric kind.
type Options map[string]any

// Defaults returns the fixed floor layer of every FormatConfig.
func Defaults() Options {
	return Options{ParserKey: DefaultParser}
}

// Merge layers resolved over defaults key by key. A nil resolved layer is
// treated as empty. Neither input is modified.
func Merge(defaults, resolved Options) Options {
	out := make(Options, len(defaults)+len(resolved))
	maps.Copy(out, defaults)
	maps.Copy(out, resolved)
	return out
}

// Clone returns a shallow copy of o.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	return maps.Clone(o)
}

// String returns the string option key, or def when it is unset or not a string.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the boolean option key, or def when it is unset or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the integer option key, or def when it is unset or not a whole number.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		if v <= math.MaxInt32 {
			return int(v)
		}
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}
