package project

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtendsCycle = errors.New("circular extends")
	ErrNotObject    = errors.New("manifest must be a JSON object")
	ErrMalformed    = errors.New("manifest is not valid JSON")
)

// ManifestError reports a project manifest that is missing, malformed or
// cannot be resolved. It is fatal for the whole run.
type ManifestError struct {
	Path    string
	Wrapped error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("invalid project manifest %s: %v", e.Path, e.Wrapped)
}

func (e *ManifestError) Unwrap() error {
	return e.Wrapped
}

// NoInputsError reports a manifest whose file selection matched nothing.
type NoInputsError struct {
	Path    string
	Include []string
	Exclude []string
}

func (e *NoInputsError) Error() string {
	return fmt.Sprintf("no inputs were found in config file %s. Specified 'include' paths were [%s] and 'exclude' paths were [%s]",
		e.Path, quoteAll(e.Include), quoteAll(e.Exclude))
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ",")
}
