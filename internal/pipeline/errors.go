package pipeline

import (
	"fmt"
)

// ConfigResolutionError reports that the configuration for Path could not be
// located, read or parsed.
type ConfigResolutionError struct {
	Path    string
	Wrapped error
}

func (e *ConfigResolutionError) Error() string {
	return fmt.Sprintf("could not resolve formatting configuration: %v", e.Wrapped)
}

func (e *ConfigResolutionError) Unwrap() error {
	return e.Wrapped
}

// ReadFailureError reports that Path is missing or unreadable.
type ReadFailureError struct {
	Path    string
	Wrapped error
}

func (e *ReadFailureError) Error() string {
	return fmt.Sprintf("could not read file: %v", e.Wrapped)
}

func (e *ReadFailureError) Unwrap() error {
	return e.Wrapped
}

// FormatFailureError reports that the engine rejected Path while formatting.
type FormatFailureError struct {
	Path    string
	Wrapped error
}

func (e *FormatFailureError) Error() string {
	return e.Wrapped.Error()
}

func (e *FormatFailureError) Unwrap() error {
	return e.Wrapped
}

// CheckFailureError reports that the engine rejected Path while checking.
type CheckFailureError struct {
	Path    string
	Wrapped error
}

func (e *CheckFailureError) Error() string {
	return e.Wrapped.Error()
}

func (e *CheckFailureError) Unwrap() error {
	return e.Wrapped
}

type WriteFailureError struct {
	Path    string
	Wrapped error
}

func (e *WriteFailureError) Error() string {
	return fmt.Sprintf("could not write file: %v", e.Wrapped)
}

func (e *WriteFailureError) Unwrap() error {
	return e.Wrapped
}
