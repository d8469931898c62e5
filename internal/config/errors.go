package config

import (
	"fmt"
)

type InvalidConfigFileError struct {
	Path    string
	Wrapped error
}

func (e *InvalidConfigFileError) Error() string {
	return fmt.Sprintf("%s is not a valid formatting configuration file: %v", e.Path, e.Wrapped)
}

func (e *InvalidConfigFileError) Unwrap() error {
	return e.Wrapped
}

type InvalidOptionsError struct {
	Path    string
	Wrapped error
}

func (e *InvalidOptionsError) Error() string {
	return fmt.Sprintf("%s contains invalid formatting options: %v", e.Path, e.Wrapped)
}

func (e *InvalidOptionsError) Unwrap() error {
	return e.Wrapped
}

type UnsupportedConfigError struct {
	Path   string
	Reason string
}

func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("%s: unsupported formatting configuration: %s", e.Path, e.Reason)
}
