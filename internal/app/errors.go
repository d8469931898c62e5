package app

import (
	"fmt"
)

// UsageError reports a command line the tool does not understand. It is
// raised before any file is touched.
type UsageError struct {
	Wrapped error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%v\nRun 'kvikk-fix --help' for usage.", e.Wrapped)
}

func (e *UsageError) Unwrap() error {
	return e.Wrapped
}
