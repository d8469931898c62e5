package engine

import (
	"fmt"
	"strings"
)

type UnsupportedParserError struct {
	Parser string
}

func (e *UnsupportedParserError) Error() string {
	return fmt.Sprintf("the bundled engine cannot parse %q sources; supported parsers: %s",
		e.Parser, strings.Join(SupportedParsers(), ", "))
}

// SyntaxError reports source the bundled engine cannot tokenise.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (%d:%d)", e.Msg, e.Line, e.Col)
}

type PeerError struct {
	Command string
	Stderr  string
	Wrapped error
}

func (e *PeerError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Wrapped)
	}
	return fmt.Sprintf("%s failed: %v\n%s", e.Command, e.Wrapped, msg)
}

func (e *PeerError) Unwrap() error {
	return e.Wrapped
}
