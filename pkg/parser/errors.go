package parser

import (
	"errors"
	"fmt"
)

// Parse error kinds. Every error returned by Parse wraps exactly one of
// them; test with errors.Is.
var (
	ErrMalformedGeometry = errors.New("malformed geometry")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrCyclicReference   = errors.New("cyclic reference")
	ErrTooLarge          = errors.New("document too large")
	ErrUnrecognizedRoot  = errors.New("unrecognized root")
	ErrInvalidUnits      = errors.New("invalid units")
	ErrInvalidField      = errors.New("invalid field")
)

// ParseError reports why a document was rejected and where
type ParseError struct {
	Kind error
	// Path locates the offending value, e.g. "$.root.children[1].mesh.vertices[7]"
	Path   string
	Detail string
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Path)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newError(kind error, path string, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}
