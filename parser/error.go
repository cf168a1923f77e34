// Package parser turns a raw JSON payload into a typed ir.GraphConfig under
// closed-world rules: unknown fields and enum values are rejected outright,
// with no attempt at cross-field semantic checking (that is the validate
// package's job).
package parser

import "fmt"

// ParseError names the JSON-pointer-like path of the offending field.
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func errAt(path, format string, args ...any) *ParseError {
	return &ParseError{Path: path, Message: fmt.Sprintf(format, args...)}
}
