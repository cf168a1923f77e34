// Package upgrader converts legacy v1/v2 graph payloads into canonical v3
// GraphConfig values, accumulating structured warnings along the way. A
// payload already on schema_version "3.x" is parsed, canonicalized, and
// validated with no transformation.
package upgrader

import "fmt"

// Warning is one non-fatal detail surfaced during migration, e.g. a
// defaulted field or a dropped dangling edge.
type Warning struct {
	Code    string
	Path    string
	Message string
}

// Error is raised when migration cannot safely produce a valid config —
// this is distinct from Warning, which is informational only.
type Error struct {
	Code    string
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Path, e.Message)
}

func fail(code, path, format string, args ...any) *Error {
	return &Error{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}
