// Package specerr defines the errors raised while turning OpenAPI documents
// into an API model.
//
// Every error carries a Code, the document it was found in and a JSON pointer
// to the offending location. Callers match categories with errors.Is against
// the sentinels below, or use errors.As to reach the *Error.
package specerr

import (
	"errors"
	"fmt"
	"strings"
)

// Code names an error category.
type Code string

const (
	CodeReference          Code = "ReferenceError"
	CodeSchemaUnsupported  Code = "SchemaUnsupportedError"
	CodeNameCollision      Code = "NameCollisionError"
	CodeDefinitionConflict Code = "DefinitionConflictError"
	CodeRouteConflict      Code = "RouteConflictError"
	CodeAmbiguousDefault   Code = "AmbiguousDefaultError"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrReference indicates a reference that is missing, cross-document or
	// points into the wrong component namespace.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a reference chain that revisits a pointer.
	// Circular errors also match ErrReference.
	ErrCircularReference = errors.New("circular reference")

	ErrSchemaUnsupported  = errors.New("unsupported schema")
	ErrNameCollision      = errors.New("name collision")
	ErrDefinitionConflict = errors.New("definition conflict")
	ErrRouteConflict      = errors.New("route conflict")
	ErrAmbiguousDefault   = errors.New("ambiguous default")
)

var sentinels = map[Code]error{
	CodeReference:          ErrReference,
	CodeSchemaUnsupported:  ErrSchemaUnsupported,
	CodeNameCollision:      ErrNameCollision,
	CodeDefinitionConflict: ErrDefinitionConflict,
	CodeRouteConflict:      ErrRouteConflict,
	CodeAmbiguousDefault:   ErrAmbiguousDefault,
}

// Error is a modeling failure at a location in a document.
type Error struct {
	Code Code
	// Document is the source file, empty until the pipeline stamps it.
	Document string
	// Pointer is a JSON pointer such as "#/paths/~1hello/get".
	Pointer string
	Message string
	// Circular is set for reference chains that loop.
	Circular bool
	Cause    error
}

// Error returns a human-readable error message.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Document != "" {
		b.WriteString(" in ")
		b.WriteString(e.Document)
	}
	if e.Pointer != "" {
		b.WriteString(" at ")
		b.WriteString(e.Pointer)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chaining.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's code.
func (e *Error) Is(target error) bool {
	if e.Circular && target == ErrCircularReference {
		return true
	}
	return sentinels[e.Code] == target
}

// New returns an error of the given code located at pointer.
func New(code Code, pointer, format string, args ...any) *Error {
	return &Error{Code: code, Pointer: pointer, Message: fmt.Sprintf(format, args...)}
}

// Reference is shorthand for New(CodeReference, ...).
func Reference(pointer, format string, args ...any) *Error {
	return New(CodeReference, pointer, format, args...)
}

// Unsupported is shorthand for New(CodeSchemaUnsupported, ...).
func Unsupported(pointer, format string, args ...any) *Error {
	return New(CodeSchemaUnsupported, pointer, format, args...)
}

// WithDocument stamps doc onto err if it is an *Error without a document.
// Other errors are returned unchanged.
func WithDocument(err error, doc string) error {
	var e *Error
	if errors.As(err, &e) && e.Document == "" {
		e.Document = doc
	}
	return err
}

// WithPointer sets the pointer of an *Error that has none yet.
func WithPointer(err error, pointer string) error {
	var e *Error
	if errors.As(err, &e) && e.Pointer == "" {
		e.Pointer = pointer
	}
	return err
}

// Pointer builds a JSON pointer from unescaped reference tokens.
func Pointer(tokens ...string) string {
	var b strings.Builder
	b.WriteString("#")
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(t))
	}
	return b.String()
}

// Append extends an existing pointer with more tokens.
func Append(pointer string, tokens ...string) string {
	if pointer == "" {
		pointer = "#"
	}
	for _, t := range tokens {
		pointer += "/" + EscapeToken(t)
	}
	return pointer
}

// EscapeToken applies RFC 6901 escaping.
func EscapeToken(t string) string {
	t = strings.ReplaceAll(t, "~", "~0")
	return strings.ReplaceAll(t, "/", "~1")
}

// UnescapeToken reverses EscapeToken.
func UnescapeToken(t string) string {
	t = strings.ReplaceAll(t, "~1", "/")
	return strings.ReplaceAll(t, "~0", "~")
}
