package specerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		target   error
		expected bool
	}{
		{"reference", Reference("#/a", "missing"), ErrReference, true},
		{"reference is not conflict", Reference("#/a", "missing"), ErrDefinitionConflict, false},
		{"circular matches reference", &Error{Code: CodeReference, Circular: true}, ErrReference, true},
		{"circular matches circular", &Error{Code: CodeReference, Circular: true}, ErrCircularReference, true},
		{"plain reference is not circular", Reference("", "x"), ErrCircularReference, false},
		{"unsupported", Unsupported("", "allOf"), ErrSchemaUnsupported, true},
		{"route conflict", New(CodeRouteConflict, "", "dup"), ErrRouteConflict, true},
		{"ambiguous default", New(CodeAmbiguousDefault, "", "x"), ErrAmbiguousDefault, true},
		{"name collision", New(CodeNameCollision, "", "x"), ErrNameCollision, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Reference("#/components/schemas/A", "component %q not found", "A")
	err.Document = "v1.yaml"
	require.Equal(t, `ReferenceError in v1.yaml at #/components/schemas/A: component "A" not found`, err.Error())
}

func TestWithDocumentThroughWrapping(t *testing.T) {
	base := Unsupported("#/x", "allOf is not supported")
	wrapped := fmt.Errorf("building v1: %w", base)

	WithDocument(wrapped, "v1.yaml")
	require.Equal(t, "v1.yaml", base.Document)

	// An already stamped document is kept.
	WithDocument(wrapped, "v2.yaml")
	require.Equal(t, "v1.yaml", base.Document)

	require.NoError(t, WithDocument(nil, "v1.yaml"))
}

func TestPointer(t *testing.T) {
	require.Equal(t, "#/paths/~1hello~1{user}/get", Pointer("paths", "/hello/{user}", "get"))
	require.Equal(t, "#/a/b~0c", Append("#/a", "b~c"))
	require.Equal(t, "/hello/{user}", UnescapeToken("~1hello~1{user}"))
	require.Equal(t, "a~1b", UnescapeToken("a~01b"))
}
