package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/specerr"
)

func ref(name string) *model.Schema {
	return &model.Schema{Ref: "#/components/schemas/" + name}
}

func testSpec() *model.Spec {
	return &model.Spec{
		Components: model.Components{
			Schemas: []model.NamedSchema{
				{Name: "Pet", Schema: &model.Schema{Type: model.TypeObject}},
				{Name: "Alias", Schema: ref("Pet")},
				{Name: "AliasOfAlias", Schema: ref("Alias")},
				{Name: "Loop1", Schema: ref("Loop2")},
				{Name: "Loop2", Schema: ref("Loop1")},
				{Name: "Self", Schema: ref("Self")},
				{Name: "a/b", Schema: &model.Schema{Type: model.TypeString}},
			},
			Parameters: []model.NamedParameter{
				{Name: "UserParam", Parameter: &model.Parameter{Name: "user", In: model.LocationPath, Required: true}},
				{Name: "Indirect", Parameter: &model.Parameter{Ref: "#/components/parameters/UserParam"}},
			},
		},
	}
}

func TestResolveSchema(t *testing.T) {
	tests := []struct {
		name        string
		input       *model.Schema
		wantName    string
		wantPointer string
		wantType    model.SchemaType
	}{
		{"inline", &model.Schema{Type: model.TypeInteger}, "", "", model.TypeInteger},
		{"direct", ref("Pet"), "Pet", "#/components/schemas/Pet", model.TypeObject},
		{"transitive", ref("AliasOfAlias"), "Pet", "#/components/schemas/Pet", model.TypeObject},
		{"without hash", &model.Schema{Ref: "components/schemas/Pet"}, "Pet", "#/components/schemas/Pet", model.TypeObject},
		{"escaped name", &model.Schema{Ref: "#/components/schemas/a~1b"}, "a/b", "#/components/schemas/a~1b", model.TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(testSpec())
			got, err := r.Schema(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.wantName, got.Name)
			require.Equal(t, tt.wantPointer, got.Pointer)
			require.Equal(t, tt.wantType, got.Schema.Type)
			require.Zero(t, r.Depth())
		})
	}
}

func TestResolveSchemaErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       *model.Schema
		circular    bool
		errContains string
	}{
		{"missing", ref("Nope"), false, `"Nope" not found`},
		{"two-step cycle", ref("Loop1"), true, "circular reference"},
		{"self cycle", ref("Self"), true, "circular reference"},
		{"cross document", &model.Schema{Ref: "other.yaml#/components/schemas/Pet"}, false, "cross-document"},
		{"remote file", &model.Schema{Ref: "other.yaml"}, false, "cross-document"},
		{"wrong namespace", &model.Schema{Ref: "#/components/parameters/UserParam"}, false, "expected components/schemas"},
		{"not a component", &model.Schema{Ref: "#/definitions/Pet"}, false, "does not name a component"},
		{"nil schema", nil, false, "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(testSpec())
			_, err := r.Schema(tt.input)
			require.Error(t, err)
			require.True(t, errors.Is(err, specerr.ErrReference))
			require.Equal(t, tt.circular, errors.Is(err, specerr.ErrCircularReference))
			require.Contains(t, err.Error(), tt.errContains)
			require.Zero(t, r.Depth())
		})
	}
}

func TestCycleThroughEnclosingComponent(t *testing.T) {
	r := New(testSpec())
	require.NoError(t, r.Enter("#/components/schemas/Pet"))

	_, err := r.Schema(ref("Alias"))
	require.Error(t, err)
	require.True(t, errors.Is(err, specerr.ErrCircularReference))
	require.Contains(t, err.Error(), "#/components/schemas/Pet -> #/components/schemas/Alias -> #/components/schemas/Pet")

	r.Leave("#/components/schemas/Pet")
	require.Zero(t, r.Depth())

	got, err := r.Schema(ref("Alias"))
	require.NoError(t, err)
	require.Equal(t, "Pet", got.Name)
}

func TestResolveParameter(t *testing.T) {
	r := New(testSpec())

	p, err := r.Parameter(&model.Parameter{Ref: "#/components/parameters/Indirect"})
	require.NoError(t, err)
	require.Equal(t, "user", p.Name)

	inline := &model.Parameter{Name: "q", In: model.LocationQuery}
	p, err = r.Parameter(inline)
	require.NoError(t, err)
	require.Same(t, inline, p)

	_, err = r.Parameter(&model.Parameter{Ref: "#/components/schemas/Pet"})
	require.Error(t, err)
	require.True(t, errors.Is(err, specerr.ErrReference))
}
