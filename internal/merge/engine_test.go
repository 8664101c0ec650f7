package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/opbuilder"
	"github.com/kolah/apigen/internal/specerr"
)

func getOp(id, path string, response *model.Schema) model.Path {
	return model.Path{
		Path: path,
		Operations: []model.Operation{{
			ID:         id,
			Method:     model.MethodGet,
			Parameters: []model.Parameter{{Name: "user", In: model.LocationPath, Required: true, Schema: &model.Schema{Type: model.TypeString}}},
			Responses: []model.Response{{
				StatusCode: "200",
				Content:    []model.MediaTypeContent{{MediaType: "application/json", Schema: response}},
			}},
		}},
	}
}

func build(t *testing.T, prefix string, paths ...model.Path) *ir.VersionModel {
	t.Helper()
	vm, err := opbuilder.Build(&model.Spec{Paths: paths}, prefix, prefix+".yaml")
	require.NoError(t, err)
	return vm
}

func str() *model.Schema { return &model.Schema{Type: model.TypeString} }

func TestVersionedRouting(t *testing.T) {
	v1 := build(t, "v1",
		getOp("greet_user", "/hello/{user}", str()),
		getOp("goodbye_user", "/goodbye/{user}", str()),
	)
	v2 := build(t, "v2",
		getOp("greet_user", "/hello/{user}", str()),
		getOp("goodbye_user_v2", "/goodbye/{user}", &model.Schema{Type: model.TypeInteger}),
	)

	e := New(nil)
	require.NoError(t, e.Merge(v1))
	require.NoError(t, e.Merge(v2))
	require.Equal(t, []string{"v1", "v2"}, e.Versions())

	m, err := e.Finish(nil, nil)
	require.NoError(t, err)

	require.Equal(t, []ir.RouteBinding{
		{OperationID: "greet_user", Path: "/hello/{user}", Method: ir.MethodGet},
		{OperationID: "goodbye_user", Path: "/goodbye/{user}", Method: ir.MethodGet},
		{OperationID: "greet_user", Path: "/v1/hello/{user}", Method: ir.MethodGet},
		{OperationID: "goodbye_user", Path: "/v1/goodbye/{user}", Method: ir.MethodGet},
		{OperationID: "greet_user", Path: "/v2/hello/{user}", Method: ir.MethodGet},
		{OperationID: "goodbye_user_v2", Path: "/v2/goodbye/{user}", Method: ir.MethodGet},
	}, m.Routes)

	var ids []string
	for _, op := range m.Operations {
		ids = append(ids, op.ID)
	}
	require.Equal(t, []string{"greet_user", "goodbye_user", "goodbye_user_v2"}, ids)

	_, ok := m.Definition("GoodbyeUserV2Path")
	require.True(t, ok)
	_, ok = m.Definition("GreetUserPath")
	require.True(t, ok)
}

func TestNewRouteInLaterVersionIsUnprefixedToo(t *testing.T) {
	e := New(nil)
	require.NoError(t, e.Merge(build(t, "v1", getOp("greet_user", "/hello/{user}", str()))))
	require.NoError(t, e.Merge(build(t, "v2",
		getOp("greet_user", "/hello/{user}", str()),
		getOp("wave", "/wave/{user}", str()),
	)))

	m, err := e.Finish(nil, nil)
	require.NoError(t, err)
	require.Equal(t, []ir.RouteBinding{
		{OperationID: "greet_user", Path: "/hello/{user}", Method: ir.MethodGet},
		{OperationID: "wave", Path: "/wave/{user}", Method: ir.MethodGet},
		{OperationID: "greet_user", Path: "/v1/hello/{user}", Method: ir.MethodGet},
		{OperationID: "greet_user", Path: "/v2/hello/{user}", Method: ir.MethodGet},
		{OperationID: "wave", Path: "/v2/wave/{user}", Method: ir.MethodGet},
	}, m.Routes)
}

func TestRouteRemovedInLaterVersion(t *testing.T) {
	e := New(nil)
	require.NoError(t, e.Merge(build(t, "v1",
		getOp("greet_user", "/hello/{user}", str()),
		getOp("goodbye_user", "/goodbye/{user}", str()),
	)))
	require.NoError(t, e.Merge(build(t, "v2", getOp("greet_user", "/hello/{user}", str()))))

	m, err := e.Finish(nil, nil)
	require.NoError(t, err)
	require.Len(t, m.Routes, 5)
	require.Equal(t, "/v2/hello/{user}", m.Routes[4].Path)
}

func TestChangedSignatureUnderSameIDConflicts(t *testing.T) {
	e := New(nil)
	require.NoError(t, e.Merge(build(t, "v1", getOp("greet_user", "/hello/{user}", str()))))

	err := e.Merge(build(t, "v2", getOp("greet_user", "/hello/{user}", &model.Schema{Type: model.TypeBoolean})))
	require.Error(t, err)
	require.True(t, errors.Is(err, specerr.ErrDefinitionConflict))
	require.Contains(t, err.Error(), "v2.yaml")
}

func TestDefinitionConflictAcrossVersions(t *testing.T) {
	record := func(prop string) *model.Schema {
		return &model.Schema{Type: model.TypeObject, Properties: []model.Property{{Name: prop, Schema: str()}}}
	}
	e := New(nil)
	require.NoError(t, e.Merge(build(t, "v1", getOp("greet_user", "/hello/{user}", record("a")))))

	err := e.Merge(build(t, "v2", getOp("greet_user", "/hi/{user}", record("b"))))
	require.Error(t, err)
	require.True(t, errors.Is(err, specerr.ErrDefinitionConflict))
	require.Contains(t, err.Error(), "GreetUserResponse")
}

func TestStaticRouteCollision(t *testing.T) {
	e := New(nil)
	require.NoError(t, e.Merge(build(t, "v1", model.Path{
		Path:       "/docs",
		Operations: []model.Operation{{ID: "docs", Method: model.MethodGet, Responses: []model.Response{{StatusCode: "200"}}}},
	})))

	_, err := e.Finish(
		[]ir.Definition{{Name: "ToDocs", Kind: &ir.Redirect{Target: "docs"}}},
		[]ir.StaticRouteBinding{{Method: ir.MethodGet, Path: "/docs", Definition: "ToDocs"}},
	)
	require.Error(t, err)
	require.True(t, errors.Is(err, specerr.ErrRouteConflict))
}

func TestMergeIsDeterministic(t *testing.T) {
	run := func() *ir.ApiModel {
		e := New(nil)
		require.NoError(t, e.Merge(build(t, "v1", getOp("greet_user", "/hello/{user}", str()))))
		require.NoError(t, e.Merge(build(t, "v2", getOp("greet_user", "/hello/{user}", str()))))
		m, err := e.Finish(nil, nil)
		require.NoError(t, err)
		return m
	}

	first, err := ir.DumpYAML(run())
	require.NoError(t, err)
	second, err := ir.DumpYAML(run())
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}
