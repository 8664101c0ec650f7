package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kolah/apigen/internal/golang"
	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/targets/static"
	"github.com/kolah/apigen/internal/templates"
)

type Framework interface {
	Name() string
	TemplateName() string
	// ConvertPath rewrites an API path into the router's pattern syntax,
	// renaming the template parameters to keys in order.
	ConvertPath(path string, keys []string) (string, error)
}

type Target struct {
	framework Framework
}

func New(frameworkName string) (*Target, error) {
	var fw Framework
	switch frameworkName {
	case "", "stdlib":
		fw = &StdlibFramework{}
	case "chi":
		fw = &ChiFramework{}
	default:
		return nil, fmt.Errorf("unsupported server framework: %s", frameworkName)
	}
	return &Target{framework: fw}, nil
}

func (t *Target) Framework() string {
	return t.framework.Name()
}

type templateData struct {
	Package      string
	Framework    string
	Operations   []operationData
	ParamSets    []paramSetData
	Routes       []routeData
	StaticRoutes []staticRouteData
}

type operationData struct {
	ID          string
	GoName      string
	Doc         string
	Signature   string
	CallArgs    string
	PathType    string
	PathFields  string
	QueryType   string
	QueryFields string
	Body        *bodyData
	Response    string
}

type bodyData struct {
	Type     string
	Optional bool
}

// paramSetData describes how the fields of a parameter record are read
// from strings.
type paramSetData struct {
	Var    string
	Fields []paramFieldData
}

type paramFieldData struct {
	Name  string
	Kind  string
	Multi bool
}

type routeData struct {
	Method  string
	Pattern string
	Handler string
	Keys    string
}

type staticRouteData struct {
	Method  string
	Pattern string
	Handler string
}

// Output holds the rendered service interface and router.
type Output struct {
	Service string
	Router  string
}

// Generate renders the Service interface and the router. Static routes are
// mounted only when includeStatic is set, since their handlers live in the
// static target's file.
func (t *Target) Generate(engine templates.Engine, m *ir.ApiModel, pkg string, scope *golang.Scope, includeStatic bool) (*Output, error) {
	data := templateData{
		Package:   pkg,
		Framework: t.framework.Name(),
	}

	methods := golang.NewScope()
	for _, op := range m.Operations {
		opData, err := operation(op)
		if err != nil {
			return nil, err
		}
		if err := methods.Declare(opData.GoName, "operation "+op.ID); err != nil {
			return nil, err
		}
		for _, rec := range []struct{ name, fieldsVar string }{
			{op.PathParams, opData.PathFields},
			{op.QueryParams, opData.QueryFields},
		} {
			if rec.name == "" {
				continue
			}
			set, err := paramSet(m, rec.name, rec.fieldsVar)
			if err != nil {
				return nil, fmt.Errorf("operation %s: %w", op.ID, err)
			}
			data.ParamSets = append(data.ParamSets, set)
		}
		data.Operations = append(data.Operations, opData)
	}

	for _, route := range m.Routes {
		op, ok := m.Operation(route.OperationID)
		if !ok {
			return nil, fmt.Errorf("route %s %s: unknown operation %s", route.Method, route.Path, route.OperationID)
		}
		rd, err := t.route(route, op)
		if err != nil {
			return nil, err
		}
		data.Routes = append(data.Routes, rd)
	}

	if includeStatic {
		for _, sr := range m.StaticRoutes {
			pattern, err := t.framework.ConvertPath(sr.Path, nil)
			if err != nil {
				return nil, err
			}
			data.StaticRoutes = append(data.StaticRoutes, staticRouteData{
				Method:  string(sr.Method),
				Pattern: pattern,
				Handler: static.HandlerName(sr.Definition),
			})
		}
	}

	for _, name := range []string{"Service", "NewHandler"} {
		if err := scope.Declare(name, "generated server"); err != nil {
			return nil, err
		}
	}

	service, err := engine.Execute("go/service.tmpl", data)
	if err != nil {
		return nil, err
	}
	router, err := engine.Execute(t.framework.TemplateName(), data)
	if err != nil {
		return nil, err
	}
	return &Output{Service: service, Router: router}, nil
}

func operation(op *ir.Operation) (operationData, error) {
	data := operationData{
		ID:     op.ID,
		GoName: golang.Identifier(op.ID),
		Doc:    op.Doc,
	}

	args := []string{"ctx context.Context"}
	var call strings.Builder
	if op.PathParams != "" {
		data.PathType = op.PathParams
		data.PathFields = golang.Unexported(op.PathParams) + "Fields"
		args = append(args, "path "+op.PathParams)
		call.WriteString(", path")
	}
	if op.QueryParams != "" {
		data.QueryType = op.QueryParams
		data.QueryFields = golang.Unexported(op.QueryParams) + "Fields"
		args = append(args, "query "+op.QueryParams)
		call.WriteString(", query")
	}
	if op.Body != nil {
		typ := golang.GoType(op.Body.Type)
		if typ == "" {
			return operationData{}, fmt.Errorf("operation %s: request body has no type", op.ID)
		}
		data.Body = &bodyData{Type: typ, Optional: op.Body.Optional}
		if op.Body.Optional {
			typ = "*" + typ
		}
		args = append(args, "body "+typ)
		call.WriteString(", body")
	}
	data.CallArgs = call.String()

	ret := "error"
	if op.Response.Kind != ir.KindUnit {
		data.Response = golang.GoType(op.Response)
		ret = "(" + data.Response + ", error)"
	}
	data.Signature = data.GoName + "(" + strings.Join(args, ", ") + ") " + ret
	return data, nil
}

func paramSet(m *ir.ApiModel, recordName, fieldsVar string) (paramSetData, error) {
	def, ok := m.Definition(recordName)
	if !ok {
		return paramSetData{}, fmt.Errorf("unknown parameter record %s", recordName)
	}
	rec, ok := def.Kind.(*ir.Record)
	if !ok {
		return paramSetData{}, fmt.Errorf("parameter type %s is a %s, not a record", recordName, def.Kind.KindName())
	}

	set := paramSetData{Var: fieldsVar}
	for _, p := range rec.Properties {
		typ := p.Type.Unwrap()
		multi := false
		if typ.Kind == ir.KindSequence {
			multi = true
			typ = typ.Elem.Unwrap()
		}
		kind, err := paramKind(m, typ)
		if err != nil {
			return paramSetData{}, fmt.Errorf("parameter %s.%s: %w", recordName, p.WireName, err)
		}
		set.Fields = append(set.Fields, paramFieldData{
			Name:  strconv.Quote(p.WireName),
			Kind:  kind,
			Multi: multi,
		})
	}
	return set, nil
}

func paramKind(m *ir.ApiModel, typ ir.TypeRef) (string, error) {
	switch typ.Kind {
	case ir.KindScalar:
		switch {
		case typ.Scalar.Numeric():
			return "paramNumber", nil
		case typ.Scalar == ir.Bool:
			return "paramBool", nil
		}
		return "paramString", nil
	case ir.KindNamed:
		def, ok := m.Definition(typ.Name)
		if !ok {
			break
		}
		if enum, ok := def.Kind.(*ir.Enumeration); ok && !enum.Tagged() {
			if enum.ValueType.Numeric() {
				return "paramNumber", nil
			}
			return "paramString", nil
		}
	}
	return "", fmt.Errorf("%s cannot be read from a URL", typ)
}

func (t *Target) route(route ir.RouteBinding, op *ir.Operation) (routeData, error) {
	names := ir.PathParams(route.Path)
	keys := make([]string, len(names))
	pairs := make([]string, len(names))
	for i, name := range names {
		keys[i] = "p" + strconv.Itoa(i)
		pairs[i] = strconv.Quote(name) + ": " + strconv.Quote(keys[i])
	}

	pattern, err := t.framework.ConvertPath(route.Path, keys)
	if err != nil {
		return routeData{}, err
	}

	rd := routeData{
		Method:  string(route.Method),
		Pattern: pattern,
		Handler: "handle" + golang.Identifier(op.ID),
		Keys:    "nil",
	}
	if len(pairs) > 0 {
		rd.Keys = "map[string]string{" + strings.Join(pairs, ", ") + "}"
	}
	return rd, nil
}

// renameWildcards replaces the i-th template parameter of path with keys[i].
func renameWildcards(path string, keys []string) (string, error) {
	var b strings.Builder
	i := 0
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(path[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated parameter in path %s", path)
		}
		if i >= len(keys) {
			return "", fmt.Errorf("path %s has more parameters than expected", path)
		}
		b.WriteString(path[:open])
		b.WriteString("{" + keys[i] + "}")
		i++
		path = path[open+end+1:]
	}
	b.WriteString(path)
	return b.String(), nil
}
