// Package opbuilder models the operations of one OpenAPI document.
//
// Each document is built into its own registry, so documents can be built
// concurrently; merging the results is left to the merge engine.
package opbuilder

import (
	"slices"
	"strings"

	"github.com/kolah/apigen/internal/golang"
	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/resolver"
	"github.com/kolah/apigen/internal/specerr"
	"github.com/kolah/apigen/internal/typemodel"
)

// methodOrder is the order operations of one path are processed in.
var methodOrder = []model.Method{
	model.MethodGet,
	model.MethodPost,
	model.MethodPut,
	model.MethodDelete,
	model.MethodPatch,
	model.MethodHead,
	model.MethodOptions,
	model.MethodTrace,
}

type builder struct {
	res   *resolver.Resolver
	reg   *ir.Registry
	types *typemodel.Modeler
}

// Build models every operation of spec. prefix is the version label ("v1")
// and source the document path; both are carried into the result.
func Build(spec *model.Spec, prefix, source string) (*ir.VersionModel, error) {
	res := resolver.New(spec)
	reg := ir.NewRegistry()
	b := &builder{res: res, reg: reg, types: typemodel.New(res, reg)}

	vm := &ir.VersionModel{Prefix: prefix, Source: source}
	ids := make(map[string]string)
	slots := make(map[string]string)

	for _, path := range spec.Paths {
		for _, op := range sortOperations(path.Operations) {
			pointer := specerr.Pointer("paths", path.Path, strings.ToLower(string(op.Method)))
			if op.ID == "" {
				return nil, specerr.Unsupported(pointer, "operation has no operationId")
			}
			if prev, dup := ids[op.ID]; dup {
				return nil, specerr.New(specerr.CodeRouteConflict, pointer,
					"operationId %q is already used at %s", op.ID, prev)
			}
			ids[op.ID] = pointer

			method := ir.Method(op.Method)
			key := ir.RouteKey(method, path.Path)
			if prev, dup := slots[key]; dup {
				return nil, specerr.New(specerr.CodeRouteConflict, pointer,
					"%s %s overlaps %s %s", method, path.Path, method, prev)
			}
			slots[key] = path.Path

			operation, err := b.operation(path, op, pointer)
			if err != nil {
				return nil, err
			}
			vm.Operations = append(vm.Operations, operation)
			vm.Bindings = append(vm.Bindings, ir.RouteBinding{OperationID: op.ID, Path: path.Path, Method: method})
		}
	}

	vm.Definitions = reg.Definitions()
	return vm, nil
}

func sortOperations(ops []model.Operation) []model.Operation {
	sorted := slices.Clone(ops)
	slices.SortStableFunc(sorted, func(a, b model.Operation) int {
		return methodRank(a.Method) - methodRank(b.Method)
	})
	return sorted
}

func methodRank(m model.Method) int {
	if i := slices.Index(methodOrder, m); i >= 0 {
		return i
	}
	return len(methodOrder)
}

func (b *builder) operation(path model.Path, op model.Operation, pointer string) (*ir.Operation, error) {
	name := golang.Sanitize(op.ID)
	out := &ir.Operation{ID: op.ID, Doc: operationDoc(op)}

	pathFields, queryFields, err := b.parameters(path, op, pointer)
	if err != nil {
		return nil, err
	}
	if len(pathFields) > 0 {
		out.PathParams, err = b.paramRecord(name+"Path", pathFields, false, pointer)
		if err != nil {
			return nil, err
		}
	}
	if len(queryFields) > 0 {
		out.QueryParams, err = b.paramRecord(name+"Query", queryFields, true, pointer)
		if err != nil {
			return nil, err
		}
	}

	if op.RequestBody != nil {
		bodyPointer := specerr.Append(pointer, "requestBody")
		media, ok, err := jsonContent(op.RequestBody.Content, bodyPointer)
		if err != nil {
			return nil, err
		}
		if ok {
			typ, err := b.types.Type(media.Schema, name+"Body", specerr.Append(bodyPointer, "content", media.MediaType, "schema"))
			if err != nil {
				return nil, err
			}
			out.Body = &ir.BodyType{Type: typ, Optional: !op.RequestBody.Required}
		}
	}

	out.Response, err = b.response(name, op.Responses, pointer)
	if err != nil {
		return nil, err
	}
	out.Error, err = b.errorSet(name, op.Responses, pointer)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func operationDoc(op model.Operation) string {
	switch {
	case op.Summary != "" && op.Description != "":
		return op.Summary + "\n\n" + op.Description
	case op.Summary != "":
		return op.Summary
	}
	return op.Description
}

// response models the first 2xx response. A missing body, or no success
// response at all, yields the unit type.
func (b *builder) response(name string, responses []model.Response, pointer string) (ir.TypeRef, error) {
	for _, r := range responses {
		if !isSuccess(r.StatusCode) {
			continue
		}
		respPointer := specerr.Append(pointer, "responses", r.StatusCode)
		media, ok, err := jsonContent(r.Content, respPointer)
		if err != nil || !ok {
			return ir.UnitType(), err
		}
		return b.types.Type(media.Schema, name+"Response", specerr.Append(respPointer, "content", media.MediaType, "schema"))
	}
	return ir.UnitType(), nil
}

func isSuccess(code string) bool {
	return len(code) == 3 && code[0] == '2'
}

// jsonContent picks the JSON media type of a request or response body.
// Content without any JSON media type is unsupported.
func jsonContent(content []model.MediaTypeContent, pointer string) (model.MediaTypeContent, bool, error) {
	if len(content) == 0 {
		return model.MediaTypeContent{}, false, nil
	}
	for _, c := range content {
		if isJSON(c.MediaType) {
			if c.Schema == nil {
				return model.MediaTypeContent{}, false, nil
			}
			return c, true, nil
		}
	}
	return model.MediaTypeContent{}, false, specerr.Unsupported(specerr.Append(pointer, "content"),
		"media type %q is not supported, only application/json", content[0].MediaType)
}

func isJSON(mediaType string) bool {
	mt, _, _ := strings.Cut(mediaType, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	return mt == "application/json" || (strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}
