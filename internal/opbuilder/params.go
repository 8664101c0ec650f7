package opbuilder

import (
	"slices"
	"strconv"

	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/specerr"
	"github.com/kolah/apigen/internal/typemodel"
)

type paramKey struct {
	name string
	in   model.ParameterLocation
}

type resolvedParam struct {
	param   *model.Parameter
	pointer string
}

// parameters merges path-item and operation parameters, the latter
// overriding the former by name and location, and splits them into path and
// query fields.
func (b *builder) parameters(path model.Path, op model.Operation, pointer string) (pathFields, queryFields []typemodel.Field, err error) {
	var merged []resolvedParam
	index := make(map[paramKey]int)

	add := func(params []model.Parameter, base string) error {
		for i := range params {
			p, err := b.res.Parameter(&params[i])
			if err != nil {
				return specerr.WithPointer(err, specerr.Append(base, "parameters", strconv.Itoa(i)))
			}
			rp := resolvedParam{param: p, pointer: specerr.Append(base, "parameters", strconv.Itoa(i))}
			key := paramKey{name: p.Name, in: p.In}
			if at, ok := index[key]; ok {
				merged[at] = rp
				continue
			}
			index[key] = len(merged)
			merged = append(merged, rp)
		}
		return nil
	}
	if err := add(path.Parameters, specerr.Pointer("paths", path.Path)); err != nil {
		return nil, nil, err
	}
	if err := add(op.Parameters, pointer); err != nil {
		return nil, nil, err
	}

	declared := make(map[string]bool)
	for _, rp := range merged {
		p := rp.param
		field := typemodel.Field{
			Name:     p.Name,
			Schema:   p.Schema,
			Required: p.Required,
			Doc:      p.Description,
			Pointer:  specerr.Append(rp.pointer, "schema"),
		}
		if p.Schema == nil {
			return nil, nil, specerr.Unsupported(rp.pointer, "parameter %q has no schema", p.Name)
		}
		switch p.In {
		case model.LocationPath:
			field.Required = true
			declared[p.Name] = true
			pathFields = append(pathFields, field)
		case model.LocationQuery:
			queryFields = append(queryFields, field)
		default:
			return nil, nil, specerr.Unsupported(rp.pointer, "%s parameter %q is not supported", p.In, p.Name)
		}
	}

	template := ir.PathParams(path.Path)
	for _, name := range template {
		if !declared[name] {
			return nil, nil, specerr.Unsupported(pointer, "path parameter {%s} is not declared", name)
		}
	}
	for _, f := range pathFields {
		if !slices.Contains(template, f.Name) {
			return nil, nil, specerr.Unsupported(pointer, "path parameter %q does not appear in %s", f.Name, path.Path)
		}
	}
	return pathFields, queryFields, nil
}

// paramRecord registers the record of path or query parameters and checks
// that every property can be decoded from a URL: scalars and plain
// enumerations, and in the query string also sequences of those.
func (b *builder) paramRecord(name string, fields []typemodel.Field, allowSequence bool, pointer string) (string, error) {
	typ, err := b.types.Record(name, "", fields, specerr.Append(pointer, "parameters"))
	if err != nil {
		return "", err
	}
	def, _ := b.reg.Lookup(typ.Name)
	rec := def.Kind.(*ir.Record)
	for i, prop := range rec.Properties {
		t := prop.Type.Unwrap()
		if allowSequence && t.Kind == ir.KindSequence {
			t = *t.Elem
		}
		if !b.urlEncodable(t) {
			return "", specerr.Unsupported(fields[i].Pointer, "parameter %q of type %s cannot be carried in a URL", prop.WireName, prop.Type)
		}
	}
	return typ.Name, nil
}

func (b *builder) urlEncodable(t ir.TypeRef) bool {
	switch t.Kind {
	case ir.KindScalar:
		return true
	case ir.KindNamed:
		def, ok := b.reg.Lookup(t.Name)
		if !ok {
			return false
		}
		enum, ok := def.Kind.(*ir.Enumeration)
		return ok && !enum.Tagged()
	}
	return false
}
