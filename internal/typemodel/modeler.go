// Package typemodel turns schemas into model types, registering the records,
// enumerations and default providers they need.
package typemodel

import (
	"strconv"

	"github.com/kolah/apigen/internal/golang"
	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/resolver"
	"github.com/kolah/apigen/internal/specerr"
)

// Modeler models the schemas of one document into one registry.
type Modeler struct {
	res      *resolver.Resolver
	reg      *ir.Registry
	memo     map[string]ir.TypeRef
	defaults map[defaultKey]string
}

// New creates a Modeler that resolves through res and registers into reg.
func New(res *resolver.Resolver, reg *ir.Registry) *Modeler {
	return &Modeler{
		res:      res,
		reg:      reg,
		memo:     make(map[string]ir.TypeRef),
		defaults: make(map[defaultKey]string),
	}
}

// Field is one property of a record assembled by the caller, such as the
// path parameters of an operation.
type Field struct {
	Name     string
	Schema   *model.Schema
	Required bool
	Doc      string
	Pointer  string
}

// Type returns the type of s. Inline objects and enumerations are registered
// under name; component schemas use their sanitized component name instead.
func (m *Modeler) Type(s *model.Schema, name, pointer string) (ir.TypeRef, error) {
	res, err := m.res.Schema(s)
	if err != nil {
		return ir.TypeRef{}, specerr.WithPointer(err, pointer)
	}
	if res.Name == "" {
		return m.inline(res.Schema, name, pointer)
	}
	if t, ok := m.memo[res.Pointer]; ok {
		return t, nil
	}
	if err := m.res.Enter(res.Pointer); err != nil {
		return ir.TypeRef{}, err
	}
	defer m.res.Leave(res.Pointer)

	t, err := m.inline(res.Schema, golang.Sanitize(res.Name), res.Pointer)
	if err != nil {
		return ir.TypeRef{}, err
	}
	m.memo[res.Pointer] = t
	return t, nil
}

// Record registers a record built from fields and returns a reference to it.
func (m *Modeler) Record(name, doc string, fields []Field, pointer string) (ir.TypeRef, error) {
	rec := &ir.Record{Doc: doc}
	owners := make(map[string]string, len(fields))
	for _, f := range fields {
		prop, err := m.property(name, f)
		if err != nil {
			return ir.TypeRef{}, err
		}
		if other, taken := owners[prop.Identifier]; taken {
			return ir.TypeRef{}, specerr.New(specerr.CodeNameCollision, pointer,
				"properties %q and %q of %s both map to identifier %s", other, f.Name, name, prop.Identifier)
		}
		owners[prop.Identifier] = f.Name
		rec.Properties = append(rec.Properties, prop)
	}
	if err := m.register(name, rec, pointer); err != nil {
		return ir.TypeRef{}, err
	}
	return ir.Named(name), nil
}

func (m *Modeler) inline(s *model.Schema, name, pointer string) (ir.TypeRef, error) {
	switch {
	case len(s.AllOf) > 0:
		return ir.TypeRef{}, specerr.Unsupported(pointer, "allOf is not supported")
	case len(s.AnyOf) > 0:
		return ir.TypeRef{}, specerr.Unsupported(pointer, "anyOf is not supported")
	case len(s.OneOf) > 0:
		return m.union(s, name, pointer)
	case len(s.Enum) > 0:
		return m.enumeration(s, name, pointer)
	}

	switch s.Type {
	case model.TypeString:
		return ir.ScalarOf(stringScalar(s.Format)), nil
	case model.TypeInteger:
		if s.Format == "int32" {
			return ir.ScalarOf(ir.Int32), nil
		}
		return ir.ScalarOf(ir.Int64), nil
	case model.TypeNumber:
		if s.Format == "float" {
			return ir.ScalarOf(ir.Float32), nil
		}
		return ir.ScalarOf(ir.Float64), nil
	case model.TypeBoolean:
		return ir.ScalarOf(ir.Bool), nil
	case model.TypeArray:
		if s.Items == nil {
			return ir.TypeRef{}, specerr.Unsupported(pointer, "array schema without items")
		}
		elem, err := m.Type(s.Items, name+"Item", specerr.Append(pointer, "items"))
		if err != nil {
			return ir.TypeRef{}, err
		}
		return ir.SequenceOf(elem), nil
	case model.TypeObject, "":
		if len(s.Properties) > 0 {
			return m.record(s, name, pointer)
		}
		if s.AdditionalProperties != nil {
			elem, err := m.Type(s.AdditionalProperties, name+"Value", specerr.Append(pointer, "additionalProperties"))
			if err != nil {
				return ir.TypeRef{}, err
			}
			return ir.MapOf(elem), nil
		}
		return ir.AnyType(), nil
	}
	return ir.TypeRef{}, specerr.Unsupported(pointer, "schema type %q is not supported", s.Type)
}

func stringScalar(format string) ir.Scalar {
	switch format {
	case "date":
		return ir.Date
	case "date-time":
		return ir.DateTime
	case "byte", "binary":
		return ir.Bytes
	}
	return ir.String
}

func (m *Modeler) record(s *model.Schema, name, pointer string) (ir.TypeRef, error) {
	return m.Record(name, doc(s), fields(s, pointer, ""), pointer)
}

// fields lists the properties of s, leaving out the one named skip.
func fields(s *model.Schema, pointer, skip string) []Field {
	out := make([]Field, 0, len(s.Properties))
	for _, p := range s.Properties {
		if p.Name == skip {
			continue
		}
		out = append(out, Field{
			Name:     p.Name,
			Schema:   p.Schema,
			Required: s.IsRequired(p.Name),
			Pointer:  specerr.Append(pointer, "properties", p.Name),
		})
	}
	return out
}

// property applies the nullability and default rules to one field:
//
//	required  nullable  default  type         provider
//	no        no        yes      T            literal
//	no        no        no       T            none
//	no        yes       yes      optional(T)  present literal
//	no        yes       no       optional(T)  none
//	yes       no        no       T            none
//	yes       yes       no       optional(T)  none
//
// A required field with a non-null default is ambiguous.
func (m *Modeler) property(parent string, f Field) (ir.Property, error) {
	res, err := m.res.Schema(f.Schema)
	if err != nil {
		return ir.Property{}, specerr.WithPointer(err, f.Pointer)
	}
	typ, err := m.Type(f.Schema, parent+golang.Sanitize(f.Name), f.Pointer)
	if err != nil {
		return ir.Property{}, err
	}

	def := res.Schema.Default
	if def != nil && def.Kind == model.ValueNull {
		def = nil
	}
	if f.Required && def != nil {
		return ir.Property{}, specerr.New(specerr.CodeAmbiguousDefault, f.Pointer,
			"required property %q declares default %s", f.Name, def.Text)
	}
	if res.Schema.Nullable {
		typ = ir.OptionalOf(typ)
	}

	prop := ir.Property{
		Identifier: golang.Identifier(f.Name),
		WireName:   f.Name,
		Type:       typ,
		Required:   f.Required,
		Doc:        f.Doc,
	}
	if prop.Doc == "" {
		prop.Doc = doc(res.Schema)
	}
	if def != nil {
		prop.Default, err = m.defaultProvider(typ, *def, specerr.Append(f.Pointer, "default"))
		if err != nil {
			return ir.Property{}, err
		}
	}
	return prop, nil
}

func (m *Modeler) enumeration(s *model.Schema, name, pointer string) (ir.TypeRef, error) {
	valueType, err := enumValueType(s, pointer)
	if err != nil {
		return ir.TypeRef{}, err
	}

	enum := &ir.Enumeration{Doc: doc(s), ValueType: valueType}
	owners := make(map[string]string, len(s.Enum))
	for i, v := range s.Enum {
		if v.Kind == model.ValueNull {
			continue
		}
		wire, ok := canonicalEnumValue(valueType, v)
		if !ok {
			return ir.TypeRef{}, specerr.Unsupported(specerr.Append(pointer, "enum", strconv.Itoa(i)),
				"enum value %s does not match type %s", v.Text, valueType)
		}
		id := golang.Identifier(wire)
		if other, taken := owners[id]; taken {
			if other == wire {
				continue
			}
			return ir.TypeRef{}, specerr.New(specerr.CodeNameCollision, pointer,
				"enum values %q and %q of %s both map to identifier %s", other, wire, name, id)
		}
		owners[id] = wire
		enum.Variants = append(enum.Variants, ir.Variant{Identifier: id, WireValue: wire})
	}
	if err := m.register(name, enum, pointer); err != nil {
		return ir.TypeRef{}, err
	}
	return ir.Named(name), nil
}

func enumValueType(s *model.Schema, pointer string) (ir.Scalar, error) {
	switch s.Type {
	case model.TypeString:
		return ir.String, nil
	case model.TypeInteger:
		return ir.Int64, nil
	case "":
		for _, v := range s.Enum {
			switch v.Kind {
			case model.ValueString:
				return ir.String, nil
			case model.ValueInt:
				return ir.Int64, nil
			}
		}
	}
	return "", specerr.Unsupported(pointer, "enum of type %q is not supported", s.Type)
}

func canonicalEnumValue(valueType ir.Scalar, v model.Value) (string, bool) {
	switch {
	case valueType == ir.String && v.Kind == model.ValueString:
		return v.Text, true
	case valueType == ir.Int64 && v.Kind == model.ValueInt:
		n, err := strconv.ParseInt(v.Text, 0, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

// union models oneOf with a discriminator as a tagged enumeration. Each
// member must be an object. Its payload record is named after the union and
// the variant and leaves out the discriminator property, so a component
// that is also used on its own keeps its full record.
func (m *Modeler) union(s *model.Schema, name, pointer string) (ir.TypeRef, error) {
	if s.Discriminator == nil || s.Discriminator.PropertyName == "" {
		return ir.TypeRef{}, specerr.Unsupported(pointer, "oneOf without a discriminator is not supported")
	}

	enum := &ir.Enumeration{Doc: doc(s), Discriminator: s.Discriminator.PropertyName}
	owners := make(map[string]string, len(s.OneOf))
	for i, member := range s.OneOf {
		memberPointer := specerr.Append(pointer, "oneOf", strconv.Itoa(i))
		res, err := m.res.Schema(member)
		if err != nil {
			return ir.TypeRef{}, specerr.WithPointer(err, memberPointer)
		}
		wire, err := m.discriminatorValue(s.Discriminator, member, res)
		if err != nil {
			return ir.TypeRef{}, specerr.WithPointer(err, memberPointer)
		}
		if wire == "" {
			return ir.TypeRef{}, specerr.Unsupported(memberPointer, "cannot determine the %q value of an inline member", s.Discriminator.PropertyName)
		}

		id := golang.Identifier(wire)
		if other, taken := owners[id]; taken {
			return ir.TypeRef{}, specerr.New(specerr.CodeNameCollision, pointer,
				"variants %q and %q of %s both map to identifier %s", other, wire, name, id)
		}
		owners[id] = wire

		payload, err := m.payload(res, name+golang.Sanitize(wire), s.Discriminator.PropertyName, memberPointer)
		if err != nil {
			return ir.TypeRef{}, err
		}
		enum.Variants = append(enum.Variants, ir.Variant{Identifier: id, WireValue: wire, Payload: payload})
	}
	if err := m.register(name, enum, pointer); err != nil {
		return ir.TypeRef{}, err
	}
	return ir.Named(name), nil
}

// discriminatorValue looks for the wire value of a member: the mapping
// first, then a single-valued enum on the member's discriminator property,
// then the component name.
func (m *Modeler) discriminatorValue(d *model.Discriminator, member *model.Schema, res resolver.Resolved) (string, error) {
	for _, entry := range d.Mapping {
		if member.Ref != "" && entry.Ref == member.Ref {
			return entry.Value, nil
		}
		if res.Name != "" && (entry.Ref == res.Name || entry.Ref == res.Pointer) {
			return entry.Value, nil
		}
	}
	if prop := res.Schema.Property(d.PropertyName); prop != nil {
		p, err := m.res.Schema(prop)
		if err != nil {
			return "", err
		}
		if len(p.Schema.Enum) == 1 && p.Schema.Enum[0].Kind == model.ValueString {
			return p.Schema.Enum[0].Text, nil
		}
	}
	return res.Name, nil
}

func (m *Modeler) payload(res resolver.Resolved, name, discriminator, pointer string) (string, error) {
	s := res.Schema
	if s.Type != model.TypeObject && s.Type != "" || len(s.Properties) == 0 ||
		len(s.AllOf)+len(s.AnyOf)+len(s.OneOf)+len(s.Enum) > 0 {
		return "", specerr.Unsupported(pointer, "oneOf member must be an object with properties")
	}
	if res.Name != "" {
		if err := m.res.Enter(res.Pointer); err != nil {
			return "", err
		}
		defer m.res.Leave(res.Pointer)
		pointer = res.Pointer
	}
	if _, err := m.Record(name, doc(s), fields(s, pointer, discriminator), pointer); err != nil {
		return "", err
	}
	return name, nil
}

func (m *Modeler) register(name string, kind ir.DefinitionKind, pointer string) error {
	if _, err := m.reg.Register(ir.Definition{Name: name, Kind: kind}); err != nil {
		return specerr.WithPointer(err, pointer)
	}
	return nil
}

func doc(s *model.Schema) string {
	if s.Description != "" {
		return s.Description
	}
	return s.Title
}
