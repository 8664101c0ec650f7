package types

import (
	"fmt"
	"strconv"

	"github.com/kolah/apigen/internal/golang"
	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/templates"
)

type Target struct{}

func New() *Target {
	return &Target{}
}

func (t *Target) Name() string {
	return "types"
}

type templateData struct {
	Package             string
	Decls               []declData
	HasTagged           bool
	HasOptionalDefaults bool
}

// declData carries exactly one non-nil member.
type declData struct {
	Provider *providerData
	Enum     *enumData
	Union    *unionData
	Record   *recordData
	ErrorSet *errorSetData
}

type providerData struct {
	Name    string
	Type    string
	Expr    string
	Literal string
}

type enumData struct {
	Name     string
	Doc      string
	BaseType string
	Values   []enumValueData
	Consts   []string
}

type enumValueData struct {
	Const   string
	Literal string
}

type unionData struct {
	Name          string
	Doc           string
	Discriminator string
	Variants      []unionVariantData
}

type unionVariantData struct {
	Field   string
	Tag     string
	Payload string
}

type recordData struct {
	Name     string
	Doc      string
	Fields   []fieldData
	Defaults []fieldDefaultData
}

type fieldData struct {
	Name string
	Type string
	Tag  string
	Doc  string
}

type fieldDefaultData struct {
	Field    string
	Provider string
}

type errorSetData struct {
	Name     string
	Doc      string
	Variants []errorVariantData
}

type errorVariantData struct {
	Const  string
	Detail string
	Status int
}

// Generate renders every type-like definition of m. Static definitions are
// rendered by the static target. Package-level names are declared in scope
// so that collisions surface here rather than in the compiler.
func (t *Target) Generate(engine templates.Engine, m *ir.ApiModel, pkg string, scope *golang.Scope) (string, error) {
	data := templateData{Package: pkg}

	for _, def := range m.Definitions {
		var decl declData
		var err error
		switch kind := def.Kind.(type) {
		case *ir.DefaultValueProvider:
			decl.Provider, err = provider(def.Name, kind)
			if kind.ValueType.IsOptional() {
				data.HasOptionalDefaults = true
			}
		case *ir.Enumeration:
			if kind.Tagged() {
				decl.Union = union(def.Name, kind)
				data.HasTagged = true
			} else {
				decl.Enum, err = enumeration(def.Name, kind, scope)
			}
		case *ir.Record:
			decl.Record = record(def.Name, kind)
		case *ir.ErrorSet:
			decl.ErrorSet, err = errorSet(def.Name, kind, scope)
		default:
			continue
		}
		if err != nil {
			return "", err
		}
		if err := scope.Declare(def.Name, def.Kind.KindName()+" "+def.Name); err != nil {
			return "", err
		}
		data.Decls = append(data.Decls, decl)
	}

	return engine.Execute("go/types.tmpl", data)
}

func provider(name string, p *ir.DefaultValueProvider) (*providerData, error) {
	expr, err := golang.Literal(p.ValueType, p.Literal)
	if err != nil {
		return nil, fmt.Errorf("default provider %s: %w", name, err)
	}
	lit := p.Literal.Value
	if p.Literal.Kind == ir.LiteralString {
		lit = strconv.Quote(lit)
	}
	return &providerData{
		Name:    name,
		Type:    golang.GoType(p.ValueType),
		Expr:    expr,
		Literal: lit,
	}, nil
}

func enumeration(name string, e *ir.Enumeration, scope *golang.Scope) (*enumData, error) {
	data := &enumData{
		Name:     name,
		Doc:      e.Doc,
		BaseType: golang.GoType(ir.ScalarOf(e.ValueType)),
	}
	for _, v := range e.Variants {
		lit := v.WireValue
		if e.ValueType == ir.String {
			lit = strconv.Quote(lit)
		}
		constName := name + v.Identifier
		if err := scope.Declare(constName, "value "+strconv.Quote(v.WireValue)+" of "+name); err != nil {
			return nil, err
		}
		data.Values = append(data.Values, enumValueData{Const: constName, Literal: lit})
		data.Consts = append(data.Consts, constName)
	}
	return data, nil
}

func union(name string, e *ir.Enumeration) *unionData {
	data := &unionData{
		Name:          name,
		Doc:           e.Doc,
		Discriminator: e.Discriminator,
	}
	for _, v := range e.Variants {
		data.Variants = append(data.Variants, unionVariantData{
			Field:   v.Identifier,
			Tag:     v.WireValue,
			Payload: v.Payload,
		})
	}
	return data
}

func record(name string, r *ir.Record) *recordData {
	data := &recordData{Name: name, Doc: r.Doc}
	for _, p := range r.Properties {
		data.Fields = append(data.Fields, fieldData{
			Name: p.Identifier,
			Type: golang.GoType(p.Type),
			Tag:  golang.JSONTag(p),
			Doc:  p.Doc,
		})
		if p.Default != "" {
			data.Defaults = append(data.Defaults, fieldDefaultData{Field: p.Identifier, Provider: p.Default})
		}
	}
	return data
}

func errorSet(name string, e *ir.ErrorSet, scope *golang.Scope) (*errorSetData, error) {
	data := &errorSetData{Name: name, Doc: e.Doc}
	for _, v := range e.Variants {
		constName := name + v.Identifier
		if err := scope.Declare(constName, "error "+v.Identifier+" of "+name); err != nil {
			return nil, err
		}
		data.Variants = append(data.Variants, errorVariantData{
			Const:  constName,
			Detail: v.Detail,
			Status: v.Status,
		})
	}
	return data, nil
}
