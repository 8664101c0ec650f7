package model

// Schema is a parsed OpenAPI schema object. When Ref is set the schema is a
// reference and every other field is ignored; references are kept as written
// so that the resolver controls how and when they are followed.
type Schema struct {
	Title       string
	Description string
	Type        SchemaType
	Format      string
	Nullable    bool
	Deprecated  bool

	// Default is nil when the document declares no default.
	Default *Value

	// Object properties
	Properties []Property
	Required   []string

	// Array items
	Items *Schema

	// Enum values
	Enum []Value

	// Composition
	AllOf []*Schema
	OneOf []*Schema
	AnyOf []*Schema

	// Discriminator for oneOf polymorphism
	Discriminator *Discriminator

	// Reference
	Ref string

	// Additional properties for maps
	AdditionalProperties *Schema
}

// IsRequired reports whether the property name is listed in Required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Property returns the named property schema, or nil.
func (s *Schema) Property(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
	TypeObject  SchemaType = "object"
	TypeNull    SchemaType = "null"
)

type Property struct {
	Name   string
	Schema *Schema
}

type Discriminator struct {
	PropertyName string
	// Mapping keeps the declared order: wire value to schema reference.
	Mapping []MappingEntry
}

type MappingEntry struct {
	Value string
	Ref   string
}

// ValueKind is the YAML scalar kind of a literal found in a document.
type ValueKind string

const (
	ValueString ValueKind = "string"
	ValueInt    ValueKind = "int"
	ValueFloat  ValueKind = "float"
	ValueBool   ValueKind = "bool"
	ValueNull   ValueKind = "null"
	// ValueComplex marks sequences and mappings, which are never valid
	// defaults or enum members here.
	ValueComplex ValueKind = "complex"
)

// Value is a scalar literal (default or enum member) with its source text.
type Value struct {
	Kind ValueKind
	Text string
}
