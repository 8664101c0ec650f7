package ir

import "strings"

// TypeKind tells which fields of a TypeRef are meaningful.
type TypeKind string

const (
	KindScalar   TypeKind = "scalar"
	KindSequence TypeKind = "sequence"
	KindMap      TypeKind = "map"
	KindOptional TypeKind = "optional"
	KindNamed    TypeKind = "named"
	KindAny      TypeKind = "any"
	KindUnit     TypeKind = "unit"
)

type Scalar string

const (
	String   Scalar = "string"
	Bytes    Scalar = "bytes"
	Date     Scalar = "date"
	DateTime Scalar = "date-time"
	Int32    Scalar = "int32"
	Int64    Scalar = "int64"
	Float32  Scalar = "float32"
	Float64  Scalar = "float64"
	Bool     Scalar = "bool"
)

// Numeric reports whether values of the scalar are written as JSON numbers.
func (s Scalar) Numeric() bool {
	switch s {
	case Int32, Int64, Float32, Float64:
		return true
	}
	return false
}

// TypeRef describes the type of a property, body or response. Named refers
// to a definition in the model by name.
type TypeRef struct {
	Kind   TypeKind `yaml:"kind"`
	Scalar Scalar   `yaml:"scalar,omitempty"`
	Elem   *TypeRef `yaml:"elem,omitempty"`
	Name   string   `yaml:"name,omitempty"`
}

func ScalarOf(s Scalar) TypeRef { return TypeRef{Kind: KindScalar, Scalar: s} }

func SequenceOf(t TypeRef) TypeRef { return TypeRef{Kind: KindSequence, Elem: &t} }

func MapOf(t TypeRef) TypeRef { return TypeRef{Kind: KindMap, Elem: &t} }

// OptionalOf wraps t. Optional types never nest.
func OptionalOf(t TypeRef) TypeRef {
	if t.Kind == KindOptional {
		return t
	}
	return TypeRef{Kind: KindOptional, Elem: &t}
}

func Named(name string) TypeRef { return TypeRef{Kind: KindNamed, Name: name} }

func AnyType() TypeRef { return TypeRef{Kind: KindAny} }

func UnitType() TypeRef { return TypeRef{Kind: KindUnit} }

// IsOptional reports whether t is an optional wrapper.
func (t TypeRef) IsOptional() bool { return t.Kind == KindOptional }

// Unwrap strips an optional wrapper.
func (t TypeRef) Unwrap() TypeRef {
	if t.Kind == KindOptional && t.Elem != nil {
		return *t.Elem
	}
	return t
}

// Equal compares two type references structurally.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Kind != o.Kind || t.Scalar != o.Scalar || t.Name != o.Name {
		return false
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	return t.Elem == nil || t.Elem.Equal(*o.Elem)
}

// String renders the type compactly, e.g. "?[]int64" or "map[Pet]".
func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case KindScalar:
		b.WriteString(string(t.Scalar))
	case KindNamed:
		b.WriteString(t.Name)
	case KindSequence:
		b.WriteString("[]")
		t.Elem.write(b)
	case KindMap:
		b.WriteString("map[")
		t.Elem.write(b)
		b.WriteString("]")
	case KindOptional:
		b.WriteString("?")
		t.Elem.write(b)
	default:
		b.WriteString(string(t.Kind))
	}
}

// LiteralKind is the JSON kind of a default literal.
type LiteralKind string

const (
	LiteralString LiteralKind = "string"
	LiteralInt    LiteralKind = "int"
	LiteralFloat  LiteralKind = "float"
	LiteralBool   LiteralKind = "bool"
)

// Literal is a default value in canonical text form.
type Literal struct {
	Kind  LiteralKind `yaml:"kind"`
	Value string      `yaml:"value"`
}
