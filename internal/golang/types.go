package golang

import (
	"fmt"
	"strconv"

	"github.com/kolah/apigen/internal/ir"
)

// GoType renders a type reference as Go source. The unit type has no Go
// spelling and renders as the empty string.
func GoType(t ir.TypeRef) string {
	switch t.Kind {
	case ir.KindScalar:
		return scalarType(t.Scalar)
	case ir.KindSequence:
		return "[]" + GoType(*t.Elem)
	case ir.KindMap:
		return "map[string]" + GoType(*t.Elem)
	case ir.KindOptional:
		if t.Elem.Kind == ir.KindAny {
			return "any"
		}
		return "*" + GoType(*t.Elem)
	case ir.KindNamed:
		return t.Name
	case ir.KindAny:
		return "any"
	}
	return ""
}

func scalarType(s ir.Scalar) string {
	switch s {
	case ir.Bytes:
		return "[]byte"
	case ir.DateTime:
		return "time.Time"
	case ir.Int32:
		return "int32"
	case ir.Int64:
		return "int64"
	case ir.Float32:
		return "float32"
	case ir.Float64:
		return "float64"
	case ir.Bool:
		return "bool"
	}
	// Dates have no standard library type that marshals as "2006-01-02".
	return "string"
}

// NeedsTime reports whether rendering t references package time.
func NeedsTime(t ir.TypeRef) bool {
	if t.Kind == ir.KindScalar {
		return t.Scalar == ir.DateTime
	}
	if t.Elem != nil {
		return NeedsTime(*t.Elem)
	}
	return false
}

// JSONTag renders the struct tag of a record field. Optional fields, and
// fields that are neither required nor defaulted, are omitted when empty so
// that an unset enumeration is not sent as an invalid zero value.
func JSONTag(p ir.Property) string {
	value := p.WireName
	if p.Type.IsOptional() || !p.Required && p.Default == "" {
		value += ",omitempty"
	}
	tag := "json:" + strconv.Quote(value)
	if strconv.CanBackquote(tag) {
		return "`" + tag + "`"
	}
	return strconv.Quote(tag)
}

// Literal renders a default as a Go expression of the given value type.
// Optional value types yield a pointer to the value.
func Literal(valueType ir.TypeRef, lit ir.Literal) (string, error) {
	base := valueType.Unwrap()
	var expr string
	switch lit.Kind {
	case ir.LiteralString:
		expr = strconv.Quote(lit.Value)
	case ir.LiteralInt, ir.LiteralFloat, ir.LiteralBool:
		expr = lit.Value
	default:
		return "", fmt.Errorf("unknown literal kind %q", lit.Kind)
	}
	switch base.Kind {
	case ir.KindScalar:
		if base.Scalar != ir.String && base.Scalar != ir.Bool {
			expr = GoType(base) + "(" + expr + ")"
		}
	case ir.KindNamed:
		expr = base.Name + "(" + expr + ")"
	default:
		return "", fmt.Errorf("no literal form for %s", base)
	}
	if valueType.IsOptional() {
		return "ptr(" + expr + ")", nil
	}
	return expr, nil
}
