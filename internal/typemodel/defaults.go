package typemodel

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/kolah/apigen/internal/golang"
	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/specerr"
)

// defaultKey identifies a provider: the full value type, optional wrapper
// included, and the canonical literal.
type defaultKey struct {
	valueType string
	literal   ir.Literal
}

// defaultProvider returns the name of the provider yielding v as a value of
// typ, registering it on first use.
func (m *Modeler) defaultProvider(typ ir.TypeRef, v model.Value, pointer string) (string, error) {
	lit, word, token, err := m.literal(typ.Unwrap(), v, pointer)
	if err != nil {
		return "", err
	}

	key := defaultKey{valueType: typ.String(), literal: lit}
	if name, ok := m.defaults[key]; ok {
		return name, nil
	}

	prefix := "Default"
	if typ.IsOptional() {
		prefix = "OptDefault"
	}
	name := prefix + word + token
	if err := m.register(name, &ir.DefaultValueProvider{ValueType: typ, Literal: lit}, pointer); err != nil {
		return "", err
	}
	m.defaults[key] = name
	return name, nil
}

// literal checks v against the value type and returns the canonical literal
// together with the type word and literal token used to name its provider.
func (m *Modeler) literal(base ir.TypeRef, v model.Value, pointer string) (ir.Literal, string, string, error) {
	mismatch := func() (ir.Literal, string, string, error) {
		return ir.Literal{}, "", "", specerr.Unsupported(pointer, "default %s (%s) is not a valid %s", v.Text, v.Kind, base)
	}

	switch base.Kind {
	case ir.KindScalar:
		switch base.Scalar {
		case ir.String:
			if v.Kind != model.ValueString {
				return mismatch()
			}
			return ir.Literal{Kind: ir.LiteralString, Value: v.Text}, "Str", stringToken(v.Text), nil
		case ir.Int32, ir.Int64:
			if v.Kind != model.ValueInt {
				return mismatch()
			}
			n, err := strconv.ParseInt(v.Text, 0, 64)
			if err != nil || (base.Scalar == ir.Int32 && (n < math.MinInt32 || n > math.MaxInt32)) {
				return mismatch()
			}
			text := strconv.FormatInt(n, 10)
			word := "Int"
			if base.Scalar == ir.Int32 {
				word = "Int32"
			}
			return ir.Literal{Kind: ir.LiteralInt, Value: text}, word, numberToken(text), nil
		case ir.Float32, ir.Float64:
			if v.Kind != model.ValueInt && v.Kind != model.ValueFloat {
				return mismatch()
			}
			f, err := strconv.ParseFloat(v.Text, 64)
			if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
				return mismatch()
			}
			text := strconv.FormatFloat(f, 'g', -1, 64)
			word := "Float"
			if base.Scalar == ir.Float32 {
				word = "Float32"
			}
			return ir.Literal{Kind: ir.LiteralFloat, Value: text}, word, numberToken(text), nil
		case ir.Bool:
			if v.Kind != model.ValueBool {
				return mismatch()
			}
			b, err := strconv.ParseBool(v.Text)
			if err != nil {
				return mismatch()
			}
			if b {
				return ir.Literal{Kind: ir.LiteralBool, Value: "true"}, "Bool", "True", nil
			}
			return ir.Literal{Kind: ir.LiteralBool, Value: "false"}, "Bool", "False", nil
		}
	case ir.KindNamed:
		def, ok := m.reg.Lookup(base.Name)
		if !ok {
			break
		}
		enum, ok := def.Kind.(*ir.Enumeration)
		if !ok || enum.Tagged() {
			break
		}
		wire, ok := canonicalEnumValue(enum.ValueType, v)
		if !ok {
			return mismatch()
		}
		variant, ok := enum.Variant(wire)
		if !ok {
			return ir.Literal{}, "", "", specerr.Unsupported(pointer, "default %q is not a value of %s", wire, base.Name)
		}
		kind := ir.LiteralString
		if enum.ValueType == ir.Int64 {
			kind = ir.LiteralInt
		}
		return ir.Literal{Kind: kind, Value: wire}, base.Name, variant.Identifier, nil
	}
	return ir.Literal{}, "", "", specerr.Unsupported(pointer, "defaults are not supported for %s", base)
}

// stringToken keeps literals that survive sanitizing unchanged and appends a
// hash of the raw text to the others so distinct literals never share a name.
func stringToken(s string) string {
	if s != "" && golang.IsLossless(s) {
		return s
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%s_%08x", golang.Sanitize(s), h.Sum32())
}

func numberToken(s string) string {
	r := strings.NewReplacer("-", "Neg", "+", "", ".", "_")
	return r.Replace(s)
}
