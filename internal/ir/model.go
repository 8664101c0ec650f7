// Package ir holds the canonical, language-neutral model of a versioned API.
//
// Values are built by the operation builder and the merge engine and are
// treated as immutable once an ApiModel is returned.
package ir

// DefinitionKind is implemented by every kind of named definition.
type DefinitionKind interface {
	// KindName is the stable label used in dumps and logs.
	KindName() string
	equal(DefinitionKind) bool
}

// Definition is a named entity in the model. Names are unique per model.
type Definition struct {
	Name string
	Kind DefinitionKind
}

// Equal compares two definitions structurally, ignoring documentation.
func (d Definition) Equal(o Definition) bool {
	return d.Name == o.Name && d.Kind.equal(o.Kind)
}

// StaticAsset is a file embedded into the generated program.
type StaticAsset struct {
	Path string `yaml:"path"`
}

func (*StaticAsset) KindName() string { return "static-asset" }

func (a *StaticAsset) equal(o DefinitionKind) bool {
	b, ok := o.(*StaticAsset)
	return ok && *a == *b
}

// StaticTextRoute serves an asset as text.
type StaticTextRoute struct {
	Asset string `yaml:"asset"`
}

func (*StaticTextRoute) KindName() string { return "static-text-route" }

func (r *StaticTextRoute) equal(o DefinitionKind) bool {
	b, ok := o.(*StaticTextRoute)
	return ok && *r == *b
}

// StaticHTMLRoute serves an asset as HTML.
type StaticHTMLRoute struct {
	Asset string `yaml:"asset"`
}

func (*StaticHTMLRoute) KindName() string { return "static-html-route" }

func (r *StaticHTMLRoute) equal(o DefinitionKind) bool {
	b, ok := o.(*StaticHTMLRoute)
	return ok && *r == *b
}

// Redirect answers with a redirect to Target, resolved against the request path.
type Redirect struct {
	Target string `yaml:"target"`
}

func (*Redirect) KindName() string { return "redirect" }

func (r *Redirect) equal(o DefinitionKind) bool {
	b, ok := o.(*Redirect)
	return ok && *r == *b
}

type Record struct {
	Doc        string     `yaml:"doc,omitempty"`
	Properties []Property `yaml:"properties"`
}

func (*Record) KindName() string { return "record" }

func (r *Record) equal(o DefinitionKind) bool {
	b, ok := o.(*Record)
	if !ok || len(r.Properties) != len(b.Properties) {
		return false
	}
	for i := range r.Properties {
		if !r.Properties[i].Equal(b.Properties[i]) {
			return false
		}
	}
	return true
}

// Property returns the property with the given wire name.
func (r *Record) Property(wireName string) (Property, bool) {
	for _, p := range r.Properties {
		if p.WireName == wireName {
			return p, true
		}
	}
	return Property{}, false
}

type Property struct {
	Identifier string `yaml:"identifier"`
	WireName   string `yaml:"wire_name"`
	// Default names a DefaultValueProvider definition.
	Default  string  `yaml:"default,omitempty"`
	Type     TypeRef `yaml:"type"`
	Required bool    `yaml:"required,omitempty"`
	Doc      string  `yaml:"doc,omitempty"`
}

func (p Property) Equal(o Property) bool {
	return p.Identifier == o.Identifier && p.WireName == o.WireName &&
		p.Default == o.Default && p.Required == o.Required && p.Type.Equal(o.Type)
}

// Enumeration is either a plain set of string or integer values (ValueType
// set) or a tagged union whose variants carry a payload record
// (Discriminator set).
type Enumeration struct {
	Doc           string    `yaml:"doc,omitempty"`
	ValueType     Scalar    `yaml:"value_type,omitempty"`
	Discriminator string    `yaml:"discriminator,omitempty"`
	Variants      []Variant `yaml:"variants"`
}

func (*Enumeration) KindName() string { return "enumeration" }

// Tagged reports whether the enumeration is a discriminated union.
func (e *Enumeration) Tagged() bool { return e.Discriminator != "" }

func (e *Enumeration) equal(o DefinitionKind) bool {
	b, ok := o.(*Enumeration)
	if !ok || e.ValueType != b.ValueType || e.Discriminator != b.Discriminator ||
		len(e.Variants) != len(b.Variants) {
		return false
	}
	for i := range e.Variants {
		if e.Variants[i] != b.Variants[i] {
			return false
		}
	}
	return true
}

// Variant returns the variant with the given wire value.
func (e *Enumeration) Variant(wireValue string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.WireValue == wireValue {
			return v, true
		}
	}
	return Variant{}, false
}

type Variant struct {
	Identifier string `yaml:"identifier"`
	WireValue  string `yaml:"wire_value"`
	Payload    string `yaml:"payload,omitempty"`
}

// ErrorSet enumerates the failures of one operation.
type ErrorSet struct {
	Doc      string         `yaml:"doc,omitempty"`
	Variants []ErrorVariant `yaml:"variants"`
}

func (*ErrorSet) KindName() string { return "error-set" }

func (e *ErrorSet) equal(o DefinitionKind) bool {
	b, ok := o.(*ErrorSet)
	if !ok || len(e.Variants) != len(b.Variants) {
		return false
	}
	for i := range e.Variants {
		if e.Variants[i] != b.Variants[i] {
			return false
		}
	}
	return true
}

type ErrorVariant struct {
	Identifier string `yaml:"identifier"`
	Detail     string `yaml:"detail"`
	Status     int    `yaml:"status"`
}

// DefaultValueProvider yields a constant default. An optional ValueType
// means the provider yields a present optional value.
type DefaultValueProvider struct {
	ValueType TypeRef `yaml:"value_type"`
	Literal   Literal `yaml:"literal"`
}

func (*DefaultValueProvider) KindName() string { return "default-value-provider" }

func (d *DefaultValueProvider) equal(o DefinitionKind) bool {
	b, ok := o.(*DefaultValueProvider)
	return ok && d.ValueType.Equal(b.ValueType) && d.Literal == b.Literal
}

// Method is an HTTP method in upper case.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// BodyType is the request body of an operation. Type is usually a named
// record but may be any type, e.g. a sequence of records.
type BodyType struct {
	Type     TypeRef `yaml:"type"`
	Optional bool    `yaml:"optional,omitempty"`
}

func (b *BodyType) Equal(o *BodyType) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Optional == o.Optional && b.Type.Equal(o.Type)
}

// Operation is the signature of one API call. It is fallible when Error
// names an ErrorSet.
type Operation struct {
	ID          string    `yaml:"id"`
	Doc         string    `yaml:"doc,omitempty"`
	PathParams  string    `yaml:"path_params,omitempty"`
	QueryParams string    `yaml:"query_params,omitempty"`
	Body        *BodyType `yaml:"body,omitempty"`
	Response    TypeRef   `yaml:"response"`
	Error       string    `yaml:"error,omitempty"`
}

// Fallible reports whether the operation declares error responses.
func (o *Operation) Fallible() bool { return o.Error != "" }

// Equal compares signatures, ignoring documentation.
func (o *Operation) Equal(p *Operation) bool {
	if o.ID != p.ID || o.PathParams != p.PathParams || o.QueryParams != p.QueryParams ||
		o.Error != p.Error || !o.Response.Equal(p.Response) {
		return false
	}
	return o.Body.Equal(p.Body)
}

type RouteBinding struct {
	OperationID string `yaml:"operation"`
	Path        string `yaml:"path"`
	Method      Method `yaml:"method"`
}

type StaticRouteBinding struct {
	Method     Method `yaml:"method"`
	Path       string `yaml:"path"`
	Definition string `yaml:"definition"`
}

// ApiModel is the merged model of every API version.
type ApiModel struct {
	Definitions  []Definition         `yaml:"definitions"`
	Operations   []*Operation         `yaml:"operations"`
	Routes       []RouteBinding       `yaml:"routes"`
	StaticRoutes []StaticRouteBinding `yaml:"static_routes"`
}

// Definition looks a definition up by name.
func (m *ApiModel) Definition(name string) (Definition, bool) {
	for _, d := range m.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Operation looks an operation up by id.
func (m *ApiModel) Operation(id string) (*Operation, bool) {
	for _, o := range m.Operations {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// VersionModel is what one document contributes before merging. Paths in
// Bindings carry no version prefix.
type VersionModel struct {
	// Prefix is the version label, e.g. "v1".
	Prefix string
	// Source is the document path, used in error messages.
	Source      string
	Definitions []Definition
	Operations  []*Operation
	Bindings    []RouteBinding
}

// Operation looks an operation up by id.
func (v *VersionModel) Operation(id string) (*Operation, bool) {
	for _, o := range v.Operations {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}
