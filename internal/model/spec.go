package model

type Spec struct {
	// Version is the declared OpenAPI version, e.g. "3.0.3".
	Version    string
	Info       Info
	Servers    []Server
	Paths      []Path
	Components Components
}

// Components holds the reusable definitions that references may point at.
// Slices keep document order.
type Components struct {
	Schemas    []NamedSchema
	Parameters []NamedParameter
}

type NamedSchema struct {
	Name   string
	Schema *Schema
}

type NamedParameter struct {
	Name      string
	Parameter *Parameter
}

// Schema returns the component schema registered under name.
func (c *Components) Schema(name string) (*Schema, bool) {
	for _, s := range c.Schemas {
		if s.Name == name {
			return s.Schema, true
		}
	}
	return nil, false
}

// Parameter returns the component parameter registered under name.
func (c *Components) Parameter(name string) (*Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p.Parameter, true
		}
	}
	return nil, false
}

type Info struct {
	Title       string
	Description string
	Version     string
}

type Server struct {
	URL         string
	Description string
}

type Path struct {
	Path string
	// Parameters declared on the path item apply to every operation below it.
	Parameters []Parameter
	Operations []Operation
}
