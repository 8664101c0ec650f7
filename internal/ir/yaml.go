package ir

import (
	"fmt"

	"go.yaml.in/yaml/v4"
)

// definitionYAML flattens the kind interface into a tagged mapping.
type definitionYAML struct {
	Name string         `yaml:"name"`
	Kind string         `yaml:"kind"`
	Body DefinitionKind `yaml:"body"`
}

// MarshalYAML implements yaml.Marshaler.
func (d Definition) MarshalYAML() (any, error) {
	if d.Kind == nil {
		return nil, fmt.Errorf("definition %q has no kind", d.Name)
	}
	return definitionYAML{Name: d.Name, Kind: d.Kind.KindName(), Body: d.Kind}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (t TypeRef) MarshalYAML() (any, error) {
	return t.String(), nil
}

// DumpYAML serializes the model. Equal models always produce identical bytes.
func DumpYAML(m *ApiModel) ([]byte, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	return out, nil
}
