package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"go.yaml.in/yaml/v4"
)

// isSwagger2 reports whether data declares "swagger: 2.x".
func isSwagger2(data []byte) (bool, error) {
	var probe struct {
		Swagger any `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false, fmt.Errorf("parsing document: %w", err)
	}
	if probe.Swagger == nil {
		return false, nil
	}
	return strings.HasPrefix(strings.TrimSpace(fmt.Sprint(probe.Swagger)), "2"), nil
}

// convertSwagger2 upgrades a Swagger 2.0 document to OpenAPI 3.0 JSON.
func convertSwagger2(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	asJSON, err := json.Marshal(jsonCompatible(raw))
	if err != nil {
		return nil, fmt.Errorf("re-encoding document: %w", err)
	}

	var doc2 openapi2.T
	if err := json.Unmarshal(asJSON, &doc2); err != nil {
		return nil, fmt.Errorf("decoding Swagger 2.0 document: %w", err)
	}
	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc3)
}

// jsonCompatible rewrites YAML mappings with non-string keys, such as
// unquoted response codes, into string-keyed maps.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = jsonCompatible(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = jsonCompatible(val)
		}
		return t
	}
	return v
}
