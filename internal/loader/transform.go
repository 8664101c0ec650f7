package loader

import (
	"fmt"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/specerr"
)

const componentSchemaPrefix = "#/components/schemas/"

// transformer converts the libopenapi model into the generator's document
// model. References are kept as written; following them is left to the
// resolver.
type transformer struct {
	// componentSchemas recognizes schemas libopenapi inlined from a
	// component so that they are modeled as references again.
	componentSchemas map[*base.Schema]string
}

func Transform(result *Result) (*model.Spec, error) {
	if result == nil || result.Document == nil {
		return nil, fmt.Errorf("no document to transform")
	}
	doc := result.Document.Model

	t := &transformer{
		componentSchemas: make(map[*base.Schema]string),
	}

	spec := &model.Spec{
		Version: result.Version,
		Info:    transformInfo(doc.Info),
		Servers: transformServers(doc.Servers),
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for name, schemaProxy := range doc.Components.Schemas.FromOldest() {
			if schemaProxy.IsReference() {
				continue
			}
			if s := schemaProxy.Schema(); s != nil {
				t.componentSchemas[s] = componentSchemaPrefix + specerr.EscapeToken(name)
			}
		}
		for name, schemaProxy := range doc.Components.Schemas.FromOldest() {
			schema := t.componentSchema(schemaProxy)
			spec.Components.Schemas = append(spec.Components.Schemas, model.NamedSchema{Name: name, Schema: schema})
		}
	}

	if doc.Components != nil && doc.Components.Parameters != nil {
		for name, param := range doc.Components.Parameters.FromOldest() {
			p := t.transformParameter(param)
			spec.Components.Parameters = append(spec.Components.Parameters, model.NamedParameter{Name: name, Parameter: &p})
		}
	}

	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for pathStr, pathItem := range doc.Paths.PathItems.FromOldest() {
			spec.Paths = append(spec.Paths, t.transformPath(pathStr, pathItem))
		}
	}

	return spec, nil
}

func transformInfo(info *base.Info) model.Info {
	if info == nil {
		return model.Info{}
	}
	return model.Info{
		Title:       info.Title,
		Description: info.Description,
		Version:     info.Version,
	}
}

func transformServers(servers []*v3.Server) []model.Server {
	var result []model.Server
	for _, s := range servers {
		result = append(result, model.Server{
			URL:         s.URL,
			Description: s.Description,
		})
	}
	return result
}

func (t *transformer) transformPath(pathStr string, pathItem *v3.PathItem) model.Path {
	path := model.Path{Path: pathStr}

	for _, p := range pathItem.Parameters {
		path.Parameters = append(path.Parameters, t.transformParameter(p))
	}

	methods := []struct {
		method model.Method
		op     *v3.Operation
	}{
		{model.MethodGet, pathItem.Get},
		{model.MethodPost, pathItem.Post},
		{model.MethodPut, pathItem.Put},
		{model.MethodDelete, pathItem.Delete},
		{model.MethodPatch, pathItem.Patch},
		{model.MethodHead, pathItem.Head},
		{model.MethodOptions, pathItem.Options},
		{model.MethodTrace, pathItem.Trace},
	}

	for _, m := range methods {
		if m.op == nil {
			continue
		}
		path.Operations = append(path.Operations, t.transformOperation(m.method, pathStr, m.op))
	}

	return path
}

func (t *transformer) transformOperation(method model.Method, path string, op *v3.Operation) model.Operation {
	operation := model.Operation{
		ID:          op.OperationId,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  boolPtr(op.Deprecated),
	}

	for _, p := range op.Parameters {
		operation.Parameters = append(operation.Parameters, t.transformParameter(p))
	}

	if op.RequestBody != nil {
		operation.RequestBody = t.transformRequestBody(op.RequestBody)
	}

	if op.Responses != nil {
		if op.Responses.Codes != nil {
			for code, resp := range op.Responses.Codes.FromOldest() {
				operation.Responses = append(operation.Responses, t.transformResponse(code, resp))
			}
		}
		if op.Responses.Default != nil {
			operation.Responses = append(operation.Responses, t.transformResponse("default", op.Responses.Default))
		}
	}

	return operation
}

func (t *transformer) transformParameter(p *v3.Parameter) model.Parameter {
	param := model.Parameter{
		Name:        p.Name,
		In:          model.ParameterLocation(strings.ToLower(p.In)),
		Description: p.Description,
		Required:    boolPtr(p.Required),
		Deprecated:  p.Deprecated,
	}

	if p.Schema != nil {
		param.Schema = t.transformSchemaProxy(p.Schema)
	} else if p.Content != nil {
		for _, content := range p.Content.FromOldest() {
			if content.Schema != nil {
				param.Schema = t.transformSchemaProxy(content.Schema)
				break
			}
		}
	}

	return param
}

func (t *transformer) transformRequestBody(rb *v3.RequestBody) *model.RequestBody {
	body := &model.RequestBody{
		Description: rb.Description,
		Required:    boolPtr(rb.Required),
	}

	if rb.Content != nil {
		for mediaType, content := range rb.Content.FromOldest() {
			mtc := model.MediaTypeContent{MediaType: mediaType}
			if content.Schema != nil {
				mtc.Schema = t.transformSchemaProxy(content.Schema)
			}
			body.Content = append(body.Content, mtc)
		}
	}

	return body
}

func (t *transformer) transformResponse(code string, resp *v3.Response) model.Response {
	response := model.Response{
		StatusCode:  code,
		Description: resp.Description,
	}

	if resp.Content != nil {
		for mediaType, content := range resp.Content.FromOldest() {
			mtc := model.MediaTypeContent{MediaType: mediaType}
			if content.Schema != nil {
				mtc.Schema = t.transformSchemaProxy(content.Schema)
			}
			response.Content = append(response.Content, mtc)
		}
	}

	return response
}

// componentSchema transforms a component definition. A component that is
// itself an alias of another keeps its reference.
func (t *transformer) componentSchema(proxy *base.SchemaProxy) *model.Schema {
	if proxy.IsReference() {
		return &model.Schema{Ref: proxy.GetReference()}
	}
	return t.transformSchema(proxy.Schema())
}

func (t *transformer) transformSchemaProxy(proxy *base.SchemaProxy) *model.Schema {
	if proxy == nil {
		return nil
	}

	if proxy.IsReference() {
		return &model.Schema{Ref: proxy.GetReference()}
	}

	s := proxy.Schema()
	if resolved, ok := t.componentSchemas[s]; ok {
		return &model.Schema{Ref: resolved}
	}
	return t.transformSchema(s)
}

func (t *transformer) transformSchema(s *base.Schema) *model.Schema {
	if s == nil {
		return nil
	}

	schema := &model.Schema{
		Title:       s.Title,
		Description: s.Description,
		Format:      s.Format,
		Nullable:    boolPtr(s.Nullable),
		Deprecated:  boolPtr(s.Deprecated),
		Required:    s.Required,
	}

	// OpenAPI 3.1 spells nullability as a "null" member of the type array.
	for _, typ := range s.Type {
		if typ == string(model.TypeNull) && len(s.Type) > 1 {
			schema.Nullable = true
			continue
		}
		if schema.Type == "" {
			schema.Type = model.SchemaType(typ)
		}
	}

	if s.Default != nil {
		v := literal(s.Default)
		schema.Default = &v
	}

	for _, e := range s.Enum {
		schema.Enum = append(schema.Enum, literal(e))
	}

	if s.Properties != nil {
		for propName, propProxy := range s.Properties.FromOldest() {
			schema.Properties = append(schema.Properties, model.Property{
				Name:   propName,
				Schema: t.transformSchemaProxy(propProxy),
			})
		}
	}

	if s.Items != nil && s.Items.IsA() {
		schema.Items = t.transformSchemaProxy(s.Items.A)
	}

	if s.AdditionalProperties != nil && s.AdditionalProperties.IsA() {
		schema.AdditionalProperties = t.transformSchemaProxy(s.AdditionalProperties.A)
	}

	for _, proxy := range s.AllOf {
		schema.AllOf = append(schema.AllOf, t.transformSchemaProxy(proxy))
	}
	for _, proxy := range s.OneOf {
		schema.OneOf = append(schema.OneOf, t.transformSchemaProxy(proxy))
	}
	for _, proxy := range s.AnyOf {
		schema.AnyOf = append(schema.AnyOf, t.transformSchemaProxy(proxy))
	}

	if s.Discriminator != nil {
		schema.Discriminator = &model.Discriminator{PropertyName: s.Discriminator.PropertyName}
		if s.Discriminator.Mapping != nil {
			for k, v := range s.Discriminator.Mapping.FromOldest() {
				schema.Discriminator.Mapping = append(schema.Discriminator.Mapping, model.MappingEntry{Value: k, Ref: v})
			}
		}
	}

	return schema
}

// literal classifies a YAML node by its resolved tag, so that `1`, `"1"`
// and `1.0` stay distinguishable.
func literal(node *yaml.Node) model.Value {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return model.Value{Kind: model.ValueNull}
			}
			node = node.Content[0]
			continue
		case yaml.AliasNode:
			node = node.Alias
			continue
		case yaml.ScalarNode:
		default:
			return model.Value{Kind: model.ValueComplex}
		}

		switch node.ShortTag() {
		case "!!str":
			return model.Value{Kind: model.ValueString, Text: node.Value}
		case "!!int":
			return model.Value{Kind: model.ValueInt, Text: node.Value}
		case "!!float":
			return model.Value{Kind: model.ValueFloat, Text: node.Value}
		case "!!bool":
			return model.Value{Kind: model.ValueBool, Text: node.Value}
		case "!!null":
			return model.Value{Kind: model.ValueNull}
		default:
			return model.Value{Kind: model.ValueString, Text: node.Value}
		}
	}
	return model.Value{Kind: model.ValueNull}
}

func boolPtr(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
