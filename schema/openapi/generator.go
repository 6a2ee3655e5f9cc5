package openapi

import (
	conf "github.com/goliatone/go-conf"
)

type generator struct {
	config generatorConfig
}

// NewGenerator constructs an OpenAPI-compatible schema generator. Each option
// group becomes an object component; a root component references them all
// and is used as the request body of the configured operation.
func NewGenerator(opts ...GeneratorOption) conf.SchemaGenerator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return generator{config: cfg}
}

func (g generator) Generate(descriptors []conf.OptDescriptor) (conf.SchemaDocument, error) {
	document, err := newOpenAPIDocumentBuilder(g.config, groupSchemas(descriptors)).build()
	if err != nil {
		return conf.SchemaDocument{}, err
	}
	return conf.SchemaDocument{
		Format:   conf.SchemaFormatOpenAPI,
		Document: document,
	}, nil
}

// groupSchemas folds descriptors into one object schema per group, keeping
// the order groups first appear in.
func groupSchemas(descriptors []conf.OptDescriptor) []groupSchema {
	var groups []groupSchema
	index := map[string]int{}
	for _, desc := range descriptors {
		pos, ok := index[desc.Group]
		if !ok {
			pos = len(groups)
			index[desc.Group] = pos
			groups = append(groups, groupSchema{
				name: desc.Group,
				schema: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			})
		}
		props := groups[pos].schema["properties"].(map[string]any)
		props[desc.Name] = propertySchema(desc)
	}
	return groups
}

func propertySchema(desc conf.OptDescriptor) map[string]any {
	schema := map[string]any{}
	switch desc.Type {
	case conf.TypeInt, conf.TypePort:
		schema["type"] = "integer"
	case conf.TypeFloat:
		schema["type"] = "number"
	case conf.TypeBool:
		schema["type"] = "boolean"
	case conf.TypeList, conf.TypeMultiString:
		items := map[string]any{"type": "string"}
		if len(desc.Choices) > 0 {
			items["enum"] = append([]string(nil), desc.Choices...)
		}
		schema["type"] = "array"
		schema["items"] = items
	default:
		schema["type"] = "string"
		if len(desc.Choices) > 0 {
			schema["enum"] = append([]string(nil), desc.Choices...)
		}
	}

	if desc.Help != "" {
		schema["description"] = desc.Help
	}
	if desc.Default != nil && !desc.Secret {
		schema["default"] = desc.Default
	}
	if desc.Default == nil {
		schema["nullable"] = true
	}
	if desc.Min != nil {
		schema["minimum"] = *desc.Min
	}
	if desc.Max != nil {
		schema["maximum"] = *desc.Max
	}
	if desc.Secret {
		schema["writeOnly"] = true
		if schema["type"] == "string" {
			schema["format"] = "password"
		}
	}
	if len(desc.Deprecated) > 0 {
		names := make([]string, 0, len(desc.Deprecated))
		for _, dep := range desc.Deprecated {
			group, name := dep.Group, dep.Name
			if group == "" {
				group = desc.Group
			}
			if name == "" {
				name = desc.Name
			}
			names = append(names, group+"."+name)
		}
		schema["x-deprecated-names"] = names
	}
	return schema
}
