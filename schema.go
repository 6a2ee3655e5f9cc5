package conf

import "github.com/goliatone/go-conf/layering"

// OptDescriptor describes a registered option for schema generators.
type OptDescriptor struct {
	Group      string          `json:"group"`
	Name       string          `json:"name"`
	Type       OptType         `json:"type"`
	Default    any             `json:"default,omitempty"`
	Help       string          `json:"help,omitempty"`
	Secret     bool            `json:"secret,omitempty"`
	Choices    []string        `json:"choices,omitempty"`
	Min        *float64        `json:"min,omitempty"`
	Max        *float64        `json:"max,omitempty"`
	Deprecated []DeprecatedOpt `json:"deprecated,omitempty"`
}

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors represents the flat option descriptors.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI represents OpenAPI-compatible JSON Schema documents.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument encapsulates a generated schema output alongside its format
// identifier. Implementations must ensure Document is JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator transforms option descriptors into a schema document.
// Implementations must be safe for concurrent use and return an empty
// document for an empty input.
type SchemaGenerator interface {
	Generate(descriptors []OptDescriptor) (SchemaDocument, error)
}

// DefaultSchemaGenerator returns the built-in descriptor-based schema generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(descriptors []OptDescriptor) (SchemaDocument, error) {
	if descriptors == nil {
		descriptors = []OptDescriptor{}
	}
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: descriptors,
	}, nil
}

// Describe lists every registered option, group by group in the order of
// Groups, options in registration order. Defaults of secret options are
// omitted.
func (r *Registry) Describe() []OptDescriptor {
	groups := r.Groups()
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []OptDescriptor
	for _, label := range groups {
		group := normalizeGroup(label)
		g := r.groups[group]
		if g == nil {
			continue
		}
		for _, name := range g.order {
			entry := g.entries[name]
			opt := entry.opt.clone()
			desc := OptDescriptor{
				Group:      label,
				Name:       opt.Name,
				Type:       opt.Type,
				Help:       opt.Help,
				Secret:     opt.Secret,
				Choices:    opt.Choices,
				Min:        opt.Min,
				Max:        opt.Max,
				Deprecated: opt.Deprecated,
			}
			if !opt.Secret {
				desc.Default = layering.Clone(entry.defaultValue)
			}
			out = append(out, desc)
		}
	}
	return out
}

// Schema renders the registered options with gen, or with the descriptor
// generator when gen is nil.
func (r *Registry) Schema(gen SchemaGenerator) (SchemaDocument, error) {
	if gen == nil {
		gen = DefaultSchemaGenerator()
	}
	return gen.Generate(r.Describe())
}
