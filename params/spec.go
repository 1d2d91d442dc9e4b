package params

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Location values for ParameterSpec.In.
const (
	InQuery  = openapi3.ParameterInQuery
	InPath   = openapi3.ParameterInPath
	InHeader = openapi3.ParameterInHeader
	InCookie = openapi3.ParameterInCookie
)

// SchemaType is the declared type of a parameter schema.
type SchemaType int

const (
	TypeOther SchemaType = iota
	TypeInteger
	TypeNumber
	TypeString
	TypeBoolean
)

// ParseSchemaType maps an OpenAPI type name onto a SchemaType. Unknown names
// (array, object, or anything newer) map to TypeOther.
func ParseSchemaType(name string) SchemaType {
	switch name {
	case openapi3.TypeInteger:
		return TypeInteger
	case openapi3.TypeNumber:
		return TypeNumber
	case openapi3.TypeString:
		return TypeString
	case openapi3.TypeBoolean:
		return TypeBoolean
	default:
		return TypeOther
	}
}

func (t SchemaType) String() string {
	switch t {
	case TypeInteger:
		return openapi3.TypeInteger
	case TypeNumber:
		return openapi3.TypeNumber
	case TypeString:
		return openapi3.TypeString
	case TypeBoolean:
		return openapi3.TypeBoolean
	default:
		return "other"
	}
}

// Schema is the subset of a parameter schema the coercer needs.
type Schema struct {
	Type SchemaType
	// TypeName keeps the declared name, useful when Type is TypeOther.
	TypeName string
	Default  any
	Minimum  *float64
	Maximum  *float64
}

// ParameterSpec describes one request parameter.
type ParameterSpec struct {
	Name     string
	In       string
	Required bool
	Schema   Schema
	Example  any
}

// FromOperation extracts the specs for one location from an operation. Path
// item level parameters are included unless the operation overrides them by
// name. The result follows declaration order, path item first.
func FromOperation(item *openapi3.PathItem, op *openapi3.Operation, in string) []ParameterSpec {
	var specs []ParameterSpec
	seen := make(map[string]int)

	add := func(list openapi3.Parameters) {
		for _, ref := range list {
			if ref == nil || ref.Value == nil || ref.Value.In != in {
				continue
			}
			spec := FromParameter(ref.Value)
			if idx, ok := seen[spec.Name]; ok {
				specs[idx] = spec
				continue
			}
			seen[spec.Name] = len(specs)
			specs = append(specs, spec)
		}
	}

	if item != nil {
		add(item.Parameters)
	}
	if op != nil {
		add(op.Parameters)
	}
	return specs
}

// FromParameter converts a single kin-openapi parameter. When the parameter
// has no example of its own the schema example is used instead.
func FromParameter(p *openapi3.Parameter) ParameterSpec {
	spec := ParameterSpec{
		Name:     p.Name,
		In:       p.In,
		Required: p.Required,
		Example:  p.Example,
	}

	if p.Schema == nil || p.Schema.Value == nil {
		return spec
	}

	s := p.Schema.Value
	if s.Type != nil {
		if names := s.Type.Slice(); len(names) > 0 {
			spec.Schema.TypeName = names[0]
			spec.Schema.Type = ParseSchemaType(names[0])
		}
	}
	spec.Schema.Default = s.Default
	spec.Schema.Minimum = s.Min
	spec.Schema.Maximum = s.Max
	if spec.Example == nil {
		spec.Example = s.Example
	}
	return spec
}
