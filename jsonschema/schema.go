package jsonschema

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Schema is a JSON Schema (draft-04) document or subschema. Only the
// keywords the projector emits are modelled.
type Schema struct {
	// Document
	SchemaURI   string      `json:"$schema,omitempty"`
	ID          string      `json:"$id,omitempty"`
	Ref         string      `json:"$ref,omitempty"`
	Description string      `json:"description,omitempty"`
	Definitions *Properties `json:"definitions,omitempty"`

	// Core
	Type    string `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Default any    `json:"default,omitempty"`
	Enum    []any  `json:"enum,omitempty"`

	// String
	MinLength json.Number `json:"minLength,omitempty"`
	MaxLength json.Number `json:"maxLength,omitempty"`
	Pattern   string      `json:"pattern,omitempty"`

	// Number; draft-04 exclusive bounds are flags on minimum and maximum
	Minimum          json.Number `json:"minimum,omitempty"`
	Maximum          json.Number `json:"maximum,omitempty"`
	ExclusiveMinimum bool        `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool        `json:"exclusiveMaximum,omitempty"`

	// Object
	Properties           *Properties `json:"properties,omitempty"`
	Required             []string    `json:"required,omitempty"`
	AdditionalProperties any         `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`
}

// IsEmpty reports whether s constrains nothing.
func (s *Schema) IsEmpty() bool {
	if s == nil {
		return true
	}
	b, err := json.Marshal(s)
	return err == nil && string(b) == "{}"
}

// Marshal renders s as JSON text; a non-empty indent pretty-prints it.
func (s *Schema) Marshal(indent string) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil || indent == "" {
		return b, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Properties holds named subschemas (object properties or definitions) in
// declaration order.
type Properties struct {
	keys   []string
	values map[string]*Schema
}

// Set adds or replaces the subschema of name. A replaced name keeps its
// position.
func (p *Properties) Set(name string, s *Schema) {
	if p.values == nil {
		p.values = map[string]*Schema{}
	}
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = s
}

func (p *Properties) Get(name string) (*Schema, bool) {
	s, ok := p.values[name]
	return s, ok
}

func (p *Properties) Keys() []string { return append([]string(nil), p.keys...) }

func (p *Properties) Len() int { return len(p.keys) }

func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func intPtr(n int) *int { return &n }
