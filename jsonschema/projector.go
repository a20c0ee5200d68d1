// Package jsonschema projects an XML Schema onto a JSON Schema describing the
// JSON documents the Forward Aligner accepts and the Reverse Builder emits.
package jsonschema

import (
	"fmt"
	"log/slog"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/xsd"
)

const (
	// Draft04 is the $schema of projected documents.
	Draft04 = "http://json-schema.org/draft-04/schema#"
	// DefinitionsPath prefixes references into the definitions section.
	DefinitionsPath = "#/definitions/"
	// ComponentsPath prefixes references for schemas embedded in OpenAPI.
	ComponentsPath = "#/components/schemas/"
)

// Options configures a Projector.
type Options struct {
	// SkipArrayElementContainers describes containers of one repeating child
	// as bare arrays, matching CompactArrays on the alignment side.
	SkipArrayElementContainers bool
	// SkipRootElement describes the root's value without the wrapping object.
	SkipRootElement bool
	// SkipAttributes leaves attributes out of object descriptions.
	SkipAttributes bool
	// SchemaLocation is mentioned in the document description.
	SchemaLocation string
	// DefinitionsPath defaults to DefinitionsPath.
	DefinitionsPath string
	// AttributePrefix defaults to "@".
	AttributePrefix string
	// MixedContentLabel defaults to "#text".
	MixedContentLabel string
	Logger            *slog.Logger
}

// Projector walks schema declarations, independent of instance data.
type Projector struct {
	schema   *xsd.Schema
	opt      Options
	log      *slog.Logger
	warnings xa.Issues
}

// New returns a Projector for schema.
func New(schema *xsd.Schema, opt Options) *Projector {
	if opt.DefinitionsPath == "" {
		opt.DefinitionsPath = DefinitionsPath
	}
	if opt.AttributePrefix == "" {
		opt.AttributePrefix = xa.DefaultAttributePrefix
	}
	if opt.MixedContentLabel == "" {
		opt.MixedContentLabel = xa.DefaultMixedContentLabel
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Projector{schema: schema, opt: opt, log: log}
}

// Warnings returns the facets that could not be projected.
func (p *Projector) Warnings() xa.Issues { return p.warnings }

func (p *Projector) warn(path, format string, args ...any) {
	iss := xa.Issue{Path: path, Code: xa.CodeInvalidValue, Message: fmt.Sprintf(format, args...)}
	p.warnings = append(p.warnings, iss)
	p.log.Warn(iss.Message, "code", iss.Code, "type", path)
}

// Document returns the JSON Schema of documents rooted at the global element
// name. A namespace that does not declare name falls back to a search of all
// namespaces.
func (p *Projector) Document(name, namespace string) (*Schema, error) {
	decl, err := p.schema.FindElement(namespace, name)
	if err == nil && decl == nil && namespace != "" {
		decl, err = p.schema.FindElement("", name)
	}
	if err != nil {
		return nil, xa.Issues{{Path: name, Code: xa.CodeAmbiguousDeclaration, Message: err.Error(), Cause: err}}
	}
	if decl == nil {
		p.log.Warn("cannot find declaration for element", "element", name, "namespace", namespace)
		return nil, xa.Issues{{Path: name, Code: xa.CodeUnknownRoot, Message: fmt.Sprintf("Cannot find declaration for element [%s]", name)}}
	}

	doc := &Schema{SchemaURI: Draft04, ID: decl.Name.Space}
	if p.opt.SchemaLocation != "" {
		doc.Description = "Auto-generated by xsdalign based on " + p.opt.SchemaLocation
	}
	ref := &Schema{Ref: p.opt.DefinitionsPath + decl.Name.Local}
	if p.opt.SkipRootElement {
		doc.Ref = ref.Ref
	} else {
		doc.Type = "object"
		doc.AdditionalProperties = false
		doc.Properties = &Properties{}
		doc.Properties.Set(decl.Name.Local, ref)
	}
	if defs := p.Definitions(); defs.Len() > 0 {
		doc.Definitions = defs
	}
	return doc, nil
}

// Definitions describes every global element and every named type outside
// the XML Schema namespace.
func (p *Projector) Definitions() *Properties {
	defs := &Properties{}
	for _, e := range p.schema.Elements() {
		p.element(defs, e, false, false)
	}
	for _, t := range p.schema.Types() {
		if n := t.TypeName(); n.Space != xsd.Namespace {
			defs.Set(n.Local, p.definition(t, false))
		}
	}
	return defs
}

// definition describes type t. With refs, named types outside the XML
// Schema namespace become references into the definitions.
func (p *Projector) definition(t xsd.Type, refs bool) *Schema {
	if n := t.TypeName(); refs && n.Local != "" && n.Space != xsd.Namespace {
		return &Schema{Ref: p.opt.DefinitionsPath + n.Local}
	}
	switch v := t.(type) {
	case *xsd.SimpleType:
		return p.simple(v)
	case *xsd.ComplexType:
		if v.Name.Space == xsd.Namespace {
			// xs:anyType admits anything
			return &Schema{}
		}
		switch v.Content {
		case xsd.ContentEmpty:
			if !p.hasAttributes(v) {
				return &Schema{}
			}
			return p.object(nil, v, "", nil)
		case xsd.ContentSimple:
			if !p.hasAttributes(v) {
				return p.textDefinition(v.Base)
			}
			return p.object(nil, v, p.opt.MixedContentLabel, v.Base)
		case xsd.ContentMixed:
			return p.elementContent(v, p.opt.MixedContentLabel)
		default:
			return p.elementContent(v, "")
		}
	}
	return &Schema{}
}

func (p *Projector) textDefinition(base xsd.Type) *Schema {
	if base == nil {
		return &Schema{Type: "string"}
	}
	return p.definition(base, true)
}

// elementContent describes element or mixed content.
func (p *Projector) elementContent(t *xsd.ComplexType, textLabel string) *Schema {
	top := t.Particle
	if top == nil {
		return p.object(nil, t, textLabel, nil)
	}
	if p.opt.SkipArrayElementContainers && !p.hasAttributes(t) && xa.ClassifyRepeatingShape(top) == xa.OccurrenceOneMultiple {
		if s := p.arrayContainer(top); s != nil {
			return s
		}
	}
	return p.object(top, t, textLabel, nil)
}

func (p *Projector) hasAttributes(t *xsd.ComplexType) bool {
	if p.opt.SkipAttributes {
		return false
	}
	return len(t.Attributes) > 0 || t.AttributeWildcard != nil
}

// arrayContainer describes a container whose repeating children collapse
// into one array.
func (p *Projector) arrayContainer(top *xsd.Particle) *Schema {
	var items []*Schema
	var last *xsd.Particle
	for _, q := range repeatingChildren(top, nil) {
		decl, _ := q.Element()
		var it *Schema
		if decl.Global {
			it = &Schema{Ref: p.opt.DefinitionsPath + decl.Name.Local}
		} else {
			it = p.definition(decl.ElementType(), true)
		}
		if decl.Nillable {
			it = nillable(it)
		}
		items = append(items, it)
		last = q
	}
	switch len(items) {
	case 0:
		return nil
	case 1:
		return array(items[0], last)
	}
	return &Schema{Type: "array", Items: &Schema{AnyOf: items}}
}

func repeatingChildren(q *xsd.Particle, out []*xsd.Particle) []*xsd.Particle {
	switch t := q.Term.(type) {
	case *xsd.Element:
		if q.Repeats() {
			out = append(out, q)
		}
	case *xsd.ModelGroup:
		for _, c := range t.Particles {
			out = repeatingChildren(c, out)
		}
	}
	return out
}

// object describes an element of type t with attributes, child elements
// from top and optionally a text member of type base.
func (p *Projector) object(top *xsd.Particle, t *xsd.ComplexType, textLabel string, base xsd.Type) *Schema {
	s := &Schema{Type: "object"}
	props := &Properties{}
	var required []string
	if !p.opt.SkipAttributes {
		for _, a := range t.Attributes {
			name := p.opt.AttributePrefix + a.Name.Local
			props.Set(name, p.attribute(a))
			if a.Required {
				required = append(required, name)
			}
		}
	}
	if textLabel != "" {
		props.Set(textLabel, p.textDefinition(base))
	}

	wildcard := !p.opt.SkipAttributes && t.AttributeWildcard != nil
	var choices []*xsd.Particle
	if top != nil {
		wildcard = wildcard || xa.TypeContainsWildcard(top)
		p.properties(props, &required, &choices, top, true)
	}
	s.AdditionalProperties = wildcard
	if props.Len() > 0 {
		s.Properties = props
	}
	s.Required = required

	var groups []*Schema
	for _, c := range choices {
		if alts := p.alternatives(c); len(alts) > 1 {
			groups = append(groups, &Schema{OneOf: alts})
		}
	}
	switch len(groups) {
	case 0:
	case 1:
		s.OneOf = groups[0].OneOf
	default:
		s.AllOf = groups
	}
	return s
}

// properties adds the element particles reachable from q to props. Nested
// sequences are flattened; choices contribute their alternatives as
// optional properties and are collected for a oneOf constraint.
func (p *Projector) properties(props *Properties, required *[]string, choices *[]*xsd.Particle, q *xsd.Particle, mandatory bool) {
	switch t := q.Term.(type) {
	case *xsd.Element:
		name := t.Name.Local
		if mandatory && q.MinOccurs > 0 {
			*required = append(*required, name)
		}
		if t.Global {
			ref := &Schema{Ref: p.opt.DefinitionsPath + name}
			if q.Repeats() {
				props.Set(name, array(ref, q))
			} else {
				props.Set(name, ref)
			}
			return
		}
		p.element(props, t, q.Repeats(), true)
	case *xsd.ModelGroup:
		if t.Compositor == xsd.CompositorChoice {
			// an optional or repeating choice may supply any mix of alternatives
			if mandatory && q.MinOccurs > 0 && !q.Repeats() {
				*choices = append(*choices, q)
			}
			for _, c := range t.Particles {
				p.properties(props, required, choices, c, false)
			}
			return
		}
		for _, c := range t.Particles {
			p.properties(props, required, choices, c, mandatory && q.MinOccurs > 0 && !q.Repeats())
		}
	case *xsd.Wildcard:
		p.log.Debug("wildcard admits additional properties", "namespaceConstraint", t.Constraint, "processContents", t.Process)
	}
}

// alternatives describes each branch of a choice by the members it
// requires. It returns nil when some branch requires nothing, since such a
// branch cannot be told apart from the others.
func (p *Projector) alternatives(choice *xsd.Particle) []*Schema {
	g := choice.Term.(*xsd.ModelGroup)
	out := make([]*Schema, 0, len(g.Particles))
	for _, alt := range g.Particles {
		var required []string
		var nested []*xsd.Particle
		p.properties(&Properties{}, &required, &nested, alt, true)
		if len(required) == 0 {
			return nil
		}
		out = append(out, &Schema{Required: required})
	}
	return out
}

// element adds the description of decl to props under its name.
func (p *Projector) element(props *Properties, decl *xsd.Element, repeats, refs bool) {
	t := decl.ElementType()
	var def *Schema
	if n := t.TypeName(); n.Local == "" || n.Space == xsd.Namespace {
		def = p.definition(t, refs)
	} else {
		def = &Schema{Ref: p.opt.DefinitionsPath + n.Local}
	}
	if decl.Nillable {
		def = nillable(def)
	}
	if repeats {
		arr := &Schema{Type: "array"}
		if !def.IsEmpty() {
			arr.Items = def
		}
		def = arr
	}
	props.Set(decl.Name.Local, def)
}

func array(items *Schema, q *xsd.Particle) *Schema {
	s := &Schema{Type: "array", Items: items}
	if q.MinOccurs > 0 {
		s.MinItems = intPtr(q.MinOccurs)
	}
	if q.MaxOccurs >= 0 {
		s.MaxItems = intPtr(q.MaxOccurs)
	}
	return s
}

func nillable(s *Schema) *Schema {
	return &Schema{AnyOf: []*Schema{s, {Type: "null"}}}
}
