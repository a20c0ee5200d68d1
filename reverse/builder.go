// Package reverse rebuilds JSON-like data from a structural event stream.
//
// The Builder is an events.Sink. It follows the schema while elements open
// and close: repeating children are grouped into arrays, leaf text is
// coerced by its built-in type, and with CompactArrays a container of one
// repeating child collapses into a bare array, mirroring the Forward
// Aligner so that documents survive a round trip. Elements whose type
// declares attributes are always objects, even when no attribute is present.
package reverse

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/events"
	"github.com/reoring/xsdalign/xsd"
)

// Options configures a Builder.
type Options struct {
	// CompactArrays collapses containers of one repeating child into arrays.
	CompactArrays bool
	// SkipRootElement returns the root's value without the wrapping object.
	SkipRootElement bool
	// SkipAttributes drops all attributes.
	SkipAttributes bool
	// AttributePrefix defaults to "@".
	AttributePrefix string
	// MixedContentLabel defaults to "#text".
	MixedContentLabel string
	Logger            *slog.Logger
}

func (o Options) attrPrefix() string {
	if o.AttributePrefix == "" {
		return xa.DefaultAttributePrefix
	}
	return o.AttributePrefix
}

func (o Options) textLabel() string {
	if o.MixedContentLabel == "" {
		return xa.DefaultMixedContentLabel
	}
	return o.MixedContentLabel
}

type frame struct {
	decl    *xsd.Element
	typ     xsd.Type
	repeats bool
	isNil   bool
	attrs   []xml.Attr
	obj     *Object
	text    strings.Builder
}

// Builder assembles one document per StartDocument/EndDocument pair. It is
// not safe for concurrent use.
type Builder struct {
	schema *xsd.Schema
	opt    Options
	log    *slog.Logger

	tr       *xa.Tracker
	stack    []*frame
	result   any
	done     bool
	warnings xa.Issues
}

var _ events.Sink = (*Builder)(nil)

// NewBuilder returns a Builder resolving elements against schema.
func NewBuilder(schema *xsd.Schema, opt Options) *Builder {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Builder{schema: schema, opt: opt, log: log, tr: xa.NewTracker()}
}

// Value returns the document built by the last completed event stream.
func (b *Builder) Value() (any, error) {
	if !b.done {
		return nil, fmt.Errorf("reverse: document not complete")
	}
	return b.result, nil
}

// Warnings returns the recoverable issues met while building.
func (b *Builder) Warnings() xa.Issues { return b.warnings }

func (b *Builder) StartDocument() error {
	b.tr = xa.NewTracker()
	b.stack = nil
	b.result = nil
	b.done = false
	b.warnings = nil
	return nil
}

func (b *Builder) EndDocument() error {
	if len(b.stack) > 0 {
		return fmt.Errorf("reverse: %d unclosed elements at end of document", len(b.stack))
	}
	b.done = true
	return nil
}

func (b *Builder) StartPrefixMapping(string, string) error { return nil }
func (b *Builder) EndPrefixMapping(string) error           { return nil }

func (b *Builder) StartElement(name xml.Name, attrs []xml.Attr) error {
	decl, err := b.declaration(name)
	if err != nil {
		return err
	}
	f := &frame{decl: decl}
	if decl != nil {
		f.typ = decl.ElementType()
	}
	b.tr.Enter(name.Local, f.typ)
	f.repeats = b.tr.IsMultipleOccurringChildInParentElement(name.Local)
	for _, a := range attrs {
		if a.Name.Space == xsd.InstanceNamespace {
			if a.Name.Local == "nil" {
				f.isNil = a.Value == "true" || a.Value == "1"
			}
			continue
		}
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		if b.opt.SkipAttributes {
			continue
		}
		if !declaresAttribute(f.typ, a.Name.Local) {
			b.warn(xa.CodeUndeclaredNode, "attribute [%s] of element [%s] is not declared, ignored", a.Name.Local, name.Local)
			continue
		}
		f.attrs = append(f.attrs, a)
	}
	b.stack = append(b.stack, f)
	return nil
}

func (b *Builder) Characters(text string) error {
	if n := len(b.stack); n > 0 {
		b.stack[n-1].text.WriteString(text)
	}
	return nil
}

func (b *Builder) EndElement(name xml.Name) error {
	n := len(b.stack)
	if n == 0 {
		return fmt.Errorf("reverse: endElement [%s] without open element", name.Local)
	}
	f := b.stack[n-1]
	b.stack = b.stack[:n-1]
	v := b.value(name.Local, f)
	b.tr.Exit()

	if n == 1 {
		if b.opt.SkipRootElement {
			b.result = v
		} else {
			root := NewObject()
			root.Set(name.Local, v)
			b.result = root
		}
		return nil
	}
	parent := b.stack[n-2]
	if parent.obj == nil {
		parent.obj = NewObject()
	}
	cur, exists := parent.obj.Get(name.Local)
	switch {
	case f.repeats:
		items, _ := cur.([]any)
		parent.obj.Set(name.Local, append(items, v))
	case exists:
		// a single-occurring name seen twice, only possible for undeclared content
		b.log.Debug("grouping repeated undeclared element", "element", name.Local)
		if items, ok := cur.([]any); ok {
			parent.obj.Set(name.Local, append(items, v))
		} else {
			parent.obj.Set(name.Local, []any{cur, v})
		}
	default:
		parent.obj.Set(name.Local, v)
	}
	return nil
}

// value computes the JSON value of the element closed by f. The tracker
// still holds the element's own frame.
func (b *Builder) value(name string, f *frame) any {
	if f.isNil {
		return nil
	}
	attrs := b.attributes(f)
	if f.typ == nil {
		// undeclared or wildcard content
		if f.obj != nil {
			b.addAttributes(f.obj, attrs)
			return f.obj
		}
		return b.leaf(name, nil, f.text.String(), attrs)
	}
	if xsd.IsSimple(f.typ) {
		v := b.leaf(name, xsd.TextType(f.typ), f.text.String(), attrs)
		if _, isObj := v.(*Object); !isObj && b.keepsAttributes(f.typ) {
			obj := NewObject()
			if f.text.Len() > 0 {
				obj.Set(b.opt.textLabel(), v)
			}
			return obj
		}
		return v
	}
	if b.opt.CompactArrays && !b.keepsAttributes(f.typ) && b.tr.IsParentOfSingleMultipleOccurringChildElement() {
		if f.obj != nil {
			for _, k := range f.obj.Keys() {
				if v, _ := f.obj.Get(k); v != nil {
					if items, ok := v.([]any); ok {
						return items
					}
				}
			}
		}
		return []any{}
	}
	obj := NewObject()
	b.addAttributes(obj, attrs)
	if f.obj != nil {
		for _, k := range f.obj.Keys() {
			v, _ := f.obj.Get(k)
			obj.Set(k, v)
		}
	}
	if ct, ok := f.typ.(*xsd.ComplexType); ok && ct.Content == xsd.ContentMixed {
		if t := strings.TrimSpace(f.text.String()); t != "" {
			obj.Set(b.opt.textLabel(), t)
		}
	}
	return obj
}

// leaf coerces text; with attributes the text moves under the mixed label.
func (b *Builder) leaf(name string, t *xsd.SimpleType, text string, attrs []member) any {
	v, ok := coerce(t, text)
	if !ok {
		b.warn(xa.CodeInvalidValue, "value [%s] of element [%s] is not a valid %s, kept as string", text, name, t.BuiltinKind())
	}
	if len(attrs) == 0 {
		return v
	}
	obj := NewObject()
	b.addAttributes(obj, attrs)
	if text != "" {
		obj.Set(b.opt.textLabel(), v)
	}
	return obj
}

type member struct {
	name  string
	value any
}

func (b *Builder) attributes(f *frame) []member {
	if len(f.attrs) == 0 {
		return nil
	}
	out := make([]member, 0, len(f.attrs))
	for _, a := range f.attrs {
		var v any = a.Value
		if u := attributeUse(f.typ, a.Name.Local); u != nil {
			var ok bool
			if v, ok = coerce(u.Type, a.Value); !ok {
				b.warn(xa.CodeInvalidValue, "value [%s] of attribute [%s] is not a valid %s, kept as string", a.Value, a.Name.Local, u.Type.BuiltinKind())
			}
		}
		out = append(out, member{b.opt.attrPrefix() + a.Name.Local, v})
	}
	return out
}

// keepsAttributes reports whether elements of type t are always objects
// because their type declares attributes.
func (b *Builder) keepsAttributes(t xsd.Type) bool {
	if b.opt.SkipAttributes {
		return false
	}
	return len(xsd.AttributeUses(t)) > 0 || xsd.AttributeWildcard(t) != nil
}

func (b *Builder) addAttributes(obj *Object, attrs []member) {
	for _, m := range attrs {
		obj.Set(m.name, m.value)
	}
}

// declaration resolves an opening element: the root against the global
// declarations, children against the content model of the parent's type.
func (b *Builder) declaration(name xml.Name) (*xsd.Element, error) {
	if len(b.stack) == 0 {
		decl, err := b.schema.FindElement(name.Space, name.Local)
		if err != nil {
			return nil, xa.Issues{{Path: name.Local, Code: xa.CodeAmbiguousDeclaration, Message: err.Error(), Cause: err}}
		}
		if decl == nil {
			return nil, xa.Issues{{Path: name.Local, Code: xa.CodeUnknownRoot,
				Message: fmt.Sprintf("Cannot find the declaration of element for [%s] in namespace [%s]", name.Local, name.Space)}}
		}
		return decl, nil
	}
	parent := b.stack[len(b.stack)-1]
	if decl := childDeclaration(xsd.ContentParticle(parent.typ), name.Local); decl != nil {
		return decl, nil
	}
	if decl, err := b.schema.FindElement(name.Space, name.Local); err == nil && decl != nil {
		return decl, nil
	}
	if !b.tr.TypeContainsWildcard() {
		b.warn(xa.CodeUndeclaredNode, "element [%s] is not declared in the type of its parent", name.Local)
	}
	return nil, nil
}

func childDeclaration(p *xsd.Particle, name string) *xsd.Element {
	if p == nil {
		return nil
	}
	switch t := p.Term.(type) {
	case *xsd.Element:
		if t.Name.Local == name {
			return t
		}
	case *xsd.ModelGroup:
		for _, c := range t.Particles {
			if d := childDeclaration(c, name); d != nil {
				return d
			}
		}
	}
	return nil
}

func attributeUse(t xsd.Type, name string) *xsd.AttributeUse {
	for _, u := range xsd.AttributeUses(t) {
		if u.Name.Local == name {
			return u
		}
	}
	return nil
}

func declaresAttribute(t xsd.Type, name string) bool {
	return attributeUse(t, name) != nil || xsd.AttributeWildcard(t) != nil
}

func (b *Builder) warn(code, format string, args ...any) {
	iss := xa.Issue{Path: b.tr.Context().Path(), Code: code, Message: fmt.Sprintf(format, args...)}
	b.warnings = append(b.warnings, iss)
	b.log.Warn(iss.Message, "code", code, "path", iss.Path)
}
