// Package convert wires sources, the Forward Aligner, the XML writer, the
// Reverse Builder and the JSON Schema projector into one-call conversions.
package convert

import (
	"context"
	"io"

	"github.com/pkg/errors"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/events"
	"github.com/reoring/xsdalign/forward"
	"github.com/reoring/xsdalign/jsonschema"
	"github.com/reoring/xsdalign/override"
	"github.com/reoring/xsdalign/reverse"
	"github.com/reoring/xsdalign/source/dom"
	"github.com/reoring/xsdalign/source/gojson"
	"github.com/reoring/xsdalign/source/mapsrc"
	"github.com/reoring/xsdalign/xsd"
)

// XMLOptions configures conversions that produce XML text.
type XMLOptions struct {
	xa.Options
	// Overrides supplies substitute and default values; nil disables them.
	Overrides override.Provider
	// Indent pretty-prints the output when non-empty.
	Indent string
	// AttributePrefix and MixedContentLabel name the attribute and text
	// members of JSON and map sources.
	AttributePrefix   string
	MixedContentLabel string
}

// JSONOptions configures conversions that produce JSON text.
type JSONOptions struct {
	reverse.Options
	// Indent pretty-prints the output when non-empty.
	Indent string
}

// JSONToXML aligns the JSON document read from in and writes it as XML.
// The returned issues are the recoverable ones met on the way.
func JSONToXML(ctx context.Context, schema *xsd.Schema, in io.Reader, out io.Writer, opt XMLOptions) (xa.Issues, error) {
	doc, err := gojson.Parse(in, gojson.Options{Logger: opt.Log()})
	if err != nil {
		return nil, err
	}
	b := gojson.Binding{AttributePrefix: opt.AttributePrefix, MixedContentLabel: opt.MixedContentLabel}
	a := aligner[*gojson.Node](schema, b, out, opt)
	if err := a.Align(ctx, doc); err != nil {
		return a.Warnings(), err
	}
	return a.Warnings(), nil
}

// MapToXML aligns a map[string]any tree, as decoded from YAML or JSON, and
// writes it as XML.
func MapToXML(ctx context.Context, schema *xsd.Schema, doc map[string]any, out io.Writer, opt XMLOptions) (xa.Issues, error) {
	b := mapsrc.Binding{AttributePrefix: opt.AttributePrefix, MixedContentLabel: opt.MixedContentLabel}
	a := aligner[any](schema, b, out, opt)
	if err := a.Align(ctx, doc); err != nil {
		return a.Warnings(), err
	}
	return a.Warnings(), nil
}

// YAMLToXML reads a YAML document and aligns it like MapToXML.
func YAMLToXML(ctx context.Context, schema *xsd.Schema, in io.Reader, out io.Writer, opt XMLOptions) (xa.Issues, error) {
	doc, err := mapsrc.LoadYAML(in)
	if err != nil {
		return nil, err
	}
	return MapToXML(ctx, schema, doc, out, opt)
}

// DOMToXML reads an XML document and writes it again in schema order,
// filling absent content from the overrides.
func DOMToXML(ctx context.Context, schema *xsd.Schema, in io.Reader, out io.Writer, opt XMLOptions) (xa.Issues, error) {
	root, err := dom.Parse(in)
	if err != nil {
		return nil, err
	}
	a := aligner[*dom.Element](schema, dom.Binding{}, out, opt)
	if err := a.AlignRoot(ctx, root.Name.Local, root.Name.Space, root); err != nil {
		return a.Warnings(), err
	}
	return a.Warnings(), nil
}

func aligner[N any](schema *xsd.Schema, b xa.Binding[N], out io.Writer, opt XMLOptions) *forward.Aligner[N] {
	a := forward.New[N](schema, b, events.NewWriter(out, opt.Indent), opt.Options)
	if opt.Overrides != nil {
		a.SetProvider(opt.Overrides)
	}
	return a
}

// XMLToJSON rebuilds the XML document read from in as JSON.
func XMLToJSON(schema *xsd.Schema, in io.Reader, out io.Writer, opt JSONOptions) (xa.Issues, error) {
	b := reverse.NewBuilder(schema, opt.Options)
	if err := events.Replay(in, b); err != nil {
		return b.Warnings(), err
	}
	v, err := b.Value()
	if err != nil {
		return b.Warnings(), err
	}
	text, err := reverse.Marshal(v, opt.Indent)
	if err != nil {
		return b.Warnings(), errors.Wrap(err, "convert: encode json")
	}
	if _, err := out.Write(append(text, '\n')); err != nil {
		return b.Warnings(), errors.Wrap(err, "convert: write json")
	}
	return b.Warnings(), nil
}

// ProjectJSONSchema writes the JSON Schema of documents rooted at the global
// element root.
func ProjectJSONSchema(schema *xsd.Schema, root, namespace string, out io.Writer, opt jsonschema.Options, indent string) (xa.Issues, error) {
	p := jsonschema.New(schema, opt)
	doc, err := p.Document(root, namespace)
	if err != nil {
		return p.Warnings(), err
	}
	text, err := doc.Marshal(indent)
	if err != nil {
		return p.Warnings(), errors.Wrap(err, "convert: encode json schema")
	}
	if _, err := out.Write(append(text, '\n')); err != nil {
		return p.Warnings(), errors.Wrap(err, "convert: write json schema")
	}
	return p.Warnings(), nil
}
