// Package forward aligns loosely typed source data with a schema and emits
// the result as a validated structural event stream.
//
// The Aligner is generic over the source model: anything implementing
// xsdalign.Binding can be aligned. For every element the schema decides the
// structure and order of the output while the source supplies the values.
package forward

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/events"
	"github.com/reoring/xsdalign/override"
	"github.com/reoring/xsdalign/xsd"
)

const (
	msgExpectedSingleElement = "did not expect array, but single element"
	msgFullInputStrict       = "straight json found while expecting compact arrays and strict syntax checking"
	msgCannotFindDeclaration = "Cannot find the declaration of element"
	msgExpectedElement       = "expected element"
	namespacePrefix          = "ns"
)

// Aligner converts one document at a time. It is not safe for concurrent
// use; the schema and the override provider may be shared between Aligners.
type Aligner[N any] struct {
	schema *xsd.Schema
	b      xa.Binding[N]
	sink   events.Sink
	opt    xa.Options
	sp     override.Provider
	log    *slog.Logger

	tr        *xa.Tracker
	prefixes  map[string]string
	declared  []string
	counter   int
	stubs     map[*xsd.Element]bool
	searching map[*xsd.Element]bool
	warnings  xa.Issues
}

// New returns an Aligner writing to sink.
func New[N any](schema *xsd.Schema, b xa.Binding[N], sink events.Sink, opt xa.Options) *Aligner[N] {
	return &Aligner[N]{schema: schema, b: b, sink: sink, opt: opt, log: opt.Log()}
}

// SetProvider installs the override/default provider consulted for missing
// children and element text.
func (a *Aligner[N]) SetProvider(p override.Provider) { a.sp = p }

// Warnings returns the recoverable issues met during the last alignment.
func (a *Aligner[N]) Warnings() xa.Issues { return a.warnings }

func (a *Aligner[N]) reset() {
	a.tr = xa.NewTracker()
	a.prefixes = make(map[string]string)
	a.declared = nil
	a.counter = 1
	a.stubs = make(map[*xsd.Element]bool)
	a.searching = make(map[*xsd.Element]bool)
	a.warnings = nil
}

// Align converts a JSON-like document. When Options.RootElement is empty the
// root is the single top-level member that is not an attribute or text
// label. A top-level object holding only the root member is unwrapped.
func (a *Aligner[N]) Align(ctx context.Context, node N) error {
	a.reset()
	root := a.opt.RootElement
	if a.b.Kind(node) == xa.NodeObject {
		candidates := a.b.Keys(node)
		if root == "" {
			var err error
			if root, err = determineRoot(candidates); err != nil {
				return err
			}
		}
		if len(candidates) == 1 && candidates[0] == root {
			node = a.b.Children(node, root)[0]
		}
	}
	if root == "" {
		return xa.Issues{{Code: xa.CodeUnknownRoot, Message: "Cannot determine XML root element, neither from attribute rootElement, nor from JSON node"}}
	}
	if a.b.Kind(node) == xa.NodeArray && !a.opt.CompactArrays && a.opt.StrictSyntax {
		return xa.Issues{{Path: root, Code: xa.CodeArrayShape, Message: fmt.Sprintf("%s [%s] or array element container", msgExpectedSingleElement, root)}}
	}
	return a.document(ctx, root, a.opt.TargetNamespace, node)
}

// AlignRoot converts node as the element name, without root detection or
// unwrapping. Element trees use it with the name of their document element.
func (a *Aligner[N]) AlignRoot(ctx context.Context, name, namespace string, node N) error {
	a.reset()
	return a.document(ctx, name, namespace, node)
}

func determineRoot(candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", xa.Issues{{Code: xa.CodeUnknownRoot, Message: "Cannot determine XML root element, neither from attribute rootElement, nor from JSON node"}}
	case 1:
		return candidates[0], nil
	}
	names := candidates
	if len(names) > 5 {
		names = names[:5]
	}
	list := strings.Join(names, ",")
	if len(candidates) > 5 {
		list += ", ..."
	}
	return "", xa.Issues{{Code: xa.CodeUnknownRoot, Message: fmt.Sprintf("Cannot determine XML root element, too many names [%s] in JSON", list)}}
}

func (a *Aligner[N]) document(ctx context.Context, name, namespace string, node N) error {
	decl, err := a.schema.FindElement(namespace, name)
	if err != nil {
		return xa.Issues{{Path: name, Code: xa.CodeAmbiguousDeclaration, Message: err.Error(), Cause: err}}
	}
	if decl == nil {
		return xa.Issues{{Path: name, Code: xa.CodeUnknownRoot, Message: fmt.Sprintf("%s for [%s] in namespace [%s]", msgCannotFindDeclaration, name, namespace)}}
	}
	if err := a.sink.StartDocument(); err != nil {
		return errors.Wrap(err, "forward: start document")
	}
	if err := a.element(ctx, decl, node); err != nil {
		return err
	}
	for i := len(a.declared) - 1; i >= 0; i-- {
		if err := a.sink.EndPrefixMapping(a.declared[i]); err != nil {
			return errors.Wrap(err, "forward: end prefix mapping")
		}
	}
	if err := a.sink.EndDocument(); err != nil {
		return errors.Wrap(err, "forward: end document")
	}
	return nil
}

// qualify announces a prefix for namespace on first use.
func (a *Aligner[N]) qualify(namespace string) error {
	if namespace == "" {
		return nil
	}
	if _, ok := a.prefixes[namespace]; ok {
		return nil
	}
	prefix := fmt.Sprintf("%s%d", namespacePrefix, a.counter)
	a.counter++
	a.prefixes[namespace] = prefix
	a.declared = append(a.declared, prefix)
	return a.sink.StartPrefixMapping(prefix, namespace)
}

func (a *Aligner[N]) warn(code, format string, args ...any) {
	iss := xa.Issue{Path: a.tr.Context().Path(), Code: code, Message: fmt.Sprintf(format, args...)}
	a.warnings = append(a.warnings, iss)
	a.log.Warn(iss.Message, "code", code, "path", iss.Path)
}

func (a *Aligner[N]) fail(code, format string, args ...any) error {
	return xa.NewIssue(a.tr.Context(), code, format, args...)
}

// recoverable reports a problem that the ignore flag downgrades to a warning.
func (a *Aligner[N]) recoverable(ignore bool, code, format string, args ...any) error {
	if ignore {
		a.warn(code, format, args...)
		return nil
	}
	return a.fail(code, format, args...)
}

// element emits decl for node. A repeating element given an array emits one
// element per item.
func (a *Aligner[N]) element(ctx context.Context, decl *xsd.Element, node N) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := decl.Name.Local
	if a.b.Kind(node) == xa.NodeArray && a.tr.IsMultipleOccurringChildElement(name) {
		for _, item := range a.b.Items(node) {
			if err := a.element(ctx, decl, item); err != nil {
				return err
			}
		}
		return nil
	}
	attrs, err := a.attributes(decl, node)
	if err != nil {
		return err
	}
	if err := a.qualify(decl.Name.Space); err != nil {
		return err
	}
	qn := xml.Name{Space: decl.Name.Space, Local: name}
	if a.b.Kind(node) == xa.NodeNull {
		if !decl.Nillable && !a.stubs[decl] {
			a.warn(xa.CodeInvalidValue, "element [%s] is not nillable, but nil found", name)
		}
		if err := a.sink.StartPrefixMapping(xa.NilPrefix, xsd.InstanceNamespace); err != nil {
			return err
		}
		attrs = append(attrs, xml.Attr{Name: xml.Name{Space: xsd.InstanceNamespace, Local: "nil"}, Value: "true"})
		if err := a.sink.StartElement(qn, attrs); err != nil {
			return err
		}
		a.tr.Enter(name, a.typeOf(decl))
		a.tr.Exit()
		if err := a.sink.EndElement(qn); err != nil {
			return err
		}
		return a.sink.EndPrefixMapping(xa.NilPrefix)
	}
	if err := a.sink.StartElement(qn, attrs); err != nil {
		return err
	}
	a.tr.Enter(name, a.typeOf(decl))
	err = a.contents(ctx, decl, node)
	a.tr.Exit()
	if err != nil {
		return err
	}
	return a.sink.EndElement(qn)
}

// attributes matches the attribute members of node against the declared
// attribute uses; the attribute wildcard takes the rest.
func (a *Aligner[N]) attributes(decl *xsd.Element, node N) ([]xml.Attr, error) {
	if a.opt.SkipAttributes {
		return nil, nil
	}
	name := decl.Name.Local
	found := a.b.Attributes(node)
	uses := xsd.AttributeUses(a.typeOf(decl))
	wildcard := xsd.AttributeWildcard(a.typeOf(decl))
	if len(uses) == 0 && wildcard == nil {
		if len(found) > 0 {
			a.warn(xa.CodeUndeclaredNode, "node [%s] found [%d] attributes, but no declared AttributeUses or wildcard", name, len(found))
		}
		return nil, nil
	}
	if len(found) == 0 {
		a.log.Debug("no attributes found", "node", name, "declared", len(uses))
		return nil, nil
	}
	used := make([]bool, len(found))
	var out []xml.Attr
	for _, u := range uses {
		for i, f := range found {
			if used[i] || f.Name != u.Name.Local {
				continue
			}
			used[i] = true
			if err := a.qualify(u.Name.Space); err != nil {
				return nil, err
			}
			out = append(out, xml.Attr{Name: xml.Name{Space: u.Name.Space, Local: f.Name}, Value: f.Value})
			break
		}
	}
	var dropped []string
	for i, f := range found {
		if used[i] {
			continue
		}
		if wildcard != nil {
			out = append(out, xml.Attr{Name: xml.Name{Local: f.Name}, Value: f.Value})
			continue
		}
		dropped = append(dropped, f.Name)
	}
	if len(dropped) > 0 {
		a.warn(xa.CodeUndeclaredNode, "node [%s] attributes [%s] are not declared, ignored", name, strings.Join(dropped, ","))
	}
	return out, nil
}

// typeOf returns the type of decl; stubs for undeclared children have none.
func (a *Aligner[N]) typeOf(decl *xsd.Element) xsd.Type {
	if a.stubs[decl] {
		return nil
	}
	return decl.ElementType()
}

// contents emits the body of an open element according to its type.
func (a *Aligner[N]) contents(ctx context.Context, decl *xsd.Element, node N) error {
	node = a.b.Content(node)
	typ := a.typeOf(decl)
	if typ == nil {
		a.log.Warn("element has no type, handled as text", "element", decl.Name.Local)
		return a.simple(node)
	}
	if xsd.IsSimple(typ) {
		return a.simple(node)
	}
	ct := typ.(*xsd.ComplexType)
	if ct.Content == xsd.ContentEmpty {
		return nil
	}
	return a.complex(ctx, decl, node)
}

func (a *Aligner[N]) simple(node N) error {
	if text := a.text(node); text != "" {
		return a.sink.Characters(text)
	}
	return nil
}

// text resolves the text of the open element: an override replaces it, a
// default fills it when the source text is empty.
func (a *Aligner[N]) text(node N) string {
	cur := a.tr.Context()
	if a.sp != nil && a.sp.HasOverrideAt(cur) {
		switch v := a.sp.OverrideAt(cur).(type) {
		case []any, []string:
			// list overrides were expanded into items already
			t, _ := a.b.Text(node)
			return t
		case nil:
			return ""
		case string:
			return v
		default:
			return fmt.Sprint(v)
		}
	}
	t, _ := a.b.Text(node)
	if t == "" && a.sp != nil {
		if d, ok := a.sp.DefaultFor(cur); ok && d != nil {
			return fmt.Sprint(d)
		}
	}
	return t
}
