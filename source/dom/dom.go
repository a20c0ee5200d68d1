// Package dom reads XML into a light element tree and binds it to the
// Forward Aligner, so documents can be re-aligned against a schema.
package dom

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/xsd"
)

// Element is one XML element. Text holds the concatenated character data
// directly inside the element.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Element
	Text     string
	Nil      bool

	// items is set on synthetic list values built from substitutions.
	items []*Element
}

// Parse reads the document element from r.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var stack []*Element
	var root *Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "dom: parse")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := &Element{Name: t.Name}
			for _, a := range t.Attr {
				if a.Name.Space == xsd.InstanceNamespace && a.Name.Local == "nil" {
					e.Nil = a.Value == "true" || a.Value == "1"
					continue
				}
				e.Attrs = append(e.Attrs, a)
			}
			if n := len(stack); n > 0 {
				stack[n-1].Children = append(stack[n-1].Children, e)
			} else if root == nil {
				root = e
			}
			stack = append(stack, e)
		case xml.CharData:
			if n := len(stack); n > 0 {
				stack[n-1].Text += string(t)
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, errors.New("dom: no document element")
	}
	return root, nil
}

// Binding exposes Element trees.
type Binding struct{}

var _ xa.Binding[*Element] = Binding{}

func (Binding) Kind(e *Element) xa.NodeKind {
	switch {
	case e == nil || e.Nil:
		return xa.NodeNull
	case e.items != nil:
		return xa.NodeArray
	case len(e.Children) > 0:
		return xa.NodeObject
	case strings.TrimSpace(e.Text) != "":
		return xa.NodeScalar
	}
	return xa.NodeObject
}

func (Binding) Keys(e *Element) []string {
	if e == nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, c := range e.Children {
		if !seen[c.Name.Local] {
			seen[c.Name.Local] = true
			out = append(out, c.Name.Local)
		}
	}
	return out
}

func (Binding) Children(e *Element, name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Name.Local == name {
			out = append(out, c)
		}
	}
	return out
}

func (Binding) Attributes(e *Element) []xa.Attribute {
	if e == nil {
		return nil
	}
	var out []xa.Attribute
	for _, a := range e.Attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		out = append(out, xa.Attribute{Name: a.Name.Local, Value: a.Value})
	}
	return out
}

func (Binding) Content(e *Element) *Element { return e }

func (Binding) Text(e *Element) (string, bool) {
	if e == nil || e.items != nil {
		return "", false
	}
	if len(e.Children) > 0 {
		return "", false
	}
	return e.Text, true
}

func (Binding) Items(e *Element) []*Element {
	if e == nil {
		return nil
	}
	return e.items
}

func (b Binding) Filter(e *Element, keep func(string) bool, extra []xa.Member[*Element]) *Element {
	if e == nil {
		return nil
	}
	if e.items != nil {
		items := make([]*Element, 0, len(e.items))
		for _, it := range e.items {
			items = append(items, b.Filter(it, keep, extra))
		}
		return &Element{Name: e.Name, items: items}
	}
	out := &Element{Name: e.Name, Attrs: e.Attrs}
	present := map[string]bool{}
	for _, c := range e.Children {
		if keep(c.Name.Local) {
			out.Children = append(out.Children, c)
			present[c.Name.Local] = true
		}
	}
	for _, m := range extra {
		if present[m.Name] || m.Value == nil {
			continue
		}
		if m.Value.items != nil {
			for _, it := range m.Value.items {
				c := *it
				c.Name = xml.Name{Local: m.Name}
				out.Children = append(out.Children, &c)
			}
			continue
		}
		c := *m.Value
		c.Name = xml.Name{Local: m.Name}
		out.Children = append(out.Children, &c)
	}
	return out
}

func (Binding) Value(v any) *Element {
	switch t := v.(type) {
	case nil:
		return &Element{}
	case *Element:
		return t
	case []any:
		items := make([]*Element, 0, len(t))
		for _, it := range t {
			items = append(items, &Element{Text: fmt.Sprint(it)})
		}
		return &Element{items: items}
	}
	return &Element{Text: fmt.Sprint(v)}
}
