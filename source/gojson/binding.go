package gojson

import (
	"fmt"
	"strings"

	xa "github.com/reoring/xsdalign"
)

// Binding exposes Node trees to the Forward Aligner. Members whose name
// starts with AttributePrefix are attributes; the MixedContentLabel member
// holds the text of simple or mixed content.
type Binding struct {
	AttributePrefix   string
	MixedContentLabel string
}

var _ xa.Binding[*Node] = Binding{}

func (b Binding) attrPrefix() string {
	if b.AttributePrefix == "" {
		return xa.DefaultAttributePrefix
	}
	return b.AttributePrefix
}

func (b Binding) textLabel() string {
	if b.MixedContentLabel == "" {
		return xa.DefaultMixedContentLabel
	}
	return b.MixedContentLabel
}

func (b Binding) Kind(n *Node) xa.NodeKind { return n.Kind() }

func (b Binding) Keys(n *Node) []string {
	var out []string
	for _, k := range n.Keys() {
		if strings.HasPrefix(k, b.attrPrefix()) || k == b.textLabel() {
			continue
		}
		out = append(out, k)
	}
	return out
}

func (b Binding) Children(n *Node, name string) []*Node {
	if v, ok := n.Get(name); ok {
		return []*Node{v}
	}
	return nil
}

func (b Binding) Attributes(n *Node) []xa.Attribute {
	var out []xa.Attribute
	p := b.attrPrefix()
	for i, k := range n.Keys() {
		if !strings.HasPrefix(k, p) {
			continue
		}
		v, _ := b.Text(n.values[i])
		out = append(out, xa.Attribute{Name: k[len(p):], Value: v})
	}
	return out
}

func (b Binding) Content(n *Node) *Node {
	if v, ok := n.Get(b.textLabel()); ok {
		return v
	}
	return n
}

// Text returns scalar text. An empty object reads as the empty string; other
// structures carry no text.
func (b Binding) Text(n *Node) (string, bool) {
	switch n.Kind() {
	case xa.NodeScalar:
		return n.text, true
	case xa.NodeObject:
		if len(n.keys) == 0 {
			return "", true
		}
	}
	return "", false
}

func (b Binding) Items(n *Node) []*Node { return n.Items() }

func (b Binding) Filter(n *Node, keep func(string) bool, extra []xa.Member[*Node]) *Node {
	switch n.Kind() {
	case xa.NodeArray:
		items := make([]*Node, 0, len(n.items))
		for _, it := range n.items {
			items = append(items, b.Filter(it, keep, extra))
		}
		return Array(items...)
	case xa.NodeObject:
		out := &Node{kind: xa.NodeObject}
		for i, k := range n.keys {
			if keep(k) {
				out.keys = append(out.keys, k)
				out.values = append(out.values, n.values[i])
			}
		}
		for _, m := range extra {
			if _, ok := out.Get(m.Name); !ok {
				out.keys = append(out.keys, m.Name)
				out.values = append(out.values, m.Value)
			}
		}
		return out
	}
	return n
}

func (b Binding) Value(v any) *Node {
	switch t := v.(type) {
	case nil:
		return Object()
	case *Node:
		return t
	case string:
		return String(t)
	case []any:
		items := make([]*Node, 0, len(t))
		for _, it := range t {
			items = append(items, String(fmt.Sprint(it)))
		}
		return Array(items...)
	case []string:
		items := make([]*Node, 0, len(t))
		for _, it := range t {
			items = append(items, String(it))
		}
		return Array(items...)
	}
	return String(fmt.Sprint(v))
}
