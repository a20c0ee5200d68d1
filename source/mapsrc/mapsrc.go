// Package mapsrc binds plain Go values (map[string]any trees as produced by
// YAML or JSON decoders, and flat property bags) to the Forward Aligner.
package mapsrc

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	xa "github.com/reoring/xsdalign"
)

// Binding exposes map[string]any trees. Maps have no member order, so keys
// are reported sorted.
type Binding struct {
	AttributePrefix   string
	MixedContentLabel string
}

var _ xa.Binding[any] = Binding{}

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

func (b Binding) Kind(n any) xa.NodeKind {
	switch n.(type) {
	case nil:
		return xa.NodeNull
	case map[string]any:
		return xa.NodeObject
	case []any:
		return xa.NodeArray
	}
	return xa.NodeScalar
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b Binding) Keys(n any) []string {
	m, ok := n.(map[string]any)
	if !ok {
		return nil
	}
	var out []string
	for _, k := range sortedKeys(m) {
		if strings.HasPrefix(k, b.attrPrefix()) || k == b.textLabel() {
			continue
		}
		out = append(out, k)
	}
	return out
}

func (b Binding) Children(n any, name string) []any {
	m, ok := n.(map[string]any)
	if !ok {
		return nil
	}
	if v, ok := m[name]; ok {
		return []any{v}
	}
	return nil
}

func (b Binding) Attributes(n any) []xa.Attribute {
	m, ok := n.(map[string]any)
	if !ok {
		return nil
	}
	var out []xa.Attribute
	p := b.attrPrefix()
	for _, k := range sortedKeys(m) {
		if strings.HasPrefix(k, p) {
			v, _ := b.Text(m[k])
			out = append(out, xa.Attribute{Name: k[len(p):], Value: v})
		}
	}
	return out
}

func (b Binding) Content(n any) any {
	if m, ok := n.(map[string]any); ok {
		if v, ok := m[b.textLabel()]; ok {
			return v
		}
	}
	return n
}

func (b Binding) Text(n any) (string, bool) {
	switch t := n.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case json.Number:
		return t.String(), true
	case map[string]any:
		return "", len(t) == 0
	case []any:
		return "", false
	case fmt.Stringer:
		return t.String(), true
	}
	return fmt.Sprint(n), true
}

func (b Binding) Items(n any) []any {
	a, _ := n.([]any)
	return a
}

func (b Binding) Filter(n any, keep func(string) bool, extra []xa.Member[any]) any {
	switch t := n.(type) {
	case []any:
		out := make([]any, 0, len(t))
		for _, it := range t {
			out = append(out, b.Filter(it, keep, extra))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			if keep(k) {
				out[k] = v
			}
		}
		for _, m := range extra {
			if _, ok := out[m.Name]; !ok {
				out[m.Name] = m.Value
			}
		}
		return out
	}
	return n
}

func (b Binding) Value(v any) any {
	switch t := v.(type) {
	case nil:
		return map[string]any{}
	case []any:
		out := make([]any, 0, len(t))
		for _, it := range t {
			s, _ := b.Text(it)
			out = append(out, s)
		}
		return out
	}
	s, _ := b.Text(v)
	return s
}

// LoadYAML decodes a YAML (or JSON) document into a map tree.
func LoadYAML(r io.Reader) (map[string]any, error) {
	var m map[string]any
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, errors.Wrap(err, "mapsrc: decode yaml")
	}
	return m, nil
}

// FromProperties expands a flat property bag with dotted keys
// ("Order.Item.price") into a map tree. Repeated indices ("Item.0.id",
// "Item.1.id") become lists.
func FromProperties(props map[string]string) (map[string]any, error) {
	root := map[string]any{}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts := strings.Split(k, ".")
		cur := root
		for i, p := range parts {
			if p == "" {
				return nil, errors.Errorf("mapsrc: empty segment in property [%s]", k)
			}
			if i == len(parts)-1 {
				if _, ok := cur[p].(map[string]any); ok {
					return nil, errors.Errorf("mapsrc: property [%s] is both a value and a container", k)
				}
				cur[p] = props[k]
				break
			}
			next, ok := cur[p].(map[string]any)
			if !ok {
				if _, isValue := cur[p]; isValue {
					return nil, errors.Errorf("mapsrc: property [%s] is both a value and a container", k)
				}
				next = map[string]any{}
				cur[p] = next
			}
			cur = next
		}
	}
	m, ok := listify(root).(map[string]any)
	if !ok {
		return nil, errors.New("mapsrc: top-level properties cannot be list indices")
	}
	return m, nil
}

// listify turns maps whose keys are exactly 0..n-1 into lists.
func listify(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, c := range m {
		m[k] = listify(c)
	}
	if len(m) == 0 {
		return m
	}
	list := make([]any, len(m))
	for k, c := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(m) || strconv.Itoa(i) != k {
			return m
		}
		list[i] = c
	}
	return list
}
