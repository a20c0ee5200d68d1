// Package override implements the path-addressed substitution store consulted
// by the Forward Aligner.
//
// Entries are registered under an element path and stored in a trie keyed
// leaf first. A lookup walks the live alignment context from the innermost
// element outwards. Anchored paths ("/Order/Item/price") must match the whole
// ancestor chain; relative paths ("Item/price", "price") carry an any-ancestor
// marker and match as soon as their names are consumed. The most specific
// match wins.
package override

import (
	"errors"
	"strings"

	xa "github.com/reoring/xsdalign"
)

// ErrDuplicate is returned by Register when the path already holds a value.
// The first registration is kept.
var ErrDuplicate = errors.New("override: duplicate registration")

// Provider resolves substitution values against an alignment context. A
// Provider is read-only during alignment.
type Provider interface {
	// HasValueFor reports whether a value is registered for child name of ctx.
	HasValueFor(ctx *xa.Context, name string) bool
	// ValueFor returns the value for child name of ctx.
	ValueFor(ctx *xa.Context, name string) any
	// HasOverrideAt reports whether the text of the element at ctx is replaced.
	HasOverrideAt(ctx *xa.Context) bool
	// OverrideAt returns the replacement text of the element at ctx.
	OverrideAt(ctx *xa.Context) any
	// DefaultFor returns the value used when the element at ctx has empty text.
	DefaultFor(ctx *xa.Context) (any, bool)
}

// Path is an element path, root to leaf.
type Path struct {
	Names    []string
	Anchored bool
}

// ParsePath parses "/a/b/c" (anchored at the root) or "b/c" (any ancestors).
func ParsePath(s string) Path {
	p := Path{Anchored: strings.HasPrefix(s, "/")}
	for _, n := range strings.Split(strings.Trim(s, "/"), "/") {
		if n != "" {
			p.Names = append(p.Names, n)
		}
	}
	return p
}

func (p Path) String() string {
	s := strings.Join(p.Names, "/")
	if p.Anchored {
		return "/" + s
	}
	return s
}

type node struct {
	children map[string]*node
	value    any
	hasValue bool
	// anywhere is the any-ancestor marker: it matches whatever ancestors
	// remain above this point.
	anywhere    any
	hasAnywhere bool
}

func (n *node) child(name string) *node {
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c, ok := n.children[name]
	if !ok {
		c = &node{}
		n.children[name] = c
	}
	return c
}

type trie struct{ root node }

func (t *trie) register(p Path, v any) error {
	if len(p.Names) == 0 {
		return errors.New("override: empty path")
	}
	n := &t.root
	for i := len(p.Names) - 1; i >= 0; i-- {
		n = n.child(p.Names[i])
	}
	if p.Anchored {
		if n.hasValue {
			return ErrDuplicate
		}
		n.value, n.hasValue = v, true
		return nil
	}
	if n.hasAnywhere {
		return ErrDuplicate
	}
	n.anywhere, n.hasAnywhere = v, true
	return nil
}

// match resolves leaf as the child of ctx.
func (t *trie) match(ctx *xa.Context, leaf string) (any, bool) {
	n := t.root.children[leaf]
	var (
		best  any
		found bool
	)
	f := ctx
	for n != nil {
		if n.hasAnywhere {
			best, found = n.anywhere, true
		}
		if f == nil {
			if n.hasValue {
				return n.value, true
			}
			break
		}
		n = n.children[f.Name]
		f = f.Parent
	}
	return best, found
}

func (t *trie) matchAt(ctx *xa.Context) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	return t.match(ctx.Parent, ctx.Name)
}

// Map is the trie-backed Provider. Populate it before alignment starts.
type Map struct {
	overrides trie
	defaults  trie
}

// NewMap returns an empty Map.
func NewMap() *Map { return &Map{} }

// Register stores an override: a value that substitutes for a missing child
// and replaces the text of the element at path.
func (m *Map) Register(p Path, v any) error { return m.overrides.register(p, v) }

// RegisterDefault stores a value used only when the element at path yields
// empty text.
func (m *Map) RegisterDefault(p Path, v any) error { return m.defaults.register(p, v) }

func (m *Map) HasValueFor(ctx *xa.Context, name string) bool {
	_, ok := m.overrides.match(ctx, name)
	return ok
}

func (m *Map) ValueFor(ctx *xa.Context, name string) any {
	v, _ := m.overrides.match(ctx, name)
	return v
}

func (m *Map) HasOverrideAt(ctx *xa.Context) bool {
	_, ok := m.overrides.matchAt(ctx)
	return ok
}

func (m *Map) OverrideAt(ctx *xa.Context) any {
	v, _ := m.overrides.matchAt(ctx)
	return v
}

func (m *Map) DefaultFor(ctx *xa.Context) (any, bool) { return m.defaults.matchAt(ctx) }

// Chain consults providers in order; the first provider with a hit answers.
type Chain []Provider

func (c Chain) HasValueFor(ctx *xa.Context, name string) bool {
	for _, p := range c {
		if p.HasValueFor(ctx, name) {
			return true
		}
	}
	return false
}

func (c Chain) ValueFor(ctx *xa.Context, name string) any {
	for _, p := range c {
		if p.HasValueFor(ctx, name) {
			return p.ValueFor(ctx, name)
		}
	}
	return nil
}

func (c Chain) HasOverrideAt(ctx *xa.Context) bool {
	for _, p := range c {
		if p.HasOverrideAt(ctx) {
			return true
		}
	}
	return false
}

func (c Chain) OverrideAt(ctx *xa.Context) any {
	for _, p := range c {
		if p.HasOverrideAt(ctx) {
			return p.OverrideAt(ctx)
		}
	}
	return nil
}

func (c Chain) DefaultFor(ctx *xa.Context) (any, bool) {
	for _, p := range c {
		if v, ok := p.DefaultFor(ctx); ok {
			return v, true
		}
	}
	return nil, false
}
