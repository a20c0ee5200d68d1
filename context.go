package xsdalign

import (
	"strings"

	"github.com/reoring/xsdalign/xsd"
)

// Context is one immutable frame of the ancestor chain: the element being
// aligned, its resolved type and the frame of its parent.
type Context struct {
	Parent *Context
	Name   string
	Type   xsd.Type
}

// Names returns the element names from the root to c.
func (c *Context) Names() []string {
	var out []string
	for f := c; f != nil; f = f.Parent {
		out = append(out, f.Name)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Path renders the ancestor chain as a dotted path.
func (c *Context) Path() string {
	if c == nil {
		return ""
	}
	return strings.Join(c.Names(), ".")
}

// Depth is the number of frames in the chain.
func (c *Context) Depth() int {
	n := 0
	for f := c; f != nil; f = f.Parent {
		n++
	}
	return n
}

// ContextStack tracks the current ancestor chain. Enter and Exit must be
// balanced with element open and close.
type ContextStack struct {
	top *Context
}

// Enter pushes a frame for name whose parent is the current top.
func (s *ContextStack) Enter(name string, t xsd.Type) *Context {
	s.top = &Context{Parent: s.top, Name: name, Type: t}
	return s.top
}

// Exit pops the current frame and returns the new top.
func (s *ContextStack) Exit() *Context {
	if s.top != nil {
		s.top = s.top.Parent
	}
	return s.top
}

// Current returns the innermost frame, nil outside any element.
func (s *ContextStack) Current() *Context { return s.top }
