// Package gojson parses JSON into an order-preserving tree with go-json and
// binds that tree to the Forward Aligner.
package gojson

import (
	"bytes"
	"io"
	"log/slog"

	j "github.com/goccy/go-json"
	"github.com/pkg/errors"

	xa "github.com/reoring/xsdalign"
	eng "github.com/reoring/xsdalign/internal/engine"
)

// Node is one JSON value. Object members keep document order. The nil *Node
// is JSON null.
type Node struct {
	kind   xa.NodeKind
	keys   []string
	values []*Node
	items  []*Node
	text   string
	quoted bool
}

// Null returns the JSON null node.
func Null() *Node { return &Node{kind: xa.NodeNull} }

// String returns a JSON string node.
func String(s string) *Node { return &Node{kind: xa.NodeScalar, text: s, quoted: true} }

// Literal returns a number or boolean node carrying its source literal.
func Literal(s string) *Node { return &Node{kind: xa.NodeScalar, text: s} }

// Array returns a JSON array node.
func Array(items ...*Node) *Node { return &Node{kind: xa.NodeArray, items: items} }

// Object returns a JSON object node holding members in order.
func Object(members ...xa.Member[*Node]) *Node {
	n := &Node{kind: xa.NodeObject}
	for _, m := range members {
		n.keys = append(n.keys, m.Name)
		n.values = append(n.values, m.Value)
	}
	return n
}

// M is shorthand for an object member.
func M(name string, v *Node) xa.Member[*Node] { return xa.Member[*Node]{Name: name, Value: v} }

// Kind classifies n.
func (n *Node) Kind() xa.NodeKind {
	if n == nil {
		return xa.NodeNull
	}
	return n.kind
}

// Get returns the member stored under key.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != xa.NodeObject {
		return nil, false
	}
	for i, k := range n.keys {
		if k == key {
			return n.values[i], true
		}
	}
	return nil, false
}

// Keys returns the member names of an object in document order.
func (n *Node) Keys() []string {
	if n.Kind() != xa.NodeObject {
		return nil
	}
	return n.keys
}

// Items returns the elements of an array.
func (n *Node) Items() []*Node {
	if n.Kind() != xa.NodeArray {
		return nil
	}
	return n.items
}

// Text returns the text of a scalar: the string itself or the literal of a
// number or boolean.
func (n *Node) Text() string {
	if n.Kind() != xa.NodeScalar {
		return ""
	}
	return n.text
}

// IsString reports whether n is a JSON string.
func (n *Node) IsString() bool { return n.Kind() == xa.NodeScalar && n.quoted }

// MarshalJSON renders n keeping member order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	switch n.Kind() {
	case xa.NodeNull:
		buf.WriteString("null")
	case xa.NodeScalar:
		if !n.quoted {
			buf.WriteString(n.text)
			return nil
		}
		b, err := j.Marshal(n.text)
		if err != nil {
			return err
		}
		buf.Write(b)
	case xa.NodeArray:
		buf.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case xa.NodeObject:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := j.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := n.values[i].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func (n *Node) String() string {
	b, err := n.MarshalJSON()
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}

// DuplicateKeys selects how repeated object members are handled. The first
// member always wins.
type DuplicateKeys int

const (
	DuplicateIgnore DuplicateKeys = iota
	DuplicateWarn
	DuplicateError
)

// Options controls parsing.
type Options struct {
	Duplicates DuplicateKeys
	// MaxDepth limits container nesting; 0 means unlimited.
	MaxDepth int
	Logger   *slog.Logger
}

type builder struct{}

func (builder) Object(keys []string, vals []*Node) *Node {
	return &Node{kind: xa.NodeObject, keys: keys, values: vals}
}
func (builder) Array(items []*Node) *Node { return &Node{kind: xa.NodeArray, items: items} }
func (builder) String(s string) *Node { return String(s) }
func (builder) Number(lit string) *Node { return Literal(lit) }
func (builder) Bool(b bool) *Node {
	if b {
		return Literal("true")
	}
	return Literal("false")
}
func (builder) Null() *Node { return Null() }

// Parse decodes one JSON document from r.
func Parse(r io.Reader, opt Options) (*Node, error) {
	return parse(newTokenizer(r), opt)
}

// ParseBytes decodes one JSON document from b.
func ParseBytes(b []byte, opt Options) (*Node, error) {
	return parse(newBytesTokenizer(b), opt)
}

// MustParse parses s and panics on error.
func MustParse(s string) *Node {
	n, err := ParseBytes([]byte(s), Options{})
	if err != nil {
		panic(err)
	}
	return n
}

func parse(src eng.TokenSource, opt Options) (*Node, error) {
	n, issues, err := eng.Decode[*Node](src, builder{}, eng.Options{
		OnDuplicate: eng.DuplicateStrictness(opt.Duplicates),
		MaxDepth:    opt.MaxDepth,
	})
	if err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(io.ErrUnexpectedEOF, "gojson: parse")
		}
		return nil, errors.Wrap(err, "gojson: parse")
	}
	if len(issues) > 0 {
		log := opt.Logger
		if log == nil {
			log = slog.Default()
		}
		for _, iss := range issues {
			log.Warn(iss.Message, "code", iss.Code, "path", iss.Path)
		}
	}
	return n, nil
}
