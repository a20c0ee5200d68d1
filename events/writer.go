package events

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const xmlnsURI = "http://www.w3.org/2000/xmlns/"

// Writer is a Sink that serializes events as XML text. Prefixes announced
// through StartPrefixMapping are declared on the next element; namespaces
// used without an announcement get a generated prefix.
type Writer struct {
	w      *bufio.Writer
	indent string

	pending []binding
	scopes  []scope
	open    bool // start tag written without its closing '>'
	auto    int
	err     error
}

type binding struct{ prefix, uri string }

type scope struct {
	tag      string
	bindings []binding
	children bool
	text     bool
}

// NewWriter returns a Writer writing to w. A non-empty indent pretty-prints
// element-only content.
func NewWriter(w io.Writer, indent string) *Writer {
	return &Writer{w: bufio.NewWriter(w), indent: indent}
}

func (x *Writer) StartDocument() error {
	x.write(xml.Header)
	return x.err
}

func (x *Writer) EndDocument() error {
	if x.err != nil {
		return x.err
	}
	if len(x.scopes) > 0 {
		return fmt.Errorf("events: %d unclosed elements at end of document", len(x.scopes))
	}
	x.write("\n")
	if x.err == nil {
		x.err = x.w.Flush()
	}
	return x.err
}

func (x *Writer) StartPrefixMapping(prefix, uri string) error {
	x.pending = append(x.pending, binding{prefix, uri})
	return nil
}

// EndPrefixMapping is a no-op: bindings go out of scope with their element.
func (x *Writer) EndPrefixMapping(string) error { return nil }

func (x *Writer) StartElement(name xml.Name, attrs []xml.Attr) error {
	x.closeStart()
	if n := len(x.scopes); n > 0 {
		x.scopes[n-1].children = true
	}
	x.newline(len(x.scopes))
	sc := scope{bindings: x.pending}
	x.pending = nil
	x.scopes = append(x.scopes, sc)
	top := &x.scopes[len(x.scopes)-1]

	tag := x.qualify(name, top, false)
	top.tag = tag
	var b strings.Builder
	b.WriteString("<" + tag)
	qattrs := make([]string, 0, len(attrs))
	for _, a := range attrs {
		qattrs = append(qattrs, x.qualify(a.Name, top, true)+`="`+escapeAttr(a.Value)+`"`)
	}
	for _, bd := range top.bindings {
		if bd.prefix == "" {
			b.WriteString(` xmlns="` + escapeAttr(bd.uri) + `"`)
		} else {
			b.WriteString(" xmlns:" + bd.prefix + `="` + escapeAttr(bd.uri) + `"`)
		}
	}
	for _, q := range qattrs {
		b.WriteString(" " + q)
	}
	x.write(b.String())
	x.open = true
	return x.err
}

func (x *Writer) Characters(text string) error {
	if text == "" {
		return x.err
	}
	x.closeStart()
	if n := len(x.scopes); n > 0 {
		x.scopes[n-1].text = true
	}
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(text)); err != nil {
		return err
	}
	x.write(b.String())
	return x.err
}

func (x *Writer) EndElement(xml.Name) error {
	n := len(x.scopes)
	if n == 0 {
		return fmt.Errorf("events: endElement without open element")
	}
	top := x.scopes[n-1]
	x.scopes = x.scopes[:n-1]
	if x.open {
		x.write("/>")
		x.open = false
		return x.err
	}
	if x.indent != "" && top.children && !top.text {
		x.write("\n" + strings.Repeat(x.indent, n-1))
	}
	x.write("</" + top.tag + ">")
	return x.err
}

// Flush writes buffered output.
func (x *Writer) Flush() error {
	if x.err != nil {
		return x.err
	}
	return x.w.Flush()
}

func (x *Writer) closeStart() {
	if x.open {
		x.write(">")
		x.open = false
	}
}

func (x *Writer) newline(depth int) {
	if x.indent == "" || depth == 0 || x.scopes[depth-1].text {
		return
	}
	x.write("\n" + strings.Repeat(x.indent, depth))
}

// qualify renders name with the prefix bound to its namespace, declaring a
// generated prefix on top when none is in scope.
func (x *Writer) qualify(name xml.Name, top *scope, attr bool) string {
	switch name.Space {
	case "":
		if uri, ok := x.defaultURI(); !attr && ok && uri != "" {
			top.bindings = append(top.bindings, binding{"", ""})
		}
		return name.Local
	case "xmlns", xmlnsURI:
		return "xmlns:" + name.Local
	}
	if p, ok := x.lookup(name.Space, attr); ok {
		if p == "" {
			return name.Local
		}
		return p + ":" + name.Local
	}
	var p string
	if _, bound := x.defaultURI(); attr || bound {
		x.auto++
		p = fmt.Sprintf("ns%d", x.auto)
	}
	top.bindings = append(top.bindings, binding{p, name.Space})
	if p == "" {
		return name.Local
	}
	return p + ":" + name.Local
}

func (x *Writer) lookup(uri string, attr bool) (string, bool) {
	for i := len(x.scopes) - 1; i >= 0; i-- {
		bs := x.scopes[i].bindings
		for j := len(bs) - 1; j >= 0; j-- {
			if bs[j].uri != uri {
				continue
			}
			// attributes never use the default namespace
			if attr && bs[j].prefix == "" {
				continue
			}
			return bs[j].prefix, true
		}
	}
	return "", false
}

func (x *Writer) defaultURI() (string, bool) {
	for i := len(x.scopes) - 1; i >= 0; i-- {
		bs := x.scopes[i].bindings
		for j := len(bs) - 1; j >= 0; j-- {
			if bs[j].prefix == "" {
				return bs[j].uri, true
			}
		}
	}
	return "", false
}

func (x *Writer) write(s string) {
	if x.err != nil {
		return
	}
	_, x.err = x.w.WriteString(s)
}

func escapeAttr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
