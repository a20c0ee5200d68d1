package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/xsd"
)

type row struct {
	path, typ, content, shape, repeats, wildcard string
}

func explain(o *Explain, stdout, stderr io.Writer) error {
	e, err := setup(&o.Common, stdout, stderr)
	if err != nil {
		return err
	}
	var rows []row
	for _, decl := range e.schema.Elements() {
		rows = describe(rows, decl.Name.Local, decl, map[xsd.Type]bool{})
	}
	return finish(e, nil, writeTable(e.out, rows))
}

// describe appends a row for decl and its local descendants. Types already
// on the path are not entered again.
func describe(rows []row, path string, decl *xsd.Element, entered map[xsd.Type]bool) []row {
	t := decl.ElementType()
	r := row{path: path, typ: typeName(t), content: "simple", shape: "-", repeats: "-", wildcard: "-"}
	if ct, ok := t.(*xsd.ComplexType); ok {
		r.content = ct.Content.String()
	}
	if st, ok := t.(*xsd.SimpleType); ok {
		r.content = "simple(" + st.BuiltinKind().String() + ")"
	}
	p := xsd.ContentParticle(t)
	if p != nil {
		r.shape = xa.ClassifyRepeatingShape(p).String()
		if names := xa.MultipleOccurringChildNames(p).Sorted(); len(names) > 0 {
			r.repeats = strings.Join(names, ",")
		}
		if xa.TypeContainsWildcard(p) {
			r.wildcard = "yes"
		}
	}
	rows = append(rows, r)
	if p == nil || entered[t] {
		return rows
	}
	entered[t] = true
	defer delete(entered, t)
	for _, child := range elements(p, nil) {
		if child.Global {
			rows = append(rows, row{path: path + "." + child.Name.Local, typ: "ref", content: "-", shape: "-", repeats: "-", wildcard: "-"})
			continue
		}
		rows = describe(rows, path+"."+child.Name.Local, child, entered)
	}
	return rows
}

func elements(p *xsd.Particle, out []*xsd.Element) []*xsd.Element {
	switch t := p.Term.(type) {
	case *xsd.Element:
		out = append(out, t)
	case *xsd.ModelGroup:
		for _, c := range t.Particles {
			out = elements(c, out)
		}
	}
	return out
}

func typeName(t xsd.Type) string {
	n := t.TypeName()
	if n.Local == "" {
		return "(anonymous)"
	}
	return n.Local
}

// writeTable prints rows in columns aligned by display width.
func writeTable(w io.Writer, rows []row) error {
	header := row{"ELEMENT", "TYPE", "CONTENT", "SHAPE", "REPEATING", "WILDCARD"}
	all := append([]row{header}, rows...)
	var widths [6]int
	for _, r := range all {
		for i, c := range r.cells() {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	for _, r := range all {
		cells := r.cells()
		var b strings.Builder
		for i, c := range cells {
			if i == len(cells)-1 {
				b.WriteString(c)
				break
			}
			b.WriteString(runewidth.FillRight(c, widths[i]+2))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}

func (r row) cells() []string {
	return []string{r.path, r.typ, r.content, r.shape, r.repeats, r.wildcard}
}
