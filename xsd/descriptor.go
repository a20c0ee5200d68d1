package xsd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// descriptor is the YAML/JSON shape accepted by Load.
//
//	targetNamespace: urn:orders
//	elementFormDefault: qualified
//	types:
//	  - name: Price
//	    restriction: {base: decimal, minInclusive: 0}
//	  - name: ItemType
//	    sequence:
//	      - {element: id, type: string}
//	      - {element: price, type: Price, minOccurs: 0}
//	elements:
//	  - name: Order
//	    complexType:
//	      sequence:
//	        - {element: Item, type: ItemType, maxOccurs: unbounded}
type descriptor struct {
	TargetNamespace    string        `yaml:"targetNamespace"`
	ElementFormDefault string        `yaml:"elementFormDefault"`
	Location           string        `yaml:"location"`
	Types              []typeDesc    `yaml:"types"`
	Elements           []elementDesc `yaml:"elements"`
}

type typeDesc struct {
	Name          string           `yaml:"name"`
	Restriction   *restrictionDesc `yaml:"restriction"`
	Mixed         bool             `yaml:"mixed"`
	Sequence      []particleDesc   `yaml:"sequence"`
	Choice        []particleDesc   `yaml:"choice"`
	All           []particleDesc   `yaml:"all"`
	SimpleContent string           `yaml:"simpleContent"`
	Attributes    []attrDesc       `yaml:"attributes"`
	AnyAttribute  bool             `yaml:"anyAttribute"`
}

type restrictionDesc struct {
	Base   string         `yaml:"base"`
	Facets map[string]any `yaml:",inline"`
}

type particleDesc struct {
	Element     string           `yaml:"element"`
	Ref         string           `yaml:"ref"`
	Any         *anyDesc         `yaml:"any"`
	Sequence    []particleDesc   `yaml:"sequence"`
	Choice      []particleDesc   `yaml:"choice"`
	All         []particleDesc   `yaml:"all"`
	Type        string           `yaml:"type"`
	ComplexType *typeDesc        `yaml:"complexType"`
	SimpleType  *restrictionDesc `yaml:"simpleType"`
	MinOccurs   *int             `yaml:"minOccurs"`
	MaxOccurs   string           `yaml:"maxOccurs"`
	Nillable    bool             `yaml:"nillable"`
	Default     string           `yaml:"default"`
	Fixed       string           `yaml:"fixed"`
}

type elementDesc struct {
	Name        string           `yaml:"name"`
	Type        string           `yaml:"type"`
	ComplexType *typeDesc        `yaml:"complexType"`
	SimpleType  *restrictionDesc `yaml:"simpleType"`
	Nillable    bool             `yaml:"nillable"`
	Default     string           `yaml:"default"`
}

type anyDesc struct {
	Namespace       string `yaml:"namespace"`
	ProcessContents string `yaml:"processContents"`
}

type attrDesc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Use     string `yaml:"use"`
	Default string `yaml:"default"`
}

// LoadFile reads a schema descriptor from a YAML or JSON file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "xsd: read %s", path)
	}
	s, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "xsd: load %s", path)
	}
	if s.Location == "" {
		s.Location = path
	}
	return s, nil
}

// Load decodes a schema descriptor (YAML, or JSON as a YAML subset) and
// resolves its type and element references.
func Load(r io.Reader) (*Schema, error) {
	var d descriptor
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(err, "xsd: decode descriptor")
	}
	l := &loader{d: &d, s: New(d.TargetNamespace), qualified: d.ElementFormDefault == "qualified"}
	l.s.Location = d.Location
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.s, nil
}

type loader struct {
	d         *descriptor
	s         *Schema
	qualified bool
}

func (l *loader) run() error {
	// Declare every named component first so references resolve regardless
	// of declaration order.
	for _, td := range l.d.Types {
		var t Type
		if td.Restriction != nil {
			t = &SimpleType{Name: QName{Local: td.Name}}
		} else {
			t = &ComplexType{Name: QName{Local: td.Name}}
		}
		if err := l.s.AddType(t); err != nil {
			return err
		}
	}
	for _, ed := range l.d.Elements {
		if _, err := l.s.AddElement(&Element{Name: QName{Local: ed.Name}, Nillable: ed.Nillable, Default: ed.Default}); err != nil {
			return err
		}
	}
	for _, td := range l.d.Types {
		t := l.s.Type(l.s.TargetNamespace, td.Name)
		switch v := t.(type) {
		case *SimpleType:
			if err := l.fillSimple(v, td.Restriction); err != nil {
				return errors.Wrapf(err, "type %s", td.Name)
			}
		case *ComplexType:
			if err := l.fillComplex(v, &td); err != nil {
				return errors.Wrapf(err, "type %s", td.Name)
			}
		}
	}
	for _, ed := range l.d.Elements {
		e := l.s.ElementDeclaration(l.s.TargetNamespace, ed.Name)
		t, err := l.elementType(ed.Type, ed.ComplexType, ed.SimpleType)
		if err != nil {
			return errors.Wrapf(err, "element %s", ed.Name)
		}
		e.Type = t
	}
	return nil
}

func (l *loader) elementType(name string, ct *typeDesc, st *restrictionDesc) (Type, error) {
	switch {
	case ct != nil:
		t := &ComplexType{}
		return t, l.fillComplex(t, ct)
	case st != nil:
		t := &SimpleType{}
		return t, l.fillSimple(t, st)
	case name != "":
		return l.resolveType(name)
	}
	return AnyType, nil
}

func (l *loader) resolveType(ref string) (Type, error) {
	prefix, local := splitPrefix(ref)
	if prefix != "xs" && prefix != "xsd" {
		if t := l.s.Type(l.s.TargetNamespace, local); t != nil {
			return t, nil
		}
	}
	if t := l.s.Type(Namespace, local); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type [%s]", ref)
}

func (l *loader) resolveSimple(ref string) (*SimpleType, error) {
	if ref == "" {
		return Builtin(KindString), nil
	}
	t, err := l.resolveType(ref)
	if err != nil {
		return nil, err
	}
	st, ok := t.(*SimpleType)
	if !ok {
		return nil, fmt.Errorf("type [%s] is not a simple type", ref)
	}
	return st, nil
}

func (l *loader) fillSimple(t *SimpleType, r *restrictionDesc) error {
	base, err := l.resolveSimple(r.Base)
	if err != nil {
		return err
	}
	t.Base = base
	names := make([]string, 0, len(r.Facets))
	for k := range r.Facets {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		f, ok := FacetByName(k)
		if !ok {
			return fmt.Errorf("unknown facet [%s]", k)
		}
		t.SetFacet(f, scalarStrings(r.Facets[k])...)
	}
	return nil
}

func (l *loader) fillComplex(t *ComplexType, td *typeDesc) error {
	for _, ad := range td.Attributes {
		st, err := l.resolveSimple(ad.Type)
		if err != nil {
			return errors.Wrapf(err, "attribute %s", ad.Name)
		}
		t.Attributes = append(t.Attributes, &AttributeUse{
			Name:     QName{Local: ad.Name},
			Type:     st,
			Required: ad.Use == "required",
			Default:  ad.Default,
		})
	}
	if td.AnyAttribute {
		t.AttributeWildcard = &Wildcard{Constraint: ConstraintAny, Process: ProcessLax}
	}
	if td.SimpleContent != "" {
		base, err := l.resolveType(td.SimpleContent)
		if err != nil {
			return err
		}
		t.Content, t.Base = ContentSimple, base
		return nil
	}
	var (
		c  Compositor
		ps []particleDesc
	)
	switch {
	case td.Sequence != nil:
		c, ps = CompositorSequence, td.Sequence
	case td.Choice != nil:
		c, ps = CompositorChoice, td.Choice
	case td.All != nil:
		c, ps = CompositorAll, td.All
	default:
		if td.Mixed {
			t.Content = ContentMixed
			t.Particle = Seq()
		} else {
			t.Content = ContentEmpty
		}
		return nil
	}
	p, err := l.group(c, ps)
	if err != nil {
		return err
	}
	t.Particle = p
	t.Content = ContentElement
	if td.Mixed {
		t.Content = ContentMixed
	}
	return nil
}

func (l *loader) group(c Compositor, ds []particleDesc) (*Particle, error) {
	g := &ModelGroup{Compositor: c}
	for i := range ds {
		p, err := l.particle(&ds[i])
		if err != nil {
			return nil, err
		}
		g.Particles = append(g.Particles, p)
	}
	return &Particle{MinOccurs: 1, MaxOccurs: 1, Term: g}, nil
}

func (l *loader) particle(d *particleDesc) (*Particle, error) {
	var p *Particle
	switch {
	case d.Element != "":
		t, err := l.elementType(d.Type, d.ComplexType, d.SimpleType)
		if err != nil {
			return nil, errors.Wrapf(err, "element %s", d.Element)
		}
		e := &Element{Name: QName{Local: d.Element}, Type: t, Nillable: d.Nillable, Default: d.Default, Fixed: d.Fixed}
		if l.qualified {
			e.Name.Space = l.s.TargetNamespace
		}
		p = &Particle{Term: e}
	case d.Ref != "":
		_, local := splitPrefix(d.Ref)
		e := l.s.ElementDeclaration(l.s.TargetNamespace, local)
		if e == nil {
			return nil, fmt.Errorf("unknown element reference [%s]", d.Ref)
		}
		p = &Particle{Term: e}
	case d.Any != nil:
		w := &Wildcard{Constraint: ConstraintAny, Process: ProcessStrict}
		switch d.Any.ProcessContents {
		case "lax":
			w.Process = ProcessLax
		case "skip":
			w.Process = ProcessSkip
		}
		switch ns := strings.TrimSpace(d.Any.Namespace); {
		case ns == "" || ns == "##any":
		case ns == "##other":
			w.Constraint, w.Namespaces = ConstraintNot, []string{l.s.TargetNamespace}
		default:
			w.Constraint, w.Namespaces = ConstraintList, strings.Fields(ns)
		}
		p = &Particle{Term: w}
	case d.Sequence != nil:
		g, err := l.group(CompositorSequence, d.Sequence)
		if err != nil {
			return nil, err
		}
		p = g
	case d.Choice != nil:
		g, err := l.group(CompositorChoice, d.Choice)
		if err != nil {
			return nil, err
		}
		p = g
	case d.All != nil:
		g, err := l.group(CompositorAll, d.All)
		if err != nil {
			return nil, err
		}
		p = g
	default:
		return nil, fmt.Errorf("particle needs one of element, ref, any, sequence, choice, all")
	}
	p.MinOccurs, p.MaxOccurs = 1, 1
	if d.MinOccurs != nil {
		p.MinOccurs = *d.MinOccurs
	}
	switch d.MaxOccurs {
	case "":
	case "unbounded":
		p.MaxOccurs = Unbounded
	default:
		n, err := strconv.Atoi(d.MaxOccurs)
		if err != nil {
			return nil, fmt.Errorf("invalid maxOccurs [%s]", d.MaxOccurs)
		}
		p.MaxOccurs = n
	}
	return p, nil
}

func splitPrefix(ref string) (string, string) {
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}

func scalarStrings(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			out = append(out, fmt.Sprint(it))
		}
		return out
	case nil:
		return nil
	}
	return []string{fmt.Sprint(v)}
}
