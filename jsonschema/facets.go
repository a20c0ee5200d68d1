package jsonschema

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reoring/xsdalign/xsd"
)

// primitive maps a built-in kind onto a JSON type and format.
func primitive(k xsd.Kind) (typ, format string) {
	switch k {
	case xsd.KindBoolean:
		return "boolean", ""
	case xsd.KindUnsignedLong, xsd.KindLong, xsd.KindDecimal, xsd.KindFloat, xsd.KindDouble:
		return "number", ""
	case xsd.KindDate:
		return "string", "date"
	case xsd.KindDateTime:
		return "string", "date-time"
	}
	if k.IsInteger() {
		return "integer", ""
	}
	return "string", ""
}

// simple describes a simple type with its facets.
func (p *Projector) simple(t *xsd.SimpleType) *Schema {
	if t == nil {
		return &Schema{Type: "string"}
	}
	kind := t.BuiltinKind()
	s := &Schema{}
	s.Type, s.Format = primitive(kind)
	name := t.Name.Local
	if name == "" {
		name = kind.String()
	}

	for f, values := range t.Facets() {
		if len(values) == 0 {
			continue
		}
		switch s.Type {
		case "integer", "number":
			p.numberFacet(s, name, f, values)
		case "string":
			p.stringFacet(s, name, f, values)
		default:
			p.log.Debug("facet not projected", "type", name, "facet", f)
		}
	}
	return s
}

func (p *Projector) numberFacet(s *Schema, name string, f xsd.Facet, values []string) {
	switch f {
	case xsd.FacetMinInclusive, xsd.FacetMinExclusive:
		if n, ok := p.number(name, f, values[0]); ok {
			s.Minimum = n
			s.ExclusiveMinimum = f == xsd.FacetMinExclusive
		}
	case xsd.FacetMaxInclusive, xsd.FacetMaxExclusive:
		if n, ok := p.number(name, f, values[0]); ok {
			s.Maximum = n
			s.ExclusiveMaximum = f == xsd.FacetMaxExclusive
		}
	case xsd.FacetEnumeration:
		for _, v := range values {
			if n, ok := p.number(name, f, v); ok {
				s.Enum = append(s.Enum, n)
			}
		}
	default:
		p.log.Debug("facet not projected", "type", name, "facet", f)
	}
}

func (p *Projector) stringFacet(s *Schema, name string, f xsd.Facet, values []string) {
	switch f {
	case xsd.FacetLength, xsd.FacetMinLength, xsd.FacetMaxLength:
		if s.Format != "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil || n < 0 {
			p.warn(name, "facet [%s] of type [%s] is not a length: %s", f, name, values[0])
			return
		}
		l := json.Number(strconv.Itoa(n))
		if f != xsd.FacetMaxLength {
			s.MinLength = l
		}
		if f != xsd.FacetMinLength {
			s.MaxLength = l
		}
	case xsd.FacetPattern:
		s.Pattern = anchored(values)
	case xsd.FacetEnumeration:
		for _, v := range values {
			s.Enum = append(s.Enum, v)
		}
	default:
		p.log.Debug("facet not projected", "type", name, "facet", f)
	}
}

// anchored joins XML Schema patterns, which match whole values, into one
// anchored regular expression.
func anchored(patterns []string) string {
	if len(patterns) == 1 {
		return "^(?:" + patterns[0] + ")$"
	}
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = "(?:" + p + ")"
	}
	return "^(?:" + strings.Join(parts, "|") + ")$"
}

// number converts a lexical facet value into a JSON number. Integers keep
// every digit; decimals are normalised.
func (p *Projector) number(name string, f xsd.Facet, lexical string) (json.Number, bool) {
	v := strings.TrimPrefix(strings.TrimSpace(lexical), "+")
	if i, ok := new(big.Int).SetString(v, 10); ok {
		return json.Number(i.String()), true
	}
	if d, ok := new(big.Float).SetString(v); ok && !d.IsInf() {
		return json.Number(d.Text('g', -1)), true
	}
	p.warn(name, "facet [%s] of type [%s] has no number form: %s, dropped", f, name, lexical)
	return "", false
}

// attribute describes an attribute use, carrying its default value.
func (p *Projector) attribute(a *xsd.AttributeUse) *Schema {
	s := p.simple(a.Type)
	if a.Default == "" {
		return s
	}
	switch s.Type {
	case "integer", "number":
		if n, ok := p.number(a.Name.Local, xsd.FacetEnumeration, a.Default); ok {
			s.Default = n
		}
	case "boolean":
		s.Default = a.Default == "true" || a.Default == "1"
	default:
		s.Default = a.Default
	}
	return s
}
