package xsd

// Type is either a *SimpleType or a *ComplexType.
type Type interface {
	TypeName() QName
	isType()
}

// ContentType classifies the body of a complex type.
type ContentType int

const (
	ContentEmpty ContentType = iota
	ContentSimple
	ContentElement
	ContentMixed
)

func (c ContentType) String() string {
	switch c {
	case ContentEmpty:
		return "empty"
	case ContentSimple:
		return "simple"
	case ContentElement:
		return "element"
	case ContentMixed:
		return "mixed"
	}
	return "unknown"
}

// Facet identifies a constraining facet of a simple type.
type Facet int

const (
	FacetLength Facet = iota
	FacetMinLength
	FacetMaxLength
	FacetPattern
	FacetEnumeration
	FacetMinInclusive
	FacetMaxInclusive
	FacetMinExclusive
	FacetMaxExclusive
	FacetTotalDigits
	FacetFractionDigits
)

var facetNames = map[Facet]string{
	FacetLength:         "length",
	FacetMinLength:      "minLength",
	FacetMaxLength:      "maxLength",
	FacetPattern:        "pattern",
	FacetEnumeration:    "enumeration",
	FacetMinInclusive:   "minInclusive",
	FacetMaxInclusive:   "maxInclusive",
	FacetMinExclusive:   "minExclusive",
	FacetMaxExclusive:   "maxExclusive",
	FacetTotalDigits:    "totalDigits",
	FacetFractionDigits: "fractionDigits",
}

func (f Facet) String() string { return facetNames[f] }

// FacetByName resolves a facet from its XML Schema name.
func FacetByName(name string) (Facet, bool) {
	for f, n := range facetNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// SimpleType is a built-in or user-derived atomic type.
type SimpleType struct {
	Name   QName // zero for anonymous types
	Base   *SimpleType
	Kind   Kind // only meaningful on built-ins; derived types inherit from Base
	facets map[Facet][]string
}

func (t *SimpleType) TypeName() QName { return t.Name }
func (*SimpleType) isType()           {}

// BuiltinKind walks the derivation chain to the built-in ancestor.
func (t *SimpleType) BuiltinKind() Kind {
	for s := t; s != nil; s = s.Base {
		if s.Name.Space == Namespace {
			return s.Kind
		}
		if s.Base == nil {
			return s.Kind
		}
	}
	return KindAnySimpleType
}

// SetFacet records the lexical values of a facet. Pattern and enumeration
// facets are multi-valued; the others keep the last value.
func (t *SimpleType) SetFacet(f Facet, values ...string) *SimpleType {
	if t.facets == nil {
		t.facets = make(map[Facet][]string)
	}
	switch f {
	case FacetPattern, FacetEnumeration:
		t.facets[f] = append(t.facets[f], values...)
	default:
		if len(values) > 0 {
			t.facets[f] = []string{values[len(values)-1]}
		}
	}
	return t
}

// Facets returns the effective facets: values declared on t, inherited from
// the base chain when t does not restate them.
func (t *SimpleType) Facets() map[Facet][]string {
	out := make(map[Facet][]string)
	var chain []*SimpleType
	for s := t; s != nil; s = s.Base {
		chain = append(chain, s)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for f, v := range chain[i].facets {
			out[f] = append([]string(nil), v...)
		}
	}
	return out
}

// Facet returns the first lexical value of an effective facet.
func (t *SimpleType) Facet(f Facet) (string, bool) {
	v := t.Facets()[f]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// ComplexType is a type with attributes and/or element content.
type ComplexType struct {
	Name              QName // zero for anonymous types
	Content           ContentType
	Particle          *Particle // top particle for element and mixed content
	Attributes        []*AttributeUse
	AttributeWildcard *Wildcard
	// Base is the type of the text for simple content (a *SimpleType or a
	// complex type with simple content); nil means xs:string.
	Base Type
}

func (t *ComplexType) TypeName() QName { return t.Name }
func (*ComplexType) isType()           {}

// AttributeUse binds an attribute declaration to a complex type.
type AttributeUse struct {
	Name     QName
	Type     *SimpleType
	Required bool
	Default  string
}

// IsSimple reports whether elements of type t carry text only (a simple
// type, or a complex type with simple content).
func IsSimple(t Type) bool {
	switch v := t.(type) {
	case *SimpleType:
		return true
	case *ComplexType:
		return v.Content == ContentSimple
	}
	return false
}

// ContentParticle returns the top particle of an element-only or mixed
// complex type, nil otherwise.
func ContentParticle(t Type) *Particle {
	ct, ok := t.(*ComplexType)
	if !ok || ct == nil {
		return nil
	}
	if ct.Content != ContentElement && ct.Content != ContentMixed {
		return nil
	}
	return ct.Particle
}

// AttributeUses returns the declared attribute uses of t.
func AttributeUses(t Type) []*AttributeUse {
	if ct, ok := t.(*ComplexType); ok && ct != nil {
		return ct.Attributes
	}
	return nil
}

// AttributeWildcard returns the attribute wildcard of t, if any.
func AttributeWildcard(t Type) *Wildcard {
	if ct, ok := t.(*ComplexType); ok && ct != nil {
		return ct.AttributeWildcard
	}
	return nil
}

// TextType returns the simple type describing the text of elements of type
// t: t itself for simple types, the resolved base for simple content.
func TextType(t Type) *SimpleType {
	for i := 0; i < 16 && t != nil; i++ {
		switch v := t.(type) {
		case *SimpleType:
			return v
		case *ComplexType:
			t = v.Base
		}
	}
	return Builtin(KindString)
}
