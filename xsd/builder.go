package xsd

// Seq builds a sequence particle occurring exactly once.
func Seq(ps ...*Particle) *Particle { return group(CompositorSequence, ps) }

// Choice builds a choice particle occurring exactly once.
func Choice(ps ...*Particle) *Particle { return group(CompositorChoice, ps) }

// All builds an all particle occurring exactly once.
func All(ps ...*Particle) *Particle { return group(CompositorAll, ps) }

func group(c Compositor, ps []*Particle) *Particle {
	return &Particle{MinOccurs: 1, MaxOccurs: 1, Term: &ModelGroup{Compositor: c, Particles: ps}}
}

// Elem builds a particle for a local element declaration (exactly once).
func Elem(name string, t Type) *Particle {
	return &Particle{MinOccurs: 1, MaxOccurs: 1, Term: &Element{Name: QName{Local: name}, Type: t}}
}

// NillableElem is Elem with nillable="true".
func NillableElem(name string, t Type) *Particle {
	p := Elem(name, t)
	p.Term.(*Element).Nillable = true
	return p
}

// Ref builds a particle referencing a global element declaration.
func Ref(e *Element) *Particle { return &Particle{MinOccurs: 1, MaxOccurs: 1, Term: e} }

// Any builds an xs:any particle (any namespace, lax) occurring exactly once.
func Any() *Particle {
	return &Particle{MinOccurs: 1, MaxOccurs: 1, Term: &Wildcard{Constraint: ConstraintAny, Process: ProcessLax}}
}

// Complex returns an anonymous element-only complex type.
func Complex(p *Particle, attrs ...*AttributeUse) *ComplexType {
	return &ComplexType{Content: ContentElement, Particle: p, Attributes: attrs}
}

// Mixed returns an anonymous mixed complex type.
func Mixed(p *Particle, attrs ...*AttributeUse) *ComplexType {
	return &ComplexType{Content: ContentMixed, Particle: p, Attributes: attrs}
}

// SimpleContent returns an anonymous complex type whose text is of type base.
func SimpleContent(base Type, attrs ...*AttributeUse) *ComplexType {
	return &ComplexType{Content: ContentSimple, Base: base, Attributes: attrs}
}

// Empty returns an anonymous complex type with empty content.
func Empty(attrs ...*AttributeUse) *ComplexType {
	return &ComplexType{Content: ContentEmpty, Attributes: attrs}
}

// Attr builds an optional attribute use.
func Attr(name string, t *SimpleType) *AttributeUse {
	if t == nil {
		t = Builtin(KindString)
	}
	return &AttributeUse{Name: QName{Local: name}, Type: t}
}

// Restrict derives an anonymous simple type from base.
func Restrict(base *SimpleType) *SimpleType { return &SimpleType{Base: base} }

// Named sets the name of a type and returns it, for chaining with Schema.AddType.
func Named[T interface {
	*SimpleType | *ComplexType
}](t T, local string) T {
	switch v := any(t).(type) {
	case *SimpleType:
		v.Name.Local = local
	case *ComplexType:
		v.Name.Local = local
	}
	return t
}
