package xsd

// Unbounded is the MaxOccurs value of maxOccurs="unbounded".
const Unbounded = -1

// Term is the body of a particle: *ModelGroup, *Element or *Wildcard.
type Term interface {
	TermName() string
	isTerm()
}

// Particle is one node of a content model with its occurrence bounds.
type Particle struct {
	MinOccurs int
	MaxOccurs int // Unbounded for "unbounded"
	Term      Term
}

// Repeats reports whether the particle may occur more than once.
func (p *Particle) Repeats() bool {
	return p.MaxOccurs == Unbounded || p.MaxOccurs > 1
}

// Occurs sets the occurrence bounds and returns p.
func (p *Particle) Occurs(min, max int) *Particle {
	p.MinOccurs, p.MaxOccurs = min, max
	return p
}

// Optional sets minOccurs to 0.
func (p *Particle) Optional() *Particle {
	p.MinOccurs = 0
	return p
}

// Repeated makes the particle optional and unbounded.
func (p *Particle) Repeated() *Particle { return p.Occurs(0, Unbounded) }

// Element returns the element declaration when the term is an element.
func (p *Particle) Element() (*Element, bool) {
	e, ok := p.Term.(*Element)
	return e, ok
}

// Compositor is the kind of a model group.
type Compositor int

const (
	CompositorSequence Compositor = iota
	CompositorChoice
	CompositorAll
)

func (c Compositor) String() string {
	switch c {
	case CompositorSequence:
		return "sequence"
	case CompositorChoice:
		return "choice"
	case CompositorAll:
		return "all"
	}
	return "unknown"
}

// ModelGroup is a sequence, choice or all group.
type ModelGroup struct {
	Compositor Compositor
	Particles  []*Particle
}

func (g *ModelGroup) TermName() string { return "" }
func (*ModelGroup) isTerm()            {}

// Element is an element declaration, global or local.
type Element struct {
	Name     QName
	Type     Type
	Nillable bool
	Global   bool
	Default  string
	Fixed    string
}

func (e *Element) TermName() string { return e.Name.Local }
func (*Element) isTerm()            {}

// ElementType returns the declared type, xs:anyType when none is set.
func (e *Element) ElementType() Type {
	if e.Type == nil {
		return AnyType
	}
	return e.Type
}

// NamespaceConstraint restricts the namespaces a wildcard accepts.
type NamespaceConstraint int

const (
	ConstraintAny NamespaceConstraint = iota
	ConstraintList
	ConstraintNot
)

func (c NamespaceConstraint) String() string {
	switch c {
	case ConstraintAny:
		return "ANY"
	case ConstraintList:
		return "LIST"
	case ConstraintNot:
		return "NOT"
	}
	return "unknown"
}

// ProcessContents controls validation of wildcard matches.
type ProcessContents int

const (
	ProcessStrict ProcessContents = iota
	ProcessLax
	ProcessSkip
)

func (p ProcessContents) String() string {
	switch p {
	case ProcessStrict:
		return "STRICT"
	case ProcessLax:
		return "LAX"
	case ProcessSkip:
		return "SKIP"
	}
	return "unknown"
}

// Wildcard is an xs:any or xs:anyAttribute term.
type Wildcard struct {
	Constraint NamespaceConstraint
	Namespaces []string
	Process    ProcessContents
}

func (w *Wildcard) TermName() string { return "" }
func (*Wildcard) isTerm()            {}
