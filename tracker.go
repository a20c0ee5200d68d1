package xsdalign

import "github.com/reoring/xsdalign/xsd"

// Frame is the cardinality information of one open element.
type Frame struct {
	MultipleOccurring      NameSet
	Occurrence             ChildOccurrence
	ParentOfSingleMultiple bool
	ContainsWildcard       bool
}

// Tracker keeps the alignment context and the cardinality frames of the open
// elements. Frames are pushed on Enter and popped on Exit, so the parent's
// values are restored exactly when a child closes. A Tracker serves one
// document at a time.
type Tracker struct {
	ctx    ContextStack
	cur    Frame
	saved  []Frame
	frames map[*xsd.ComplexType]Frame
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{frames: make(map[*xsd.ComplexType]Frame)}
}

// Enter opens an element of type t.
func (t *Tracker) Enter(name string, typ xsd.Type) *Context {
	t.saved = append(t.saved, t.cur)
	if ct, ok := typ.(*xsd.ComplexType); ok && ct != nil {
		t.cur = t.frameFor(ct)
	} else {
		t.cur = Frame{ContainsWildcard: t.cur.ContainsWildcard}
	}
	return t.ctx.Enter(name, typ)
}

// Exit closes the innermost element.
func (t *Tracker) Exit() *Context {
	if n := len(t.saved); n > 0 {
		t.cur = t.saved[n-1]
		t.saved = t.saved[:n-1]
	}
	return t.ctx.Exit()
}

func (t *Tracker) frameFor(ct *xsd.ComplexType) Frame {
	if f, ok := t.frames[ct]; ok {
		return f
	}
	p := xsd.ContentParticle(ct)
	occ := ClassifyRepeatingShape(p)
	f := Frame{
		MultipleOccurring:      MultipleOccurringChildNames(p),
		Occurrence:             occ,
		ParentOfSingleMultiple: occ == OccurrenceOneMultiple,
		ContainsWildcard:       TypeContainsWildcard(p),
	}
	t.frames[ct] = f
	return f
}

// Context returns the innermost alignment context.
func (t *Tracker) Context() *Context { return t.ctx.Current() }

// Depth is the number of open elements.
func (t *Tracker) Depth() int { return len(t.saved) }

// Current returns the frame of the innermost open element.
func (t *Tracker) Current() Frame { return t.cur }

// IsMultipleOccurringChildElement reports whether name may repeat inside the
// innermost open element.
func (t *Tracker) IsMultipleOccurringChildElement(name string) bool {
	return t.cur.MultipleOccurring.Has(name)
}

// IsMultipleOccurringChildInParentElement reports whether name may repeat
// inside the parent of the innermost open element.
func (t *Tracker) IsMultipleOccurringChildInParentElement(name string) bool {
	if n := len(t.saved); n > 0 {
		return t.saved[n-1].MultipleOccurring.Has(name)
	}
	return false
}

// IsParentOfSingleMultipleOccurringChildElement reports whether the innermost
// open element is a collapsible container (OneMultiple content).
func (t *Tracker) IsParentOfSingleMultipleOccurringChildElement() bool {
	return t.cur.ParentOfSingleMultiple
}

// TypeContainsWildcard reports whether the innermost open element's content
// model contains a wildcard.
func (t *Tracker) TypeContainsWildcard() bool { return t.cur.ContainsWildcard }
