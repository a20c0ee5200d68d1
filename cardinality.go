package xsdalign

import (
	"sort"

	"github.com/reoring/xsdalign/xsd"
)

// ChildOccurrence classifies a content model by the shape of its element
// children. Only OneMultiple content may be represented as a bare array of
// its repeating child.
type ChildOccurrence int

const (
	OccurrenceEmpty ChildOccurrence = iota
	OccurrenceOneSingle
	OccurrenceOneMultiple
	OccurrenceMixed
)

func (c ChildOccurrence) String() string {
	switch c {
	case OccurrenceEmpty:
		return "Empty"
	case OccurrenceOneSingle:
		return "OneSingle"
	case OccurrenceOneMultiple:
		return "OneMultiple"
	case OccurrenceMixed:
		return "Mixed"
	}
	return "unknown"
}

// NameSet is a set of element local names.
type NameSet map[string]struct{}

// Has reports membership; a nil set is empty.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MultipleOccurringChildNames collects the names of the element children
// that may repeat: every element under a particle with maxOccurs > 1 or
// unbounded, at any group depth. Nested complex types are not entered.
func MultipleOccurringChildNames(p *xsd.Particle) NameSet {
	out := NameSet{}
	findMultipleOccurring(p, out)
	return out
}

func findMultipleOccurring(p *xsd.Particle, out NameSet) {
	if p == nil || p.Term == nil {
		return
	}
	if p.Repeats() {
		collectElementNames(p, out)
		return
	}
	if g, ok := p.Term.(*xsd.ModelGroup); ok {
		for _, c := range g.Particles {
			findMultipleOccurring(c, out)
		}
	}
}

func collectElementNames(p *xsd.Particle, out NameSet) {
	switch t := p.Term.(type) {
	case *xsd.ModelGroup:
		for _, c := range t.Particles {
			collectElementNames(c, out)
		}
	case *xsd.Element:
		out[t.Name.Local] = struct{}{}
	}
}

// ClassifyRepeatingShape decides whether content is a collapsible container
// of one repeating child.
func ClassifyRepeatingShape(p *xsd.Particle) ChildOccurrence {
	if p == nil || p.Term == nil {
		return OccurrenceEmpty
	}
	switch t := p.Term.(type) {
	case *xsd.ModelGroup:
		switch t.Compositor {
		case xsd.CompositorChoice:
			if len(t.Particles) == 0 {
				return OccurrenceEmpty
			}
			first := ClassifyRepeatingShape(t.Particles[0])
			if first == OccurrenceMixed {
				return OccurrenceMixed
			}
			for _, c := range t.Particles[1:] {
				if ClassifyRepeatingShape(c) != first {
					return OccurrenceMixed
				}
			}
			return first
		default:
			result := OccurrenceEmpty
			for _, c := range t.Particles {
				switch cur := ClassifyRepeatingShape(c); cur {
				case OccurrenceEmpty:
				case OccurrenceMixed:
					return OccurrenceMixed
				default:
					if result != OccurrenceEmpty {
						return OccurrenceMixed
					}
					result = cur
				}
			}
			return result
		}
	case *xsd.Element:
		switch {
		case p.Repeats():
			return OccurrenceOneMultiple
		case p.MaxOccurs == 1:
			return OccurrenceOneSingle
		}
		return OccurrenceEmpty
	case *xsd.Wildcard:
		return OccurrenceMixed
	}
	return OccurrenceMixed
}

// TypeContainsWildcard reports whether any term reachable through model
// groups is a wildcard.
func TypeContainsWildcard(p *xsd.Particle) bool {
	if p == nil {
		return false
	}
	switch t := p.Term.(type) {
	case *xsd.Wildcard:
		return true
	case *xsd.ModelGroup:
		for _, c := range t.Particles {
			if TypeContainsWildcard(c) {
				return true
			}
		}
	}
	return false
}
