package forward

import (
	"fmt"
	"strings"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/xsd"
)

// Path is the ordered list of element particles chosen to drive the output
// of one element's children.
type Path []*xsd.Particle

// Names lists the element names along the path.
func (p Path) Names() []string {
	out := make([]string, 0, len(p))
	for _, q := range p {
		out = append(out, q.Term.TermName())
	}
	return out
}

func (p Path) has(name string) bool {
	for _, q := range p {
		if q.Term.TermName() == name {
			return true
		}
	}
	return false
}

// with returns a copy of p extended by q; p itself is never modified.
func (p Path) with(q *xsd.Particle) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, q)
}

// match is the outcome of evaluating one particle against a node.
type match struct {
	path    Path
	reasons []string
	ok      bool
}

func failed(reasons ...string) match { return match{reasons: reasons} }

// BestPath evaluates the content model of decl against node as if decl
// were the open element. Failure reasons are returned instead of an error;
// the error reports fatal conditions only.
func (a *Aligner[N]) BestPath(decl *xsd.Element, node N) (Path, []string, error) {
	if a.tr == nil {
		a.reset()
	}
	a.tr.Enter(decl.Name.Local, a.typeOf(decl))
	defer a.tr.Exit()
	p := contentParticle(a.typeOf(decl))
	if p == nil {
		return nil, nil, nil
	}
	m, err := a.match(decl, a.b.Content(node), p, nil)
	if err != nil {
		return nil, nil, err
	}
	if !m.ok {
		return nil, m.reasons, nil
	}
	return m.path, nil, nil
}

func contentParticle(t xsd.Type) *xsd.Particle {
	if t == nil || xsd.IsSimple(t) {
		return nil
	}
	return xsd.ContentParticle(t)
}

// childPath finds the best path for the children of the open element decl.
// A failing search is fatal unless silent.
func (a *Aligner[N]) childPath(decl *xsd.Element, node N, silent bool) (Path, error) {
	p := contentParticle(a.typeOf(decl))
	if p == nil {
		return nil, nil
	}
	m, err := a.match(decl, node, p, nil)
	if err != nil {
		return nil, err
	}
	if m.ok {
		return m.path, nil
	}
	if silent {
		return nil, nil
	}
	return nil, a.fail(xa.CodeStructuralMismatch, "Cannot find path:%s", strings.Join(m.reasons, "\n"))
}

// match extends path with the element particles of p that node can satisfy.
func (a *Aligner[N]) match(base *xsd.Element, node N, p *xsd.Particle, path Path) (match, error) {
	switch t := p.Term.(type) {
	case *xsd.ModelGroup:
		return a.matchGroup(base, node, t, path)
	case *xsd.Element:
		return a.matchElement(node, p, t, path), nil
	case *xsd.Wildcard:
		return a.matchWildcard(base, t, path)
	}
	return match{}, fmt.Errorf("forward: unknown term %T", p.Term)
}

func (a *Aligner[N]) matchGroup(base *xsd.Element, node N, g *xsd.ModelGroup, path Path) (match, error) {
	switch g.Compositor {
	case xsd.CompositorChoice:
		var (
			best    match
			reasons []string
		)
		for _, alt := range g.Particles {
			m, err := a.match(base, node, alt, path)
			if err != nil {
				return match{}, err
			}
			if !m.ok {
				reasons = append(reasons, m.reasons...)
				continue
			}
			// strictly longer wins, so ties keep the first alternative
			if !best.ok || len(m.path) > len(best.path) {
				best = m
			}
		}
		if !best.ok {
			return failed(reasons...), nil
		}
		return best, nil
	default:
		cur := path
		for _, sub := range g.Particles {
			m, err := a.match(base, node, sub, cur)
			if err != nil {
				return match{}, err
			}
			if !m.ok {
				return m, nil
			}
			cur = m.path
		}
		return match{path: cur, ok: true}, nil
	}
}

func (a *Aligner[N]) matchElement(node N, p *xsd.Particle, decl *xsd.Element, path Path) match {
	name := decl.Name.Local
	if !a.hasChild(node, name) {
		if a.opt.DeepSearch && !a.searching[decl] {
			a.searching[decl] = true
			sub, err := a.childPath(decl, node, true)
			delete(a.searching, decl)
			if err != nil {
				return failed(fmt.Sprintf("deep search for element [%s] failed: %v", name, err))
			}
			if len(sub) > 0 {
				return match{path: path.with(p), ok: true}
			}
		}
		if p.MinOccurs > 0 {
			return failed(fmt.Sprintf("%s [%s]", msgExpectedElement, name))
		}
		return match{path: path, ok: true}
	}
	if path.has(name) {
		return failed(fmt.Sprintf("element [%s] required multiple times", name))
	}
	return match{path: path.with(p), ok: true}
}

func (a *Aligner[N]) matchWildcard(base *xsd.Element, w *xsd.Wildcard, path Path) (match, error) {
	constraint := w.Constraint.String()
	if len(w.Namespaces) > 0 {
		constraint += " " + strings.Join(w.Namespaces, " ")
	}
	msg := fmt.Sprintf("term for element [%s] is WILDCARD; namespaceConstraint [%s] processContents [%s]. Please check if the element typed properly in the schema",
		base.Name.Local, constraint, w.Process)
	if a.opt.FailOnWildcards {
		return match{}, a.fail(xa.CodeWildcard, "%s, or set failOnWildcards=\"false\"", msg)
	}
	a.warn(xa.CodeWildcard, "%s", msg)
	return match{path: path, ok: true}, nil
}

// hasChild reports whether node can supply the child name of the open
// element, directly or through a substitution.
func (a *Aligner[N]) hasChild(node N, name string) bool {
	if a.tr.IsParentOfSingleMultipleOccurringChildElement() && (a.opt.CompactArrays || !a.opt.StrictSyntax) {
		// the repeating child is always considered present
		return true
	}
	if a.sp != nil && a.sp.HasValueFor(a.tr.Context(), name) {
		return true
	}
	return xa.HasChild(a.b, node, name)
}
