package forward

import (
	"context"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/xsd"
)

// complex emits the children of an element-only or mixed element: first
// along the best path, then any remaining source members that resolve to a
// global declaration.
func (a *Aligner[N]) complex(ctx context.Context, decl *xsd.Element, node N) error {
	name := decl.Name.Local
	path, err := a.childPath(decl, node, false)
	if err != nil {
		return err
	}
	if len(path) > 0 {
		a.log.Debug("best path", "element", name, "deepSearch", a.opt.DeepSearch, "path", path.Names())
	}
	processed := map[string]bool{}
	// members moved into an element by deep search
	consumed := map[string]bool{}
	for _, p := range path {
		child, _ := p.Element()
		if err := a.child(ctx, node, name, child, p.MinOccurs > 0, processed, consumed); err != nil {
			return err
		}
	}

	if a.tr.IsParentOfSingleMultipleOccurringChildElement() && a.opt.CompactArrays && a.opt.StrictSyntax && a.b.Kind(node) != xa.NodeArray {
		return a.fail(xa.CodeArrayShape, "%s", msgFullInputStrict)
	}
	var unprocessed []string
	for _, k := range a.b.Keys(node) {
		if !processed[k] && !consumed[k] {
			unprocessed = append(unprocessed, k)
		}
	}
	if len(unprocessed) > 0 {
		a.log.Warn("processing unprocessed child elements", "element", name, "count", len(unprocessed), "first", unprocessed[0])
	}
	for _, childName := range unprocessed {
		child, err := a.schema.FindElement("", childName)
		if err != nil {
			if rerr := a.recoverable(a.opt.IgnoreUndeclaredElements, xa.CodeAmbiguousDeclaration, "%s", err.Error()); rerr != nil {
				return rerr
			}
			continue
		}
		if child == nil {
			if !a.tr.TypeContainsWildcard() {
				if rerr := a.recoverable(a.opt.IgnoreUndeclaredElements, xa.CodeUndeclaredNode,
					"%s [%s] in the definition of type [%s]", msgCannotFindDeclaration, childName, name); rerr != nil {
					return rerr
				}
				continue
			}
			// content admitted by a wildcard is emitted untyped
			child = &xsd.Element{Name: xsd.QName{Local: childName}}
			a.stubs[child] = true
		}
		if err := a.child(ctx, node, name, child, false, processed, consumed); err != nil {
			return err
		}
	}
	// mixed content carrying text only
	if len(processed) == 0 {
		return a.simple(node)
	}
	return nil
}

// child emits every source value for the child declaration decl.
func (a *Aligner[N]) child(ctx context.Context, node N, parent string, decl *xsd.Element, mandatory bool, processed, consumed map[string]bool) error {
	name := decl.Name.Local
	if a.tr.IsParentOfSingleMultipleOccurringChildElement() {
		switch a.b.Kind(node) {
		case xa.NodeArray:
			for _, item := range a.b.Items(node) {
				if err := a.element(ctx, decl, item); err != nil {
					return err
				}
			}
			processed[name] = true
			return nil
		case xa.NodeScalar:
			// a plain value supplies a single item
			if err := a.element(ctx, decl, node); err != nil {
				return err
			}
			processed[name] = true
			return nil
		}
	}
	children, err := a.childrenByName(node, decl)
	if err != nil {
		return err
	}
	seen := false
	if children != nil {
		seen = true
		for _, c := range children {
			if err := a.element(ctx, decl, c); err != nil {
				return err
			}
		}
		if len(children) == 0 && a.opt.DeepSearch && a.typeOf(decl) != nil && !xsd.IsSimple(a.typeOf(decl)) {
			if err := a.element(ctx, decl, node); err != nil {
				return err
			}
		}
	} else if a.opt.DeepSearch && a.typeOf(decl) != nil && !xsd.IsSimple(a.typeOf(decl)) {
		ok, err := a.deepSearch(ctx, decl, mandatory, node, processed, consumed)
		if err != nil {
			return err
		}
		seen = ok
	}
	if seen {
		if processed[name] {
			return a.fail(xa.CodeDuplicateElement, "child element [%s] already processed for node [%s]", name, parent)
		}
		processed[name] = true
	}
	return nil
}

// childrenByName returns the source values for decl, nil when the source has
// none and no substitution applies. Arrays are flattened for repeating
// children and passed whole otherwise.
func (a *Aligner[N]) childrenByName(node N, decl *xsd.Element) ([]N, error) {
	name := decl.Name.Local
	var values []N
	if a.b.Kind(node) == xa.NodeObject {
		values = a.b.Children(node, name)
	}
	if values == nil {
		if a.sp != nil && a.sp.HasValueFor(a.tr.Context(), name) {
			return []N{a.substitute(name)}, nil
		}
		return nil, nil
	}
	out := make([]N, 0, len(values))
	for _, v := range values {
		if a.b.Kind(v) != xa.NodeArray {
			out = append(out, v)
			continue
		}
		if a.tr.IsMultipleOccurringChildElement(name) {
			out = append(out, a.b.Items(v)...)
			continue
		}
		if !a.opt.CompactArrays && a.opt.StrictSyntax {
			return nil, a.fail(xa.CodeArrayShape, "%s [%s]", msgExpectedSingleElement, name)
		}
		out = append(out, v)
	}
	return out, nil
}

// substitute converts the registered value for the child name of the open
// element into a source node.
func (a *Aligner[N]) substitute(name string) N {
	return a.b.Value(a.sp.ValueFor(a.tr.Context(), name))
}

// deepSearch emits decl from a copy of node restricted to the names decl's
// content model declares at its top level, minus those already processed.
// Substitutions fill declared names the source lacks. Source members moved
// into the copy are recorded in consumed.
func (a *Aligner[N]) deepSearch(ctx context.Context, decl *xsd.Element, mandatory bool, node N, processed, consumed map[string]bool) (bool, error) {
	ct, ok := a.typeOf(decl).(*xsd.ComplexType)
	if !ok || ct.Particle == nil {
		return false, nil
	}
	allowed := map[string]bool{}
	var order []string
	if g, ok := ct.Particle.Term.(*xsd.ModelGroup); ok {
		for _, p := range g.Particles {
			n := p.Term.TermName()
			if n == "" || processed[n] || allowed[n] {
				continue
			}
			allowed[n] = true
			order = append(order, n)
		}
	}
	var extra []xa.Member[N]
	if a.sp != nil {
		for _, n := range order {
			if !xa.HasChild(a.b, node, n) && a.sp.HasValueFor(a.tr.Context(), n) {
				extra = append(extra, xa.Member[N]{Name: n, Value: a.substitute(n)})
			}
		}
	}
	copied := a.b.Filter(node, func(k string) bool { return allowed[k] }, extra)
	if xa.IsEmpty(a.b, copied) && !mandatory {
		return false, nil
	}
	if err := a.element(ctx, decl, copied); err != nil {
		return false, err
	}
	for _, k := range a.b.Keys(copied) {
		if xa.HasChild(a.b, node, k) {
			consumed[k] = true
		}
	}
	return true, nil
}
