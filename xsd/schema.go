package xsd

import (
	"fmt"
	"sort"
)

// Schema is a set of global element declarations and named type definitions.
type Schema struct {
	TargetNamespace string
	// Location is informational (used in generated descriptions).
	Location string

	elements []*Element
	types    []Type
	elemIdx  map[QName]*Element
	typeIdx  map[QName]Type
}

// New returns an empty schema for the given target namespace.
func New(targetNamespace string) *Schema {
	return &Schema{
		TargetNamespace: targetNamespace,
		elemIdx:         make(map[QName]*Element),
		typeIdx:         make(map[QName]Type),
	}
}

// AddElement registers a global element declaration. An empty namespace is
// replaced by the target namespace.
func (s *Schema) AddElement(e *Element) (*Element, error) {
	if e == nil || e.Name.Local == "" {
		return nil, fmt.Errorf("xsd: global element without name")
	}
	if e.Name.Space == "" {
		e.Name.Space = s.TargetNamespace
	}
	if _, dup := s.elemIdx[e.Name]; dup {
		return nil, fmt.Errorf("xsd: duplicate element declaration %s", e.Name)
	}
	e.Global = true
	s.elements = append(s.elements, e)
	s.elemIdx[e.Name] = e
	return e, nil
}

// MustElement is AddElement that panics on error; for schemas built in code.
func (s *Schema) MustElement(name string, t Type) *Element {
	e, err := s.AddElement(&Element{Name: QName{Local: name}, Type: t})
	if err != nil {
		panic(err)
	}
	return e
}

// AddType registers a named type definition.
func (s *Schema) AddType(t Type) error {
	if t == nil || t.TypeName().Local == "" {
		return fmt.Errorf("xsd: named type without name")
	}
	switch v := t.(type) {
	case *SimpleType:
		if v.Name.Space == "" {
			v.Name.Space = s.TargetNamespace
		}
	case *ComplexType:
		if v.Name.Space == "" {
			v.Name.Space = s.TargetNamespace
		}
	}
	if _, dup := s.typeIdx[t.TypeName()]; dup {
		return fmt.Errorf("xsd: duplicate type definition %s", t.TypeName())
	}
	s.types = append(s.types, t)
	s.typeIdx[t.TypeName()] = t
	return nil
}

// ElementDeclaration returns the global element {namespace}name, or nil.
func (s *Schema) ElementDeclaration(namespace, name string) *Element {
	return s.elemIdx[QName{Space: namespace, Local: name}]
}

// FindElement looks up a global element by local name. With a non-empty
// namespace only that namespace is searched. With an empty namespace every
// namespace is searched and more than one match is an error.
func (s *Schema) FindElement(namespace, name string) (*Element, error) {
	if namespace != "" {
		return s.ElementDeclaration(namespace, name), nil
	}
	var found []*Element
	for _, e := range s.elements {
		if e.Name.Local == name {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	}
	return nil, &AmbiguousError{Name: name, Matches: found}
}

// AmbiguousError reports an unqualified name declared in several namespaces.
type AmbiguousError struct {
	Name    string
	Matches []*Element
}

func (e *AmbiguousError) Error() string {
	msg := fmt.Sprintf("multiple globally declared elements found for [%s]:", e.Name)
	for _, m := range e.Matches {
		msg += " [" + m.Name.String() + "]"
	}
	return msg
}

// Type returns the named type {namespace}name, falling back to built-ins for
// the XML Schema namespace.
func (s *Schema) Type(namespace, name string) Type {
	if t, ok := s.typeIdx[QName{Space: namespace, Local: name}]; ok {
		return t
	}
	if namespace == Namespace {
		if name == "anyType" {
			return AnyType
		}
		if b := BuiltinByName(name); b != nil {
			return b
		}
	}
	return nil
}

// Elements returns the global element declarations in registration order.
func (s *Schema) Elements() []*Element { return append([]*Element(nil), s.elements...) }

// Types returns the named type definitions in registration order.
func (s *Schema) Types() []Type { return append([]Type(nil), s.types...) }

// Namespaces lists the namespaces of the global declarations.
func (s *Schema) Namespaces() []string {
	seen := map[string]bool{}
	for _, e := range s.elements {
		seen[e.Name.Space] = true
	}
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}
