package xsdalign

// NodeKind classifies a source node.
type NodeKind int

const (
	NodeObject NodeKind = iota
	NodeArray
	NodeScalar
	NodeNull
)

func (k NodeKind) String() string {
	switch k {
	case NodeObject:
		return "object"
	case NodeArray:
		return "array"
	case NodeScalar:
		return "scalar"
	case NodeNull:
		return "null"
	}
	return "unknown"
}

// Attribute is a name/value pair read from a source node.
type Attribute struct {
	Name  string
	Value string
}

// Member is a named child used when building filtered copies of a node.
type Member[N any] struct {
	Name  string
	Value N
}

// Binding is the capability set the Forward Aligner needs from a data model
// (JSON tree, map/property bag, element tree). Any model implementing it can
// be aligned against a schema.
type Binding[N any] interface {
	// Kind classifies n; NodeNull marks a nil element.
	Kind(n N) NodeKind
	// Keys lists the child names of n in document order, attributes and the
	// mixed content member excluded. Nodes without children return nil.
	Keys(n N) []string
	// Children returns the values stored under name. JSON-like models return
	// a single value (possibly an array); element trees return every child
	// element carrying that name. Absent names return nil.
	Children(n N, name string) []N
	// Attributes returns the attribute members of n.
	Attributes(n N) []Attribute
	// Content returns the node holding the text of simple or mixed content,
	// n itself when the model has no separate text member.
	Content(n N) N
	// Text returns the text of a leaf node; structured nodes report false.
	Text(n N) (string, bool)
	// Items returns the elements of an array node.
	Items(n N) []N
	// Filter copies n keeping only the children accepted by keep, then
	// appends extra members.
	Filter(n N, keep func(name string) bool, extra []Member[N]) N
	// Value converts a substitution value into a node. Lists become arrays of
	// scalars, nil becomes an empty structure.
	Value(v any) N
}

// HasChild reports whether n carries a child named name.
func HasChild[N any](b Binding[N], n N, name string) bool {
	if b.Kind(n) != NodeObject {
		return false
	}
	for _, k := range b.Keys(n) {
		if k == name {
			return true
		}
	}
	return false
}

// IsEmpty reports whether a node has no children, items or text.
func IsEmpty[N any](b Binding[N], n N) bool {
	switch b.Kind(n) {
	case NodeObject:
		return len(b.Keys(n)) == 0 && len(b.Attributes(n)) == 0
	case NodeArray:
		return len(b.Items(n)) == 0
	}
	return true
}
