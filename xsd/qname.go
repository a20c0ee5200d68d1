package xsd

// Namespace is the XML Schema namespace.
const Namespace = "http://www.w3.org/2001/XMLSchema"

// InstanceNamespace is the XML Schema instance namespace (xsi:nil, xsi:type).
const InstanceNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// QName is a namespace-qualified component name.
type QName struct {
	Space string
	Local string
}

// Name returns a QName in the given namespace.
func Name(space, local string) QName { return QName{Space: space, Local: local} }

// String renders the name in {namespace}local form.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// IsZero reports whether the name is empty (anonymous component).
func (q QName) IsZero() bool { return q.Space == "" && q.Local == "" }
