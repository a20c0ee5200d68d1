package xsd

import "sort"

// Kind identifies the built-in primitive or derived datatype a simple type
// ultimately restricts.
type Kind int

const (
	KindAnySimpleType Kind = iota
	KindString
	KindNormalizedString
	KindToken
	KindLanguage
	KindName
	KindNCName
	KindID
	KindBoolean
	KindDecimal
	KindFloat
	KindDouble
	KindInteger
	KindNonPositiveInteger
	KindNegativeInteger
	KindLong
	KindInt
	KindShort
	KindByte
	KindNonNegativeInteger
	KindUnsignedLong
	KindUnsignedInt
	KindUnsignedShort
	KindUnsignedByte
	KindPositiveInteger
	KindDuration
	KindDateTime
	KindTime
	KindDate
	KindGYearMonth
	KindGYear
	KindGMonthDay
	KindGDay
	KindGMonth
	KindHexBinary
	KindBase64Binary
	KindAnyURI
	KindQName
)

var kindNames = map[Kind]string{
	KindAnySimpleType:      "anySimpleType",
	KindString:             "string",
	KindNormalizedString:   "normalizedString",
	KindToken:              "token",
	KindLanguage:           "language",
	KindName:               "Name",
	KindNCName:             "NCName",
	KindID:                 "ID",
	KindBoolean:            "boolean",
	KindDecimal:            "decimal",
	KindFloat:              "float",
	KindDouble:             "double",
	KindInteger:            "integer",
	KindNonPositiveInteger: "nonPositiveInteger",
	KindNegativeInteger:    "negativeInteger",
	KindLong:               "long",
	KindInt:                "int",
	KindShort:              "short",
	KindByte:               "byte",
	KindNonNegativeInteger: "nonNegativeInteger",
	KindUnsignedLong:       "unsignedLong",
	KindUnsignedInt:        "unsignedInt",
	KindUnsignedShort:      "unsignedShort",
	KindUnsignedByte:       "unsignedByte",
	KindPositiveInteger:    "positiveInteger",
	KindDuration:           "duration",
	KindDateTime:           "dateTime",
	KindTime:               "time",
	KindDate:               "date",
	KindGYearMonth:         "gYearMonth",
	KindGYear:              "gYear",
	KindGMonthDay:          "gMonthDay",
	KindGDay:               "gDay",
	KindGMonth:             "gMonth",
	KindHexBinary:          "hexBinary",
	KindBase64Binary:       "base64Binary",
	KindAnyURI:             "anyURI",
	KindQName:              "QName",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// IsInteger reports whether values of the kind are whole numbers.
func (k Kind) IsInteger() bool {
	switch k {
	case KindInteger, KindNonPositiveInteger, KindNegativeInteger, KindLong, KindInt, KindShort, KindByte,
		KindNonNegativeInteger, KindUnsignedLong, KindUnsignedInt, KindUnsignedShort, KindUnsignedByte, KindPositiveInteger:
		return true
	}
	return false
}

// IsNumeric reports whether values of the kind are numbers.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindDecimal, KindFloat, KindDouble:
		return true
	}
	return k.IsInteger()
}

var builtins = func() map[string]*SimpleType {
	m := make(map[string]*SimpleType, len(kindNames))
	for k, n := range kindNames {
		m[n] = &SimpleType{Name: QName{Space: Namespace, Local: n}, Kind: k}
	}
	return m
}()

// Builtin returns the shared built-in simple type of the given kind.
func Builtin(k Kind) *SimpleType { return builtins[k.String()] }

// BuiltinByName returns the built-in simple type with the given local name
// ("string", "int", ...), or nil.
func BuiltinByName(local string) *SimpleType { return builtins[local] }

// BuiltinNames lists the local names of all built-in simple types.
func BuiltinNames() []string {
	out := make([]string, 0, len(builtins))
	for n := range builtins {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AnyType is the ur-type: mixed content, any element (lax) and any attribute.
var AnyType = &ComplexType{
	Name:              QName{Space: Namespace, Local: "anyType"},
	Content:           ContentMixed,
	Particle:          Seq(Any().Occurs(0, Unbounded)),
	AttributeWildcard: &Wildcard{Process: ProcessLax},
}
