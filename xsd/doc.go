// Package xsd is the schema facade consumed by the aligner.
//
// It models the parts of an XML Schema component graph that structural
// alignment needs: global element declarations, simple and complex type
// definitions, content models built from particles (sequence, choice, all,
// element and wildcard terms), attribute uses and simple-type metadata
// (built-in kind and facets).
//
// A Schema is either built in code with the helpers in builder.go or loaded
// from a YAML/JSON descriptor with Load. Compiling .xsd documents is out of
// scope; the model is read-only once alignment starts and may be shared by
// concurrently running aligners.
package xsd
