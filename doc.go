// Package xsdalign aligns loosely typed hierarchical data with an XML Schema
// type model.
//
// The root package holds what both directions share:
//
//   - the Issues error model (dotted ancestor path, code, message)
//   - the alignment context stack and the type-cardinality analyzer that
//     classifies content models (Empty, OneSingle, OneMultiple, Mixed)
//   - the Tracker, which pushes and pops cardinality frames with the context
//   - the Binding contract a source data model implements
//
// Sub packages implement the moving parts: xsd (schema facade), override
// (path-addressed substitution values), forward (data to events), reverse
// (events to data), events (sinks and XML text), jsonschema (schema to JSON
// Schema projection), source/* (JSON, map and DOM bindings) and convert
// (one-call conversions used by cmd/xsdalign).
//
// Typical usage:
//
//	s, _ := xsd.LoadFile("orders.yaml")
//	var out bytes.Buffer
//	_, err := convert.JSONToXML(ctx, s, strings.NewReader(doc), &out, convert.XMLOptions{})
//
//	_, err = convert.XMLToJSON(s, xmlReader, jsonWriter,
//		convert.JSONOptions{Options: reverse.Options{CompactArrays: true}})
package xsdalign
