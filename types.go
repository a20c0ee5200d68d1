package xsdalign

import "log/slog"

const (
	// DefaultAttributePrefix marks attribute members of JSON-like nodes.
	DefaultAttributePrefix = "@"
	// DefaultMixedContentLabel names the text member of simple or mixed content.
	DefaultMixedContentLabel = "#text"
	// NilPrefix is the prefix bound to the schema instance namespace.
	NilPrefix = "xsi"
)

// Options configures a Forward Aligner.
type Options struct {
	// RootElement names the root declaration; empty means derive it from the
	// source (the single top-level key of a JSON object).
	RootElement string
	// TargetNamespace restricts the root lookup; empty searches every namespace.
	TargetNamespace string
	// DeepSearch recovers required structure from flattened source data.
	DeepSearch bool
	// FailOnWildcards aborts on wildcard terms instead of warning.
	FailOnWildcards bool
	// IgnoreUndeclaredElements downgrades undeclared source names to warnings.
	IgnoreUndeclaredElements bool
	// CompactArrays lets a bare array stand for a container element that
	// holds one repeating child (array-container elision).
	CompactArrays bool
	// StrictSyntax rejects array shapes that do not match CompactArrays.
	StrictSyntax bool
	// SkipAttributes ignores attribute members of the source.
	SkipAttributes bool
	Logger         *slog.Logger
}

// Log returns the configured logger or slog.Default().
func (o Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
