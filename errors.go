package xsdalign

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeStructuralMismatch   = "structural_mismatch"
	CodeUndeclaredNode       = "undeclared_node"
	CodeDuplicateElement     = "duplicate_element"
	CodeWildcard             = "wildcard_encountered"
	CodeUnknownRoot          = "unknown_root"
	CodeArrayShape           = "array_shape"
	CodeAmbiguousDeclaration = "ambiguous_declaration"
	CodeInvalidValue         = "invalid_value"
	CodeParseError           = "parse_error"
)

// Issue represents a single alignment failure.
type Issue struct {
	Path    string // dotted ancestor path (for example: Order.Items.Item)
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
}

// Issues is a collection of alignment errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. structural_mismatch at Order.Items: Cannot find path:expected element [Item]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			b.WriteString(": ")
			b.WriteString(it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes of the issues to errors.Is and errors.As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// NewIssue returns a single-issue error for the element at ctx.
func NewIssue(ctx *Context, code, format string, args ...any) Issues {
	return Issues{{Path: ctx.Path(), Code: code, Message: fmt.Sprintf(format, args...)}}
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}
