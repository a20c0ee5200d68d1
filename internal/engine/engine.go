// Package engine decodes a JSON token stream into an order-preserving tree.
// Drivers adapt a concrete tokenizer to TokenSource; callers supply a Builder
// that materializes their own node type.
package engine

import (
	"fmt"
	"io"
	"strconv"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	// DupIgnore keeps the first member and drops later duplicates silently.
	DupIgnore DuplicateStrictness = iota
	// DupWarn keeps the first member and reports an issue.
	DupWarn
	// DupError aborts decoding.
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// Builder materializes decoded values bottom-up.
type Builder[V any] interface {
	Object(keys []string, values []V) V
	Array(items []V) V
	String(s string) V
	Number(literal string) V
	Bool(b bool) V
	Null() V
}

// Options controls Decode.
type Options struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth limits container nesting; 0 means unlimited.
	MaxDepth int
}

type decoder[V any] struct {
	src    TokenSource
	b      Builder[V]
	opt    Options
	issues []SimpleIssue
}

// Decode reads one value from src.
func Decode[V any](src TokenSource, b Builder[V], opt Options) (V, []SimpleIssue, error) {
	d := &decoder[V]{src: src, b: b, opt: opt}
	tok, err := src.NextToken()
	if err != nil {
		var zero V
		return zero, nil, err
	}
	v, err := d.value(tok, "", 0)
	return v, d.issues, err
}

func (d *decoder[V]) value(tok Token, path string, depth int) (V, error) {
	var zero V
	switch tok.Kind {
	case KindBeginObject:
		return d.object(path, depth+1)
	case KindBeginArray:
		return d.array(path, depth+1)
	case KindString:
		return d.b.String(tok.String), nil
	case KindNumber:
		return d.b.Number(tok.Number), nil
	case KindBool:
		return d.b.Bool(tok.Bool), nil
	case KindNull:
		return d.b.Null(), nil
	}
	return zero, io.ErrUnexpectedEOF
}

func (d *decoder[V]) checkDepth(path string, depth int) error {
	if d.opt.MaxDepth > 0 && depth > d.opt.MaxDepth {
		return IssueError{SimpleIssue{Code: "truncated", Path: pathOrRoot(path), Message: fmt.Sprintf("max depth %d exceeded", d.opt.MaxDepth)}}
	}
	return nil
}

func (d *decoder[V]) object(path string, depth int) (V, error) {
	var zero V
	if err := d.checkDepth(path, depth); err != nil {
		return zero, err
	}
	var (
		keys []string
		vals []V
		seen = make(map[string]struct{})
	)
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return zero, err
		}
		if tok.Kind == KindEndObject {
			return d.b.Object(keys, vals), nil
		}
		if tok.Kind != KindKey {
			return zero, io.ErrUnexpectedEOF
		}
		vt, err := d.src.NextToken()
		if err != nil {
			return zero, err
		}
		child := path + "/" + tok.String
		v, err := d.value(vt, child, depth)
		if err != nil {
			return zero, err
		}
		if _, dup := seen[tok.String]; dup {
			iss := SimpleIssue{Code: "duplicate_key", Path: pathOrRoot(path), Message: "key '" + tok.String + "' duplicated"}
			switch d.opt.OnDuplicate {
			case DupError:
				return zero, IssueError{iss}
			case DupWarn:
				d.issues = append(d.issues, iss)
			}
			continue
		}
		seen[tok.String] = struct{}{}
		keys = append(keys, tok.String)
		vals = append(vals, v)
	}
}

func (d *decoder[V]) array(path string, depth int) (V, error) {
	var zero V
	if err := d.checkDepth(path, depth); err != nil {
		return zero, err
	}
	var items []V
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return zero, err
		}
		if tok.Kind == KindEndArray {
			return d.b.Array(items), nil
		}
		v, err := d.value(tok, path+"/"+strconv.Itoa(len(items)), depth)
		if err != nil {
			return zero, err
		}
		items = append(items, v)
	}
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
