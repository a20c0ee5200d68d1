package engine

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	toks []Token
	i    int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.i >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.i) }

// anyBuilder renders objects as ordered key lists for assertions.
type anyBuilder struct{}

type pair struct {
	K string
	V any
}

func (anyBuilder) Object(keys []string, vals []any) any {
	out := make([]pair, len(keys))
	for i := range keys {
		out[i] = pair{keys[i], vals[i]}
	}
	return out
}
func (anyBuilder) Array(items []any) any { return items }
func (anyBuilder) String(s string) any { return s }
func (anyBuilder) Number(n string) any { return "#" + n }
func (anyBuilder) Bool(b bool) any { return b }
func (anyBuilder) Null() any { return nil }

func obj(kvs ...any) []Token {
	toks := []Token{{Kind: KindBeginObject}}
	for i := 0; i < len(kvs); i += 2 {
		toks = append(toks, Token{Kind: KindKey, String: kvs[i].(string)}, kvs[i+1].(Token))
	}
	return append(toks, Token{Kind: KindEndObject})
}

func TestDecode_PreservesOrder(t *testing.T) {
	src := &sliceSource{toks: obj(
		"z", Token{Kind: KindNumber, Number: "1"},
		"a", Token{Kind: KindString, String: "x"},
		"m", Token{Kind: KindNull},
	)}
	v, issues, err := Decode[any](src, anyBuilder{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, []pair{{"z", "#1"}, {"a", "x"}, {"m", nil}}, v)
}

func TestDecode_Duplicates(t *testing.T) {
	toks := obj(
		"a", Token{Kind: KindString, String: "first"},
		"a", Token{Kind: KindString, String: "second"},
	)

	v, issues, err := Decode[any](&sliceSource{toks: toks}, anyBuilder{}, Options{OnDuplicate: DupWarn})
	require.NoError(t, err)
	assert.Equal(t, []pair{{"a", "first"}}, v)
	require.Len(t, issues, 1)
	assert.Equal(t, "duplicate_key", issues[0].Code)

	_, _, err = Decode[any](&sliceSource{toks: toks}, anyBuilder{}, Options{OnDuplicate: DupError})
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "key 'a' duplicated", ie.Message)
}

func TestDecode_MaxDepth(t *testing.T) {
	toks := []Token{
		{Kind: KindBeginArray}, {Kind: KindBeginArray}, {Kind: KindBeginArray},
		{Kind: KindEndArray}, {Kind: KindEndArray}, {Kind: KindEndArray},
	}
	_, _, err := Decode[any](&sliceSource{toks: toks}, anyBuilder{}, Options{MaxDepth: 2})
	assert.Error(t, err)

	v, _, err := Decode[any](&sliceSource{toks: toks}, anyBuilder{}, Options{MaxDepth: 3})
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{[]any(nil)}}, v)
}

func TestDecode_Truncated(t *testing.T) {
	_, _, err := Decode[any](&sliceSource{toks: []Token{{Kind: KindBeginObject}}}, anyBuilder{}, Options{})
	assert.ErrorIs(t, err, io.EOF)
}
