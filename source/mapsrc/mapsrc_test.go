package mapsrc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/source/mapsrc"
)

func TestBinding(t *testing.T) {
	var b mapsrc.Binding
	n := map[string]any{
		"z":     "last",
		"a":     []any{1, 2.5},
		"@code": 3,
		"#text": "body",
		"n":     nil,
	}

	assert.Equal(t, []string{"a", "n", "z"}, b.Keys(n))
	assert.Equal(t, []xa.Attribute{{Name: "code", Value: "3"}}, b.Attributes(n))
	assert.Equal(t, "body", b.Content(n))

	a := b.Children(n, "a")
	require.Len(t, a, 1)
	assert.Equal(t, xa.NodeArray, b.Kind(a[0]))
	txt, ok := b.Text(b.Items(a[0])[1])
	assert.True(t, ok)
	assert.Equal(t, "2.5", txt)

	assert.Equal(t, xa.NodeNull, b.Kind(b.Children(n, "n")[0]))
	assert.Nil(t, b.Children(n, "missing"))
	assert.Nil(t, b.Children("scalar", "a"))

	txt, ok = b.Text(map[string]any{})
	assert.True(t, ok)
	assert.Empty(t, txt)
	_, ok = b.Text(map[string]any{"x": 1})
	assert.False(t, ok)
}

func TestBinding_FilterAndValue(t *testing.T) {
	var b mapsrc.Binding
	n := map[string]any{"a": 1, "b": 2}
	f := b.Filter(n, func(k string) bool { return k == "a" }, []xa.Member[any]{{Name: "c", Value: "3"}})
	assert.Equal(t, map[string]any{"a": 1, "c": "3"}, f)
	// the source is left untouched
	assert.Len(t, n, 2)

	assert.Equal(t, map[string]any{}, b.Value(nil))
	assert.Equal(t, []any{"1", "x"}, b.Value([]any{1, "x"}))
	assert.Equal(t, "0", b.Value("0"))
}

func TestFromProperties(t *testing.T) {
	m, err := mapsrc.FromProperties(map[string]string{
		"Order.id":           "7",
		"Order.Item.0.price": "1",
		"Order.Item.1.price": "2",
		"Order.note":         "n",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"Order": map[string]any{
			"id":   "7",
			"note": "n",
			"Item": []any{
				map[string]any{"price": "1"},
				map[string]any{"price": "2"},
			},
		},
	}, m)

	_, err = mapsrc.FromProperties(map[string]string{"a": "1", "a.b": "2"})
	assert.Error(t, err)
	_, err = mapsrc.FromProperties(map[string]string{"a..b": "2"})
	assert.Error(t, err)
	_, err = mapsrc.FromProperties(map[string]string{"0": "x"})
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	m, err := mapsrc.LoadYAML(strings.NewReader("Order:\n  id: 7\n  tags: [a, b]\n"))
	require.NoError(t, err)
	order := m["Order"].(map[string]any)
	assert.Equal(t, 7, order["id"])
	assert.Equal(t, []any{"a", "b"}, order["tags"])

	m, err = mapsrc.LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m)
}
