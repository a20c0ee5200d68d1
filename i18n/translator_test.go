package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X-" + code }

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	t.Cleanup(func() { SetLanguage("en") })

	assert.Equal(t, "no content path matches the schema", T("structural_mismatch", nil))
	assert.Equal(t, "undeclared node [note]", T("undeclared_node", map[string]string{"element": "note"}))
	assert.Equal(t, "something_else", T("something_else", nil))

	SetLanguage("ja")
	assert.Equal(t, "宣言されていないノードです", T("undeclared_node", nil))

	SetLanguage("fr")
	assert.Equal(t, "invalid value", T("invalid_value", nil))
}

func TestSetTranslator(t *testing.T) {
	t.Cleanup(func() { SetTranslator(nil) })

	SetTranslator(upper{})
	assert.Equal(t, "X-array_shape", T("array_shape", nil))

	SetTranslator(nil)
	assert.Equal(t, "unexpected array shape", T("array_shape", nil))
}
