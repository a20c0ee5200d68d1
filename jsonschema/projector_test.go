package jsonschema_test

import (
	"strings"
	"testing"

	sjs "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/events"
	"github.com/reoring/xsdalign/jsonschema"
	"github.com/reoring/xsdalign/reverse"
	"github.com/reoring/xsdalign/xsd"
)

var str = xsd.Builtin(xsd.KindString)

func orderSchema() *xsd.Schema {
	s := xsd.New("")
	price := xsd.Named(xsd.Restrict(xsd.Builtin(xsd.KindDecimal)).
		SetFacet(xsd.FacetMinInclusive, "0").
		SetFacet(xsd.FacetMaxExclusive, "1000.50"), "Price")
	if err := s.AddType(price); err != nil {
		panic(err)
	}
	item := xsd.Complex(xsd.Seq(xsd.Elem("id", str), xsd.Elem("price", price).Optional()))
	items := xsd.Complex(xsd.Seq(xsd.Elem("Item", item).Repeated()))
	s.MustElement("Order", xsd.Complex(xsd.Seq(xsd.Elem("Items", items), xsd.Elem("note", str).Optional())))
	return s
}

func project(t *testing.T, s *xsd.Schema, opt jsonschema.Options, root string) string {
	t.Helper()
	doc, err := jsonschema.New(s, opt).Document(root, "")
	require.NoError(t, err)
	out, err := doc.Marshal("")
	require.NoError(t, err)
	return string(out)
}

func TestProjector_Document(t *testing.T) {
	got := project(t, orderSchema(), jsonschema.Options{SchemaLocation: "order.xsd"}, "Order")
	want := `{
		"$schema": "http://json-schema.org/draft-04/schema#",
		"description": "Auto-generated by xsdalign based on order.xsd",
		"type": "object",
		"additionalProperties": false,
		"properties": {"Order": {"$ref": "#/definitions/Order"}},
		"definitions": {
			"Order": {
				"type": "object",
				"additionalProperties": false,
				"required": ["Items"],
				"properties": {
					"Items": {
						"type": "object",
						"additionalProperties": false,
						"properties": {
							"Item": {
								"type": "array",
								"items": {
									"type": "object",
									"additionalProperties": false,
									"required": ["id"],
									"properties": {
										"id": {"type": "string"},
										"price": {"$ref": "#/definitions/Price"}
									}
								}
							}
						}
					},
					"note": {"type": "string"}
				}
			},
			"Price": {"type": "number", "minimum": 0, "maximum": 1000.5, "exclusiveMaximum": true}
		}
	}`
	assert.JSONEq(t, want, got)
}

func TestProjector_SkipOptions(t *testing.T) {
	got := project(t, orderSchema(), jsonschema.Options{SkipRootElement: true, SkipArrayElementContainers: true}, "Order")
	assert.Contains(t, got, `"$ref":"#/definitions/Order"`)
	assert.Contains(t, got, `"Items":{"type":"array","items":{`)
	assert.NotContains(t, got, `"properties":{"Order"`)
}

func TestProjector_UnknownRoot(t *testing.T) {
	_, err := jsonschema.New(orderSchema(), jsonschema.Options{}).Document("Nope", "")
	require.Error(t, err)
	assert.True(t, xa.HasCode(err, xa.CodeUnknownRoot))
}

func TestProjector_Types(t *testing.T) {
	code := xsd.Restrict(str).
		SetFacet(xsd.FacetPattern, "[A-Z]{3}").
		SetFacet(xsd.FacetEnumeration, "EUR", "USD")
	size := xsd.Restrict(xsd.Builtin(xsd.KindInt)).SetFacet(xsd.FacetEnumeration, "1", "+2", "big")
	s := xsd.New("")
	s.MustElement("R", xsd.Complex(xsd.Seq(
		xsd.Elem("code", code),
		xsd.Elem("size", size),
		xsd.Elem("day", xsd.Builtin(xsd.KindDate)),
		xsd.Elem("at", xsd.Builtin(xsd.KindDateTime)),
		xsd.Elem("flag", xsd.Builtin(xsd.KindBoolean)),
		xsd.Elem("id", xsd.Restrict(str).SetFacet(xsd.FacetLength, "4")),
		xsd.NillableElem("maybe", str),
		xsd.Elem("any", nil),
	)))
	p := jsonschema.New(s, jsonschema.Options{})
	r, ok := p.Definitions().Get("R")
	require.True(t, ok)
	got, err := r.Marshal("")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"additionalProperties": false,
		"required": ["code", "size", "day", "at", "flag", "id", "maybe", "any"],
		"properties": {
			"code": {"type": "string", "pattern": "^(?:[A-Z]{3})$", "enum": ["EUR", "USD"]},
			"size": {"type": "integer", "enum": [1, 2]},
			"day": {"type": "string", "format": "date"},
			"at": {"type": "string", "format": "date-time"},
			"flag": {"type": "boolean"},
			"id": {"type": "string", "minLength": 4, "maxLength": 4},
			"maybe": {"anyOf": [{"type": "string"}, {"type": "null"}]},
			"any": {}
		}
	}`, string(got))
	require.Len(t, p.Warnings(), 1)
	assert.Equal(t, xa.CodeInvalidValue, p.Warnings()[0].Code)
}

func TestProjector_ChoiceAndWildcard(t *testing.T) {
	s := xsd.New("")
	s.MustElement("Pay", xsd.Complex(xsd.Seq(
		xsd.Choice(xsd.Elem("card", str), xsd.Elem("iban", str)),
		xsd.Any().Optional(),
	)))
	pay, ok := jsonschema.New(s, jsonschema.Options{}).Definitions().Get("Pay")
	require.True(t, ok)
	got, err := pay.Marshal("")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"additionalProperties": true,
		"properties": {"card": {"type": "string"}, "iban": {"type": "string"}},
		"oneOf": [{"required": ["card"]}, {"required": ["iban"]}]
	}`, string(got))
}

func TestProjector_Attributes(t *testing.T) {
	s := xsd.New("")
	amount := xsd.SimpleContent(xsd.Builtin(xsd.KindDecimal), xsd.Attr("currency", nil))
	s.MustElement("amount", amount)

	got := project(t, s, jsonschema.Options{SkipRootElement: true}, "amount")
	assert.JSONEq(t, `{
		"$schema": "http://json-schema.org/draft-04/schema#",
		"$ref": "#/definitions/amount",
		"definitions": {
			"amount": {
				"type": "object",
				"additionalProperties": false,
				"properties": {"@currency": {"type": "string"}, "#text": {"type": "number"}}
			}
		}
	}`, got)

	got = project(t, s, jsonschema.Options{SkipRootElement: true, SkipAttributes: true}, "amount")
	assert.Contains(t, got, `"amount":{"type":"number"}`)
}

// The projected schema describes what the Reverse Builder emits.
func TestProjector_DescribesReverseOutput(t *testing.T) {
	tests := []struct {
		name    string
		compact bool
		doc     string
	}{
		{"containers kept", false, `<Order><Items><Item><id>1</id><price>2.50</price></Item><Item><id>2</id></Item></Items></Order>`},
		{"compact arrays", true, `<Order><Items><Item><id>1</id></Item></Items><note>n</note></Order>`},
		{"empty container", true, `<Order><Items/></Order>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			projected := project(t, orderSchema(), jsonschema.Options{SkipArrayElementContainers: tc.compact}, "Order")
			compiled := compile(t, projected)

			b := reverse.NewBuilder(orderSchema(), reverse.Options{CompactArrays: tc.compact})
			require.NoError(t, events.Replay(strings.NewReader(tc.doc), b))
			v, err := b.Value()
			require.NoError(t, err)
			out, err := reverse.Marshal(v, "")
			require.NoError(t, err)

			inst, err := sjs.UnmarshalJSON(strings.NewReader(string(out)))
			require.NoError(t, err)
			assert.NoError(t, compiled.Validate(inst), string(out))
		})
	}

	compiled := compile(t, project(t, orderSchema(), jsonschema.Options{}, "Order"))
	inst, err := sjs.UnmarshalJSON(strings.NewReader(`{"Order":{"Items":{"Item":[{"price":2}]}}}`))
	require.NoError(t, err)
	assert.Error(t, compiled.Validate(inst), "id is required")
}

func compile(t *testing.T, schema string) *sjs.Schema {
	t.Helper()
	doc, err := sjs.UnmarshalJSON(strings.NewReader(schema))
	require.NoError(t, err)
	c := sjs.NewCompiler()
	require.NoError(t, c.AddResource("https://xsdalign.test/order.json", doc))
	compiled, err := c.Compile("https://xsdalign.test/order.json")
	require.NoError(t, err)
	return compiled
}

func TestProjector_PropertiesKeepDeclarationOrder(t *testing.T) {
	s := xsd.New("")
	s.MustElement("Z", xsd.Complex(xsd.Seq(xsd.Elem("b", str))))
	s.MustElement("R", xsd.Complex(xsd.Seq(
		xsd.Choice(xsd.Elem("a", str), xsd.Seq(xsd.Elem("b", str), xsd.Elem("c", str))),
		xsd.Elem("n", str),
		xsd.Elem("Items", str),
	), xsd.Attr("kind", nil)))

	defs := jsonschema.New(s, jsonschema.Options{}).Definitions()
	assert.Equal(t, []string{"Z", "R"}, defs.Keys())
	r, ok := defs.Get("R")
	require.True(t, ok)
	assert.Equal(t, []string{"@kind", "a", "b", "c", "n", "Items"}, r.Properties.Keys())

	got, err := r.Marshal("  ")
	require.NoError(t, err)
	text := string(got)
	assert.Contains(t, text, "\n  \"properties\": {\n    \"@kind\"")
	assert.Less(t, strings.Index(text, `"a":`), strings.Index(text, `"n":`))
	assert.Less(t, strings.Index(text, `"n":`), strings.Index(text, `"Items":`))
}
