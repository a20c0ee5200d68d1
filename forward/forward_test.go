package forward_test

import (
	"bytes"
	"context"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/events"
	"github.com/reoring/xsdalign/forward"
	"github.com/reoring/xsdalign/override"
	"github.com/reoring/xsdalign/source/dom"
	"github.com/reoring/xsdalign/source/gojson"
	"github.com/reoring/xsdalign/source/mapsrc"
	"github.com/reoring/xsdalign/xsd"
)

var str = xsd.Builtin(xsd.KindString)

func orderSchema() *xsd.Schema {
	item := xsd.Complex(xsd.Seq(xsd.Elem("id", str), xsd.Elem("price", str).Optional()))
	items := xsd.Complex(xsd.Seq(xsd.Elem("Item", item).Repeated()))
	s := xsd.New("")
	s.MustElement("Order", xsd.Complex(xsd.Seq(xsd.Elem("Items", items), xsd.Elem("note", str).Optional())))
	return s
}

func render(t *testing.T, a *forward.Aligner[*gojson.Node], buf *bytes.Buffer, doc string) (string, error) {
	t.Helper()
	err := a.Align(context.Background(), gojson.MustParse(doc))
	return strings.TrimSpace(strings.TrimPrefix(buf.String(), xml.Header)), err
}

func newAligner(s *xsd.Schema, opt xa.Options) (*forward.Aligner[*gojson.Node], *bytes.Buffer) {
	var buf bytes.Buffer
	return forward.New[*gojson.Node](s, gojson.Binding{}, events.NewWriter(&buf, ""), opt), &buf
}

func TestAlign_ArrayBecomesRepeatedElements(t *testing.T) {
	a, buf := newAligner(orderSchema(), xa.Options{})
	out, err := render(t, a, buf, `{"Order":{"Items":[{"id":"1"},{"id":"2"}]}}`)
	require.NoError(t, err)
	assert.Equal(t, `<Order><Items><Item><id>1</id></Item><Item><id>2</id></Item></Items></Order>`, out)
	assert.Empty(t, a.Warnings())
}

func TestAlign_SchemaOrderWins(t *testing.T) {
	a, buf := newAligner(orderSchema(), xa.Options{})
	out, err := render(t, a, buf, `{"Order":{"note":"n","Items":{"Item":[{"price":"3","id":"1"}]}}}`)
	require.NoError(t, err)
	assert.Equal(t, `<Order><Items><Item><id>1</id><price>3</price></Item></Items><note>n</note></Order>`, out)
}

func TestAlign_MissingMandatoryElement(t *testing.T) {
	a, buf := newAligner(orderSchema(), xa.Options{})
	_, err := render(t, a, buf, `{"Order":{"note":"x"}}`)
	require.Error(t, err)
	assert.True(t, xa.HasCode(err, xa.CodeStructuralMismatch))
	assert.Contains(t, err.Error(), "Cannot find path:expected element [Items]")
	iss, ok := xa.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "Order", iss[0].Path)
}

func TestAlign_OverrideSuppliesMissingChild(t *testing.T) {
	item := xsd.Complex(xsd.Seq(xsd.Elem("id", str), xsd.Elem("price", str)))
	s := xsd.New("")
	s.MustElement("Order", xsd.Complex(xsd.Seq(xsd.Elem("Item", item))))

	m := override.NewMap()
	require.NoError(t, m.Register(override.ParsePath("/Order/Item/price"), "0"))
	a, buf := newAligner(s, xa.Options{})
	a.SetProvider(m)
	out, err := render(t, a, buf, `{"Order":{"Item":{"id":"7"}}}`)
	require.NoError(t, err)
	assert.Equal(t, `<Order><Item><id>7</id><price>0</price></Item></Order>`, out)
}

func TestAlign_OverrideReplacesText(t *testing.T) {
	s := xsd.New("")
	s.MustElement("R", xsd.Complex(xsd.Seq(xsd.Elem("code", str))))
	m := override.NewMap()
	require.NoError(t, m.Register(override.ParsePath("code"), "fixed"))
	a, buf := newAligner(s, xa.Options{})
	a.SetProvider(m)
	out, err := render(t, a, buf, `{"R":{"code":"given"}}`)
	require.NoError(t, err)
	assert.Equal(t, `<R><code>fixed</code></R>`, out)
}

func TestAlign_ListOverrideRepeatsElement(t *testing.T) {
	s := xsd.New("")
	s.MustElement("R", xsd.Complex(xsd.Seq(xsd.Elem("tag", str).Repeated())))
	m := override.NewMap()
	require.NoError(t, m.Register(override.ParsePath("/R/tag"), []any{"a", "b"}))
	a, buf := newAligner(s, xa.Options{})
	a.SetProvider(m)
	out, err := render(t, a, buf, `{"R":{}}`)
	require.NoError(t, err)
	assert.Equal(t, `<R><tag>a</tag><tag>b</tag></R>`, out)
}

func TestAlign_DefaultFillsEmptyText(t *testing.T) {
	s := xsd.New("")
	s.MustElement("R", xsd.Complex(xsd.Seq(xsd.Elem("qty", str), xsd.Elem("unit", str))))
	m := override.NewMap()
	require.NoError(t, m.RegisterDefault(override.ParsePath("qty"), 1))
	require.NoError(t, m.RegisterDefault(override.ParsePath("unit"), "pcs"))
	a, buf := newAligner(s, xa.Options{})
	a.SetProvider(m)
	out, err := render(t, a, buf, `{"R":{"qty":"","unit":"kg"}}`)
	require.NoError(t, err)
	assert.Equal(t, `<R><qty>1</qty><unit>kg</unit></R>`, out)
}

func TestAlign_Nil(t *testing.T) {
	s := xsd.New("")
	s.MustElement("a", str).Nillable = true
	a, buf := newAligner(s, xa.Options{})
	out, err := render(t, a, buf, `{"a": null}`)
	require.NoError(t, err)
	assert.Equal(t, `<a xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:nil="true"/>`, out)
	assert.Empty(t, a.Warnings())
}

func TestAlign_NilOnNonNillableWarns(t *testing.T) {
	s := xsd.New("")
	s.MustElement("R", xsd.Complex(xsd.Seq(xsd.Elem("b", str))))
	a, buf := newAligner(s, xa.Options{})
	out, err := render(t, a, buf, `{"R":{"b":null}}`)
	require.NoError(t, err)
	assert.Equal(t, `<R><b xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:nil="true"/></R>`, out)
	require.Len(t, a.Warnings(), 1)
	assert.Equal(t, xa.CodeInvalidValue, a.Warnings()[0].Code)
}

func TestAlign_NamespacePrefixes(t *testing.T) {
	s := xsd.New("urn:orders")
	s.MustElement("Order", xsd.Complex(xsd.Seq(xsd.Elem("id", str))))

	rec := &events.Recorder{}
	a := forward.New[*gojson.Node](s, gojson.Binding{}, rec, xa.Options{})
	require.NoError(t, a.Align(context.Background(), gojson.MustParse(`{"Order":{"id":"1"}}`)))

	var kinds []string
	for _, e := range rec.Events {
		kinds = append(kinds, e.String())
	}
	assert.Equal(t, []string{
		"startDocument", "xmlns:ns1=urn:orders", "<Order>", "<id>", "1", "</id>", "</Order>", "-xmlns:ns1", "endDocument",
	}, kinds)

	var buf bytes.Buffer
	require.NoError(t, rec.Replay(events.NewWriter(&buf, "")))
	assert.Contains(t, buf.String(), `<ns1:Order xmlns:ns1="urn:orders"><id>1</id></ns1:Order>`)
}

func TestAlign_Attributes(t *testing.T) {
	s := xsd.New("")
	s.MustElement("Item", xsd.Complex(xsd.Seq(xsd.Elem("id", str)), xsd.Attr("code", nil)))
	a, buf := newAligner(s, xa.Options{})
	out, err := render(t, a, buf, `{"Item":{"@code":"A","@x":"y","id":"1"}}`)
	require.NoError(t, err)
	assert.Equal(t, `<Item code="A"><id>1</id></Item>`, out)
	require.Len(t, a.Warnings(), 1)
	assert.Contains(t, a.Warnings()[0].Message, "attributes [x] are not declared")

	a, buf = newAligner(s, xa.Options{SkipAttributes: true})
	out, err = render(t, a, buf, `{"Item":{"@code":"A","id":"1"}}`)
	require.NoError(t, err)
	assert.Equal(t, `<Item><id>1</id></Item>`, out)
}

func TestAlign_SimpleContentWithText(t *testing.T) {
	s := xsd.New("")
	s.MustElement("amount", xsd.SimpleContent(xsd.Builtin(xsd.KindDecimal), xsd.Attr("currency", nil)))
	a, buf := newAligner(s, xa.Options{})
	out, err := render(t, a, buf, `{"amount":{"@currency":"EUR","#text":12.50}}`)
	require.NoError(t, err)
	assert.Equal(t, `<amount currency="EUR">12.50</amount>`, out)
}

func TestAlign_DeepSearch(t *testing.T) {
	customer := xsd.Complex(xsd.Seq(xsd.Elem("name", str), xsd.Elem("city", str)))
	s := xsd.New("")
	s.MustElement("Order", xsd.Complex(xsd.Seq(xsd.Elem("Customer", customer), xsd.Elem("total", str))))
	doc := `{"Order":{"name":"n","city":"c","total":"5"}}`

	a, buf := newAligner(s, xa.Options{})
	_, err := render(t, a, buf, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected element [Customer]")

	a, buf = newAligner(s, xa.Options{DeepSearch: true})
	out, err := render(t, a, buf, doc)
	require.NoError(t, err)
	assert.Equal(t, `<Order><Customer><name>n</name><city>c</city></Customer><total>5</total></Order>`, out)
	assert.Empty(t, a.Warnings())
}

func TestAlign_Wildcard(t *testing.T) {
	s := xsd.New("")
	s.MustElement("R", xsd.Complex(xsd.Seq(xsd.Elem("id", str), xsd.Any())))
	doc := `{"R":{"id":"1","extra":"x"}}`

	a, buf := newAligner(s, xa.Options{})
	out, err := render(t, a, buf, doc)
	require.NoError(t, err)
	assert.Equal(t, `<R><id>1</id><extra>x</extra></R>`, out)
	require.NotEmpty(t, a.Warnings())
	assert.Equal(t, xa.CodeWildcard, a.Warnings()[0].Code)
	assert.Contains(t, a.Warnings()[0].Message, "term for element [R] is WILDCARD")

	a, buf = newAligner(s, xa.Options{FailOnWildcards: true})
	_, err = render(t, a, buf, doc)
	require.Error(t, err)
	assert.True(t, xa.HasCode(err, xa.CodeWildcard))
	assert.Contains(t, err.Error(), `or set failOnWildcards="false"`)
}

func TestAlign_UndeclaredElements(t *testing.T) {
	s := xsd.New("")
	s.MustElement("R", xsd.Complex(xsd.Seq(xsd.Elem("id", str))))
	doc := `{"R":{"id":"1","junk":"x"}}`

	a, buf := newAligner(s, xa.Options{})
	_, err := render(t, a, buf, doc)
	require.Error(t, err)
	assert.True(t, xa.HasCode(err, xa.CodeUndeclaredNode))
	assert.Contains(t, err.Error(), "Cannot find the declaration of element [junk] in the definition of type [R]")

	a, buf = newAligner(s, xa.Options{IgnoreUndeclaredElements: true})
	out, err := render(t, a, buf, doc)
	require.NoError(t, err)
	assert.Equal(t, `<R><id>1</id></R>`, out)
	require.Len(t, a.Warnings(), 1)
	assert.Equal(t, xa.CodeUndeclaredNode, a.Warnings()[0].Code)
}

func TestAlign_UnprocessedGlobalElement(t *testing.T) {
	s := xsd.New("")
	s.MustElement("R", xsd.Mixed(xsd.Seq(xsd.Elem("id", str).Optional())))
	s.MustElement("remark", str)
	a, buf := newAligner(s, xa.Options{})
	out, err := render(t, a, buf, `{"R":{"remark":"hi"}}`)
	require.NoError(t, err)
	assert.Equal(t, `<R><remark>hi</remark></R>`, out)
}

func TestAlign_StrictSyntax(t *testing.T) {
	s := xsd.New("")
	s.MustElement("R", xsd.Complex(xsd.Seq(xsd.Elem("note", str))))
	a, buf := newAligner(s, xa.Options{StrictSyntax: true})
	_, err := render(t, a, buf, `{"R":{"note":["a","b"]}}`)
	require.Error(t, err)
	assert.True(t, xa.HasCode(err, xa.CodeArrayShape))
	assert.Contains(t, err.Error(), "did not expect array, but single element [note]")

	a, buf = newAligner(orderSchema(), xa.Options{StrictSyntax: true, CompactArrays: true})
	_, err = render(t, a, buf, `{"Order":{"Items":{"Item":[{"id":"1"}]}}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "straight json found while expecting compact arrays and strict syntax checking")

	a, buf = newAligner(orderSchema(), xa.Options{StrictSyntax: true, CompactArrays: true})
	out, err := render(t, a, buf, `{"Order":{"Items":[{"id":"1"}]}}`)
	require.NoError(t, err)
	assert.Equal(t, `<Order><Items><Item><id>1</id></Item></Items></Order>`, out)
}

func TestAlign_RootDetection(t *testing.T) {
	tests := []struct {
		name string
		opt  xa.Options
		doc  string
		msg  string
	}{
		{"none", xa.Options{}, `{}`, "Cannot determine XML root element, neither from attribute rootElement, nor from JSON node"},
		{"too many", xa.Options{}, `{"a":1,"b":2}`, "Cannot determine XML root element, too many names [a,b] in JSON"},
		{"truncated list", xa.Options{}, `{"a":1,"b":2,"c":3,"d":4,"e":5,"f":6}`, "too many names [a,b,c,d,e, ...]"},
		{"unknown", xa.Options{}, `{"Nope":{}}`, "Cannot find the declaration of element for [Nope] in namespace []"},
		{"array root", xa.Options{RootElement: "Order", StrictSyntax: true}, `[{"Items":[]}]`, "did not expect array, but single element [Order] or array element container"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, buf := newAligner(orderSchema(), tc.opt)
			_, err := render(t, a, buf, tc.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestAlign_ExplicitRootElement(t *testing.T) {
	a, buf := newAligner(orderSchema(), xa.Options{RootElement: "Order"})
	out, err := render(t, a, buf, `{"Items":[{"id":"1"}],"note":"n"}`)
	require.NoError(t, err)
	assert.Equal(t, `<Order><Items><Item><id>1</id></Item></Items><note>n</note></Order>`, out)
}

func TestAlign_Cancelled(t *testing.T) {
	a, _ := newAligner(orderSchema(), xa.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.Align(ctx, gojson.MustParse(`{"Order":{"Items":[]}}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBestPath_Choice(t *testing.T) {
	tests := []struct {
		name    string
		model   *xsd.Particle
		doc     string
		want    []string
		reasons []string
	}{
		{
			name:  "longest wins",
			model: xsd.Choice(xsd.Seq(xsd.Elem("x", str)), xsd.Seq(xsd.Elem("x", str), xsd.Elem("y", str))),
			doc:   `{"x":"1","y":"2"}`,
			want:  []string{"x", "y"},
		},
		{
			name:  "tie keeps first",
			model: xsd.Choice(xsd.Seq(xsd.Elem("x", str)), xsd.Seq(xsd.Elem("y", str))),
			doc:   `{"x":"1","y":"2"}`,
			want:  []string{"x"},
		},
		{
			name:    "all alternatives fail",
			model:   xsd.Choice(xsd.Seq(xsd.Elem("x", str)), xsd.Seq(xsd.Elem("y", str))),
			doc:     `{"z":"1"}`,
			reasons: []string{"expected element [x]", "expected element [y]"},
		},
		{
			name:    "element required twice",
			model:   xsd.Seq(xsd.Elem("x", str), xsd.Elem("x", str)),
			doc:     `{"x":"1"}`,
			reasons: []string{"element [x] required multiple times"},
		},
		{
			name:  "optional absent",
			model: xsd.Seq(xsd.Elem("x", str).Optional(), xsd.Elem("y", str)),
			doc:   `{"y":"1"}`,
			want:  []string{"y"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := xsd.New("")
			decl := s.MustElement("R", xsd.Complex(tc.model))
			a := forward.New[*gojson.Node](s, gojson.Binding{}, &events.Recorder{}, xa.Options{})
			path, reasons, err := a.BestPath(decl, gojson.MustParse(tc.doc))
			require.NoError(t, err)
			if tc.reasons != nil {
				assert.Nil(t, path)
				assert.Equal(t, tc.reasons, reasons)
				return
			}
			assert.Empty(t, reasons)
			assert.Equal(t, tc.want, path.Names())
		})
	}
}

func TestAlign_MapSource(t *testing.T) {
	s := xsd.New("")
	s.MustElement("Order", xsd.Complex(xsd.Seq(xsd.Elem("id", str), xsd.Elem("qty", xsd.Builtin(xsd.KindInt)))))
	var buf bytes.Buffer
	a := forward.New[any](s, mapsrc.Binding{}, events.NewWriter(&buf, ""), xa.Options{})
	err := a.Align(context.Background(), map[string]any{"Order": map[string]any{"qty": 2, "id": "a"}})
	require.NoError(t, err)
	assert.Equal(t, `<Order><id>a</id><qty>2</qty></Order>`, strings.TrimSpace(strings.TrimPrefix(buf.String(), xml.Header)))
}

func TestAlignRoot_ElementTree(t *testing.T) {
	root, err := dom.Parse(strings.NewReader(`<Order><note>n</note><Items><Item><id>1</id></Item><Item><id>2</id></Item></Items></Order>`))
	require.NoError(t, err)
	var buf bytes.Buffer
	a := forward.New[*dom.Element](orderSchema(), dom.Binding{}, events.NewWriter(&buf, ""), xa.Options{})
	require.NoError(t, a.AlignRoot(context.Background(), root.Name.Local, root.Name.Space, root))
	assert.Equal(t,
		`<Order><Items><Item><id>1</id></Item><Item><id>2</id></Item></Items><note>n</note></Order>`,
		strings.TrimSpace(strings.TrimPrefix(buf.String(), xml.Header)))
}
