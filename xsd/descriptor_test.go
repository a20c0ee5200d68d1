package xsd_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/xsdalign/xsd"
)

const ordersYAML = `
targetNamespace: urn:orders
location: orders.xsd
types:
  - name: Price
    restriction:
      base: decimal
      minInclusive: 0
      maxInclusive: "99999999999999999999"
  - name: Status
    restriction:
      base: string
      enumeration: [open, closed]
  - name: ItemType
    sequence:
      - {element: id, type: string}
      - {element: price, type: Price, minOccurs: 0}
    attributes:
      - {name: sku, type: string, use: required}
elements:
  - name: Order
    complexType:
      sequence:
        - {element: status, type: Status, nillable: true}
        - element: Items
          complexType:
            sequence:
              - {element: Item, type: ItemType, maxOccurs: unbounded}
        - choice:
            - {element: email, type: xs:string}
            - {element: phone, type: string}
          minOccurs: 0
        - {any: {namespace: "##other", processContents: lax}, minOccurs: 0}
`

func TestLoad_ResolvesTypesAndParticles(t *testing.T) {
	s, err := xsd.Load(strings.NewReader(ordersYAML))
	require.NoError(t, err)
	assert.Equal(t, "orders.xsd", s.Location)

	order := s.ElementDeclaration("urn:orders", "Order")
	require.NotNil(t, order)
	assert.True(t, order.Global)

	ct, ok := order.Type.(*xsd.ComplexType)
	require.True(t, ok)
	assert.Equal(t, xsd.ContentElement, ct.Content)

	top := ct.Particle.Term.(*xsd.ModelGroup)
	require.Len(t, top.Particles, 4)
	assert.Equal(t, xsd.CompositorSequence, top.Compositor)

	status, _ := top.Particles[0].Element()
	assert.True(t, status.Nillable)
	assert.Equal(t, []string{"open", "closed"}, status.Type.(*xsd.SimpleType).Facets()[xsd.FacetEnumeration])

	items, _ := top.Particles[1].Element()
	item, _ := xsd.ContentParticle(items.Type).Term.(*xsd.ModelGroup).Particles[0].Element()
	assert.Equal(t, "Item", item.Name.Local)
	assert.True(t, xsd.ContentParticle(items.Type).Term.(*xsd.ModelGroup).Particles[0].Repeats())
	assert.Equal(t, "ItemType", item.Type.TypeName().Local)
	require.Len(t, xsd.AttributeUses(item.Type), 1)
	assert.True(t, xsd.AttributeUses(item.Type)[0].Required)

	choice := top.Particles[2]
	assert.Equal(t, 0, choice.MinOccurs)
	assert.Equal(t, xsd.CompositorChoice, choice.Term.(*xsd.ModelGroup).Compositor)

	w := top.Particles[3].Term.(*xsd.Wildcard)
	assert.Equal(t, xsd.ConstraintNot, w.Constraint)
	assert.Equal(t, xsd.ProcessLax, w.Process)
}

func TestLoad_SimpleTypeFacetsAndKind(t *testing.T) {
	s, err := xsd.Load(strings.NewReader(ordersYAML))
	require.NoError(t, err)

	price := s.Type("urn:orders", "Price").(*xsd.SimpleType)
	assert.Equal(t, xsd.KindDecimal, price.BuiltinKind())
	v, ok := price.Facet(xsd.FacetMinInclusive)
	require.True(t, ok)
	assert.Equal(t, "0", v)
	v, _ = price.Facet(xsd.FacetMaxInclusive)
	assert.Equal(t, "99999999999999999999", v)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown type":  "elements:\n  - {name: A, type: Nope}\n",
		"unknown ref":   "types:\n  - name: T\n    sequence:\n      - {ref: Missing}\n",
		"unknown facet": "types:\n  - name: T\n    restriction: {base: string, bogus: 1}\n",
		"bad maxOccurs": "types:\n  - name: T\n    sequence:\n      - {element: a, maxOccurs: many}\n",
		"empty":         "types:\n  - name: T\n    sequence:\n      - {minOccurs: 0}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := xsd.Load(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestLoad_QualifiedLocals(t *testing.T) {
	doc := "targetNamespace: urn:q\nelementFormDefault: qualified\nelements:\n  - name: R\n    complexType:\n      sequence:\n        - {element: c, type: int}\n"
	s, err := xsd.Load(strings.NewReader(doc))
	require.NoError(t, err)
	c, _ := xsd.ContentParticle(s.ElementDeclaration("urn:q", "R").Type).Term.(*xsd.ModelGroup).Particles[0].Element()
	assert.Equal(t, "urn:q", c.Name.Space)
	assert.Equal(t, xsd.KindInt, xsd.TextType(c.Type).BuiltinKind())
}
