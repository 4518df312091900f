package render

import (
	"testing"

	"altify/internal/models"

	"github.com/stretchr/testify/assert"
)

func sampleProduct() *models.Product {
	return &models.Product{
		ID:          "gid://shopify/Product/1",
		Title:       "Widget",
		Vendor:      "Acme",
		ProductType: "Gadget",
		Tags:        []string{"new", "featured"},
		Store:       "Acme Store",
		SKUs:        []string{"SKU-1", "SKU-2"},
	}
}

func TestRender_BasicSubstitution(t *testing.T) {
	out := Render("{title} – {vendor}", sampleProduct())
	assert.Equal(t, "Widget – Acme", out)
}

func TestRender_AllTokens(t *testing.T) {
	p := sampleProduct()

	cases := map[string]string{
		"{title}":    "Widget",
		"{vendor}":   "Acme",
		"{brand}":    "Acme",
		"{type}":     "Gadget",
		"{category}": "Gadget",
		"{tags}":     "new, featured",
		"{store}":    "Acme Store",
		"{sku}":      "SKU-1, SKU-2",
	}
	for template, expected := range cases {
		assert.Equal(t, expected, Render(template, p), "template %s", template)
	}
}

func TestRender_UnknownTokenPassesThrough(t *testing.T) {
	out := Render("{title} {unknown} {missing}", sampleProduct())
	assert.Equal(t, "Widget {unknown} {missing}", out)
}

func TestRender_EmptyFieldsYieldEmptySubstitution(t *testing.T) {
	p := &models.Product{Title: "Widget"}
	out := Render("{title} by {vendor}", p)
	assert.Equal(t, "Widget by ", out)
}

func TestRender_Deterministic(t *testing.T) {
	p := sampleProduct()
	template := "{title} {vendor} {type} {tags} {store} {sku} {color} {brand} {category}"

	first := Render(template, p)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Render(template, p))
	}
}

func TestRender_SequentialSubstitution(t *testing.T) {
	p := sampleProduct()
	p.Title = "{vendor}"
	// Title substitutes first, and its output is re-scanned by the later
	// vendor pass since replacement is sequential. Pin that behavior.
	out := Render("{title}", p)
	assert.Equal(t, "Acme", out)
}

func TestRender_ColorToken(t *testing.T) {
	p := sampleProduct()
	p.Title = "Navy Blue Widget"
	assert.Equal(t, "navy", Render("{color}", p))
}

func TestExtractColor(t *testing.T) {
	cases := []struct {
		title    string
		expected string
	}{
		{"Red Leather Jacket", "red"},
		{"Classic BLACK Tee", "black"},
		{"Turquoise Pendant", "turquoise"},
		{"Plain Widget", ""},
		{"", ""},
		{"Redwood Table", ""}, // substring must be a whole word
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, ExtractColor(tc.title), "title %q", tc.title)
	}
}

func TestTokens_ContainsAllKnownTokens(t *testing.T) {
	tokens := Tokens()
	assert.Len(t, tokens, 9)
	assert.Contains(t, tokens, "{title}")
	assert.Contains(t, tokens, "{color}")
}
