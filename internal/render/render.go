// Package render substitutes placeholder tokens in alt-text templates with
// product field values. Rendering is a pure function: no conditionals, no
// recursive expansion, no escaping. Tokens that match no known field are
// left verbatim in the output so operator typos stay visible instead of
// silently disappearing.
package render

import (
	"strings"

	"altify/internal/models"
)

// commonColors are the color words recognized by the {color} token when
// scanning a product title.
var commonColors = []string{
	"black", "white", "red", "blue", "green", "yellow", "purple", "pink",
	"orange", "brown", "grey", "gray", "silver", "gold", "beige", "navy",
	"teal", "cream", "ivory", "turquoise", "violet", "magenta", "indigo",
}

type variable struct {
	token string
	value func(p *models.Product) string
}

// variables lists every recognized token in substitution order. {brand} and
// {category} are aliases for {vendor} and {type}.
var variables = []variable{
	{"{title}", func(p *models.Product) string { return p.Title }},
	{"{vendor}", func(p *models.Product) string { return p.Vendor }},
	{"{brand}", func(p *models.Product) string { return p.Vendor }},
	{"{type}", func(p *models.Product) string { return p.ProductType }},
	{"{category}", func(p *models.Product) string { return p.ProductType }},
	{"{tags}", func(p *models.Product) string { return strings.Join(p.Tags, ", ") }},
	{"{store}", func(p *models.Product) string { return p.Store }},
	{"{sku}", func(p *models.Product) string { return strings.Join(p.SKUs, ", ") }},
	{"{color}", func(p *models.Product) string { return ExtractColor(p.Title) }},
}

// Tokens returns the recognized placeholder tokens, for surfacing in the UI.
func Tokens() []string {
	tokens := make([]string, 0, len(variables))
	for _, v := range variables {
		tokens = append(tokens, v.token)
	}
	return tokens
}

// Render substitutes each recognized token in template with the matching
// field of p. Deterministic: identical inputs always yield identical output.
func Render(template string, p *models.Product) string {
	out := template
	for _, v := range variables {
		out = strings.ReplaceAll(out, v.token, v.value(p))
	}
	return out
}

// ExtractColor returns the first common color word appearing in the title,
// or the empty string.
func ExtractColor(title string) string {
	words := strings.Fields(strings.ToLower(title))
	for _, word := range words {
		for _, color := range commonColors {
			if word == color {
				return color
			}
		}
	}
	return ""
}
