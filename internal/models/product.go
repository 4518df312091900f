package models

// Product is a read-only local copy of a Shopify product. Shopify owns the
// record; only image alt text is ever written back.
type Product struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"type"`
	Tags        []string   `json:"tags"`
	Store       string     `json:"store"`
	Variants    []*Variant `json:"variants"`
	Images      []*Image   `json:"images"`
	SKUs        []string   `json:"skus"`
}

type Variant struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
	SKU   string `json:"sku"`
}

// ImageByID returns the product image with the given id, or nil.
func (p *Product) ImageByID(imageID string) *Image {
	for _, img := range p.Images {
		if img.ID == imageID {
			return img
		}
	}
	return nil
}

// AltTextCounts returns how many of the product's images carry alt text,
// alongside the total image count.
func (p *Product) AltTextCounts() (withAlt, total int) {
	for _, img := range p.Images {
		total++
		if img.Alt != "" {
			withAlt++
		}
	}
	return withAlt, total
}
