package models

import (
	"time"

	"github.com/google/uuid"
)

// AltTextUpdate records one successful alt-text write against Shopify.
type AltTextUpdate struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ShopDomain string     `json:"shop_domain" db:"shop_domain"`
	ProductID  string     `json:"product_id" db:"product_id"`
	ImageID    string     `json:"image_id" db:"image_id"`
	TemplateID *uuid.UUID `json:"template_id" db:"template_id"`
	AltText    string     `json:"alt_text" db:"alt_text"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
