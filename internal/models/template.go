package models

import (
	"time"

	"github.com/google/uuid"
)

// Template maps a name to a string of placeholder tokens, e.g.
// "{title} - {vendor} product". Templates are scoped to a shop domain.
type Template struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ShopDomain string    `json:"shop_domain" db:"shop_domain"`
	Name       string    `json:"name" db:"name"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
