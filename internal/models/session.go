package models

import (
	"time"

	"github.com/google/uuid"
)

// Session holds one operator's connection state for the duration of a
// dashboard session. Credentials never touch Postgres; the session lives in
// Redis with a TTL.
type Session struct {
	ID          uuid.UUID `json:"id"`
	ShopDomain  string    `json:"shop_domain"`
	ShopName    string    `json:"shop_name"`
	AccessToken string    `json:"access_token"`
	CreatedAt   time.Time `json:"created_at"`
}
