package models

import "github.com/google/uuid"

// Image belongs to exactly one product. Alt is the only attribute this
// system ever writes.
type Image struct {
	ID                string     `json:"id"`
	Src               string     `json:"src"`
	Alt               string     `json:"alt"`
	Position          int        `json:"position"`
	AppliedTemplateID *uuid.UUID `json:"applied_template_id"`
}
