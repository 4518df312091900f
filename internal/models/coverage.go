package models

import "time"

// CoverageReport summarizes alt-text coverage across the session's product
// snapshot.
type CoverageReport struct {
	Products      int       `json:"products"`
	Images        int       `json:"images"`
	ImagesWithAlt int       `json:"images_with_alt"`
	Coverage      float64   `json:"coverage"`
	GeneratedAt   time.Time `json:"generated_at"`
}
