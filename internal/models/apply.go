package models

import "github.com/google/uuid"

// ApplyResult reports the outcome of applying a template (or a clear) to the
// images of one product. Each image gets exactly one write attempt; failures
// are collected, never retried.
type ApplyResult struct {
	ProductID   string       `json:"product_id"`
	TemplateID  *uuid.UUID   `json:"template_id"`
	RenderedAlt string       `json:"rendered_alt"`
	TotalImages int          `json:"total_images"`
	Updated     int          `json:"updated"`
	Failed      int          `json:"failed"`
	Status      string       `json:"status"`
	RateLimited bool         `json:"rate_limited,omitempty"`
	Items       []*ApplyItem `json:"items"`
}

type ApplyItem struct {
	ImageID string  `json:"image_id"`
	Status  string  `json:"status"`
	Error   *string `json:"error,omitempty"`
}
