package repositories

import (
	"context"

	"altify/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AltTextUpdateRepository interface {
	Create(ctx context.Context, update *models.AltTextUpdate) error
	ListByShop(ctx context.Context, shopDomain string, limit, offset int) ([]*models.AltTextUpdate, error)
	ListByProduct(ctx context.Context, shopDomain, productID string, limit, offset int) ([]*models.AltTextUpdate, error)
	CountByShop(ctx context.Context, shopDomain string) (int, error)
}

type altTextUpdateRepo struct {
	db Database
}

func NewAltTextUpdateRepo(db Database) AltTextUpdateRepository {
	return &altTextUpdateRepo{db: db}
}

func (r *altTextUpdateRepo) Create(ctx context.Context, update *models.AltTextUpdate) error {
	query := `
		INSERT INTO alt_text_updates (id, shop_domain, product_id, image_id, template_id, alt_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, update.ID, update.ShopDomain, update.ProductID, update.ImageID, update.TemplateID, update.AltText)
	return err
}

func (r *altTextUpdateRepo) ListByShop(ctx context.Context, shopDomain string, limit, offset int) ([]*models.AltTextUpdate, error) {
	query := `
		SELECT id, shop_domain, product_id, image_id, template_id, alt_text, created_at
		FROM alt_text_updates
		WHERE shop_domain = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, shopDomain, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUpdates(rows)
}

func (r *altTextUpdateRepo) ListByProduct(ctx context.Context, shopDomain, productID string, limit, offset int) ([]*models.AltTextUpdate, error) {
	query := `
		SELECT id, shop_domain, product_id, image_id, template_id, alt_text, created_at
		FROM alt_text_updates
		WHERE shop_domain = $1 AND product_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, shopDomain, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUpdates(rows)
}

func (r *altTextUpdateRepo) CountByShop(ctx context.Context, shopDomain string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM alt_text_updates WHERE shop_domain = $1`
	err := r.db.QueryRow(ctx, query, shopDomain).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func scanUpdates(rows pgx.Rows) ([]*models.AltTextUpdate, error) {
	var updates []*models.AltTextUpdate
	for rows.Next() {
		update := &models.AltTextUpdate{}
		var templateID *uuid.UUID
		if err := rows.Scan(&update.ID, &update.ShopDomain, &update.ProductID, &update.ImageID, &templateID, &update.AltText, &update.CreatedAt); err != nil {
			return nil, err
		}
		update.TemplateID = templateID
		updates = append(updates, update)
	}
	return updates, nil
}
