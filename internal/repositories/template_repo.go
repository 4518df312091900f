package repositories

import (
	"context"
	"errors"

	"altify/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the repositories use. Both the real
// pool and pgxmock satisfy it.
type Database interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, shopDomain string, id uuid.UUID) (*models.Template, error)
	GetByName(ctx context.Context, shopDomain, name string) (*models.Template, error)
	Update(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, shopDomain string, id uuid.UUID) error
	List(ctx context.Context, shopDomain string, limit, offset int) ([]*models.Template, error)
}

type templateRepo struct {
	db Database
}

func NewTemplateRepo(db Database) TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, template *models.Template) error {
	query := `
		INSERT INTO templates (id, shop_domain, name, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, template.ID, template.ShopDomain, template.Name, template.Body)
	return err
}

func (r *templateRepo) GetByID(ctx context.Context, shopDomain string, id uuid.UUID) (*models.Template, error) {
	template := &models.Template{}
	query := `
		SELECT id, shop_domain, name, body, created_at, updated_at
		FROM templates
		WHERE shop_domain = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, shopDomain, id).Scan(&template.ID, &template.ShopDomain, &template.Name, &template.Body, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return template, nil
}

func (r *templateRepo) GetByName(ctx context.Context, shopDomain, name string) (*models.Template, error) {
	template := &models.Template{}
	query := `
		SELECT id, shop_domain, name, body, created_at, updated_at
		FROM templates
		WHERE shop_domain = $1 AND name = $2
	`
	err := r.db.QueryRow(ctx, query, shopDomain, name).Scan(&template.ID, &template.ShopDomain, &template.Name, &template.Body, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return template, nil
}

func (r *templateRepo) Update(ctx context.Context, template *models.Template) error {
	query := `
		UPDATE templates
		SET name = $1, body = $2, updated_at = NOW()
		WHERE shop_domain = $3 AND id = $4
	`
	tag, err := r.db.Exec(ctx, query, template.Name, template.Body, template.ShopDomain, template.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, shopDomain string, id uuid.UUID) error {
	query := `DELETE FROM templates WHERE shop_domain = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, shopDomain, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *templateRepo) List(ctx context.Context, shopDomain string, limit, offset int) ([]*models.Template, error) {
	query := `
		SELECT id, shop_domain, name, body, created_at, updated_at
		FROM templates
		WHERE shop_domain = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, shopDomain, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		template := &models.Template{}
		if err := rows.Scan(&template.ID, &template.ShopDomain, &template.Name, &template.Body, &template.CreatedAt, &template.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, nil
}
