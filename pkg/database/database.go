package database

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

func NewPool(dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Database connected successfully")

	return pool, nil
}

// Migrate creates the tables the app needs. Idempotent, run at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
		CREATE TABLE IF NOT EXISTS templates (
			id UUID PRIMARY KEY,
			shop_domain TEXT NOT NULL,
			name TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (shop_domain, name)
		);

		CREATE TABLE IF NOT EXISTS alt_text_updates (
			id UUID PRIMARY KEY,
			shop_domain TEXT NOT NULL,
			product_id TEXT NOT NULL,
			image_id TEXT NOT NULL,
			template_id UUID,
			alt_text TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_templates_shop ON templates (shop_domain);
		CREATE INDEX IF NOT EXISTS idx_alt_text_updates_shop ON alt_text_updates (shop_domain, created_at DESC);
	`
	_, err := pool.Exec(ctx, schema)
	return err
}

func ClosePool() {
	if DB != nil {
		DB.Close()
		log.Println("Database disconnected")
	}
}
