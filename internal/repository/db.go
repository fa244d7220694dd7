package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id                TEXT PRIMARY KEY,
			email             TEXT NOT NULL UNIQUE,
			password          TEXT NOT NULL,
			full_name         TEXT NOT NULL,
			phone             TEXT NOT NULL DEFAULT '',
			avatar_url        TEXT NOT NULL DEFAULT '',
			role              TEXT NOT NULL DEFAULT 'user',
			is_verified       BOOLEAN NOT NULL DEFAULT FALSE,
			subscription_tier TEXT NOT NULL DEFAULT 'free',
			last_login        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

		CREATE TABLE IF NOT EXISTS transactions (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			amount         BIGINT NOT NULL,
			currency       TEXT NOT NULL DEFAULT 'IDR',
			status         TEXT NOT NULL DEFAULT 'pending',
			payment_method TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			template_id    TEXT NOT NULL,
			option_id      TEXT NOT NULL,
			va_bank        TEXT,
			va_number      TEXT,
			expires_at     TIMESTAMPTZ,
			payment_url    TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
		CREATE INDEX IF NOT EXISTS idx_transactions_pending
			ON transactions(user_id, template_id, option_id) WHERE status = 'pending';

		CREATE TABLE IF NOT EXISTS user_projects (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			name           TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			template_id    TEXT NOT NULL,
			customizations JSONB NOT NULL DEFAULT '{}',
			status         TEXT NOT NULL DEFAULT 'draft',
			published_url  TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_user_projects_user_id ON user_projects(user_id);

		CREATE TABLE IF NOT EXISTS auth_codes (
			code       TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			purpose    TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			consumed   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
