package repository

import (
	"context"
	"fmt"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthCodeRepository stores single-use auth codes (OAuth callback codes and
// password-reset tokens).
type AuthCodeRepository struct {
	db *pgxpool.Pool
}

// NewAuthCodeRepository creates a new AuthCodeRepository.
func NewAuthCodeRepository(db *pgxpool.Pool) *AuthCodeRepository {
	return &AuthCodeRepository{db: db}
}

// Create inserts a new auth code.
func (r *AuthCodeRepository) Create(ctx context.Context, c *domain.AuthCode) error {
	query := `
		INSERT INTO auth_codes (code, user_id, purpose, expires_at, consumed)
		VALUES ($1, $2, $3, $4, FALSE)
	`
	_, err := r.db.Exec(ctx, query, c.Code, c.UserID, c.Purpose, c.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create auth code: %w", err)
	}
	return nil
}

// Consume atomically marks an unexpired, unused code as consumed and
// returns it. Returns nil if the code is unknown, expired, or already used.
func (r *AuthCodeRepository) Consume(ctx context.Context, code, purpose string) (*domain.AuthCode, error) {
	query := `
		UPDATE auth_codes
		SET consumed = TRUE
		WHERE code = $1 AND purpose = $2 AND consumed = FALSE AND expires_at > NOW()
		RETURNING code, user_id, purpose, expires_at, consumed
	`
	row := r.db.QueryRow(ctx, query, code, purpose)

	var c domain.AuthCode
	err := row.Scan(&c.Code, &c.UserID, &c.Purpose, &c.ExpiresAt, &c.Consumed)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume auth code: %w", err)
	}
	return &c, nil
}

// PurgeExpired deletes codes past their expiry.
func (r *AuthCodeRepository) PurgeExpired(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM auth_codes WHERE expires_at <= NOW()`)
	if err != nil {
		return fmt.Errorf("failed to purge auth codes: %w", err)
	}
	return nil
}
