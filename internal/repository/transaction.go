package repository

import (
	"context"
	"fmt"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository handles database operations for VA transactions.
type TransactionRepository struct {
	db *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const txnColumns = `id, user_id, amount, currency, status, payment_method,
	description, template_id, option_id, va_bank, va_number, expires_at,
	payment_url, created_at, updated_at`

func scanTxn(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Currency, &t.Status, &t.PaymentMethod,
		&t.Description, &t.TemplateID, &t.OptionID, &t.VABank, &t.VANumber,
		&t.ExpiresAt, &t.PaymentURL, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &t, nil
}

// Create inserts a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, amount, currency, status, payment_method,
			description, template_id, option_id, va_bank, va_number, expires_at,
			payment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.UserID, t.Amount, t.Currency, t.Status, t.PaymentMethod,
		t.Description, t.TemplateID, t.OptionID, t.VABank, t.VANumber,
		t.ExpiresAt, t.PaymentURL, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindByID returns a transaction by ID.
func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions WHERE id = $1`
	return scanTxn(r.db.QueryRow(ctx, query, id))
}

// FindLivePending returns the newest pending, unexpired transaction for a
// (user, template, option) triple, if any. This is what makes invoice
// creation idempotent on the server side.
func (r *TransactionRepository) FindLivePending(ctx context.Context, userID, templateID, optionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + txnColumns + `
		FROM transactions
		WHERE user_id = $1 AND template_id = $2 AND option_id = $3
			AND status = 'pending'
			AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at DESC LIMIT 1
	`
	return scanTxn(r.db.QueryRow(ctx, query, userID, templateID, optionID))
}

// ListByUser returns all of a user's transactions, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// HasCompletedForTemplate reports whether the user has a completed purchase
// for the given template.
func (r *TransactionRepository) HasCompletedForTemplate(ctx context.Context, userID, templateID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND template_id = $2 AND status = 'completed'
		)
	`
	var paid bool
	err := r.db.QueryRow(ctx, query, userID, templateID).Scan(&paid)
	if err != nil {
		return false, fmt.Errorf("failed to check completed transaction: %w", err)
	}
	return paid, nil
}

// UpdateStatus transitions a transaction's status.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	return nil
}
