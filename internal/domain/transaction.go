package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction statuses. A transaction is created pending; completed and
// failed are terminal, refunded only follows completed.
const (
	TxnStatusPending   = "pending"
	TxnStatusCompleted = "completed"
	TxnStatusFailed    = "failed"
	TxnStatusRefunded  = "refunded"
)

// Transaction represents a payment invoice backed by a mock virtual account.
type Transaction struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Amount        int64      `json:"amount"` // whole IDR, no minor units
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod"`
	Description   string     `json:"description"`
	TemplateID    string     `json:"templateId"`
	OptionID      string     `json:"optionId"`
	VABank        *string    `json:"vaBank,omitempty"`
	VANumber      *string    `json:"vaNumber,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	PaymentURL    string     `json:"paymentUrl"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsTerminal reports whether no further status transition is expected.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TxnStatusCompleted || t.Status == TxnStatusFailed || t.Status == TxnStatusRefunded
}

// CreateInvoiceRequest is the validated input for creating a VA invoice.
type CreateInvoiceRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
	OptionID   string `json:"optionId" validate:"required"`
}

// InvoiceResponse mirrors the create-invoice function's wire shape.
type InvoiceResponse struct {
	TransactionID string     `json:"transaction_id"`
	VABank        *string    `json:"va_bank"`
	VANumber      *string    `json:"va_number"`
	Amount        int64      `json:"amount"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Status        string     `json:"status"`
	PaymentURL    string     `json:"payment_url"`
}

// ToInvoice converts a transaction to its invoice wire shape.
func (t *Transaction) ToInvoice() *InvoiceResponse {
	return &InvoiceResponse{
		TransactionID: t.ID,
		VABank:        t.VABank,
		VANumber:      t.VANumber,
		Amount:        t.Amount,
		ExpiresAt:     t.ExpiresAt,
		Status:        t.Status,
		PaymentURL:    t.PaymentURL,
	}
}

// FulfillRequest marks a mock VA invoice as paid.
type FulfillRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// StatusUpdate is the delta pushed on the txn-{id} channel when a
// transaction's status changes.
type StatusUpdate struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// NewTransactionID generates a new UUID for a transaction.
func NewTransactionID() string {
	return uuid.New().String()
}
