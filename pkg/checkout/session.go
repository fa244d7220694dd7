package checkout

import (
	"context"
	"errors"
	"time"
)

// Routes the session navigates to.
const (
	RouteWebsiteDashboard = "/dashboard/website"
	RouteRegister         = "/daftar"
	RouteDashboard        = "/dashboard"
)

var (
	// ErrNotAuthenticated is returned when Begin runs without a signed-in
	// user; callers must go through the auth flow first.
	ErrNotAuthenticated = errors.New("checkout requires an authenticated user")
	// ErrNothingToPay is returned when the template or option is missing;
	// no invoice call is attempted.
	ErrNothingToPay = errors.New("no template or option selected")
)

// Invoice is the VA invoice held in client memory. The backend row is the
// source of truth; this copy only tracks what checkout needs to render and
// react to.
type Invoice struct {
	TransactionID string     `json:"transaction_id"`
	Bank          string     `json:"va_bank"`
	AccountNumber string     `json:"va_number"`
	Amount        int64      `json:"amount"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Status        string     `json:"status"`
	PaymentURL    string     `json:"payment_url"`
}

// StatusDelta is a status-only update pushed on the txn-{id} channel.
type StatusDelta struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// Transaction statuses as the backend emits them.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// InvoiceAPI is the backend surface the session calls.
type InvoiceAPI interface {
	// CreateInvoice creates or resumes the VA invoice for a selection.
	CreateInvoice(ctx context.Context, templateID, optionID string) (*Invoice, error)
	// GetTransaction fetches the invoice's current state (fallback poll).
	GetTransaction(ctx context.Context, transactionID string) (*Invoice, error)
}

// ActionKind is what the caller should do after applying a delta.
type ActionKind int

const (
	// ActionNone means re-render the current state, nothing else.
	ActionNone ActionKind = iota
	// ActionNavigate means route to Outcome.Route.
	ActionNavigate
	// ActionShowError means surface Outcome.Message inline; the invoice
	// stays retryable.
	ActionShowError
)

// Outcome is the explicit next-action a status transition produces,
// instead of navigating from inside the data callback.
type Outcome struct {
	Kind    ActionKind
	Route   string
	Message string
}

// Session coordinates one checkout view: it owns the in-memory invoice,
// requests it exactly once, merges pushed status deltas, and decides
// navigation on terminal transitions. A session is driven by a single
// goroutine (the UI event loop analogue); it is not safe for concurrent
// use.
type Session struct {
	api   InvoiceAPI
	slots *Slots

	userID     string
	templateID string
	optionID   string

	invoice   *Invoice
	navigated bool
}

// NewSession creates a checkout session for a user's selection.
func NewSession(api InvoiceAPI, slots *Slots, userID, templateID, optionID string) *Session {
	return &Session{
		api:        api,
		slots:      slots,
		userID:     userID,
		templateID: templateID,
		optionID:   optionID,
	}
}

// Begin produces the session's invoice. The first call persists the
// selection and issues one create-invoice call; any later call within the
// same session returns the held invoice without touching the network
// (idempotency is memory-scoped — a fresh process starts over, and the
// backend deduplicates by selection there).
func (s *Session) Begin(ctx context.Context) (*Invoice, error) {
	if s.userID == "" {
		return nil, ErrNotAuthenticated
	}
	if s.templateID == "" || s.optionID == "" {
		return nil, ErrNothingToPay
	}

	if s.invoice != nil {
		return s.invoice, nil
	}

	// Persist the selection before the network call so a reload
	// mid-request can resume.
	s.slots.SetPendingCheckout(PendingCheckout{TemplateID: s.templateID, OptionID: s.optionID})

	inv, err := s.api.CreateInvoice(ctx, s.templateID, s.optionID)
	if err != nil {
		return nil, err
	}
	s.invoice = inv
	return inv, nil
}

// Invoice returns the invoice held in memory, or nil before Begin succeeds.
func (s *Session) Invoice() *Invoice {
	return s.invoice
}

// ApplyDelta merges a pushed status delta into the invoice and returns the
// action to take. Deltas for any transaction other than the held invoice
// are ignored. Only the status field changes; everything else the invoice
// carries is preserved. Applying the same delta twice yields the same
// state and no repeated navigation.
func (s *Session) ApplyDelta(d StatusDelta) Outcome {
	if s.invoice == nil || d.TransactionID != s.invoice.TransactionID {
		return Outcome{Kind: ActionNone}
	}

	s.invoice.Status = d.Status

	switch d.Status {
	case StatusCompleted:
		if s.navigated {
			return Outcome{Kind: ActionNone}
		}
		s.navigated = true
		s.slots.ClearPendingCheckout()
		return Outcome{Kind: ActionNavigate, Route: RouteWebsiteDashboard}
	case StatusFailed:
		return Outcome{Kind: ActionShowError, Message: "Pembayaran gagal. Silakan coba kembali."}
	default:
		return Outcome{Kind: ActionNone}
	}
}

// Watch drives the session until a delta produces an action: it applies
// pushed deltas as they arrive and polls every interval as the fallback
// for a silently dead push channel. It returns the first non-none outcome,
// or a none outcome when ctx ends first. Watch is the goroutine driving
// the session; do not call other session methods while it runs.
func (s *Session) Watch(ctx context.Context, updates <-chan StatusDelta, interval time.Duration) Outcome {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Outcome{Kind: ActionNone}
		case d, ok := <-updates:
			if !ok {
				// Push channel is gone; the poll takes over.
				updates = nil
				continue
			}
			if out := s.ApplyDelta(d); out.Kind != ActionNone {
				return out
			}
		case <-ticker.C:
			out, err := s.Refresh(ctx)
			if err != nil {
				continue
			}
			if out.Kind != ActionNone {
				return out
			}
		}
	}
}

// Refresh polls the invoice's current state and applies any status change
// as if it had been pushed. It is the fallback for a silently dead push
// channel; on fetch errors the held state is left untouched.
func (s *Session) Refresh(ctx context.Context) (Outcome, error) {
	if s.invoice == nil {
		return Outcome{Kind: ActionNone}, nil
	}

	current, err := s.api.GetTransaction(ctx, s.invoice.TransactionID)
	if err != nil {
		return Outcome{Kind: ActionNone}, err
	}
	if current == nil || current.Status == s.invoice.Status {
		return Outcome{Kind: ActionNone}, nil
	}
	return s.ApplyDelta(StatusDelta{TransactionID: s.invoice.TransactionID, Status: current.Status}), nil
}
