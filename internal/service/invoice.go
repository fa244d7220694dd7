package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/bisnisbaik/backend/pkg/payment"
	"github.com/go-playground/validator/v10"
)

// TransactionStore is the persistence surface InvoiceService needs.
type TransactionStore interface {
	Create(ctx context.Context, t *domain.Transaction) error
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindLivePending(ctx context.Context, userID, templateID, optionID string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error)
	HasCompletedForTemplate(ctx context.Context, userID, templateID string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// ProjectStore is the persistence surface for website entitlements.
type ProjectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Project, error)
	LatestByUser(ctx context.Context, userID string) (*domain.Project, error)
	FindByUserAndTemplate(ctx context.Context, userID, templateID string) (*domain.Project, error)
}

// StatusPublisher pushes a status delta onto the txn-{id} channel.
type StatusPublisher interface {
	Publish(ctx context.Context, update domain.StatusUpdate)
}

// InvoiceService implements the create-invoice and fulfill-invoice
// functions plus the billing/dashboard reads built on them.
type InvoiceService struct {
	txns          TransactionStore
	projects      ProjectStore
	gateway       payment.Gateway
	publisher     StatusPublisher
	publicBaseURL string
	validate      *validator.Validate
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(txns TransactionStore, projects ProjectStore, gateway payment.Gateway, publisher StatusPublisher, publicBaseURL string) *InvoiceService {
	return &InvoiceService{
		txns:          txns,
		projects:      projects,
		gateway:       gateway,
		publisher:     publisher,
		publicBaseURL: publicBaseURL,
		validate:      validator.New(),
	}
}

// CreateInvoice creates (or resumes) the mock VA invoice for a user's
// template-option selection. A live pending transaction for the same
// (user, template, option) triple is returned as-is, so page reloads and
// duplicate submits never produce a second invoice.
func (s *InvoiceService) CreateInvoice(ctx context.Context, userID string, req *domain.CreateInvoiceRequest) (*domain.InvoiceResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	template := domain.GetTemplate(req.TemplateID)
	if template == nil {
		return nil, domain.ErrBadRequest("unknown template")
	}
	option := domain.GetTemplateOption(req.OptionID)
	if option == nil {
		return nil, domain.ErrBadRequest("unknown template option")
	}

	existing, err := s.txns.FindLivePending(ctx, userID, req.TemplateID, req.OptionID)
	if err != nil {
		return nil, domain.ErrInternal("failed to look up pending invoice", err)
	}
	if existing != nil {
		return existing.ToInvoice(), nil
	}

	id := domain.NewTransactionID()
	va, err := s.gateway.IssueVA(userID, id, option.PriceIDR)
	if err != nil {
		return nil, domain.ErrInternal("failed to issue virtual account", err)
	}

	now := time.Now()
	txn := &domain.Transaction{
		ID:            id,
		UserID:        userID,
		Amount:        option.PriceIDR,
		Currency:      "IDR",
		Status:        domain.TxnStatusPending,
		PaymentMethod: "virtual-account",
		Description:   fmt.Sprintf("%s — %s", template.Name, option.Name),
		TemplateID:    req.TemplateID,
		OptionID:      req.OptionID,
		VABank:        &va.Bank,
		VANumber:      &va.AccountNumber,
		ExpiresAt:     &va.ExpiresAt,
		PaymentURL:    fmt.Sprintf("%s/mockpay?txn_id=%s", s.publicBaseURL, id),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, domain.ErrInternal("failed to create invoice", err)
	}
	return txn.ToInvoice(), nil
}

// Fulfill marks a pending invoice paid on behalf of its owner (the mockpay
// "Tandai Lunas" action). Completion creates the website entitlement and
// publishes the status delta.
func (s *InvoiceService) Fulfill(ctx context.Context, userID, transactionID string) error {
	txn, err := s.findOwned(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	return s.complete(ctx, txn)
}

// Settle applies a gateway webhook event ("settlement" or "failure") to a
// transaction. The caller has already authenticated the delivery.
func (s *InvoiceService) Settle(ctx context.Context, transactionID, event string) error {
	txn, err := s.txns.FindByID(ctx, transactionID)
	if err != nil {
		return domain.ErrInternal("failed to find transaction", err)
	}
	if txn == nil {
		return domain.ErrNotFound("transaction not found")
	}

	switch event {
	case "settlement":
		return s.complete(ctx, txn)
	case "failure":
		if txn.IsTerminal() {
			return domain.ErrConflict("transaction already settled")
		}
		if err := s.txns.UpdateStatus(ctx, txn.ID, domain.TxnStatusFailed); err != nil {
			return domain.ErrInternal("failed to fail transaction", err)
		}
		s.publisher.Publish(ctx, domain.StatusUpdate{TransactionID: txn.ID, Status: domain.TxnStatusFailed})
		return nil
	default:
		return domain.ErrBadRequest("unknown webhook event")
	}
}

// Refund transitions a completed transaction to refunded (admin only,
// enforced by the router).
func (s *InvoiceService) Refund(ctx context.Context, transactionID string) error {
	txn, err := s.txns.FindByID(ctx, transactionID)
	if err != nil {
		return domain.ErrInternal("failed to find transaction", err)
	}
	if txn == nil {
		return domain.ErrNotFound("transaction not found")
	}
	if txn.Status != domain.TxnStatusCompleted {
		return domain.ErrConflict("only completed transactions can be refunded")
	}

	if err := s.txns.UpdateStatus(ctx, txn.ID, domain.TxnStatusRefunded); err != nil {
		return domain.ErrInternal("failed to refund transaction", err)
	}
	s.publisher.Publish(ctx, domain.StatusUpdate{TransactionID: txn.ID, Status: domain.TxnStatusRefunded})
	return nil
}

// GetTransaction returns one of the user's transactions (the mockpay
// detail fetch and the client's fallback poll).
func (s *InvoiceService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	return s.findOwned(ctx, userID, transactionID)
}

// ListTransactions returns the user's billing history, newest first.
func (s *InvoiceService) ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	txns, err := s.txns.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to list transactions", err)
	}
	return txns, nil
}

// ListProjects returns the user's website projects.
func (s *InvoiceService) ListProjects(ctx context.Context, userID string) ([]*domain.Project, error) {
	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to list projects", err)
	}
	return projects, nil
}

// Website returns the user's latest project and whether it is paid for.
func (s *InvoiceService) Website(ctx context.Context, userID string) (*domain.WebsiteResponse, error) {
	project, err := s.projects.LatestByUser(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load project", err)
	}
	if project == nil {
		return &domain.WebsiteResponse{}, nil
	}

	paid, err := s.txns.HasCompletedForTemplate(ctx, userID, project.TemplateID)
	if err != nil {
		return nil, domain.ErrInternal("failed to check payment", err)
	}
	return &domain.WebsiteResponse{Project: project, Paid: paid}, nil
}

func (s *InvoiceService) findOwned(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txns.FindByID(ctx, transactionID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find transaction", err)
	}
	// A foreign transaction reads as absent, not forbidden.
	if txn == nil || txn.UserID != userID {
		return nil, domain.ErrNotFound("transaction not found")
	}
	return txn, nil
}

func (s *InvoiceService) complete(ctx context.Context, txn *domain.Transaction) error {
	if txn.Status == domain.TxnStatusCompleted {
		// Duplicate fulfillment is harmless.
		return nil
	}
	if txn.IsTerminal() {
		return domain.ErrConflict("transaction already settled")
	}

	if err := s.txns.UpdateStatus(ctx, txn.ID, domain.TxnStatusCompleted); err != nil {
		return domain.ErrInternal("failed to complete transaction", err)
	}

	if err := s.ensureEntitlement(ctx, txn); err != nil {
		// The payment is already recorded; log and continue so the user
		// isn't charged twice over a project insert hiccup.
		log.Printf("failed to create entitlement for txn %s: %v", txn.ID, err)
	}

	s.publisher.Publish(ctx, domain.StatusUpdate{TransactionID: txn.ID, Status: domain.TxnStatusCompleted})
	return nil
}

func (s *InvoiceService) ensureEntitlement(ctx context.Context, txn *domain.Transaction) error {
	existing, err := s.projects.FindByUserAndTemplate(ctx, txn.UserID, txn.TemplateID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	template := domain.GetTemplate(txn.TemplateID)
	name := txn.TemplateID
	description := ""
	if template != nil {
		name = template.Name
		description = template.Category
	}

	now := time.Now()
	return s.projects.Create(ctx, &domain.Project{
		ID:          domain.NewProjectID(),
		UserID:      txn.UserID,
		Name:        name,
		Description: description,
		TemplateID:  txn.TemplateID,
		Status:      domain.ProjectStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}
