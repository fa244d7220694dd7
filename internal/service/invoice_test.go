package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/bisnisbaik/backend/pkg/payment"
)

type mockTxnStore struct {
	byID        map[string]*domain.Transaction
	livePending *domain.Transaction
	created     []*domain.Transaction
	statuses    map[string]string
	completed   bool
}

func newMockTxnStore() *mockTxnStore {
	return &mockTxnStore{
		byID:     make(map[string]*domain.Transaction),
		statuses: make(map[string]string),
	}
}

func (m *mockTxnStore) Create(ctx context.Context, t *domain.Transaction) error {
	m.created = append(m.created, t)
	m.byID[t.ID] = t
	return nil
}

func (m *mockTxnStore) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return m.byID[id], nil
}

func (m *mockTxnStore) FindLivePending(ctx context.Context, userID, templateID, optionID string) (*domain.Transaction, error) {
	return m.livePending, nil
}

func (m *mockTxnStore) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range m.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTxnStore) HasCompletedForTemplate(ctx context.Context, userID, templateID string) (bool, error) {
	return m.completed, nil
}

func (m *mockTxnStore) UpdateStatus(ctx context.Context, id, status string) error {
	m.statuses[id] = status
	if t, ok := m.byID[id]; ok {
		t.Status = status
	}
	return nil
}

type mockProjectStore struct {
	created  []*domain.Project
	existing *domain.Project
	latest   *domain.Project
	list     []*domain.Project
}

func (m *mockProjectStore) Create(ctx context.Context, p *domain.Project) error {
	m.created = append(m.created, p)
	return nil
}

func (m *mockProjectStore) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	return m.list, nil
}

func (m *mockProjectStore) LatestByUser(ctx context.Context, userID string) (*domain.Project, error) {
	return m.latest, nil
}

func (m *mockProjectStore) FindByUserAndTemplate(ctx context.Context, userID, templateID string) (*domain.Project, error) {
	return m.existing, nil
}

type mockPublisher struct {
	updates []domain.StatusUpdate
}

func (m *mockPublisher) Publish(ctx context.Context, update domain.StatusUpdate) {
	m.updates = append(m.updates, update)
}

func newTestInvoiceService() (*InvoiceService, *mockTxnStore, *mockProjectStore, *mockPublisher) {
	txns := newMockTxnStore()
	projects := &mockProjectStore{}
	pub := &mockPublisher{}
	svc := NewInvoiceService(txns, projects, payment.NewMockGateway(), pub, "http://localhost:8080")
	return svc, txns, projects, pub
}

func pendingTxn(id, userID string) *domain.Transaction {
	bank := "Permata VA"
	number := "8881234567890123"
	exp := time.Now().Add(24 * time.Hour)
	return &domain.Transaction{
		ID:         id,
		UserID:     userID,
		Amount:     99000,
		Currency:   "IDR",
		Status:     domain.TxnStatusPending,
		TemplateID: "restoran-modern",
		OptionID:   "custom-dashboard",
		VABank:     &bank,
		VANumber:   &number,
		ExpiresAt:  &exp,
	}
}

func TestCreateInvoiceIssuesVA(t *testing.T) {
	svc, txns, _, _ := newTestInvoiceService()

	inv, err := svc.CreateInvoice(context.Background(), "user-1", &domain.CreateInvoiceRequest{
		TemplateID: "restoran-modern",
		OptionID:   "custom-dashboard",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, inv.TransactionID)
	require.NotNil(t, inv.VABank)
	require.NotNil(t, inv.VANumber)
	assert.Len(t, *inv.VANumber, 16)
	assert.Equal(t, int64(99000), inv.Amount)
	assert.Equal(t, domain.TxnStatusPending, inv.Status)
	assert.Contains(t, inv.PaymentURL, "/mockpay?txn_id="+inv.TransactionID)
	require.NotNil(t, inv.ExpiresAt)
	assert.True(t, inv.ExpiresAt.After(time.Now()))

	require.Len(t, txns.created, 1)
	assert.Equal(t, "IDR", txns.created[0].Currency)
	assert.Equal(t, "user-1", txns.created[0].UserID)
}

func TestCreateInvoiceResumesLivePending(t *testing.T) {
	svc, txns, _, _ := newTestInvoiceService()
	txns.livePending = pendingTxn("txn-live", "user-1")

	inv, err := svc.CreateInvoice(context.Background(), "user-1", &domain.CreateInvoiceRequest{
		TemplateID: "restoran-modern",
		OptionID:   "custom-dashboard",
	})
	require.NoError(t, err)

	assert.Equal(t, "txn-live", inv.TransactionID)
	assert.Empty(t, txns.created, "no new row while a live pending invoice exists")
}

func TestCreateInvoicePricesByOption(t *testing.T) {
	cases := map[string]int64{
		"custom-dashboard": 99000,
		"wordpress":        149000,
		"html-export":      299000,
	}
	for optionID, want := range cases {
		svc, _, _, _ := newTestInvoiceService()
		inv, err := svc.CreateInvoice(context.Background(), "user-1", &domain.CreateInvoiceRequest{
			TemplateID: "kafe-kopi",
			OptionID:   optionID,
		})
		require.NoError(t, err, optionID)
		assert.Equal(t, want, inv.Amount, optionID)
	}
}

func TestCreateInvoiceRejectsUnknownSelection(t *testing.T) {
	svc, _, _, _ := newTestInvoiceService()

	_, err := svc.CreateInvoice(context.Background(), "user-1", &domain.CreateInvoiceRequest{
		TemplateID: "no-such-template",
		OptionID:   "custom-dashboard",
	})
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	_, err = svc.CreateInvoice(context.Background(), "user-1", &domain.CreateInvoiceRequest{
		TemplateID: "restoran-modern",
		OptionID:   "no-such-option",
	})
	appErr, ok = domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestCreateInvoiceRejectsMissingFields(t *testing.T) {
	svc, _, _, _ := newTestInvoiceService()

	_, err := svc.CreateInvoice(context.Background(), "user-1", &domain.CreateInvoiceRequest{})

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
}

func TestFulfillCompletesAndPublishes(t *testing.T) {
	svc, txns, projects, pub := newTestInvoiceService()
	txn := pendingTxn("txn-1", "user-1")
	txns.byID["txn-1"] = txn

	err := svc.Fulfill(context.Background(), "user-1", "txn-1")
	require.NoError(t, err)

	assert.Equal(t, domain.TxnStatusCompleted, txns.statuses["txn-1"])

	require.Len(t, projects.created, 1)
	assert.Equal(t, "user-1", projects.created[0].UserID)
	assert.Equal(t, "restoran-modern", projects.created[0].TemplateID)
	assert.Equal(t, domain.ProjectStatusDraft, projects.created[0].Status)

	require.Len(t, pub.updates, 1)
	assert.Equal(t, domain.StatusUpdate{TransactionID: "txn-1", Status: domain.TxnStatusCompleted}, pub.updates[0])
}

func TestFulfillForeignTransactionReadsAsAbsent(t *testing.T) {
	svc, txns, _, pub := newTestInvoiceService()
	txns.byID["txn-1"] = pendingTxn("txn-1", "user-owner")

	err := svc.Fulfill(context.Background(), "user-intruder", "txn-1")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Empty(t, pub.updates)
}

func TestFulfillDuplicateIsNoOp(t *testing.T) {
	svc, txns, projects, pub := newTestInvoiceService()
	txn := pendingTxn("txn-1", "user-1")
	txns.byID["txn-1"] = txn

	require.NoError(t, svc.Fulfill(context.Background(), "user-1", "txn-1"))
	projects.existing = projects.created[0]
	require.NoError(t, svc.Fulfill(context.Background(), "user-1", "txn-1"))

	assert.Len(t, pub.updates, 1, "duplicate fulfillment publishes nothing")
	assert.Len(t, projects.created, 1)
}

func TestFulfillRefundedConflicts(t *testing.T) {
	svc, txns, _, _ := newTestInvoiceService()
	txn := pendingTxn("txn-1", "user-1")
	txn.Status = domain.TxnStatusRefunded
	txns.byID["txn-1"] = txn

	err := svc.Fulfill(context.Background(), "user-1", "txn-1")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Code)
}

func TestSettleSettlementEvent(t *testing.T) {
	svc, txns, _, pub := newTestInvoiceService()
	txns.byID["txn-1"] = pendingTxn("txn-1", "user-1")

	err := svc.Settle(context.Background(), "txn-1", "settlement")
	require.NoError(t, err)

	assert.Equal(t, domain.TxnStatusCompleted, txns.statuses["txn-1"])
	require.Len(t, pub.updates, 1)
	assert.Equal(t, domain.TxnStatusCompleted, pub.updates[0].Status)
}

func TestSettleFailureEvent(t *testing.T) {
	svc, txns, projects, pub := newTestInvoiceService()
	txns.byID["txn-1"] = pendingTxn("txn-1", "user-1")

	err := svc.Settle(context.Background(), "txn-1", "failure")
	require.NoError(t, err)

	assert.Equal(t, domain.TxnStatusFailed, txns.statuses["txn-1"])
	assert.Empty(t, projects.created, "failed payment grants no entitlement")
	require.Len(t, pub.updates, 1)
	assert.Equal(t, domain.TxnStatusFailed, pub.updates[0].Status)
}

func TestSettleUnknownEvent(t *testing.T) {
	svc, txns, _, _ := newTestInvoiceService()
	txns.byID["txn-1"] = pendingTxn("txn-1", "user-1")

	err := svc.Settle(context.Background(), "txn-1", "chargeback")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestSettleUnknownTransaction(t *testing.T) {
	svc, _, _, _ := newTestInvoiceService()

	err := svc.Settle(context.Background(), "txn-missing", "settlement")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestRefundRequiresCompleted(t *testing.T) {
	svc, txns, _, pub := newTestInvoiceService()
	txns.byID["txn-1"] = pendingTxn("txn-1", "user-1")

	err := svc.Refund(context.Background(), "txn-1")
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Code)

	txns.byID["txn-1"].Status = domain.TxnStatusCompleted
	require.NoError(t, svc.Refund(context.Background(), "txn-1"))

	assert.Equal(t, domain.TxnStatusRefunded, txns.statuses["txn-1"])
	require.Len(t, pub.updates, 1)
	assert.Equal(t, domain.TxnStatusRefunded, pub.updates[0].Status)
}

func TestWebsitePaidFlag(t *testing.T) {
	svc, txns, projects, _ := newTestInvoiceService()
	projects.latest = &domain.Project{
		ID:         "proj-1",
		UserID:     "user-1",
		TemplateID: "restoran-modern",
		Status:     domain.ProjectStatusDraft,
	}

	resp, err := svc.Website(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, resp.Paid)

	txns.completed = true
	resp, err = svc.Website(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, resp.Paid)
	assert.Equal(t, "proj-1", resp.Project.ID)
}

func TestWebsiteWithoutProject(t *testing.T) {
	svc, _, _, _ := newTestInvoiceService()

	resp, err := svc.Website(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Nil(t, resp.Project)
	assert.False(t, resp.Paid)
}
