package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/bisnisbaik/backend/internal/service"
	"github.com/bisnisbaik/backend/pkg/payment"
)

const testWebhookSecret = "whsec_test"

type stubTxnStore struct {
	txn      *domain.Transaction
	statuses map[string]string
}

func (s *stubTxnStore) Create(ctx context.Context, t *domain.Transaction) error { return nil }
func (s *stubTxnStore) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if s.txn != nil && s.txn.ID == id {
		return s.txn, nil
	}
	return nil, nil
}
func (s *stubTxnStore) FindLivePending(ctx context.Context, userID, templateID, optionID string) (*domain.Transaction, error) {
	return nil, nil
}
func (s *stubTxnStore) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	return nil, nil
}
func (s *stubTxnStore) HasCompletedForTemplate(ctx context.Context, userID, templateID string) (bool, error) {
	return false, nil
}
func (s *stubTxnStore) UpdateStatus(ctx context.Context, id, status string) error {
	if s.statuses == nil {
		s.statuses = make(map[string]string)
	}
	s.statuses[id] = status
	if s.txn != nil && s.txn.ID == id {
		s.txn.Status = status
	}
	return nil
}

type stubProjectStore struct{}

func (s *stubProjectStore) Create(ctx context.Context, p *domain.Project) error { return nil }
func (s *stubProjectStore) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	return nil, nil
}
func (s *stubProjectStore) LatestByUser(ctx context.Context, userID string) (*domain.Project, error) {
	return nil, nil
}
func (s *stubProjectStore) FindByUserAndTemplate(ctx context.Context, userID, templateID string) (*domain.Project, error) {
	return nil, nil
}

type stubPublisher struct {
	updates []domain.StatusUpdate
}

func (s *stubPublisher) Publish(ctx context.Context, update domain.StatusUpdate) {
	s.updates = append(s.updates, update)
}

func newWebhookHandler(txn *domain.Transaction) (*PaymentHandler, *stubTxnStore, *stubPublisher) {
	txns := &stubTxnStore{txn: txn}
	pub := &stubPublisher{}
	svc := service.NewInvoiceService(txns, &stubProjectStore{}, payment.NewMockGateway(), pub, "http://localhost:8080")
	return NewPaymentHandler(svc, testWebhookSecret), txns, pub
}

func signedWebhookRequest(secret string, body []byte) *http.Request {
	ts := time.Now().Unix()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(body))
	req.Header.Set("X-Gateway-Signature", payment.SignWebhook(secret, ts, body))
	req.Header.Set("X-Gateway-Timestamp", strconv.FormatInt(ts, 10))
	return req
}

func pendingWebhookTxn() *domain.Transaction {
	return &domain.Transaction{
		ID:         "txn-1",
		UserID:     "user-1",
		Status:     domain.TxnStatusPending,
		TemplateID: "restoran-modern",
		OptionID:   "custom-dashboard",
	}
}

func TestWebhookSettlement(t *testing.T) {
	h, txns, pub := newWebhookHandler(pendingWebhookTxn())

	body := []byte(`{"transaction_id":"txn-1","event":"settlement"}`)
	rec := httptest.NewRecorder()
	h.Webhook(rec, signedWebhookRequest(testWebhookSecret, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TxnStatusCompleted, txns.statuses["txn-1"])
	require.Len(t, pub.updates, 1)
	assert.Equal(t, domain.TxnStatusCompleted, pub.updates[0].Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h, txns, _ := newWebhookHandler(pendingWebhookTxn())

	body := []byte(`{"transaction_id":"txn-1","event":"settlement"}`)
	req := signedWebhookRequest("whsec_wrong", body)
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, txns.statuses)
}

func TestWebhookRejectsMissingHeaders(t *testing.T) {
	h, _, _ := newWebhookHandler(pendingWebhookTxn())

	body := []byte(`{"transaction_id":"txn-1","event":"settlement"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRejectsStaleTimestamp(t *testing.T) {
	h, _, _ := newWebhookHandler(pendingWebhookTxn())

	body := []byte(`{"transaction_id":"txn-1","event":"settlement"}`)
	ts := time.Now().Add(-payment.MaxWebhookAge - time.Minute).Unix()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(body))
	req.Header.Set("X-Gateway-Signature", payment.SignWebhook(testWebhookSecret, ts, body))
	req.Header.Set("X-Gateway-Timestamp", strconv.FormatInt(ts, 10))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookFailureEvent(t *testing.T) {
	h, txns, pub := newWebhookHandler(pendingWebhookTxn())

	body := []byte(`{"transaction_id":"txn-1","event":"failure"}`)
	rec := httptest.NewRecorder()
	h.Webhook(rec, signedWebhookRequest(testWebhookSecret, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TxnStatusFailed, txns.statuses["txn-1"])
	require.Len(t, pub.updates, 1)
	assert.Equal(t, domain.TxnStatusFailed, pub.updates[0].Status)
}

func TestWebhookUnknownTransaction(t *testing.T) {
	h, _, _ := newWebhookHandler(nil)

	body := []byte(`{"transaction_id":"txn-missing","event":"settlement"}`)
	rec := httptest.NewRecorder()
	h.Webhook(rec, signedWebhookRequest(testWebhookSecret, body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookRejectsMissingTransactionID(t *testing.T) {
	h, _, _ := newWebhookHandler(nil)

	body := []byte(`{"event":"settlement"}`)
	rec := httptest.NewRecorder()
	h.Webhook(rec, signedWebhookRequest(testWebhookSecret, body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
