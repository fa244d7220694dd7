package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/bisnisbaik/backend/internal/contextkeys"
	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/bisnisbaik/backend/internal/service"
	"github.com/bisnisbaik/backend/pkg/payment"
	"github.com/go-chi/chi/v5"
)

// PaymentHandler handles invoice creation, fulfillment, and the gateway
// webhook.
type PaymentHandler struct {
	svc           *service.InvoiceService
	webhookSecret string
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc *service.InvoiceService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{svc: svc, webhookSecret: webhookSecret}
}

// CreateInvoice handles POST /api/payment/invoice (the create-invoice
// function).
func (h *PaymentHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextkeys.UserID).(string)
	if !ok || userID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.CreateInvoiceRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.svc.CreateInvoice(r.Context(), userID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Fulfill handles POST /api/payment/fulfill (the mockpay "Tandai Lunas"
// action; the fulfill-invoice function).
func (h *PaymentHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextkeys.UserID).(string)
	if !ok || userID == "" {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.FulfillRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.TransactionID == "" {
		Error(w, domain.ErrBadRequest("transaction_id is required"))
		return
	}

	if err := h.svc.Fulfill(r.Context(), userID, req.TransactionID); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// webhookPayload is the gateway notification body.
type webhookPayload struct {
	TransactionID string `json:"transaction_id"`
	Event         string `json:"event"` // settlement | failure
}

// Webhook handles POST /api/payment/webhook. Deliveries authenticate with
// an HMAC signature over "{timestamp}.{body}" plus a replay window.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Gateway-Signature")
	timestamp := r.Header.Get("X-Gateway-Timestamp")
	if !payment.VerifyWebhook(h.webhookSecret, signature, timestamp, body, time.Now()) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if payload.TransactionID == "" {
		http.Error(w, "missing transaction_id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Settle(r.Context(), payload.TransactionID, payload.Event); err != nil {
		Error(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Refund handles POST /api/payment/{id}/refund (ADMIN ONLY — gated in router).
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Refund(r.Context(), id); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
