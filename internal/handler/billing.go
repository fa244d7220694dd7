package handler

import (
	"net/http"

	"github.com/bisnisbaik/backend/internal/contextkeys"
	"github.com/bisnisbaik/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// BillingHandler serves the dashboard's transaction and project reads.
type BillingHandler struct {
	svc *service.InvoiceService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(svc *service.InvoiceService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// ListTransactions handles GET /api/transactions.
func (h *BillingHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(contextkeys.UserID).(string)

	txns, err := h.svc.ListTransactions(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, txns)
}

// GetTransaction handles GET /api/transactions/{id} — the mockpay detail
// fetch and the checkout client's fallback poll.
func (h *BillingHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(contextkeys.UserID).(string)
	id := chi.URLParam(r, "id")

	txn, err := h.svc.GetTransaction(r.Context(), userID, id)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, txn)
}

// ListProjects handles GET /api/projects.
func (h *BillingHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(contextkeys.UserID).(string)

	projects, err := h.svc.ListProjects(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, projects)
}

// Website handles GET /api/projects/website — the latest project plus its
// paid flag for the dashboard Website page.
func (h *BillingHandler) Website(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(contextkeys.UserID).(string)

	resp, err := h.svc.Website(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}
