package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is handled at the HTTP level
	},
}

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.JWTClaims, error)
}

// TransactionFinder looks up a transaction by ID.
type TransactionFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
}

// TransactionStreamHandler serves the txn-{id} push channel over WebSocket.
type TransactionStreamHandler struct {
	hub  *Hub
	auth TokenVerifier
	txns TransactionFinder
}

// NewTransactionStreamHandler creates a new TransactionStreamHandler.
func NewTransactionStreamHandler(hub *Hub, auth TokenVerifier, txns TransactionFinder) *TransactionStreamHandler {
	return &TransactionStreamHandler{hub: hub, auth: auth, txns: txns}
}

// Handle upgrades HTTP to WebSocket and streams status updates for one
// transaction. URL: /ws/transactions/{id}?token=JWT_TOKEN
func (h *TransactionStreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "id")
	if transactionID == "" {
		http.Error(w, "missing transaction id", http.StatusBadRequest)
		return
	}

	// Browsers cannot set headers on WS dials; authenticate via query param.
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.VerifyToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	txn, err := h.txns.FindByID(r.Context(), transactionID)
	if err != nil || txn == nil {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}
	if txn.UserID != claims.Sub {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.hub.Subscribe(transactionID)
	defer cancel()

	// Drain reads so close frames and pings are processed; a read error
	// means the peer is gone.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-disconnected:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}
