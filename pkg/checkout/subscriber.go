package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// StreamURL builds the websocket URL for a transaction's push channel.
func StreamURL(baseURL, transactionID, token string) string {
	wsBase := baseURL
	if strings.HasPrefix(wsBase, "http") {
		wsBase = "ws" + strings.TrimPrefix(wsBase, "http")
	}
	return fmt.Sprintf("%s/ws/transactions/%s?token=%s", wsBase, transactionID, url.QueryEscape(token))
}

// Subscriber is a handle on one transaction's push channel. Updates arrive
// on Updates() in the order the backend emitted them; the channel closes
// when the connection drops or Close is called. Close is idempotent and
// safe from any goroutine, so every exit path of the owning view can call
// it.
type Subscriber struct {
	conn    *websocket.Conn
	updates chan StatusDelta
	once    sync.Once
}

// Subscribe dials the push channel for a transaction.
func Subscribe(ctx context.Context, baseURL, transactionID, token string) (*Subscriber, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, StreamURL(baseURL, transactionID, token), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to transaction %s: %w", transactionID, err)
	}

	sub := &Subscriber{
		conn:    conn,
		updates: make(chan StatusDelta, 16),
	}
	go sub.readLoop()
	return sub, nil
}

// Updates returns the ordered stream of status deltas.
func (s *Subscriber) Updates() <-chan StatusDelta {
	return s.updates
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscriber) Close() error {
	s.once.Do(func() {
		// Closing the conn unblocks the read loop, which closes updates.
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = s.conn.Close()
	})
	return nil
}

func (s *Subscriber) readLoop() {
	defer close(s.updates)
	for {
		var delta StatusDelta
		if err := s.conn.ReadJSON(&delta); err != nil {
			return
		}
		s.updates <- delta
	}
}
