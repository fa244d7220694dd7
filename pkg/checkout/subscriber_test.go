package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamURL(t *testing.T) {
	assert.Equal(t,
		"ws://localhost:8080/ws/transactions/txn-1?token=abc",
		StreamURL("http://localhost:8080", "txn-1", "abc"))
	assert.Equal(t,
		"wss://api.bisnisbaik.id/ws/transactions/txn-1?token=a%2Bb",
		StreamURL("https://api.bisnisbaik.id", "txn-1", "a+b"))
}

// newDeltaServer returns the test server plus a function that drops all
// upgraded connections. httptest's CloseClientConnections stops tracking
// hijacked connections, so it cannot sever websocket sessions itself.
func newDeltaServer(t *testing.T, deltas []StatusDelta) (*httptest.Server, func()) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	var mu sync.Mutex
	var conns []*websocket.Conn
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		conns = append(conns, conn)
		mu.Unlock()
		defer conn.Close()
		for _, d := range deltas {
			if err := conn.WriteJSON(d); err != nil {
				return
			}
		}
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	dropConns := func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	}
	return srv, dropConns
}

func TestSubscriberReceivesInOrder(t *testing.T) {
	srv, _ := newDeltaServer(t, []StatusDelta{
		{TransactionID: "txn-1", Status: StatusPending},
		{TransactionID: "txn-1", Status: StatusCompleted},
	})

	base := "ws" + strings.TrimPrefix(srv.URL, "http")
	sub, err := Subscribe(context.Background(), base, "txn-1", "token")
	require.NoError(t, err)
	defer sub.Close()

	first := <-sub.Updates()
	second := <-sub.Updates()
	assert.Equal(t, StatusPending, first.Status)
	assert.Equal(t, StatusCompleted, second.Status)
}

func TestSubscriberCloseIsIdempotent(t *testing.T) {
	srv, _ := newDeltaServer(t, nil)

	base := "ws" + strings.TrimPrefix(srv.URL, "http")
	sub, err := Subscribe(context.Background(), base, "txn-1", "token")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	select {
	case _, open := <-sub.Updates():
		assert.False(t, open, "updates channel closes after Close")
	case <-time.After(time.Second):
		t.Fatal("updates channel did not close")
	}
}

func TestSubscriberChannelClosesWhenServerDrops(t *testing.T) {
	srv, dropConns := newDeltaServer(t, []StatusDelta{{TransactionID: "txn-1", Status: StatusCompleted}})

	base := "ws" + strings.TrimPrefix(srv.URL, "http")
	sub, err := Subscribe(context.Background(), base, "txn-1", "token")
	require.NoError(t, err)
	defer sub.Close()

	<-sub.Updates()
	dropConns()

	select {
	case _, open := <-sub.Updates():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("updates channel did not close on disconnect")
	}
}

func TestSubscribeDialFailure(t *testing.T) {
	ctx, cancelGroup := context.WithTimeout(context.Background(), time.Second)
	defer cancelGroup()

	_, err := Subscribe(ctx, "ws://127.0.0.1:1", "txn-1", "token")
	assert.Error(t, err)
}
