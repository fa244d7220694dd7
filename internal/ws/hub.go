package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "bisnisbaik:txn-updates"

// Topic returns the push-channel topic for a transaction.
func Topic(transactionID string) string {
	return "txn-" + transactionID
}

// Hub fans transaction status updates out to subscribed connections.
// Updates published to a topic are delivered to each subscriber in
// publication order. An optional redis client bridges publications across
// server instances.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[chan domain.StatusUpdate]struct{}

	instanceID string
	rdb        *redis.Client
}

type bridgeEnvelope struct {
	Origin string              `json:"origin"`
	Update domain.StatusUpdate `json:"update"`
}

// NewHub creates a Hub. rdb may be nil for single-instance deployments.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		topics:     make(map[string]map[chan domain.StatusUpdate]struct{}),
		instanceID: uuid.New().String(),
		rdb:        rdb,
	}
}

// Start begins consuming bridged updates from redis. No-op without redis.
func (h *Hub) Start(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	sub := h.rdb.Subscribe(ctx, redisChannel)
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var env bridgeEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("hub: bad bridge payload: %v", err)
					continue
				}
				// Our own publications were already broadcast locally.
				if env.Origin == h.instanceID {
					continue
				}
				h.broadcast(env.Update)
			}
		}
	}()
}

// Subscribe registers a subscriber on the transaction's topic. The returned
// cancel function is idempotent and must be called on every exit path.
func (h *Hub) Subscribe(transactionID string) (<-chan domain.StatusUpdate, func()) {
	topic := Topic(transactionID)
	ch := make(chan domain.StatusUpdate, 16)

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan domain.StatusUpdate]struct{})
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.topics[topic]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.topics, topic)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers a status update to local subscribers and, when bridged,
// to the other instances.
func (h *Hub) Publish(ctx context.Context, update domain.StatusUpdate) {
	h.broadcast(update)

	if h.rdb != nil {
		payload, err := json.Marshal(bridgeEnvelope{Origin: h.instanceID, Update: update})
		if err != nil {
			log.Printf("hub: failed to encode bridge payload: %v", err)
			return
		}
		if err := h.rdb.Publish(ctx, redisChannel, payload).Err(); err != nil {
			log.Printf("hub: redis publish failed: %v", err)
		}
	}
}

func (h *Hub) broadcast(update domain.StatusUpdate) {
	topic := Topic(update.TransactionID)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.topics[topic] {
		select {
		case ch <- update:
		default:
			// Subscriber is not draining; dropping beats blocking the
			// publisher. The client reconciles via its fallback poll.
			log.Printf("hub: dropping update for slow subscriber on %s", topic)
		}
	}
}

// SubscriberCount returns the number of subscribers on a topic.
func (h *Hub) SubscriberCount(transactionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[Topic(transactionID)])
}
