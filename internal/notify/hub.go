// Package notify fans discrete events out to live chat sessions. Delivery is
// at-most-once per currently connected subscriber; sessions that are offline
// at publish time simply miss the event.
package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/events"
)

// Envelope is the frame delivered to subscribers.
type Envelope struct {
	Topic   events.Topic `json:"topic"`
	Payload interface{}  `json:"payload"`
}

const subscriberBuffer = 16

// DropRecorder counts events lost to slow subscribers. Satisfied by
// observability.Metrics; nil disables recording.
type DropRecorder interface {
	RecordNotifyDropped()
}

// Hub keeps the registry of live subscribers per conversation.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[string]chan Envelope
	metrics DropRecorder
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger, metrics DropRecorder) *Hub {
	return &Hub{
		subs:    make(map[string]map[string]chan Envelope),
		metrics: metrics,
		logger:  logger,
	}
}

// Subscribe registers a live session for a conversation and returns the
// subscriber id plus the delivery channel. The caller must Unsubscribe when
// the session ends.
func (h *Hub) Subscribe(conversationID string) (string, <-chan Envelope) {
	id := uuid.New().String()
	ch := make(chan Envelope, subscriberBuffer)

	h.mu.Lock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[string]chan Envelope)
	}
	h.subs[conversationID][id] = ch
	h.mu.Unlock()

	h.logger.Debug("session subscribed",
		zap.String("conversation_id", conversationID), zap.String("subscriber_id", id))
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Idempotent.
func (h *Hub) Unsubscribe(conversationID, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conv := h.subs[conversationID]
	if conv == nil {
		return
	}
	if ch, ok := conv[id]; ok {
		delete(conv, id)
		close(ch)
	}
	if len(conv) == 0 {
		delete(h.subs, conversationID)
	}
}

// Publish delivers the envelope to every subscriber of the conversation.
// Fire-and-forget: a subscriber whose buffer is full loses the event rather
// than blocking the publisher.
func (h *Hub) Publish(conversationID string, topic events.Topic, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs[conversationID] {
		select {
		case ch <- Envelope{Topic: topic, Payload: payload}:
		default:
			if h.metrics != nil {
				h.metrics.RecordNotifyDropped()
			}
			h.logger.Warn("dropping event for slow subscriber",
				zap.String("conversation_id", conversationID),
				zap.String("subscriber_id", id),
				zap.String("topic", string(topic)))
		}
	}
}

// Broadcast satisfies the service layer's broadcaster contract for
// single-instance deployments without Redis. The context is unused; local
// delivery never blocks.
func (h *Hub) Broadcast(_ context.Context, conversationID string, topic events.Topic, payload interface{}) {
	h.Publish(conversationID, topic, payload)
}

// SubscriberCount reports how many sessions a conversation has connected.
func (h *Hub) SubscriberCount(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationID])
}
