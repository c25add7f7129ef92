package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/events"
)

const broadcastChannel = "notify:events"

// wireEvent is the cross-server frame. Origin lets a server skip messages it
// published itself, since those already went to its local hub.
type wireEvent struct {
	Origin         string          `json:"origin"`
	ConversationID string          `json:"conversation_id"`
	Topic          events.Topic    `json:"topic"`
	Payload        json.RawMessage `json:"payload"`
}

// RedisBridge relays hub publications between server instances through Redis
// pub/sub, so a session connected to any instance sees the event. Delivery
// stays at-most-once; Redis pub/sub has no backlog for offline servers.
type RedisBridge struct {
	client   *redis.Client
	hub      *Hub
	serverID string
	logger   *zap.Logger
}

// NewRedisBridge constructs the bridge.
func NewRedisBridge(client *redis.Client, hub *Hub, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{
		client:   client,
		hub:      hub,
		serverID: uuid.New().String(),
		logger:   logger,
	}
}

// Start consumes the broadcast channel until ctx is cancelled.
func (b *RedisBridge) Start(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, broadcastChannel)
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				b.relay(msg.Payload)
			}
		}
	}()
	b.logger.Info("notification bridge started", zap.String("server_id", b.serverID))
}

func (b *RedisBridge) relay(raw string) {
	var evt wireEvent
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		b.logger.Warn("discarding malformed broadcast event", zap.Error(err))
		return
	}
	if evt.Origin == b.serverID {
		return
	}
	b.hub.Publish(evt.ConversationID, evt.Topic, evt.Payload)
}

// Broadcast publishes to the local hub and to peer servers.
func (b *RedisBridge) Broadcast(ctx context.Context, conversationID string, topic events.Topic, payload interface{}) {
	b.hub.Publish(conversationID, topic, payload)

	raw, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn("cannot marshal event payload for broadcast", zap.Error(err))
		return
	}
	frame, err := json.Marshal(wireEvent{
		Origin:         b.serverID,
		ConversationID: conversationID,
		Topic:          topic,
		Payload:        raw,
	})
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, broadcastChannel, frame).Err(); err != nil {
		b.logger.Warn("cross-server broadcast failed", zap.Error(err))
	}
}
