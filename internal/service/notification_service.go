package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/events"
)

// Broadcaster delivers an event to the live sessions of a conversation.
// Implemented by the notify hub directly, or by its Redis bridge when the
// service runs on more than one instance.
type Broadcaster interface {
	Broadcast(ctx context.Context, conversationID string, topic events.Topic, payload interface{})
}

// NotificationService forwards domain events to live chat sessions.
type NotificationService struct {
	dispatcher  events.Dispatcher
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, broadcaster Broadcaster, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// RegisterHandlers subscribes to every fan-out topic.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.TopicErpLookupCompleted, n.forward)
	n.dispatcher.Subscribe(events.TopicOrderCreated, n.forward)
	n.dispatcher.Subscribe(events.TopicTicketCreated, n.forward)
	n.dispatcher.Subscribe(events.TopicSessionStatusChanged, n.forward)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	n.logger.Debug("forwarding event to live sessions",
		zap.String("topic", string(event.Topic)),
		zap.String("conversation_id", event.ConversationID))
	n.broadcaster.Broadcast(ctx, event.ConversationID, event.Topic, event.Payload)
	return nil
}
