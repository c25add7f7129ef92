package handlers

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/api/dto"
	"github.com/chatventas/commerce-service/internal/auth"
	"github.com/chatventas/commerce-service/internal/domain"
	"github.com/chatventas/commerce-service/internal/events"
	"github.com/chatventas/commerce-service/internal/notify"
	"github.com/chatventas/commerce-service/internal/service"
	apperrors "github.com/chatventas/commerce-service/pkg/util/errorutil"
)

// ChatHandler receives inbound customer messages and serves live sessions.
type ChatHandler struct {
	chat       *service.ChatService
	hub        *notify.Hub
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewChatHandler constructs handler.
func NewChatHandler(chat *service.ChatService, hub *notify.Hub, tokens *auth.TokenManager,
	dispatcher events.Dispatcher, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, hub: hub, tokens: tokens, dispatcher: dispatcher, logger: logger}
}

// PostMessage POST /chat/messages. This is the chat transport's inbound hook:
// one customer message in, one routed turn out.
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	var req dto.InboundMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CustomerPhone == "" {
		return apperrors.NewValidationError("customer_phone required", nil)
	}

	result, err := h.chat.HandleInbound(c.UserContext(), service.InboundMessage{
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		Body:          req.Body,
	})
	if err != nil {
		return err
	}

	contextBlock, err := result.Decision.MarshalContext()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{
		"data": dto.NewTurnResponse(result.Conversation.ID, result.Decision, string(contextBlock)),
	})
}

// History GET /chat/messages. The conversation comes from the session token.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	claims, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	limit := c.QueryInt("limit", 50)

	messages, err := h.chat.History(c.UserContext(), claims.ConversationID, limit)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, dto.NewMessageResponse(m))
	}
	return c.JSON(fiber.Map{"data": items})
}

// WebsocketUpgrade guards GET /ws. The token travels in the query string
// because browsers cannot set headers on websocket dials.
func (h *ChatHandler) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	claims, err := h.tokens.ParseSessionToken(c.Query("token"))
	if err != nil {
		return apperrors.NewUnauthorized("invalid session token")
	}
	c.Locals("conversation_id", claims.ConversationID)
	return c.Next()
}

// Websocket serves one live session: every hub envelope for the conversation
// is written to the socket as JSON until either side hangs up.
func (h *ChatHandler) Websocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		conversationID, _ := conn.Locals("conversation_id").(string)
		if conversationID == "" {
			_ = conn.Close()
			return
		}

		subscriberID, envelopes := h.hub.Subscribe(conversationID)
		defer func() {
			h.hub.Unsubscribe(conversationID, subscriberID)
			h.publishSessionStatus(conversationID, subscriberID, domain.SessionStatusDisconnected)
		}()

		h.logger.Info("session connected",
			zap.String("conversation_id", conversationID),
			zap.String("subscriber_id", subscriberID))
		h.publishSessionStatus(conversationID, subscriberID, domain.SessionStatusConnected)

		// Reader goroutine: the client sends nothing meaningful, but the
		// read loop is what notices a closed peer.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case envelope, ok := <-envelopes:
				if !ok {
					return
				}
				if err := conn.WriteJSON(envelope); err != nil {
					return
				}
			}
		}
	})
}

func (h *ChatHandler) publishSessionStatus(conversationID, sessionID string, status domain.SessionStatus) {
	if h.dispatcher == nil {
		return
	}
	_ = h.dispatcher.Publish(context.Background(), events.Event{
		ID:             uuid.New().String(),
		Topic:          events.TopicSessionStatusChanged,
		ConversationID: conversationID,
		Timestamp:      time.Now(),
		Payload: events.SessionStatusChangedPayload{
			SessionID: sessionID,
			Status:    status,
		},
	})
}
