package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chatventas/commerce-service/internal/api/dto"
	"github.com/chatventas/commerce-service/internal/auth"
	"github.com/chatventas/commerce-service/internal/service"
	apperrors "github.com/chatventas/commerce-service/pkg/util/errorutil"
)

// SessionsHandler issues chat session tokens.
type SessionsHandler struct {
	chat   *service.ChatService
	tokens *auth.TokenManager
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(chat *service.ChatService, tokens *auth.TokenManager) *SessionsHandler {
	return &SessionsHandler{chat: chat, tokens: tokens}
}

// CreateSession POST /sessions. Binds a token to the phone's conversation,
// creating the conversation on first contact.
func (h *SessionsHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.SessionTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CustomerPhone == "" {
		return apperrors.NewValidationError("customer_phone required", nil)
	}

	conv, err := h.chat.OpenSession(c.UserContext(), req.CustomerPhone, req.CustomerName)
	if err != nil {
		return err
	}
	token, expiresAt, err := h.tokens.IssueSessionToken(conv.ID, conv.CustomerPhone)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SessionTokenResponse{
		Token:          token,
		ConversationID: conv.ID,
		ExpiresAt:      expiresAt,
	}})
}
