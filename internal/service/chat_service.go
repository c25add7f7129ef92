package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/delegation"
	"github.com/chatventas/commerce-service/internal/domain"
	"github.com/chatventas/commerce-service/internal/repository"
)

// ChatService drives one inbound conversation turn: persist the message,
// route it through the delegation engine, and hand the decision with its
// facts block to the agent-invocation collaborator.
type ChatService struct {
	conversations repository.ConversationRepository
	router        *delegation.Router
	logger        *zap.Logger
}

// InboundMessage is what the chat transport delivers.
type InboundMessage struct {
	CustomerPhone string
	CustomerName  string
	Body          string
}

// TurnResult is the routed outcome of one inbound message. Reply generation
// happens outside this core; the caller receives the chosen agent and the
// structured ERP facts to build the reply with.
type TurnResult struct {
	Conversation *domain.Conversation
	Decision     *delegation.Decision
}

// NewChatService constructs the service.
func NewChatService(conversations repository.ConversationRepository, router *delegation.Router, logger *zap.Logger) *ChatService {
	return &ChatService{conversations: conversations, router: router, logger: logger}
}

// OpenSession resolves the conversation a session token should bind to,
// creating it on first contact.
func (s *ChatService) OpenSession(ctx context.Context, customerPhone, customerName string) (*domain.Conversation, error) {
	return s.conversations.GetOrCreateByPhone(ctx, customerPhone, customerName)
}

// HandleInbound processes one customer message end to end.
func (s *ChatService) HandleInbound(ctx context.Context, msg InboundMessage) (*TurnResult, error) {
	conv, err := s.conversations.GetOrCreateByPhone(ctx, msg.CustomerPhone, msg.CustomerName)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(msg.Body) != "" {
		inbound := &domain.Message{
			ConversationID: conv.ID,
			Direction:      domain.MessageInbound,
			Body:           msg.Body,
		}
		if err := s.conversations.AppendMessage(ctx, inbound); err != nil {
			return nil, err
		}
	}

	decision, err := s.router.Route(ctx, conv.ID, conv.ActiveAgentID, msg.Body)
	if err != nil {
		return nil, err
	}

	if decision.ChosenAgent.ID != conv.ActiveAgentID {
		if err := s.conversations.SetActiveAgent(ctx, conv.ID, decision.ChosenAgent.ID); err != nil {
			// The turn still proceeds with the chosen agent; only the
			// sticky assignment is lost.
			s.logger.Warn("could not persist active agent",
				zap.String("conversation_id", conv.ID), zap.Error(err))
		} else {
			conv.ActiveAgentID = decision.ChosenAgent.ID
		}
	}

	s.logger.Info("turn routed",
		zap.String("conversation_id", conv.ID),
		zap.String("agent_id", decision.ChosenAgent.ID),
		zap.Int("terms", len(decision.DetectedTerms)),
		zap.Int("facts_blocks", len(decision.Facts)))

	return &TurnResult{Conversation: conv, Decision: decision}, nil
}

// RecordReply persists the outbound reply produced by the agent collaborator.
func (s *ChatService) RecordReply(ctx context.Context, conversationID, agentID, body string) error {
	return s.conversations.AppendMessage(ctx, &domain.Message{
		ConversationID: conversationID,
		Direction:      domain.MessageOutbound,
		Body:           body,
		AgentID:        agentID,
	})
}

// History returns the most recent messages of a conversation.
func (s *ChatService) History(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	return s.conversations.ListMessages(ctx, conversationID, limit)
}
