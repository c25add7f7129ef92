package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/domain"
	"github.com/chatventas/commerce-service/internal/events"
	"github.com/chatventas/commerce-service/internal/repository"
	"github.com/chatventas/commerce-service/internal/sequence"
)

// TicketService coordinates support ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	allocator  *sequence.Allocator
	dispatcher events.Dispatcher
	prefix     string
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	Allocator    *sequence.Allocator
	Dispatcher   events.Dispatcher
	TicketPrefix string
}

// TicketCreateInput describes a complaint captured from a conversation turn.
type TicketCreateInput struct {
	ConversationID string
	CustomerPhone  string
	Subject        string
	Description    string
	Priority       domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies, logger *zap.Logger) *TicketService {
	prefix := deps.TicketPrefix
	if prefix == "" {
		prefix = "TKT"
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		allocator:  deps.Allocator,
		dispatcher: deps.Dispatcher,
		prefix:     prefix,
		logger:     logger,
	}
}

// CreateTicket allocates a ticket number, persists the ticket and publishes
// the creation event. Allocation failure aborts creation.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return nil, errors.New("ticket subject is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	number, err := s.allocator.NextIdentifier(ctx, s.prefix, time.Now())
	if err != nil {
		return nil, fmt.Errorf("allocate ticket number: %w", err)
	}

	ticket := &domain.Ticket{
		Number:         number,
		ConversationID: input.ConversationID,
		CustomerPhone:  input.CustomerPhone,
		Subject:        strings.TrimSpace(input.Subject),
		Description:    input.Description,
		Status:         domain.TicketStatusOpen,
		Priority:       priority,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("ticket insert failed after allocation",
			zap.String("number", number), zap.Error(err))
		return nil, err
	}

	s.logger.Info("ticket created",
		zap.String("number", ticket.Number),
		zap.String("conversation_id", ticket.ConversationID),
		zap.String("priority", string(ticket.Priority)))

	s.publishCreated(ctx, ticket)
	return ticket, nil
}

// GetTicket fetches a ticket by its human-readable number.
func (s *TicketService) GetTicket(ctx context.Context, number string) (*domain.Ticket, error) {
	return s.tickets.GetByNumber(ctx, number)
}

// ListTickets lists a conversation's tickets.
func (s *TicketService) ListTickets(ctx context.Context, conversationID string, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.ListByConversation(ctx, conversationID, limit, offset)
}

// CloseTicket resolves a ticket.
func (s *TicketService) CloseTicket(ctx context.Context, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publishCreated(ctx context.Context, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.New().String(),
		Topic:          events.TopicTicketCreated,
		ConversationID: ticket.ConversationID,
		Timestamp:      time.Now(),
		Payload: events.TicketCreatedPayload{
			TicketID:     ticket.ID,
			TicketNumber: ticket.Number,
			Priority:     ticket.Priority,
			Subject:      ticket.Subject,
		},
	})
}
