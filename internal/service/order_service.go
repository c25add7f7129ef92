package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/domain"
	"github.com/chatventas/commerce-service/internal/events"
	"github.com/chatventas/commerce-service/internal/repository"
	"github.com/chatventas/commerce-service/internal/sequence"
)

// OrderService coordinates order creation from chat intents.
type OrderService struct {
	orders     repository.OrderRepository
	allocator  *sequence.Allocator
	dispatcher events.Dispatcher
	prefix     string
	logger     *zap.Logger
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	Allocator   *sequence.Allocator
	Dispatcher  events.Dispatcher
	OrderPrefix string
}

// OrderCreateInput describes an order captured from a conversation turn.
type OrderCreateInput struct {
	ConversationID string
	CustomerPhone  string
	Lines          []domain.OrderLine
	Notes          string
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies, logger *zap.Logger) *OrderService {
	prefix := deps.OrderPrefix
	if prefix == "" {
		prefix = "ORD"
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		allocator:  deps.Allocator,
		dispatcher: deps.Dispatcher,
		prefix:     prefix,
		logger:     logger,
	}
}

// CreateOrder allocates an order number, persists the order and publishes the
// creation event. The order number is allocated first and travels with the
// insert; without a valid number no order is ever created.
func (s *OrderService) CreateOrder(ctx context.Context, input OrderCreateInput) (*domain.Order, error) {
	if len(input.Lines) == 0 {
		return nil, errors.New("order needs at least one line")
	}

	number, err := s.allocator.NextIdentifier(ctx, s.prefix, time.Now())
	if err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}

	order := &domain.Order{
		Number:         number,
		ConversationID: input.ConversationID,
		CustomerPhone:  input.CustomerPhone,
		Lines:          input.Lines,
		Status:         domain.OrderStatusPending,
		Notes:          input.Notes,
	}
	order.Total = order.ComputeTotal()

	if err := s.orders.Create(ctx, order); err != nil {
		// The allocated ordinal is abandoned here; its gap is acceptable.
		s.logger.Error("order insert failed after allocation",
			zap.String("number", number), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("number", order.Number),
		zap.String("conversation_id", order.ConversationID),
		zap.Int("lines", len(order.Lines)))

	s.publishCreated(ctx, order)
	return order, nil
}

// GetOrder fetches an order by its human-readable number.
func (s *OrderService) GetOrder(ctx context.Context, number string) (*domain.Order, error) {
	return s.orders.GetByNumber(ctx, number)
}

// ListOrders lists a conversation's orders.
func (s *OrderService) ListOrders(ctx context.Context, conversationID string, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListByConversation(ctx, conversationID, limit, offset)
}

func (s *OrderService) publishCreated(ctx context.Context, order *domain.Order) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.New().String(),
		Topic:          events.TopicOrderCreated,
		ConversationID: order.ConversationID,
		Timestamp:      time.Now(),
		Payload: events.OrderCreatedPayload{
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Status:      order.Status,
			Total:       order.Total.String(),
			LineCount:   len(order.Lines),
		},
	})
}
