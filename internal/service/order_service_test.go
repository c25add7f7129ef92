package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/domain"
	"github.com/chatventas/commerce-service/internal/events"
	"github.com/chatventas/commerce-service/internal/sequence"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = order.Number
	for _, existing := range f.orders {
		if existing.Number == order.Number {
			return errors.New("duplicate order number")
		}
	}
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(context.Context, string, domain.OrderStatus) error {
	return nil
}

func (f *fakeOrderRepo) GetByID(context.Context, string) (*domain.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderRepo) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.Number == number {
			return &o, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeOrderRepo) ListByConversation(context.Context, string, int, int) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Order{}, f.orders...), nil
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newOrderService(repo *fakeOrderRepo, dispatcher events.Dispatcher) *OrderService {
	allocator := sequence.NewAllocator(sequence.NewMemoryCounterStore(), zap.NewNop())
	return NewOrderService(OrderDependencies{
		OrderRepo:   repo,
		Allocator:   allocator,
		Dispatcher:  dispatcher,
		OrderPrefix: "ORD",
	}, zap.NewNop())
}

func TestCreateOrderAllocatesNumberAndTotal(t *testing.T) {
	repo := &fakeOrderRepo{}
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.Event
	dispatcher.Subscribe(events.TopicOrderCreated, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	svc := newOrderService(repo, dispatcher)
	order, err := svc.CreateOrder(context.Background(), OrderCreateInput{
		ConversationID: "conv-1",
		CustomerPhone:  "+5491122334455",
		Lines: []domain.OrderLine{
			{ProductName: "Coca Cola 2.25L", Quantity: 5, UnitPrice: price("1850.50")},
			{ProductName: "Aceite Cocinero 1.5L", Quantity: 3, UnitPrice: price("2300")},
		},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{8}-0001$`, order.Number)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	// 5*1850.50 + 3*2300 = 9252.50 + 6900
	assert.True(t, order.Total.Equal(decimal.RequireFromString("16152.50")))

	require.Len(t, published, 1)
	payload := published[0].Payload.(events.OrderCreatedPayload)
	assert.Equal(t, order.Number, payload.OrderNumber)
	assert.Equal(t, 2, payload.LineCount)
}

func TestCreateOrderConcurrentNumbersDifferOnlyInOrdinal(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := newOrderService(repo, nil)

	numbers := make(chan string, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := svc.CreateOrder(context.Background(), OrderCreateInput{
				ConversationID: "conv-1",
				Lines:          []domain.OrderLine{{ProductName: "Yerba", Quantity: 1}},
			})
			assert.NoError(t, err)
			numbers <- order.Number
		}()
	}
	wg.Wait()
	close(numbers)

	first, second := <-numbers, <-numbers
	assert.NotEqual(t, first, second)
	assert.Equal(t, first[:len(first)-4], second[:len(second)-4])
}

func TestCreateOrderFailsWithoutAllocation(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewOrderService(OrderDependencies{
		OrderRepo: repo,
		Allocator: sequence.NewAllocator(unavailableStore{}, zap.NewNop()),
	}, zap.NewNop())

	_, err := svc.CreateOrder(context.Background(), OrderCreateInput{
		Lines: []domain.OrderLine{{ProductName: "Pan", Quantity: 1}},
	})
	require.ErrorIs(t, err, sequence.ErrAllocationUnavailable)
	assert.Empty(t, repo.orders, "no order may exist without a valid number")
}

func TestCreateOrderRejectsEmptyLines(t *testing.T) {
	svc := newOrderService(&fakeOrderRepo{}, nil)
	_, err := svc.CreateOrder(context.Background(), OrderCreateInput{})
	assert.Error(t, err)
}

type unavailableStore struct{}

func (unavailableStore) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("store offline")
}
