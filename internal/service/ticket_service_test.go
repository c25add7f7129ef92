package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/domain"
	"github.com/chatventas/commerce-service/internal/events"
	"github.com/chatventas/commerce-service/internal/sequence"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tickets[ticket.Number]; exists {
		return errors.New("duplicate ticket number")
	}
	ticket.ID = ticket.Number
	f.tickets[ticket.Number] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tickets[ticket.Number]; !exists {
		return errors.New("not found")
	}
	f.tickets[ticket.Number] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(context.Context, string) (*domain.Ticket, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, exists := f.tickets[number]
	if !exists {
		return nil, errors.New("not found")
	}
	return &ticket, nil
}

func (f *fakeTicketRepo) ListByConversation(context.Context, string, int, int) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		out = append(out, t)
	}
	return out, nil
}

func newTicketService(repo *fakeTicketRepo, dispatcher events.Dispatcher) *TicketService {
	allocator := sequence.NewAllocator(sequence.NewMemoryCounterStore(), zap.NewNop())
	return NewTicketService(TicketDependencies{
		TicketRepo:   repo,
		Allocator:    allocator,
		Dispatcher:   dispatcher,
		TicketPrefix: "TKT",
	}, zap.NewNop())
}

func TestCreateTicketAllocatesNumber(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.Event
	dispatcher.Subscribe(events.TopicTicketCreated, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	svc := newTicketService(repo, dispatcher)
	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		ConversationID: "conv-9",
		CustomerPhone:  "+5491166677788",
		Subject:        "  Pedido llegó incompleto  ",
		Description:    "Faltan 2 cajas de yerba",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^TKT-\d{8}-0001$`, ticket.Number)
	assert.Equal(t, "Pedido llegó incompleto", ticket.Subject)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)

	require.Len(t, published, 1)
	payload := published[0].Payload.(events.TicketCreatedPayload)
	assert.Equal(t, ticket.Number, payload.TicketNumber)
}

func TestCreateTicketFailsWithoutAllocation(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Allocator:  sequence.NewAllocator(unavailableStore{}, zap.NewNop()),
	}, zap.NewNop())

	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{Subject: "Queja"})
	require.ErrorIs(t, err, sequence.ErrAllocationUnavailable)
	assert.Empty(t, repo.tickets)
}

func TestCreateTicketRejectsBlankSubject(t *testing.T) {
	svc := newTicketService(newFakeTicketRepo(), nil)
	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{Subject: "   "})
	assert.Error(t, err)
}

func TestCloseTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo, nil)

	created, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Subject:  "Factura equivocada",
		Priority: domain.TicketPriorityHigh,
	})
	require.NoError(t, err)

	closed, err := svc.CloseTicket(context.Background(), created.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	stored, err := svc.GetTicket(context.Background(), created.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, stored.Status)
}
