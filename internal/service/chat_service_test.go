package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/config"
	"github.com/chatventas/commerce-service/internal/delegation"
	"github.com/chatventas/commerce-service/internal/domain"
	"github.com/chatventas/commerce-service/internal/erp"
)

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
	messages      []domain.Message
	nextID        int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*domain.Conversation)}
}

func (f *fakeConversationRepo) GetOrCreateByPhone(_ context.Context, phone, name string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.conversations {
		if conv.CustomerPhone == phone {
			copied := *conv
			return &copied, nil
		}
	}
	f.nextID++
	conv := &domain.Conversation{
		ID:            "conv-" + strconv.Itoa(f.nextID),
		CustomerPhone: phone,
		CustomerName:  name,
		ActiveAgentID: "general",
	}
	f.conversations[conv.ID] = conv
	copied := *conv
	return &copied, nil
}

func (f *fakeConversationRepo) GetByID(_ context.Context, id string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *conv
	return &copied, nil
}

func (f *fakeConversationRepo) SetActiveAgent(_ context.Context, id, agentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return errors.New("not found")
	}
	conv.ActiveAgentID = agentID
	return nil
}

func (f *fakeConversationRepo) AppendMessage(_ context.Context, message *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeConversationRepo) ListMessages(_ context.Context, conversationID string, _ int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeErpLookup struct{}

func (fakeErpLookup) Lookup(_ context.Context, term string) (*erp.Response, error) {
	if strings.Contains(term, "inexistente") {
		return &erp.Response{}, nil
	}
	return &erp.Response{Products: []domain.ProductFact{{Name: strings.ToUpper(term)}}}, nil
}

func newChatService(t *testing.T, repo *fakeConversationRepo) *ChatService {
	t.Helper()
	graph, err := delegation.NewGraph(config.DefaultAgents())
	require.NoError(t, err)
	router := delegation.NewRouter(graph, fakeErpLookup{}, nil, nil,
		delegation.RouterConfig{}, zap.NewNop())
	return NewChatService(repo, router, zap.NewNop())
}

func TestHandleInboundPersistsAndRoutes(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := newChatService(t, repo)

	result, err := svc.HandleInbound(context.Background(), InboundMessage{
		CustomerPhone: "+5491122334455",
		CustomerName:  "Marta",
		Body:          "cuanto sale la yerba playadito",
	})
	require.NoError(t, err)

	assert.Equal(t, "pricing", result.Decision.ChosenAgent.ID)
	assert.Equal(t, "pricing", result.Conversation.ActiveAgentID)
	require.Len(t, result.Decision.Facts, 1)
	assert.True(t, result.Decision.Facts[0].HasProducts())

	messages, err := svc.History(context.Background(), result.Conversation.ID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.MessageInbound, messages[0].Direction)
}

func TestHandleInboundKeepsStickyAgentAcrossTurns(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := newChatService(t, repo)

	first, err := svc.HandleInbound(context.Background(), InboundMessage{
		CustomerPhone: "+5491100000001",
		Body:          "tienen stock de harina 000",
	})
	require.NoError(t, err)
	assert.Equal(t, "stock", first.Decision.ChosenAgent.ID)

	// A follow-up with no specialty keyword stays with the specialist.
	second, err := svc.HandleInbound(context.Background(), InboundMessage{
		CustomerPhone: "+5491100000001",
		Body:          "y la leudante",
	})
	require.NoError(t, err)
	assert.Equal(t, "stock", second.Decision.ChosenAgent.ID)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)
}

func TestHandleInboundBlankMessageSkipsPersistence(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := newChatService(t, repo)

	result, err := svc.HandleInbound(context.Background(), InboundMessage{
		CustomerPhone: "+5491100000002",
		Body:          "   ",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.messages)
	assert.Equal(t, "general", result.Decision.ChosenAgent.ID)
}

func TestRecordReplyStoresOutboundMessage(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := newChatService(t, repo)

	require.NoError(t, svc.RecordReply(context.Background(), "conv-1", "pricing", "La yerba sale $3500"))

	messages, err := svc.History(context.Background(), "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.MessageOutbound, messages[0].Direction)
	assert.Equal(t, "pricing", messages[0].AgentID)
}
