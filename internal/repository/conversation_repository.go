package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatventas/commerce-service/internal/domain"
)

// ConversationRepository encapsulates conversation and message persistence.
type ConversationRepository interface {
	GetOrCreateByPhone(ctx context.Context, customerPhone, customerName string) (*domain.Conversation, error)
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	SetActiveAgent(ctx context.Context, id, agentID string) error
	AppendMessage(ctx context.Context, message *domain.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}

type conversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository instantiates repository.
func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{pool: pool}
}

// GetOrCreateByPhone upserts on the customer's phone number, the natural key
// the chat transport hands us.
func (r *conversationRepository) GetOrCreateByPhone(ctx context.Context, customerPhone, customerName string) (*domain.Conversation, error) {
	const query = `
        INSERT INTO conversations (customer_phone, customer_name)
        VALUES ($1,$2)
        ON CONFLICT (customer_phone) DO UPDATE SET updated_at=NOW()
        RETURNING id, customer_phone, customer_name, active_agent_id, created_at, updated_at`
	return r.scanRow(r.pool.QueryRow(ctx, query, customerPhone, customerName))
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	const query = `
        SELECT id, customer_phone, customer_name, active_agent_id, created_at, updated_at
        FROM conversations WHERE id=$1`
	return r.scanRow(r.pool.QueryRow(ctx, query, id))
}

func (r *conversationRepository) scanRow(row pgx.Row) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := row.Scan(
		&conv.ID,
		&conv.CustomerPhone,
		&conv.CustomerName,
		&conv.ActiveAgentID,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) SetActiveAgent(ctx context.Context, id, agentID string) error {
	const query = `UPDATE conversations SET active_agent_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, agentID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *conversationRepository) AppendMessage(ctx context.Context, message *domain.Message) error {
	const query = `
        INSERT INTO messages (conversation_id, direction, body, agent_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		message.ConversationID,
		message.Direction,
		message.Body,
		message.AgentID,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, conversation_id, direction, body, agent_id, created_at
        FROM messages WHERE conversation_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.Direction,
			&msg.Body,
			&msg.AgentID,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
