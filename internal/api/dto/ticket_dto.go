package dto

import (
	"time"

	"github.com/chatventas/commerce-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerPhone string                `json:"customer_phone"`
	Subject       string                `json:"subject"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
}

// TicketResponse is the wire shape of a support ticket.
type TicketResponse struct {
	Number         string                `json:"number"`
	ConversationID string                `json:"conversation_id"`
	Subject        string                `json:"subject"`
	Description    string                `json:"description,omitempty"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	CreatedAt      time.Time             `json:"created_at"`
	ClosedAt       *time.Time            `json:"closed_at,omitempty"`
}

// NewTicketResponse maps a stored ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		Number:         ticket.Number,
		ConversationID: ticket.ConversationID,
		Subject:        ticket.Subject,
		Description:    ticket.Description,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		CreatedAt:      ticket.CreatedAt,
		ClosedAt:       ticket.ClosedAt,
	}
}
