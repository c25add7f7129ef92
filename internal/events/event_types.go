package events

import (
	"time"

	"github.com/chatventas/commerce-service/internal/domain"
)

// Topic enumerates supported event identifiers.
type Topic string

const (
	TopicErpLookupCompleted   Topic = "erp_lookup_completed"
	TopicOrderCreated         Topic = "order_created"
	TopicTicketCreated        Topic = "ticket_created"
	TopicSessionStatusChanged Topic = "session_status_changed"
)

// Event represents a domain event emitted by services. Delivery is
// fire-and-forget and at-most-once; there is no durable queue behind this.
type Event struct {
	ID             string      `json:"id"`
	Topic          Topic       `json:"topic"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// ErpLookupCompletedPayload payload.
type ErpLookupCompletedPayload struct {
	SearchTerms   []string `json:"search_terms"`
	ProductsFound int      `json:"products_found"`
	FailedLookups int      `json:"failed_lookups"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      domain.OrderStatus `json:"status"`
	Total       string             `json:"total"`
	LineCount   int                `json:"line_count"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID     string                `json:"ticket_id"`
	TicketNumber string                `json:"ticket_number"`
	Priority     domain.TicketPriority `json:"priority"`
	Subject      string                `json:"subject"`
}

// SessionStatusChangedPayload payload.
type SessionStatusChangedPayload struct {
	SessionID string               `json:"session_id"`
	Status    domain.SessionStatus `json:"status"`
}
