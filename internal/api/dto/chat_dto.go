package dto

import (
	"time"

	"github.com/chatventas/commerce-service/internal/delegation"
	"github.com/chatventas/commerce-service/internal/domain"
)

// InboundMessageRequest payload.
type InboundMessageRequest struct {
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
	Body          string `json:"body"`
}

// ProductFactResponse is one ERP catalog hit.
type ProductFactResponse struct {
	Name          string  `json:"name"`
	Price         *string `json:"price,omitempty"`
	StockQuantity *int    `json:"stock_quantity,omitempty"`
	UnitsPerCase  *int    `json:"units_per_case,omitempty"`
	PromotionText *string `json:"promotion_text,omitempty"`
}

// FactsBlockResponse groups the ERP facts fetched for one detected term.
type FactsBlockResponse struct {
	SearchTerm  string                `json:"search_term"`
	Quantity    int                   `json:"quantity"`
	Products    []ProductFactResponse `json:"products"`
	LookupError string                `json:"lookup_error,omitempty"`
}

// AgentResponse identifies the agent answering the turn.
type AgentResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Specialty domain.Specialty `json:"specialty"`
}

// TurnResponse is the routed outcome of one inbound message.
type TurnResponse struct {
	ConversationID string               `json:"conversation_id"`
	Agent          AgentResponse        `json:"agent"`
	DetectedTerms  []string             `json:"detected_terms"`
	Facts          []FactsBlockResponse `json:"facts"`
	ContextBlock   string               `json:"context_block,omitempty"`
}

// MessageResponse is one stored chat turn.
type MessageResponse struct {
	ID        string                  `json:"id"`
	Direction domain.MessageDirection `json:"direction"`
	Body      string                  `json:"body"`
	AgentID   string                  `json:"agent_id,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewTurnResponse maps a routed decision onto the wire shape.
func NewTurnResponse(conversationID string, decision *delegation.Decision, contextBlock string) TurnResponse {
	terms := make([]string, 0, len(decision.DetectedTerms))
	for _, t := range decision.DetectedTerms {
		terms = append(terms, t.Term)
	}
	facts := make([]FactsBlockResponse, 0, len(decision.Facts))
	for _, block := range decision.Facts {
		facts = append(facts, newFactsBlockResponse(block))
	}
	return TurnResponse{
		ConversationID: conversationID,
		Agent: AgentResponse{
			ID:        decision.ChosenAgent.ID,
			Name:      decision.ChosenAgent.Name,
			Specialty: decision.ChosenAgent.Specialty,
		},
		DetectedTerms: terms,
		Facts:         facts,
		ContextBlock:  contextBlock,
	}
}

func newFactsBlockResponse(block domain.FactsBlock) FactsBlockResponse {
	products := make([]ProductFactResponse, 0, len(block.Products))
	for _, p := range block.Products {
		item := ProductFactResponse{
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
			UnitsPerCase:  p.UnitsPerCase,
			PromotionText: p.PromotionText,
		}
		if p.Price != nil {
			price := p.Price.String()
			item.Price = &price
		}
		products = append(products, item)
	}
	return FactsBlockResponse{
		SearchTerm:  block.SearchTerm,
		Quantity:    block.Quantity,
		Products:    products,
		LookupError: block.LookupErr,
	}
}

// NewMessageResponse maps a stored message.
func NewMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Direction: m.Direction,
		Body:      m.Body,
		AgentID:   m.AgentID,
		CreatedAt: m.CreatedAt,
	}
}
