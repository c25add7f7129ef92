package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chatventas/commerce-service/internal/domain"
)

// OrderLineRequest is one requested product line.
type OrderLineRequest struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   *string `json:"unit_price,omitempty"`
}

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	CustomerPhone string             `json:"customer_phone"`
	Lines         []OrderLineRequest `json:"lines"`
	Notes         string             `json:"notes"`
}

// OrderLineResponse mirrors one stored line.
type OrderLineResponse struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   *string `json:"unit_price,omitempty"`
	LineTotal   string  `json:"line_total"`
}

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	Number         string              `json:"number"`
	ConversationID string              `json:"conversation_id"`
	Status         domain.OrderStatus  `json:"status"`
	Lines          []OrderLineResponse `json:"lines"`
	Total          string              `json:"total"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// DomainLines converts request lines, validating quantities and prices.
func (r CreateOrderRequest) DomainLines() ([]domain.OrderLine, error) {
	lines := make([]domain.OrderLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		line := domain.OrderLine{ProductName: l.ProductName, Quantity: l.Quantity}
		if l.UnitPrice != nil {
			price, err := decimal.NewFromString(*l.UnitPrice)
			if err != nil {
				return nil, err
			}
			line.UnitPrice = &price
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// NewOrderResponse maps a stored order.
func NewOrderResponse(order *domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Lines))
	for _, l := range order.Lines {
		item := OrderLineResponse{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			LineTotal:   l.LineTotal().String(),
		}
		if l.UnitPrice != nil {
			price := l.UnitPrice.String()
			item.UnitPrice = &price
		}
		lines = append(lines, item)
	}
	return OrderResponse{
		Number:         order.Number,
		ConversationID: order.ConversationID,
		Status:         order.Status,
		Lines:          lines,
		Total:          order.Total.String(),
		Notes:          order.Notes,
		CreatedAt:      order.CreatedAt,
	}
}
