package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates lifecycle states for orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderLine is one requested product within an order.
type OrderLine struct {
	ProductName string
	Quantity    int
	UnitPrice   *decimal.Decimal
}

// LineTotal returns quantity times unit price, or zero when the ERP gave no price.
func (l OrderLine) LineTotal() decimal.Decimal {
	if l.UnitPrice == nil {
		return decimal.Zero
	}
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the aggregate for a customer purchase intent captured from chat.
type Order struct {
	ID             string
	Number         string
	ConversationID string
	CustomerPhone  string
	Lines          []OrderLine
	Total          decimal.Decimal
	Status         OrderStatus
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ComputeTotal sums all line totals.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}
