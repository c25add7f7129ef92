package domain

import "github.com/shopspring/decimal"

// ProductFact is one product record returned by the ERP for a lookup term.
// Every field except Name may be absent from the wire document.
type ProductFact struct {
	Name          string
	Price         *decimal.Decimal
	StockQuantity *int
	UnitsPerCase  *int
	PromotionText *string
}

// FactsBlock carries the ERP facts attached to one lookup term. A block with
// an empty Products slice means the ERP answered and found nothing, which is
// distinct from the lookup having failed.
type FactsBlock struct {
	SearchTerm string
	Quantity   int
	Products   []ProductFact
	LookupErr  string
}

// HasProducts reports whether the lookup produced at least one match.
func (f FactsBlock) HasProducts() bool {
	return len(f.Products) > 0
}
