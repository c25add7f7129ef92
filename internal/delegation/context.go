package delegation

import (
	"encoding/json"

	"github.com/chatventas/commerce-service/internal/domain"
)

// ContextBlock is the structured form in which ERP facts reach the chosen
// agent's prompt. Free-text injection is deliberately avoided: the agent
// collaborator receives one reproducible JSON document per turn.
type ContextBlock struct {
	AgentID string             `json:"agent_id"`
	Lookups []ContextLookup    `json:"lookups"`
	Terms   []ContextTermEntry `json:"detected_terms"`
}

// ContextLookup is the outcome of one ERP lookup within the block.
type ContextLookup struct {
	SearchTerm string               `json:"search_term"`
	Quantity   int                  `json:"quantity"`
	NoMatches  bool                 `json:"no_matches"`
	Failed     bool                 `json:"lookup_failed,omitempty"`
	Products   []ContextProductFact `json:"products,omitempty"`
}

// ContextProductFact flattens a ProductFact for the prompt.
type ContextProductFact struct {
	Name          string  `json:"name"`
	Price         *string `json:"price,omitempty"`
	StockQuantity *int    `json:"stock_quantity,omitempty"`
	UnitsPerCase  *int    `json:"units_per_case,omitempty"`
	PromotionText *string `json:"promotion_text,omitempty"`
}

// ContextTermEntry echoes the raw segmentation for the agent.
type ContextTermEntry struct {
	Term     string `json:"term"`
	Quantity int    `json:"quantity"`
}

// ContextBlock renders the decision's facts for the agent-invocation
// collaborator. ERP product order is preserved; a lookup with zero products
// is marked no_matches so the agent offers alternatives instead of inventing
// data.
func (d *Decision) ContextBlock() ContextBlock {
	block := ContextBlock{AgentID: d.ChosenAgent.ID}
	for _, term := range d.DetectedTerms {
		block.Terms = append(block.Terms, ContextTermEntry{Term: term.Term, Quantity: term.Quantity})
	}
	for _, facts := range d.Facts {
		lookup := ContextLookup{
			SearchTerm: facts.SearchTerm,
			Quantity:   facts.Quantity,
			NoMatches:  !facts.HasProducts(),
			Failed:     facts.LookupErr != "",
		}
		for _, p := range facts.Products {
			lookup.Products = append(lookup.Products, flattenFact(p))
		}
		block.Lookups = append(block.Lookups, lookup)
	}
	return block
}

// MarshalContext renders the block as the JSON document handed to the agent.
func (d *Decision) MarshalContext() ([]byte, error) {
	return json.Marshal(d.ContextBlock())
}

func flattenFact(p domain.ProductFact) ContextProductFact {
	fact := ContextProductFact{
		Name:          p.Name,
		StockQuantity: p.StockQuantity,
		UnitsPerCase:  p.UnitsPerCase,
		PromotionText: p.PromotionText,
	}
	if p.Price != nil {
		s := p.Price.String()
		fact.Price = &s
	}
	return fact
}
