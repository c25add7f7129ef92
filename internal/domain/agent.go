package domain

import "fmt"

// Specialty is the closed set of domains a specialist agent can cover.
type Specialty string

const (
	SpecialtyGeneral    Specialty = "general"
	SpecialtyPricing    Specialty = "pricing"
	SpecialtyStock      Specialty = "stock"
	SpecialtyOrders     Specialty = "orders"
	SpecialtyComplaints Specialty = "complaints"
	SpecialtyErp        Specialty = "erp"
)

// ParseSpecialty maps a configuration string onto the closed enum.
func ParseSpecialty(s string) (Specialty, error) {
	switch Specialty(s) {
	case SpecialtyGeneral, SpecialtyPricing, SpecialtyStock,
		SpecialtyOrders, SpecialtyComplaints, SpecialtyErp:
		return Specialty(s), nil
	}
	return "", fmt.Errorf("unrecognized agent specialty %q", s)
}

// AgentDescriptor describes one specialist agent and who it may hand off to.
type AgentDescriptor struct {
	ID          string
	Name        string
	Specialty   Specialty
	DelegatesTo []string
}

// IsDelegator reports whether the agent may hand a turn to another agent.
func (a AgentDescriptor) IsDelegator() bool {
	return len(a.DelegatesTo) > 0
}

// CanLookupProducts reports whether the agent's specialty warrants pre-fetching
// ERP facts for product terms found in a message.
func (a AgentDescriptor) CanLookupProducts() bool {
	switch a.Specialty {
	case SpecialtyPricing, SpecialtyStock, SpecialtyGeneral:
		return true
	}
	return false
}
