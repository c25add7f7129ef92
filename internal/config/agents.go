package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chatventas/commerce-service/internal/domain"
)

type agentFileEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Specialty   string   `json:"specialty"`
	DelegatesTo []string `json:"delegates_to"`
}

// LoadAgents reads the agent roster from a JSON file, or returns the built-in
// default roster when no file is configured. Specialties are validated here;
// graph-level checks (acyclicity, delegate existence) happen when the
// delegation graph is built.
func LoadAgents(path string) ([]domain.AgentDescriptor, error) {
	if path == "" {
		return DefaultAgents(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}
	var entries []agentFileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse agents file: %w", err)
	}

	agents := make([]domain.AgentDescriptor, 0, len(entries))
	for _, entry := range entries {
		specialty, err := domain.ParseSpecialty(entry.Specialty)
		if err != nil {
			return nil, fmt.Errorf("agents file entry %q: %w", entry.ID, err)
		}
		agents = append(agents, domain.AgentDescriptor{
			ID:          entry.ID,
			Name:        entry.Name,
			Specialty:   specialty,
			DelegatesTo: entry.DelegatesTo,
		})
	}
	return agents, nil
}

// DefaultAgents is the roster used when no agents file is configured: one
// general receptionist delegating to the four specialists.
func DefaultAgents() []domain.AgentDescriptor {
	return []domain.AgentDescriptor{
		{ID: "general", Name: "Recepción", Specialty: domain.SpecialtyGeneral,
			DelegatesTo: []string{"pricing", "stock", "orders", "complaints"}},
		{ID: "pricing", Name: "Precios", Specialty: domain.SpecialtyPricing},
		{ID: "stock", Name: "Stock", Specialty: domain.SpecialtyStock},
		{ID: "orders", Name: "Pedidos", Specialty: domain.SpecialtyOrders},
		{ID: "complaints", Name: "Reclamos", Specialty: domain.SpecialtyComplaints},
	}
}
