package delegation

import (
	"fmt"

	"github.com/chatventas/commerce-service/internal/domain"
)

// Graph is the read-only delegation topology consulted by the router. It is
// validated once at configuration load; per-turn routing never mutates it.
type Graph struct {
	agents  map[string]domain.AgentDescriptor
	general domain.AgentDescriptor
}

// NewGraph builds and validates the graph: every specialty must parse, every
// delegate id must exist, exactly one general agent roots the graph, and the
// delegation edges must be acyclic.
func NewGraph(agents []domain.AgentDescriptor) (*Graph, error) {
	g := &Graph{agents: make(map[string]domain.AgentDescriptor, len(agents))}

	var generalCount int
	for _, agent := range agents {
		if _, err := domain.ParseSpecialty(string(agent.Specialty)); err != nil {
			return nil, fmt.Errorf("agent %q: %w", agent.ID, err)
		}
		if _, dup := g.agents[agent.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", agent.ID)
		}
		g.agents[agent.ID] = agent
		if agent.Specialty == domain.SpecialtyGeneral {
			g.general = agent
			generalCount++
		}
	}
	if generalCount != 1 {
		return nil, fmt.Errorf("delegation graph needs exactly one general agent, have %d", generalCount)
	}

	for _, agent := range g.agents {
		for _, target := range agent.DelegatesTo {
			if _, ok := g.agents[target]; !ok {
				return nil, fmt.Errorf("agent %q delegates to unknown agent %q", agent.ID, target)
			}
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkAcyclic runs a coloring DFS over the delegation edges.
func (g *Graph) checkAcyclic() error {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(g.agents))

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = grey
		for _, target := range g.agents[id].DelegatesTo {
			switch color[target] {
			case grey:
				return fmt.Errorf("delegation cycle through agents %q and %q", id, target)
			case white:
				if err := visit(target); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for id := range g.agents {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Agent looks up a descriptor by id.
func (g *Graph) Agent(id string) (domain.AgentDescriptor, bool) {
	agent, ok := g.agents[id]
	return agent, ok
}

// General returns the root general-purpose agent.
func (g *Graph) General() domain.AgentDescriptor {
	return g.general
}

// DelegateFor finds, among the agent's delegation targets, the first one
// covering the wanted specialty.
func (g *Graph) DelegateFor(agent domain.AgentDescriptor, specialty domain.Specialty) (domain.AgentDescriptor, bool) {
	for _, id := range agent.DelegatesTo {
		target, ok := g.agents[id]
		if ok && target.Specialty == specialty {
			return target, true
		}
	}
	return domain.AgentDescriptor{}, false
}
