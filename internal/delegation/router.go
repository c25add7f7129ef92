package delegation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chatventas/commerce-service/internal/domain"
	"github.com/chatventas/commerce-service/internal/erp"
	"github.com/chatventas/commerce-service/internal/events"
)

// ErrNoAgentAvailable signals that the turn references an agent the graph
// does not know.
var ErrNoAgentAvailable = errors.New("delegation: no agent available for this turn")

// ErpLookup is the slice of the ERP client the router needs.
type ErpLookup interface {
	Lookup(ctx context.Context, term string) (*erp.Response, error)
}

// Decision is the transient outcome of routing one inbound message.
type Decision struct {
	ChosenAgent   domain.AgentDescriptor
	DetectedTerms []CandidateTerm
	Facts         []domain.FactsBlock
}

// RouterConfig bounds the ERP fan-out per message.
type RouterConfig struct {
	MaxTermsPerMessage int
	MaxParallelLookups int
	LookupTimeout      time.Duration
}

func (c RouterConfig) withDefaults() RouterConfig {
	if c.MaxTermsPerMessage <= 0 {
		c.MaxTermsPerMessage = 5
	}
	if c.MaxParallelLookups <= 0 {
		c.MaxParallelLookups = 3
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 15 * time.Second
	}
	return c
}

// Router decides which specialist answers an inbound message and pre-fetches
// ERP facts for it. Delegation is one hop per turn; the router never chains.
type Router struct {
	graph      *Graph
	erp        ErpLookup
	classifier IntentClassifier
	dispatcher events.Dispatcher
	cfg        RouterConfig
	logger     *zap.Logger
}

// NewRouter constructs the router over a validated graph.
func NewRouter(graph *Graph, lookup ErpLookup, classifier IntentClassifier,
	dispatcher events.Dispatcher, cfg RouterConfig, logger *zap.Logger) *Router {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	return &Router{
		graph:      graph,
		erp:        lookup,
		classifier: classifier,
		dispatcher: dispatcher,
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}
}

// Route inspects one inbound message for the given conversation and current
// agent. Lookups that fail are recorded in their facts block; a turn with
// zero facts is still delegated.
func (r *Router) Route(ctx context.Context, conversationID, currentAgentID, message string) (*Decision, error) {
	if strings.TrimSpace(message) == "" {
		return &Decision{ChosenAgent: r.graph.General()}, nil
	}

	current, ok := r.graph.Agent(currentAgentID)
	if !ok {
		if currentAgentID != "" {
			r.logger.Warn("unknown current agent, falling back to general",
				zap.String("agent_id", currentAgentID))
		}
		current = r.graph.General()
	}

	terms := ExtractTerms(message)
	if len(terms) > r.cfg.MaxTermsPerMessage {
		terms = terms[:r.cfg.MaxTermsPerMessage]
	}

	var facts []domain.FactsBlock
	if len(terms) > 0 && current.CanLookupProducts() {
		facts = r.fetchFacts(ctx, conversationID, terms)
	}

	chosen := current
	if current.IsDelegator() {
		if specialty, matched := r.classifier.Classify(ctx, message); matched {
			if target, found := r.graph.DelegateFor(current, specialty); found {
				chosen = target
			} else {
				// Routing gap: the intent names a specialty this agent
				// cannot reach. The current agent answers directly.
				r.logger.Warn("routing gap: no delegate for classified specialty",
					zap.String("agent_id", current.ID),
					zap.String("specialty", string(specialty)))
			}
		}
	}

	return &Decision{
		ChosenAgent:   chosen,
		DetectedTerms: terms,
		Facts:         facts,
	}, nil
}

// fetchFacts fans ERP lookups out over distinct terms with bounded
// parallelism. Each lookup carries its own timeout; the merge happens only
// after every launched lookup has settled. Results keep term order.
func (r *Router) fetchFacts(ctx context.Context, conversationID string, terms []CandidateTerm) []domain.FactsBlock {
	distinct := dedupe(terms)
	facts := make([]domain.FactsBlock, len(distinct))

	var group errgroup.Group
	group.SetLimit(r.cfg.MaxParallelLookups)
	for i, candidate := range distinct {
		i, candidate := i, candidate
		group.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
			defer cancel()

			block := domain.FactsBlock{SearchTerm: candidate.Term, Quantity: candidate.Quantity}
			resp, err := r.erp.Lookup(lookupCtx, candidate.Term)
			if err != nil {
				block.LookupErr = err.Error()
				r.logger.Warn("erp lookup failed",
					zap.String("term", candidate.Term), zap.Error(err))
			} else {
				block.Products = resp.Products
			}
			facts[i] = block
			return nil
		})
	}
	_ = group.Wait()

	r.publishLookupCompleted(ctx, conversationID, facts)
	return facts
}

func (r *Router) publishLookupCompleted(ctx context.Context, conversationID string, facts []domain.FactsBlock) {
	if r.dispatcher == nil {
		return
	}
	payload := events.ErpLookupCompletedPayload{}
	for _, block := range facts {
		payload.SearchTerms = append(payload.SearchTerms, block.SearchTerm)
		payload.ProductsFound += len(block.Products)
		if block.LookupErr != "" {
			payload.FailedLookups++
		}
	}
	_ = r.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.New().String(),
		Topic:          events.TopicErpLookupCompleted,
		ConversationID: conversationID,
		Timestamp:      time.Now(),
		Payload:        payload,
	})
}

// dedupe drops repeated terms, keeping the first occurrence and its quantity.
func dedupe(terms []CandidateTerm) []CandidateTerm {
	seen := make(map[string]bool, len(terms))
	out := make([]CandidateTerm, 0, len(terms))
	for _, t := range terms {
		key := strings.ToLower(t.Term)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
