package delegation

import (
	"context"
	"strings"

	"github.com/chatventas/commerce-service/internal/domain"
)

// IntentClassifier maps a message onto a specialist domain. The production
// classifier is the LLM collaborator; KeywordClassifier is the built-in
// fallback used when no external classifier is configured.
type IntentClassifier interface {
	Classify(ctx context.Context, message string) (domain.Specialty, bool)
}

// KeywordClassifier matches the customer's wording against fixed keyword
// sets. Matching is first-hit in the order pricing, stock, orders,
// complaints.
type KeywordClassifier struct{}

var intentKeywords = []struct {
	specialty domain.Specialty
	words     []string
}{
	{domain.SpecialtyPricing, []string{"precio", "cuanto sale", "cuanto cuesta", "vale", "price"}},
	{domain.SpecialtyStock, []string{"stock", "hay ", "tienen", "disponible", "queda"}},
	{domain.SpecialtyOrders, []string{"pedido", "pedir", "comprar", "encargar", "quiero", "order"}},
	{domain.SpecialtyComplaints, []string{"reclamo", "queja", "problema", "mal estado", "vencido", "devolver"}},
}

// Classify implements IntentClassifier.
func (KeywordClassifier) Classify(_ context.Context, message string) (domain.Specialty, bool) {
	normalized := " " + strings.ToLower(strings.TrimSpace(message)) + " "
	for _, entry := range intentKeywords {
		for _, word := range entry.words {
			if strings.Contains(normalized, word) {
				return entry.specialty, true
			}
		}
	}
	return "", false
}
