package delegation

import (
	"regexp"
	"strconv"
	"strings"
)

// CandidateTerm is one product reference extracted from a message, with the
// quantity the customer attached to it.
type CandidateTerm struct {
	Term     string
	Quantity int
}

var (
	segmentSplitter  = regexp.MustCompile(`[,\n]+`)
	leadingQuantity  = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	trailingQuantity = regexp.MustCompile(`^(.+?)\s*[xX]\s*(\d+)$`)
)

// ExtractTerms splits a raw message into candidate product terms. Segments
// are separated by commas and newlines; within a segment a leading
// "<digits> <rest>" or trailing "<rest> x <digits>" quantity token is peeled
// off, defaulting to quantity 1. Order follows the message.
func ExtractTerms(message string) []CandidateTerm {
	var terms []CandidateTerm
	for _, segment := range segmentSplitter.Split(message, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		quantity := 1
		term := segment
		if m := leadingQuantity.FindStringSubmatch(segment); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				quantity = n
				term = m[2]
			}
		} else if m := trailingQuantity.FindStringSubmatch(segment); m != nil {
			if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
				quantity = n
				term = m[1]
			}
		}

		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		terms = append(terms, CandidateTerm{Term: term, Quantity: quantity})
	}
	return terms
}
