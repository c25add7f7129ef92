package delegation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTermsQuantitySegmentation(t *testing.T) {
	terms := ExtractTerms("5 packs coca cola 2.25, 3 aceite cocinero 1.5L")
	require.Len(t, terms, 2)

	assert.Equal(t, 5, terms[0].Quantity)
	assert.Equal(t, "packs coca cola 2.25", terms[0].Term)
	assert.Equal(t, 3, terms[1].Quantity)
	assert.Equal(t, "aceite cocinero 1.5L", terms[1].Term)
}

func TestExtractTermsTrailingQuantity(t *testing.T) {
	terms := ExtractTerms("yerba la tranquera x 4\nazucar ledesma x2")
	require.Len(t, terms, 2)

	assert.Equal(t, "yerba la tranquera", terms[0].Term)
	assert.Equal(t, 4, terms[0].Quantity)
	assert.Equal(t, "azucar ledesma", terms[1].Term)
	assert.Equal(t, 2, terms[1].Quantity)
}

func TestExtractTermsDefaultQuantity(t *testing.T) {
	terms := ExtractTerms("harina 000")
	require.Len(t, terms, 1)
	assert.Equal(t, 1, terms[0].Quantity)
	assert.Equal(t, "harina 000", terms[0].Term)
}

func TestExtractTermsEmptyAndBlankSegments(t *testing.T) {
	assert.Empty(t, ExtractTerms(""))
	assert.Empty(t, ExtractTerms("   \n  ,, \n"))

	terms := ExtractTerms(", fideos ,")
	require.Len(t, terms, 1)
	assert.Equal(t, "fideos", terms[0].Term)
}

func TestExtractTermsPreservesMessageOrder(t *testing.T) {
	terms := ExtractTerms("pan, leche, 2 manteca")
	require.Len(t, terms, 3)
	assert.Equal(t, "pan", terms[0].Term)
	assert.Equal(t, "leche", terms[1].Term)
	assert.Equal(t, "manteca", terms[2].Term)
	assert.Equal(t, 2, terms[2].Quantity)
}

func TestExtractTermsBareNumberSegment(t *testing.T) {
	// A segment that is only digits has no term to search for.
	terms := ExtractTerms("12, 2 leche")
	require.Len(t, terms, 2)
	assert.Equal(t, "12", terms[0].Term)
	assert.Equal(t, 1, terms[0].Quantity)
	assert.Equal(t, "leche", terms[1].Term)
}
