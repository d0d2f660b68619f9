package repository

import (
	"context"
	"testing"

	"golang-stock-tracker/internal/api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbolsOf(results []dto.SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Symbol)
	}
	return out
}

func TestSymbolIndex_SearchSeed(t *testing.T) {
	idx, err := NewSymbolIndexRepository(DefaultSymbols)
	require.NoError(t, err)
	defer idx.Close()

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(DefaultSymbols)), n)

	byTicker, err := idx.Search(context.Background(), "aap", 10)
	require.NoError(t, err)
	require.NotEmpty(t, byTicker)
	assert.Equal(t, "AAPL", byTicker[0].Symbol)
	assert.Equal(t, "Apple Inc.", byTicker[0].Name)

	byName, err := idx.Search(context.Background(), "micro", 10)
	require.NoError(t, err)
	assert.Contains(t, symbolsOf(byName), "MSFT")

	none, err := idx.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSymbolIndex_IndexReplacesBySymbol(t *testing.T) {
	ctx := context.Background()
	idx, err := NewSymbolIndexRepository(nil)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Index(ctx, []dto.SearchResult{{Symbol: "shop", Name: "Shopify Inc", Exchange: "NYSE"}}))
	require.NoError(t, idx.Index(ctx, []dto.SearchResult{{Symbol: "SHOP", Name: "Shopify Inc.", Exchange: "NYSE"}, {Symbol: ""}}))

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	results, err := idx.Search(ctx, "shopify", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "SHOP", results[0].Symbol)
	assert.Equal(t, "Shopify Inc.", results[0].Name)
}
