package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-stock-tracker/internal/api/dto"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultSymbols seed the local index so search has a fallback before any provider call succeeds.
var DefaultSymbols = []dto.SearchResult{
	{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Type: "EQUITY"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Exchange: "NASDAQ", Type: "EQUITY"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ", Type: "EQUITY"},
	{Symbol: "TSLA", Name: "Tesla, Inc.", Exchange: "NASDAQ", Type: "EQUITY"},
	{Symbol: "AMZN", Name: "Amazon.com, Inc.", Exchange: "NASDAQ", Type: "EQUITY"},
	{Symbol: "META", Name: "Meta Platforms, Inc.", Exchange: "NASDAQ", Type: "EQUITY"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Exchange: "NASDAQ", Type: "EQUITY"},
	{Symbol: "NFLX", Name: "Netflix, Inc.", Exchange: "NASDAQ", Type: "EQUITY"},
}

// SymbolIndexRepository is a local full-text index of symbols seen from the provider.
type SymbolIndexRepository interface {
	Index(ctx context.Context, results []dto.SearchResult) error
	Search(ctx context.Context, q string, limit int) ([]dto.SearchResult, error)
	Count() (uint64, error)
	Close() error
}

type symbolDocument struct {
	Symbol   string `json:"symbol"`
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

type symbolIndexRepository struct {
	index bleve.Index
}

// NewSymbolIndexRepository builds an in-memory bleve index seeded with seed.
func NewSymbolIndexRepository(seed []dto.SearchResult) (SymbolIndexRepository, error) {
	index, err := bleve.NewMemOnly(buildSymbolMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create symbol index: %w", err)
	}
	repo := &symbolIndexRepository{index: index}
	if err := repo.Index(context.Background(), seed); err != nil {
		_ = index.Close()
		return nil, err
	}
	return repo, nil
}

func buildSymbolMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	// ticker holds the lower-cased symbol as a single token so prefix queries match "aa" -> "aapl".
	tickerField := bleve.NewTextFieldMapping()
	tickerField.Analyzer = keyword.Name
	tickerField.Store = false
	doc.AddFieldMappingsAt("ticker", tickerField)

	nameField := bleve.NewTextFieldMapping()
	nameField.Store = true
	doc.AddFieldMappingsAt("name", nameField)

	stored := bleve.NewTextFieldMapping()
	stored.Store = true
	stored.Index = false
	doc.AddFieldMappingsAt("symbol", stored)
	doc.AddFieldMappingsAt("exchange", stored)
	doc.AddFieldMappingsAt("type", stored)

	indexMapping.DefaultMapping = doc
	return indexMapping
}

// Index adds or replaces the given symbols.
func (r *symbolIndexRepository) Index(_ context.Context, results []dto.SearchResult) error {
	if len(results) == 0 {
		return nil
	}
	batch := r.index.NewBatch()
	for _, res := range results {
		if res.Symbol == "" {
			continue
		}
		doc := symbolDocument{
			Symbol:   strings.ToUpper(res.Symbol),
			Ticker:   strings.ToLower(res.Symbol),
			Name:     res.Name,
			Exchange: res.Exchange,
			Type:     res.Type,
		}
		if err := batch.Index(doc.Symbol, doc); err != nil {
			return fmt.Errorf("failed to add symbol to batch: %w", err)
		}
	}
	if err := r.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index symbols: %w", err)
	}
	return nil
}

// Search matches q as a ticker prefix or against the company name.
func (r *symbolIndexRepository) Search(_ context.Context, q string, limit int) ([]dto.SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []dto.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	tickerPrefix := bleve.NewPrefixQuery(strings.ToLower(q))
	tickerPrefix.SetField("ticker")
	tickerPrefix.SetBoost(2)

	nameMatch := bleve.NewMatchQuery(q)
	nameMatch.SetField("name")

	queries := []query.Query{tickerPrefix, nameMatch}
	// Prefix on the last word lets "micro" find "Microsoft".
	words := strings.Fields(strings.ToLower(q))
	if last := words[len(words)-1]; len(last) >= 2 {
		namePrefix := bleve.NewPrefixQuery(last)
		namePrefix.SetField("name")
		queries = append(queries, namePrefix)
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Fields = []string{"symbol", "name", "exchange", "type"}
	req.Size = limit

	res, err := r.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("symbol index search failed: %w", err)
	}

	getString := func(fields map[string]interface{}, key string) string {
		if val, ok := fields[key].(string); ok {
			return val
		}
		return ""
	}

	results := make([]dto.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, dto.SearchResult{
			Symbol:   getString(hit.Fields, "symbol"),
			Name:     getString(hit.Fields, "name"),
			Exchange: getString(hit.Fields, "exchange"),
			Type:     getString(hit.Fields, "type"),
		})
	}
	return results, nil
}

func (r *symbolIndexRepository) Count() (uint64, error) {
	return r.index.DocCount()
}

func (r *symbolIndexRepository) Close() error {
	return r.index.Close()
}
