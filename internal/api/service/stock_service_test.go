package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockFixture struct {
	*repos
	market *fakeMarketData
	ml     *fakeML
	news   *fakeNews
	index  repository.SymbolIndexRepository
	svc    StockService
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	r := newRepos(t)
	index, err := repository.NewSymbolIndexRepository(repository.DefaultSymbols)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	f := &stockFixture{
		repos:  r,
		market: &fakeMarketData{quotes: map[string]dto.Quote{"AAPL": {Symbol: "AAPL", Price: 190}}},
		ml: &fakeML{prediction: &dto.MLPrediction{
			CurrentPrice:   190.123,
			PredictedPrice: 201.456,
			Confidence:     84.2,
			Recommendation: "Strong Buy",
			Factors:        []string{"Momentum"},
			Raw:            json.RawMessage(`{"recommendation":"Strong Buy","confidence":84.2}`),
		}},
		news:  &fakeNews{},
		index: index,
	}
	f.svc = NewStockService(f.market, index, f.ml, f.news, r.predictions, r.watchlist, 5, logger.NewNop())
	return f
}

func TestStockService_Predict(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture(t)
	alice := f.account(t, "Alice", "alice@example.com", entity.RoleUser)

	raw, err := f.svc.Predict(ctx, alice.ID, &dto.PredictRequest{Symbol: "aapl", Days: utils.ToPointer(7)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recommendation":"Strong Buy","confidence":84.2}`, string(raw))
	assert.Equal(t, 7, f.ml.lastDays)

	records, err := f.predictions.ListByAccount(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, entity.RecommendationBuy, rec.Recommendation)
	assert.Equal(t, 84.2, rec.Confidence)
	assert.Equal(t, 190.12, rec.CurrentPrice)
	assert.Equal(t, 201.46, rec.TargetPrice)
	assert.Equal(t, 7, rec.Days)
	assert.Equal(t, []string{"Momentum"}, []string(rec.Factors))
}

func TestStockService_PredictDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture(t)
	alice := f.account(t, "Alice", "alice@example.com", entity.RoleUser)

	_, err := f.svc.Predict(ctx, alice.ID, &dto.PredictRequest{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.ml.lastDays)

	for _, days := range []int{0, 31, -1} {
		_, err := f.svc.Predict(ctx, alice.ID, &dto.PredictRequest{Symbol: "AAPL", Days: utils.ToPointer(days)})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		assert.Equal(t, "Days must be between 1 and 30", apperror.Message(err))
	}
}

func TestStockService_PredictFailureRecordsNothing(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture(t)
	alice := f.account(t, "Alice", "alice@example.com", entity.RoleUser)
	f.ml.err = apperror.Unavailable("Prediction service unavailable", errors.New("connection refused"))

	_, err := f.svc.Predict(ctx, alice.ID, &dto.PredictRequest{Symbol: "AAPL"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))

	n, err := f.predictions.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNormalizeRecommendation(t *testing.T) {
	cases := map[string]entity.Recommendation{
		"Strong Buy":  entity.RecommendationBuy,
		"buy":         entity.RecommendationBuy,
		"SELL":        entity.RecommendationSell,
		"Strong Sell": entity.RecommendationSell,
		"Hold":        entity.RecommendationHold,
		"":            entity.RecommendationHold,
		"Accumulate":  entity.RecommendationHold,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeRecommendation(in), in)
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-5))
	assert.Equal(t, 100.0, ClampConfidence(140))
	assert.Equal(t, 72.5, ClampConfidence(72.5))
	assert.Equal(t, 0.0, ClampConfidence(math.NaN()))
}

func TestStockService_Search(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture(t)

	_, err := f.svc.Search(ctx, "  ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	f.market.search = []dto.SearchResult{{Symbol: "SHOP", Name: "Shopify Inc.", Exchange: "NYSE"}}
	results, err := f.svc.Search(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, f.market.search, results)

	f.market.search = nil
	f.market.err = apperror.Unavailable("Market data unavailable", errors.New("boom"))
	results, err = f.svc.Search(ctx, "shopify")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "SHOP", results[0].Symbol, "provider results are indexed for later fallback")

	results, err = f.svc.Search(ctx, "zzzz")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStockService_QuoteAndHistory(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture(t)
	f.market.history = []dto.HistoricalPoint{{Date: "2024-03-01", Value: 180}}

	quote, err := f.svc.GetQuote(ctx, " aapl")
	require.NoError(t, err)
	assert.Equal(t, 190.0, quote.Price)

	_, err = f.svc.GetQuote(ctx, "NOPE")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	history, err := f.svc.GetHistory(ctx, "aapl", "")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", history.Symbol)
	assert.Equal(t, "1m", history.Period)
	assert.Len(t, history.Points, 1)
	assert.Contains(t, f.market.calls, "history:AAPL:1m")
}

func TestStockService_News(t *testing.T) {
	ctx := context.Background()
	f := newStockFixture(t)
	alice := f.account(t, "Alice", "alice@example.com", entity.RoleUser)
	f.news.items = []dto.NewsItem{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}, {ID: "6"}}

	news, err := f.svc.GetWatchlistNews(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, news, "empty watchlist has no news")

	require.NoError(t, f.watchlist.Add(ctx, &entity.WatchlistEntry{AccountID: alice.ID, Symbol: "AAPL", Name: "Apple"}))
	require.NoError(t, f.watchlist.Add(ctx, &entity.WatchlistEntry{AccountID: alice.ID, Symbol: "TSLA", Name: "Tesla"}))

	news, err = f.svc.GetWatchlistNews(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, news, 5)
	assert.ElementsMatch(t, []string{"AAPL", "TSLA"}, f.news.symbols)

	news, err = f.svc.GetNews(ctx, "tsla")
	require.NoError(t, err)
	assert.Len(t, news, 5)
	assert.Equal(t, []string{"TSLA"}, f.news.symbols)
}
