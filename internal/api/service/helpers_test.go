package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"golang-stock-tracker/internal/api/database"
	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/sqlite"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type repos struct {
	db          *gorm.DB
	accounts    repository.AccountRepository
	watchlist   repository.WatchlistRepository
	predictions repository.PredictionRepository
	stocks      repository.StockRepository
}

func newRepos(t *testing.T) *repos {
	t.Helper()
	db, err := sqlite.NewDB(sqlite.Config{Path: filepath.Join(t.TempDir(), "service.db"), LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db.DB))
	t.Cleanup(func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &repos{
		db:          db.DB,
		accounts:    repository.NewAccountRepository(db.DB),
		watchlist:   repository.NewWatchlistRepository(db.DB),
		predictions: repository.NewPredictionRepository(db.DB),
		stocks:      repository.NewStockRepository(db.DB),
	}
}

func (r *repos) account(t *testing.T, name, email string, role entity.Role) *entity.Account {
	t.Helper()
	hash, err := HashPassword("secret123", 4)
	require.NoError(t, err)
	a := &entity.Account{Name: name, Email: email, PasswordHash: hash, Role: role, Status: entity.AccountStatusActive}
	require.NoError(t, r.accounts.Create(context.Background(), a))
	return a
}

type fakeMarketData struct {
	mu      sync.Mutex
	quotes  map[string]dto.Quote
	search  []dto.SearchResult
	history []dto.HistoricalPoint
	err     error
	calls   []string
}

func (f *fakeMarketData) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeMarketData) GetQuote(_ context.Context, symbol string) (*dto.Quote, error) {
	f.record("quote:" + symbol)
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, apperror.NotFound("Stock " + symbol + " not found")
	}
	return &q, nil
}

func (f *fakeMarketData) Search(_ context.Context, query string) ([]dto.SearchResult, error) {
	f.record("search:" + query)
	if f.err != nil {
		return nil, f.err
	}
	return f.search, nil
}

func (f *fakeMarketData) GetHistory(_ context.Context, symbol, period string) ([]dto.HistoricalPoint, error) {
	f.record("history:" + symbol + ":" + period)
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

type fakeML struct {
	prediction *dto.MLPrediction
	err        error
	lastDays   int
}

func (f *fakeML) Predict(_ context.Context, symbol string, days int) (*dto.MLPrediction, error) {
	f.lastDays = days
	if f.err != nil {
		return nil, f.err
	}
	p := *f.prediction
	p.Symbol = symbol
	return &p, nil
}

type fakeNews struct {
	items   []dto.NewsItem
	err     error
	symbols []string
}

func (f *fakeNews) FetchHeadlines(_ context.Context, symbols []string, limit int) ([]dto.NewsItem, error) {
	f.symbols = symbols
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}
