package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/utils"

	"gorm.io/datatypes"
)

const searchFallbackLimit = 10

// StockService defines the interface for market data, prediction and news operations.
type StockService interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
	Search(ctx context.Context, query string) ([]dto.SearchResult, error)
	GetHistory(ctx context.Context, symbol, period string) (*dto.HistoryResponse, error)
	Predict(ctx context.Context, accountID uint, req *dto.PredictRequest) (json.RawMessage, error)
	GetNews(ctx context.Context, symbol string) ([]dto.NewsItem, error)
	GetWatchlistNews(ctx context.Context, accountID uint) ([]dto.NewsItem, error)
}

// NewStockService creates a new stock service.
func NewStockService(
	marketData repository.MarketDataRepository,
	symbolIndex repository.SymbolIndexRepository,
	mlRepo repository.MLRepository,
	newsRepo repository.NewsRepository,
	predictionRepo repository.PredictionRepository,
	watchlistRepo repository.WatchlistRepository,
	newsLimit int,
	logger *logger.Logger,
) StockService {
	if newsLimit <= 0 {
		newsLimit = 20
	}
	return &stockService{
		marketData:     marketData,
		symbolIndex:    symbolIndex,
		mlRepo:         mlRepo,
		newsRepo:       newsRepo,
		predictionRepo: predictionRepo,
		watchlistRepo:  watchlistRepo,
		newsLimit:      newsLimit,
		logger:         logger,
	}
}

type stockService struct {
	marketData     repository.MarketDataRepository
	symbolIndex    repository.SymbolIndexRepository
	mlRepo         repository.MLRepository
	newsRepo       repository.NewsRepository
	predictionRepo repository.PredictionRepository
	watchlistRepo  repository.WatchlistRepository
	newsLimit      int
	logger         *logger.Logger
}

// GetQuote returns a live quote for symbol.
func (s *stockService) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	quote, err := s.marketData.GetQuote(ctx, normalized)
	if err != nil {
		s.logUpstreamError(ctx, "Failed to fetch quote", normalized, err)
		return nil, err
	}
	return quote, nil
}

// Search returns provider matches for query, falling back to the local symbol index when the provider has none.
func (s *stockService) Search(ctx context.Context, query string) ([]dto.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("Search query is required")
	}

	results, err := s.marketData.Search(ctx, query)
	if err != nil {
		s.logger.WarnContext(ctx, "Provider search failed", logger.StringField("query", query), logger.ErrorField(err))
		results = nil
	}

	if len(results) > 0 {
		if err := s.symbolIndex.Index(ctx, results); err != nil {
			s.logger.WarnContext(ctx, "Failed to index search results", logger.ErrorField(err))
		}
		return results, nil
	}

	fallback, err := s.symbolIndex.Search(ctx, query, searchFallbackLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "Symbol index search failed", logger.StringField("query", query), logger.ErrorField(err))
		return []dto.SearchResult{}, nil
	}
	if len(fallback) > 0 {
		s.logger.InfoContext(ctx, "Serving search from symbol index", logger.StringField("query", query), logger.IntField("matches", len(fallback)))
	}
	return fallback, nil
}

// GetHistory returns the closes of symbol over period.
func (s *stockService) GetHistory(ctx context.Context, symbol, period string) (*dto.HistoryResponse, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = "1m"
	}

	points, err := s.marketData.GetHistory(ctx, normalized, period)
	if err != nil {
		s.logUpstreamError(ctx, "Failed to fetch history", normalized, err)
		return nil, err
	}
	return &dto.HistoryResponse{Symbol: normalized, Period: period, Points: points}, nil
}

// Predict forwards the request to the prediction service and records the outcome in the account's history.
// Upstream failures return Unavailable and record nothing.
func (s *stockService) Predict(ctx context.Context, accountID uint, req *dto.PredictRequest) (json.RawMessage, error) {
	symbol, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	days := common.MinPredictionDays
	if req.Days != nil {
		days = *req.Days
	}
	if days < common.MinPredictionDays || days > common.MaxPredictionDays {
		return nil, apperror.Validation("Days must be between 1 and 30")
	}

	prediction, err := s.mlRepo.Predict(ctx, symbol, days)
	if err != nil {
		s.logger.ErrorContext(ctx, "Prediction service call failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return nil, err
	}

	record := &entity.PredictionRecord{
		AccountID:      accountID,
		Symbol:         symbol,
		Recommendation: NormalizeRecommendation(prediction.Recommendation),
		Confidence:     ClampConfidence(prediction.Confidence),
		CurrentPrice:   utils.RoundPrice(prediction.CurrentPrice),
		TargetPrice:    utils.RoundPrice(prediction.PredictedPrice),
		Days:           days,
		Factors:        entity.StringList(prediction.Factors),
		Payload:        datatypes.JSON(prediction.Raw),
	}
	if err := s.predictionRepo.Create(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record prediction", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "Prediction recorded",
		logger.Field("account_id", accountID),
		logger.StringField("symbol", symbol),
		logger.StringField("recommendation", string(record.Recommendation)),
	)
	return prediction.Raw, nil
}

// NormalizeRecommendation maps a free-form recommendation such as "Strong Buy" onto Buy, Hold or Sell.
func NormalizeRecommendation(raw string) entity.Recommendation {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "buy"):
		return entity.RecommendationBuy
	case strings.Contains(lower, "sell"):
		return entity.RecommendationSell
	default:
		return entity.RecommendationHold
	}
}

// ClampConfidence bounds a confidence value to [0, 100].
func ClampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// GetNews returns headlines for one symbol.
func (s *stockService) GetNews(ctx context.Context, symbol string) ([]dto.NewsItem, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return s.newsRepo.FetchHeadlines(ctx, []string{normalized}, s.newsLimit)
}

// GetWatchlistNews returns headlines for every symbol on the account's watchlist.
func (s *stockService) GetWatchlistNews(ctx context.Context, accountID uint) ([]dto.NewsItem, error) {
	entries, err := s.watchlistRepo.ListByAccount(ctx, accountID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load watchlist", logger.ErrorField(err), logger.Field("account_id", accountID))
		return nil, err
	}
	if len(entries) == 0 {
		return []dto.NewsItem{}, nil
	}

	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		symbols = append(symbols, e.Symbol)
	}
	return s.newsRepo.FetchHeadlines(ctx, symbols, s.newsLimit)
}

func (s *stockService) logUpstreamError(ctx context.Context, msg, symbol string, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound, apperror.KindValidation:
		s.logger.InfoContext(ctx, msg, logger.StringField("symbol", symbol), logger.ErrorField(err))
	default:
		s.logger.ErrorContext(ctx, msg, logger.StringField("symbol", symbol), logger.ErrorField(err))
	}
}
