package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/sentiment"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
)

const (
	snapshotHistoryPeriod = "1m"
	snapshotNewsLimit     = 10
)

// SnapshotService defines the interface for the background stock snapshot refresher.
type SnapshotService interface {
	Start(ctx context.Context) error
	RefreshAll(ctx context.Context) (refreshed int, err error)
	RefreshSymbol(ctx context.Context, symbol string) error
}

// NewSnapshotService creates a new snapshot service that runs on cronExpr.
func NewSnapshotService(
	watchlistRepo repository.WatchlistRepository,
	stockRepo repository.StockRepository,
	marketData repository.MarketDataRepository,
	newsRepo repository.NewsRepository,
	cronExpr string,
	logger *logger.Logger,
) SnapshotService {
	return &snapshotService{
		watchlistRepo: watchlistRepo,
		stockRepo:     stockRepo,
		marketData:    marketData,
		newsRepo:      newsRepo,
		cronExpr:      cronExpr,
		cronParser:    cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		logger:        logger,
		now:           time.Now,
	}
}

type snapshotService struct {
	watchlistRepo repository.WatchlistRepository
	stockRepo     repository.StockRepository
	marketData    repository.MarketDataRepository
	newsRepo      repository.NewsRepository
	cronExpr      string
	cronParser    cron.Parser
	logger        *logger.Logger
	now           func() time.Time
}

// Start runs RefreshAll at every activation of the cron expression until ctx is done.
func (s *snapshotService) Start(ctx context.Context) error {
	schedule, err := s.cronParser.Parse(s.cronExpr)
	if err != nil {
		return fmt.Errorf("invalid snapshot cron expression %q: %w", s.cronExpr, err)
	}
	s.logger.Info("Snapshot refresher started", logger.StringField("cron", s.cronExpr))

	for {
		next := schedule.Next(s.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Snapshot refresher stopping")
			return nil
		case <-timer.C:
			start := time.Now()
			refreshed, err := s.RefreshAll(ctx)
			if err != nil {
				s.logger.Error("Snapshot refresh failed", logger.ErrorField(err))
				continue
			}
			s.logger.Info("Snapshot refresh completed",
				logger.IntField("refreshed", refreshed),
				logger.DurationField("took", time.Since(start)),
			)
		}
	}
}

// RefreshAll refreshes every watchlisted symbol. A failure for one symbol is logged and skipped.
func (s *snapshotService) RefreshAll(ctx context.Context) (int, error) {
	symbols, err := s.watchlistRepo.DistinctSymbols(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if err := s.RefreshSymbol(ctx, symbol); err != nil {
			s.logger.Warn("Failed to refresh stock snapshot", logger.StringField("symbol", symbol), logger.ErrorField(err))
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// RefreshSymbol fetches the quote, a month of history and recent headlines for symbol and upserts its snapshot.
// Only the quote is required; history and news are best effort.
func (s *snapshotService) RefreshSymbol(ctx context.Context, symbol string) error {
	quote, err := s.marketData.GetQuote(ctx, symbol)
	if err != nil {
		return err
	}

	stock := &entity.Stock{
		Symbol:        quote.Symbol,
		Name:          quote.Name,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Volume:        quote.Volume,
		MarketCap:     quote.MarketCap,
		Sector:        quote.Sector,
		DayHigh:       quote.DayHigh,
		DayLow:        quote.DayLow,
		Open:          quote.Open,
		PreviousClose: quote.PreviousClose,
		Sentiment:     string(sentiment.Neutral),
		RefreshedAt:   s.now(),
	}
	if stock.Symbol == "" {
		stock.Symbol = symbol
	}

	points, err := s.marketData.GetHistory(ctx, symbol, snapshotHistoryPeriod)
	if err != nil {
		s.logger.Warn("Snapshot history unavailable", logger.StringField("symbol", symbol), logger.ErrorField(err))
	} else if raw, err := json.Marshal(points); err == nil {
		stock.Candles = datatypes.JSON(raw)
	}

	news, err := s.newsRepo.FetchHeadlines(ctx, []string{symbol}, snapshotNewsLimit)
	if err != nil {
		s.logger.Warn("Snapshot news unavailable", logger.StringField("symbol", symbol), logger.ErrorField(err))
	} else if len(news) > 0 {
		labels := make([]sentiment.Label, 0, len(news))
		for _, item := range news {
			labels = append(labels, sentiment.Label(item.Impact))
		}
		stock.Sentiment = string(sentiment.Majority(labels))
		stock.SentimentScore = sentimentScore(labels)
	}

	return s.stockRepo.Upsert(ctx, stock)
}

// sentimentScore is (positive - negative) / total, in [-1, 1].
func sentimentScore(labels []sentiment.Label) float64 {
	if len(labels) == 0 {
		return 0
	}
	var score int
	for _, l := range labels {
		switch l {
		case sentiment.Positive:
			score++
		case sentiment.Negative:
			score--
		}
	}
	return float64(score) / float64(len(labels))
}
