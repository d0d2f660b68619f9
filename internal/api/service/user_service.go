package service

import (
	"context"
	"strings"
	"sync"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"
)

const enrichConcurrency = 4

// UserService defines the interface for profile, watchlist and prediction history operations.
type UserService interface {
	GetProfile(ctx context.Context, account *entity.Account) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, account *entity.Account, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error)
	GetWatchlist(ctx context.Context, accountID uint) ([]dto.EnrichedWatchlistItem, error)
	AddToWatchlist(ctx context.Context, accountID uint, req *dto.AddWatchlistRequest) (*dto.WatchlistResponse, error)
	RemoveFromWatchlist(ctx context.Context, accountID uint, symbol string) (*dto.WatchlistResponse, error)
	GetPredictions(ctx context.Context, accountID uint) ([]dto.PredictionResponse, error)
}

// NewUserService creates a new user service.
func NewUserService(
	accountRepo repository.AccountRepository,
	watchlistRepo repository.WatchlistRepository,
	predictionRepo repository.PredictionRepository,
	marketData repository.MarketDataRepository,
	logger *logger.Logger,
) UserService {
	return &userService{
		accountRepo:    accountRepo,
		watchlistRepo:  watchlistRepo,
		predictionRepo: predictionRepo,
		marketData:     marketData,
		logger:         logger,
	}
}

type userService struct {
	accountRepo    repository.AccountRepository
	watchlistRepo  repository.WatchlistRepository
	predictionRepo repository.PredictionRepository
	marketData     repository.MarketDataRepository
	logger         *logger.Logger
}

// NormalizeSymbol trims and upper-cases a ticker, rejecting empty or malformed input.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", apperror.Validation("Symbol is required")
	}
	if len(s) > 32 {
		return "", apperror.Validation("Symbol is too long")
	}
	for _, r := range s {
		isAlnum := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum && !strings.ContainsRune(".-^=", r) {
			return "", apperror.Validation("Symbol contains invalid characters")
		}
	}
	return s, nil
}

// GetProfile returns the account with its watchlist and prediction history.
func (s *userService) GetProfile(ctx context.Context, account *entity.Account) (*dto.ProfileResponse, error) {
	entries, err := s.watchlistRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load watchlist", logger.ErrorField(err), logger.Field("account_id", account.ID))
		return nil, err
	}
	records, err := s.predictionRepo.ListByAccount(ctx, account.ID, 0)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load predictions", logger.ErrorField(err), logger.Field("account_id", account.ID))
		return nil, err
	}

	return &dto.ProfileResponse{
		AccountResponse: ToAccountResponse(account),
		Watchlist:       toWatchlistResponse(entries),
		Predictions:     toPredictionResponses(records),
	}, nil
}

// UpdateProfile changes name and/or email; absent fields are left as they are.
func (s *userService) UpdateProfile(ctx context.Context, account *entity.Account, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error) {
	updated := *account
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		updated.Email = repository.NormalizeEmail(*req.Email)
	}

	if err := s.accountRepo.Update(ctx, &updated); err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.logger.ErrorContext(ctx, "Failed to update profile", logger.ErrorField(err), logger.Field("account_id", account.ID))
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Profile updated", logger.Field("account_id", account.ID))
	return &dto.UpdateProfileResponse{
		Message: "Profile updated successfully",
		User:    ToAccountResponse(&updated),
	}, nil
}

// GetWatchlist returns the watchlist enriched with live quotes and the account's latest predictions.
// A failed quote leaves zeroed price fields; a missing prediction yields Hold/0/Neutral.
func (s *userService) GetWatchlist(ctx context.Context, accountID uint) ([]dto.EnrichedWatchlistItem, error) {
	entries, err := s.watchlistRepo.ListByAccount(ctx, accountID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load watchlist", logger.ErrorField(err), logger.Field("account_id", accountID))
		return nil, err
	}

	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		symbols = append(symbols, e.Symbol)
	}
	latest, err := s.predictionRepo.LatestBySymbols(ctx, accountID, symbols)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load latest predictions", logger.ErrorField(err))
		latest = map[string]entity.PredictionRecord{}
	}

	items := make([]dto.EnrichedWatchlistItem, len(entries))
	for i, e := range entries {
		item := dto.EnrichedWatchlistItem{
			Symbol:     e.Symbol,
			Name:       e.Name,
			AddedAt:    e.AddedAt,
			Prediction: string(entity.RecommendationHold),
			Sentiment:  "Neutral",
		}
		if rec, ok := latest[e.Symbol]; ok {
			item.Prediction = string(rec.Recommendation)
			item.Confidence = rec.Confidence
			item.TargetPrice = rec.TargetPrice
			item.Sentiment = sentimentFromConfidence(rec.Confidence)
		}
		items[i] = item
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, enrichConcurrency)
	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(item *dto.EnrichedWatchlistItem) {
			defer wg.Done()
			defer func() { <-sem }()

			quote, err := s.marketData.GetQuote(ctx, item.Symbol)
			if err != nil {
				s.logger.WarnContext(ctx, "Failed to enrich watchlist entry", logger.StringField("symbol", item.Symbol), logger.ErrorField(err))
				return
			}
			item.Price = quote.Price
			item.Change = quote.Change
			item.ChangePercent = quote.ChangePercent
			item.Volume = quote.Volume
		}(&items[i])
	}
	wg.Wait()

	return items, nil
}

// sentimentFromConfidence derives the watchlist sentiment label from a prediction confidence.
func sentimentFromConfidence(confidence float64) string {
	switch {
	case confidence > 80:
		return "Positive"
	case confidence > 60:
		return "Neutral"
	default:
		return "Negative"
	}
}

// AddToWatchlist appends a symbol. Adding a symbol that is already present yields a Conflict error.
func (s *userService) AddToWatchlist(ctx context.Context, accountID uint, req *dto.AddWatchlistRequest) (*dto.WatchlistResponse, error) {
	symbol, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = symbol
	}

	entry := &entity.WatchlistEntry{AccountID: accountID, Symbol: symbol, Name: name}
	if err := s.watchlistRepo.Add(ctx, entry); err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.logger.ErrorContext(ctx, "Failed to add to watchlist", logger.ErrorField(err), logger.StringField("symbol", symbol))
		}
		return nil, err
	}

	entries, err := s.watchlistRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &dto.WatchlistResponse{Message: "Stock added to watchlist", Watchlist: toWatchlistResponse(entries)}, nil
}

// RemoveFromWatchlist removes a symbol; removing an absent symbol returns the unchanged list.
func (s *userService) RemoveFromWatchlist(ctx context.Context, accountID uint, symbol string) (*dto.WatchlistResponse, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := s.watchlistRepo.Remove(ctx, accountID, normalized); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove from watchlist", logger.ErrorField(err), logger.StringField("symbol", normalized))
		return nil, err
	}

	entries, err := s.watchlistRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &dto.WatchlistResponse{Message: "Stock removed from watchlist", Watchlist: toWatchlistResponse(entries)}, nil
}

// GetPredictions returns the account's prediction history, newest first.
func (s *userService) GetPredictions(ctx context.Context, accountID uint) ([]dto.PredictionResponse, error) {
	records, err := s.predictionRepo.ListByAccount(ctx, accountID, 0)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load predictions", logger.ErrorField(err), logger.Field("account_id", accountID))
		return nil, err
	}
	return toPredictionResponses(records), nil
}
