package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/telegram"
	"golang-stock-tracker/pkg/utils"
)

const (
	growthDays        = 7
	topStocksLimit    = 5
	activityLimit     = 20
	dailyActiveWindow = 24 * time.Hour
)

// AdminService defines the interface for the admin dashboard operations.
type AdminService interface {
	GetStats(ctx context.Context) (*dto.StatsResponse, error)
	ListAccounts(ctx context.Context, query *dto.ListAccountsQuery) (*dto.AccountListResponse, error)
	UpdateStatus(ctx context.Context, actor *entity.Account, id uint, status string) (*dto.UpdateStatusResponse, error)
	DeleteAccount(ctx context.Context, actor *entity.Account, id uint) error
	GetAnalytics(ctx context.Context) (*dto.AnalyticsResponse, error)
	GetActivity(ctx context.Context) ([]dto.ActivityItem, error)
}

// NewAdminService creates a new admin service.
func NewAdminService(
	accountRepo repository.AccountRepository,
	watchlistRepo repository.WatchlistRepository,
	predictionRepo repository.PredictionRepository,
	stockRepo repository.StockRepository,
	notifier telegram.Notifier,
	logger *logger.Logger,
) AdminService {
	return &adminService{
		accountRepo:    accountRepo,
		watchlistRepo:  watchlistRepo,
		predictionRepo: predictionRepo,
		stockRepo:      stockRepo,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

type adminService struct {
	accountRepo    repository.AccountRepository
	watchlistRepo  repository.WatchlistRepository
	predictionRepo repository.PredictionRepository
	stockRepo      repository.StockRepository
	notifier       telegram.Notifier
	logger         *logger.Logger
	now            func() time.Time
}

// GetStats returns aggregate counts over accounts, predictions, watchlists and the stock cache.
func (s *adminService) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	byStatus, err := s.accountRepo.CountByStatus(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Failed to count accounts", err)
	}
	admins, err := s.accountRepo.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, s.internal(ctx, "Failed to count admins", err)
	}
	daily, err := s.accountRepo.CountLoggedInSince(ctx, s.now().Add(-dailyActiveWindow))
	if err != nil {
		return nil, s.internal(ctx, "Failed to count daily active accounts", err)
	}
	stocks, err := s.stockRepo.Count(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Failed to count stocks", err)
	}
	predictions, err := s.predictionRepo.Count(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Failed to count predictions", err)
	}
	avg, err := s.predictionRepo.AverageConfidence(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Failed to average confidence", err)
	}
	entries, err := s.watchlistRepo.Count(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Failed to count watchlist entries", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &dto.StatsResponse{
		TotalUsers:            total,
		ActiveUsers:           byStatus[entity.AccountStatusActive],
		BannedUsers:           byStatus[entity.AccountStatusBanned],
		PendingUsers:          byStatus[entity.AccountStatusPending],
		AdminUsers:            admins,
		DailyActiveUsers:      daily,
		TotalStocks:           stocks,
		TotalPredictions:      predictions,
		AverageConfidence:     utils.RoundPrice(avg),
		TotalWatchlistEntries: entries,
	}, nil
}

// ListAccounts returns one page of accounts, newest first.
func (s *adminService) ListAccounts(ctx context.Context, query *dto.ListAccountsQuery) (*dto.AccountListResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = common.DefaultPageLimit
	}
	if limit > common.MaxPageLimit {
		limit = common.MaxPageLimit
	}

	status := entity.AccountStatus(strings.ToLower(strings.TrimSpace(query.Status)))
	if status != "" && status != "all" && !status.Valid() {
		return nil, apperror.Validation("Invalid status filter")
	}
	if status == "all" {
		status = ""
	}

	accounts, total, err := s.accountRepo.List(ctx, repository.AccountFilter{
		Status: status,
		Search: strings.TrimSpace(query.Search),
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, s.internal(ctx, "Failed to list accounts", err)
	}

	users := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		users = append(users, ToAccountResponse(&accounts[i]))
	}

	return &dto.AccountListResponse{
		Users:       users,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
		Total:       total,
	}, nil
}

// UpdateStatus changes an account's status. Admins cannot change their own status.
func (s *adminService) UpdateStatus(ctx context.Context, actor *entity.Account, id uint, status string) (*dto.UpdateStatusResponse, error) {
	next := entity.AccountStatus(status)
	if !next.Valid() {
		return nil, apperror.Validation("Invalid status")
	}
	if actor.ID == id {
		return nil, apperror.Validation("You cannot change your own status")
	}

	if err := s.accountRepo.UpdateStatus(ctx, id, next); err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.logger.ErrorContext(ctx, "Failed to update account status", logger.ErrorField(err), logger.Field("account_id", id))
		}
		return nil, err
	}
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Account status updated",
		logger.Field("account_id", id),
		logger.StringField("status", string(next)),
		logger.Field("actor_id", actor.ID),
	)
	s.notify(telegram.AccountEvent{
		Type:   "status_changed",
		Name:   account.Name,
		Email:  account.Email,
		Detail: fmt.Sprintf("status set to %s by %s", next, actor.Email),
		At:     s.now(),
	})

	return &dto.UpdateStatusResponse{
		Message: "User status updated successfully",
		User:    ToAccountResponse(account),
	}, nil
}

// DeleteAccount removes an account with its watchlist and predictions. Admins cannot delete themselves.
func (s *adminService) DeleteAccount(ctx context.Context, actor *entity.Account, id uint) error {
	if actor.ID == id {
		return apperror.Validation("You cannot delete your own account")
	}
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.accountRepo.Delete(ctx, id); err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.logger.ErrorContext(ctx, "Failed to delete account", logger.ErrorField(err), logger.Field("account_id", id))
		}
		return err
	}

	s.logger.InfoContext(ctx, "Account deleted", logger.Field("account_id", id), logger.Field("actor_id", actor.ID))
	s.notify(telegram.AccountEvent{
		Type:   "deleted",
		Name:   account.Name,
		Email:  account.Email,
		Detail: "deleted by " + actor.Email,
		At:     s.now(),
	})
	return nil
}

// GetAnalytics derives user growth, confidence buckets and the most predicted symbols.
func (s *adminService) GetAnalytics(ctx context.Context) (*dto.AnalyticsResponse, error) {
	growth := make([]dto.GrowthPoint, 0, growthDays)
	for _, day := range utils.LastNDays(s.now(), growthDays) {
		count, err := s.accountRepo.CountCreatedBefore(ctx, day.AddDate(0, 0, 1))
		if err != nil {
			return nil, s.internal(ctx, "Failed to compute user growth", err)
		}
		growth = append(growth, dto.GrowthPoint{Date: utils.FormatDate(day), Users: count})
	}

	buckets, err := s.predictionRepo.ConfidenceBuckets(ctx)
	if err != nil {
		return nil, s.internal(ctx, "Failed to compute confidence buckets", err)
	}

	stats, err := s.predictionRepo.TopSymbols(ctx, topStocksLimit)
	if err != nil {
		return nil, s.internal(ctx, "Failed to compute top stocks", err)
	}
	top := make([]dto.TopStock, 0, len(stats))
	for _, st := range stats {
		top = append(top, dto.TopStock{
			Symbol:      st.Symbol,
			Predictions: st.Predictions,
			Accuracy:    utils.RoundPrice(st.AverageConfidence),
		})
	}

	return &dto.AnalyticsResponse{
		UserGrowth: growth,
		PredictionAccuracy: []dto.AccuracyBucket{
			{Name: "Excellent (90%+)", Value: buckets.Excellent, Color: "#10b981"},
			{Name: "Good (80-89%)", Value: buckets.Good, Color: "#3b82f6"},
			{Name: "Average (70-79%)", Value: buckets.Average, Color: "#f59e0b"},
			{Name: "Poor (<70%)", Value: buckets.Poor, Color: "#ef4444"},
		},
		TopStocks: top,
	}, nil
}

// GetActivity merges the latest registrations and predictions into one feed, newest first.
func (s *adminService) GetActivity(ctx context.Context) ([]dto.ActivityItem, error) {
	accounts, err := s.accountRepo.Recent(ctx, activityLimit)
	if err != nil {
		return nil, s.internal(ctx, "Failed to load recent accounts", err)
	}
	predictions, err := s.predictionRepo.Recent(ctx, activityLimit)
	if err != nil {
		return nil, s.internal(ctx, "Failed to load recent predictions", err)
	}

	items := make([]dto.ActivityItem, 0, len(accounts)+len(predictions))
	for _, a := range accounts {
		items = append(items, dto.ActivityItem{
			ID:    fmt.Sprintf("user-%d", a.ID),
			Time:  a.CreatedAt,
			Event: fmt.Sprintf("New user registered: %s", a.Email),
			Type:  "user",
		})
	}
	for _, p := range predictions {
		items = append(items, dto.ActivityItem{
			ID:    fmt.Sprintf("prediction-%d", p.ID),
			Time:  p.CreatedAt,
			Event: fmt.Sprintf("Prediction made for %s: %s (%.0f%%)", p.Symbol, p.Recommendation, p.Confidence),
			Type:  "prediction",
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Time.After(items[j].Time) })
	if len(items) > activityLimit {
		items = items[:activityLimit]
	}
	return items, nil
}

func (s *adminService) internal(ctx context.Context, msg string, err error) error {
	s.logger.ErrorContext(ctx, msg, logger.ErrorField(err))
	return apperror.Internal(msg, err)
}

func (s *adminService) notify(ev telegram.AccountEvent) {
	notifyAsync(s.notifier, s.logger, ev)
}
