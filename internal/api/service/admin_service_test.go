package service

import (
	"context"
	"strings"
	"testing"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(r *repos) AdminService {
	return NewAdminService(r.accounts, r.watchlist, r.predictions, r.stocks, telegram.NewNoopNotifier(), logger.NewNop())
}

func TestAdminService_ListAccounts(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := newTestAdminService(r)
	r.account(t, "Root", "root@example.com", entity.RoleAdmin)
	r.account(t, "Alice", "alice@example.com", entity.RoleUser)
	bob := r.account(t, "Bob", "bob@example.com", entity.RoleUser)
	require.NoError(t, r.accounts.UpdateStatus(ctx, bob.ID, entity.AccountStatusBanned))

	page, err := svc.ListAccounts(ctx, &dto.ListAccountsQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Users, 1)

	defaults, err := svc.ListAccounts(ctx, &dto.ListAccountsQuery{Page: -3, Limit: 0, Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.CurrentPage)
	assert.Equal(t, 1, defaults.TotalPages)
	assert.Len(t, defaults.Users, 3)

	banned, err := svc.ListAccounts(ctx, &dto.ListAccountsQuery{Status: "Banned"})
	require.NoError(t, err)
	require.Len(t, banned.Users, 1)
	assert.Equal(t, "bob@example.com", banned.Users[0].Email)

	search, err := svc.ListAccounts(ctx, &dto.ListAccountsQuery{Search: "ali"})
	require.NoError(t, err)
	require.Len(t, search.Users, 1)
	assert.Equal(t, "Alice", search.Users[0].Name)

	_, err = svc.ListAccounts(ctx, &dto.ListAccountsQuery{Status: "deleted"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	empty, err := svc.ListAccounts(ctx, &dto.ListAccountsQuery{Search: "nobody"})
	require.NoError(t, err)
	assert.Zero(t, empty.TotalPages)
	assert.NotNil(t, empty.Users)
}

func TestAdminService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := newTestAdminService(r)
	root := r.account(t, "Root", "root@example.com", entity.RoleAdmin)
	alice := r.account(t, "Alice", "alice@example.com", entity.RoleUser)

	resp, err := svc.UpdateStatus(ctx, root, alice.ID, "banned")
	require.NoError(t, err)
	assert.Equal(t, "User status updated successfully", resp.Message)
	assert.Equal(t, "banned", resp.User.Status)

	_, err = svc.UpdateStatus(ctx, root, alice.ID, "suspended")
	assert.Equal(t, "Invalid status", apperror.Message(err))

	_, err = svc.UpdateStatus(ctx, root, root.ID, "banned")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "You cannot change your own status", apperror.Message(err))

	_, err = svc.UpdateStatus(ctx, root, 999, "active")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAdminService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := newTestAdminService(r)
	root := r.account(t, "Root", "root@example.com", entity.RoleAdmin)
	alice := r.account(t, "Alice", "alice@example.com", entity.RoleUser)
	require.NoError(t, r.watchlist.Add(ctx, &entity.WatchlistEntry{AccountID: alice.ID, Symbol: "AAPL"}))

	err := svc.DeleteAccount(ctx, root, root.ID)
	assert.Equal(t, "You cannot delete your own account", apperror.Message(err))

	require.NoError(t, svc.DeleteAccount(ctx, root, alice.ID))
	_, err = r.accounts.FindByID(ctx, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	entries, err := r.watchlist.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, entries)

	err = svc.DeleteAccount(ctx, root, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAdminService_StatsAnalyticsActivity(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := newTestAdminService(r)
	r.account(t, "Root", "root@example.com", entity.RoleAdmin)
	alice := r.account(t, "Alice", "alice@example.com", entity.RoleUser)
	bob := r.account(t, "Bob", "bob@example.com", entity.RoleUser)
	require.NoError(t, r.accounts.UpdateStatus(ctx, bob.ID, entity.AccountStatusPending))
	require.NoError(t, r.watchlist.Add(ctx, &entity.WatchlistEntry{AccountID: alice.ID, Symbol: "AAPL"}))

	for _, rec := range []entity.PredictionRecord{
		{AccountID: alice.ID, Symbol: "AAPL", Recommendation: entity.RecommendationBuy, Confidence: 92},
		{AccountID: alice.ID, Symbol: "AAPL", Recommendation: entity.RecommendationHold, Confidence: 84},
		{AccountID: alice.ID, Symbol: "TSLA", Recommendation: entity.RecommendationSell, Confidence: 50},
	} {
		rec.Days = 1
		require.NoError(t, r.predictions.Create(ctx, &rec))
	}

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.PendingUsers)
	assert.Equal(t, int64(1), stats.AdminUsers)
	assert.Equal(t, int64(3), stats.TotalPredictions)
	assert.Equal(t, 75.33, stats.AverageConfidence)
	assert.Equal(t, int64(1), stats.TotalWatchlistEntries)

	analytics, err := svc.GetAnalytics(ctx)
	require.NoError(t, err)
	assert.Len(t, analytics.UserGrowth, 7)
	require.Len(t, analytics.PredictionAccuracy, 4)
	assert.Equal(t, "Excellent (90%+)", analytics.PredictionAccuracy[0].Name)
	assert.Equal(t, int64(1), analytics.PredictionAccuracy[0].Value)
	assert.Equal(t, int64(1), analytics.PredictionAccuracy[1].Value)
	assert.Equal(t, int64(0), analytics.PredictionAccuracy[2].Value)
	assert.Equal(t, int64(1), analytics.PredictionAccuracy[3].Value)
	require.NotEmpty(t, analytics.TopStocks)
	assert.Equal(t, dto.TopStock{Symbol: "AAPL", Predictions: 2, Accuracy: 88}, analytics.TopStocks[0])

	activity, err := svc.GetActivity(ctx)
	require.NoError(t, err)
	assert.Len(t, activity, 6)
	var users, predictions int
	for _, item := range activity {
		switch item.Type {
		case "user":
			users++
			assert.True(t, strings.HasPrefix(item.Event, "New user registered: "))
		case "prediction":
			predictions++
			assert.True(t, strings.HasPrefix(item.ID, "prediction-"))
		}
	}
	assert.Equal(t, 3, users)
	assert.Equal(t, 3, predictions)
	for i := 1; i < len(activity); i++ {
		assert.False(t, activity[i].Time.After(activity[i-1].Time), "activity is newest first")
	}
}
