package repository

import (
	"context"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"

	"gorm.io/gorm"
)

const msgAlreadyInWatchlist = "Stock already in watchlist"

// WatchlistRepository defines the interface for watchlist data operations.
type WatchlistRepository interface {
	Add(ctx context.Context, entry *entity.WatchlistEntry) error
	Remove(ctx context.Context, accountID uint, symbol string) error
	ListByAccount(ctx context.Context, accountID uint) ([]entity.WatchlistEntry, error)
	DistinctSymbols(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// NewWatchlistRepository creates a new GORM-based watchlist repository.
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

type watchlistRepository struct {
	db *gorm.DB
}

// Add appends a symbol to an account's watchlist. A symbol already present yields a Conflict error.
func (r *watchlistRepository) Add(ctx context.Context, entry *entity.WatchlistEntry) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.WatchlistEntry{}).
		Where("account_id = ? AND symbol = ?", entry.AccountID, entry.Symbol).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict(msgAlreadyInWatchlist)
	}

	return translateError(r.db.WithContext(ctx).Create(entry).Error, "", msgAlreadyInWatchlist)
}

// Remove deletes a symbol from an account's watchlist. Removing an absent symbol is not an error.
func (r *watchlistRepository) Remove(ctx context.Context, accountID uint, symbol string) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND symbol = ?", accountID, symbol).
		Delete(&entity.WatchlistEntry{}).Error
}

// ListByAccount returns an account's watchlist in insertion order.
func (r *watchlistRepository) ListByAccount(ctx context.Context, accountID uint) ([]entity.WatchlistEntry, error) {
	var entries []entity.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("added_at ASC").Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DistinctSymbols returns every symbol present on at least one watchlist.
func (r *watchlistRepository) DistinctSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := r.db.WithContext(ctx).Model(&entity.WatchlistEntry{}).
		Distinct("symbol").
		Order("symbol").
		Pluck("symbol", &symbols).Error
	return symbols, err
}

func (r *watchlistRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.WatchlistEntry{}).Count(&count).Error
	return count, err
}
