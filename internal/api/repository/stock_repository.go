package repository

import (
	"context"

	"golang-stock-tracker/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository defines the interface for the persisted stock snapshots.
type StockRepository interface {
	Upsert(ctx context.Context, stock *entity.Stock) error
	FindBySymbol(ctx context.Context, symbol string) (*entity.Stock, error)
	Count(ctx context.Context) (int64, error)
}

// NewStockRepository creates a new GORM-based stock repository.
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

type stockRepository struct {
	db *gorm.DB
}

// Upsert inserts the snapshot or refreshes the existing row with the same symbol.
func (r *stockRepository) Upsert(ctx context.Context, stock *entity.Stock) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "price", "change", "change_percent", "volume", "market_cap", "sector",
			"day_high", "day_low", "open", "previous_close", "candles", "sentiment",
			"sentiment_score", "refreshed_at", "updated_at",
		}),
	}).Create(stock).Error
}

func (r *stockRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Stock, error) {
	var stock entity.Stock
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&stock).Error; err != nil {
		return nil, translateError(err, "Stock not found", "")
	}
	return &stock, nil
}

func (r *stockRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Stock{}).Count(&count).Error
	return count, err
}
