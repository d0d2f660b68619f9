package repository

import (
	"context"

	"golang-stock-tracker/internal/entity"

	"gorm.io/gorm"
)

// ConfidenceBuckets counts predictions per confidence band.
type ConfidenceBuckets struct {
	Excellent int64 // >= 90
	Good      int64 // 80-89
	Average   int64 // 70-79
	Poor      int64 // < 70
}

// SymbolStat aggregates the predictions made for one symbol.
type SymbolStat struct {
	Symbol            string
	Predictions       int64
	AverageConfidence float64
}

// PredictionRepository defines the interface for prediction history operations.
type PredictionRepository interface {
	Create(ctx context.Context, record *entity.PredictionRecord) error
	ListByAccount(ctx context.Context, accountID uint, limit int) ([]entity.PredictionRecord, error)
	LatestBySymbols(ctx context.Context, accountID uint, symbols []string) (map[string]entity.PredictionRecord, error)
	Count(ctx context.Context) (int64, error)
	AverageConfidence(ctx context.Context) (float64, error)
	ConfidenceBuckets(ctx context.Context) (*ConfidenceBuckets, error)
	TopSymbols(ctx context.Context, limit int) ([]SymbolStat, error)
	Recent(ctx context.Context, limit int) ([]entity.PredictionRecord, error)
}

// NewPredictionRepository creates a new GORM-based prediction repository.
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

type predictionRepository struct {
	db *gorm.DB
}

// Create appends a prediction record.
func (r *predictionRepository) Create(ctx context.Context, record *entity.PredictionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByAccount returns an account's predictions, newest first. A non-positive limit returns all of them.
func (r *predictionRepository) ListByAccount(ctx context.Context, accountID uint, limit int) ([]entity.PredictionRecord, error) {
	var records []entity.PredictionRecord
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// LatestBySymbols returns the newest prediction the account made for each of the given symbols.
// Symbols without any prediction are absent from the map.
func (r *predictionRepository) LatestBySymbols(ctx context.Context, accountID uint, symbols []string) (map[string]entity.PredictionRecord, error) {
	latest := make(map[string]entity.PredictionRecord, len(symbols))
	if len(symbols) == 0 {
		return latest, nil
	}

	var records []entity.PredictionRecord
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND symbol IN ?", accountID, symbols).
		Order("created_at DESC").Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if _, seen := latest[rec.Symbol]; !seen {
			latest[rec.Symbol] = rec
		}
	}
	return latest, nil
}

func (r *predictionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.PredictionRecord{}).Count(&count).Error
	return count, err
}

func (r *predictionRepository) AverageConfidence(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&entity.PredictionRecord{}).
		Select("COALESCE(AVG(confidence), 0)").
		Scan(&avg).Error
	return avg, err
}

// ConfidenceBuckets counts predictions per confidence band.
func (r *predictionRepository) ConfidenceBuckets(ctx context.Context) (*ConfidenceBuckets, error) {
	var buckets ConfidenceBuckets
	err := r.db.WithContext(ctx).Model(&entity.PredictionRecord{}).
		Select(`COALESCE(SUM(CASE WHEN confidence >= 90 THEN 1 ELSE 0 END), 0) AS excellent,
			COALESCE(SUM(CASE WHEN confidence >= 80 AND confidence < 90 THEN 1 ELSE 0 END), 0) AS good,
			COALESCE(SUM(CASE WHEN confidence >= 70 AND confidence < 80 THEN 1 ELSE 0 END), 0) AS average,
			COALESCE(SUM(CASE WHEN confidence < 70 THEN 1 ELSE 0 END), 0) AS poor`).
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	return &buckets, nil
}

// TopSymbols returns the most frequently predicted symbols.
func (r *predictionRepository) TopSymbols(ctx context.Context, limit int) ([]SymbolStat, error) {
	var stats []SymbolStat
	err := r.db.WithContext(ctx).Model(&entity.PredictionRecord{}).
		Select("symbol, COUNT(*) AS predictions, AVG(confidence) AS average_confidence").
		Group("symbol").
		Order("predictions DESC").Order("symbol ASC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}

// Recent returns the newest predictions across all accounts.
func (r *predictionRepository) Recent(ctx context.Context, limit int) ([]entity.PredictionRecord, error) {
	var records []entity.PredictionRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}
