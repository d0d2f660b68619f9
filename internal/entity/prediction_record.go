package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Recommendation is the normalized action stored with a prediction.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "Buy"
	RecommendationHold Recommendation = "Hold"
	RecommendationSell Recommendation = "Sell"
)

// PredictionRecord is an append-only entry in an account's prediction history.
type PredictionRecord struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AccountID      uint           `gorm:"not null;index" json:"account_id"`
	Symbol         string         `gorm:"type:varchar(32);not null;index" json:"symbol"`
	Recommendation Recommendation `gorm:"type:varchar(8);not null" json:"recommendation"`
	Confidence     float64        `gorm:"not null" json:"confidence"`
	CurrentPrice   float64        `json:"current_price"`
	TargetPrice    float64        `json:"target_price"`
	Days           int            `gorm:"not null;default:1" json:"days"`
	Factors        StringList     `json:"factors"`
	Payload        datatypes.JSON `json:"payload"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (PredictionRecord) TableName() string {
	return "prediction_records"
}
