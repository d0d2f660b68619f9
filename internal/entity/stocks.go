package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Stock is the persisted snapshot of a symbol, refreshed in the background.
type Stock struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Symbol         string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"symbol"`
	Name           string         `gorm:"not null" json:"name"`
	Price          float64        `json:"price"`
	Change         float64        `json:"change"`
	ChangePercent  float64        `json:"change_percent"`
	Volume         int64          `json:"volume"`
	MarketCap      float64        `json:"market_cap"`
	Sector         string         `gorm:"default:Unknown;index" json:"sector"`
	DayHigh        float64        `json:"day_high"`
	DayLow         float64        `json:"day_low"`
	Open           float64        `json:"open"`
	PreviousClose  float64        `json:"previous_close"`
	Candles        datatypes.JSON `json:"candles"`
	Sentiment      string         `gorm:"type:varchar(16);default:neutral" json:"sentiment"`
	SentimentScore float64        `json:"sentiment_score"`
	RefreshedAt    time.Time      `json:"refreshed_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Stock) TableName() string {
	return "stocks"
}
