package dto

import (
	"encoding/json"
	"time"
)

// Quote is a point-in-time snapshot of a symbol.
type Quote struct {
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	Change        float64    `json:"change"`
	ChangePercent float64    `json:"changePercent"`
	Volume        int64      `json:"volume"`
	MarketCap     float64    `json:"marketCap"`
	Sector        string     `json:"sector"`
	DayHigh       float64    `json:"dayHigh"`
	DayLow        float64    `json:"dayLow"`
	Open          float64    `json:"open"`
	PreviousClose float64    `json:"previousClose"`
	Currency      string     `json:"currency,omitempty"`
	Exchange      string     `json:"exchange,omitempty"`
	MarketTime    *time.Time `json:"marketTime,omitempty"`
}

// SearchResult is a candidate symbol match.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}

// HistoricalPoint is one trading day of a history window.
type HistoricalPoint struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Open   float64 `json:"open,omitempty"`
	High   float64 `json:"high,omitempty"`
	Low    float64 `json:"low,omitempty"`
	Volume int64   `json:"volume,omitempty"`
}

// HistoryResponse wraps a history window.
type HistoryResponse struct {
	Symbol string            `json:"symbol"`
	Period string            `json:"period"`
	Points []HistoricalPoint `json:"data"`
}

// PredictRequest asks the prediction service for a forecast.
type PredictRequest struct {
	Symbol string `json:"symbol" validate:"required,max=32"`
	Days   *int   `json:"days" validate:"omitempty,min=1,max=30"`
}

// MLPredictRequest is the body sent to the prediction service.
type MLPredictRequest struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

// MLPrediction holds the fields of the prediction service response that are recorded.
// The full response is passed through to the client as Raw.
type MLPrediction struct {
	Symbol         string   `json:"symbol"`
	CurrentPrice   float64  `json:"currentPrice"`
	PredictedPrice float64  `json:"predictedPrice"`
	Confidence     float64  `json:"confidence"`
	Recommendation string   `json:"recommendation"`
	Sentiment      string   `json:"sentiment"`
	Days           int      `json:"days"`
	Factors        []string `json:"factors"`

	Raw json.RawMessage `json:"-"`
}

// NewsItem is a headline related to one or more symbols.
type NewsItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Impact    string    `json:"impact"`
	Stocks    []string  `json:"stocks"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
}
