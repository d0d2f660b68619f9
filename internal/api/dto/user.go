package dto

import "time"

// UpdateProfileRequest updates only the fields that are present.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

// AddWatchlistRequest adds a symbol to the caller's watchlist.
type AddWatchlistRequest struct {
	Symbol string `json:"symbol" validate:"required,max=32"`
	Name   string `json:"name" validate:"max=255"`
}

// WatchlistEntryResponse is a stored watchlist entry.
type WatchlistEntryResponse struct {
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"addedAt"`
}

// WatchlistResponse is returned by watchlist mutations.
type WatchlistResponse struct {
	Message   string                   `json:"message"`
	Watchlist []WatchlistEntryResponse `json:"watchlist"`
}

// EnrichedWatchlistItem is a watchlist entry decorated with a live quote and the caller's latest prediction.
type EnrichedWatchlistItem struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	AddedAt       time.Time `json:"addedAt"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	Prediction    string    `json:"prediction"`
	Confidence    float64   `json:"confidence"`
	TargetPrice   float64   `json:"targetPrice"`
	Sentiment     string    `json:"sentiment"`
}

// PredictionResponse is one entry of an account's prediction history.
type PredictionResponse struct {
	ID           uint      `json:"id"`
	Symbol       string    `json:"symbol"`
	Prediction   string    `json:"prediction"`
	Confidence   float64   `json:"confidence"`
	TargetPrice  float64   `json:"targetPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	Days         int       `json:"days"`
	Factors      []string  `json:"factors"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProfileResponse is the caller's profile together with their watchlist and prediction history.
type ProfileResponse struct {
	AccountResponse
	Watchlist   []WatchlistEntryResponse `json:"watchlist"`
	Predictions []PredictionResponse     `json:"predictions"`
}

// UpdateProfileResponse is returned after a profile update.
type UpdateProfileResponse struct {
	Message string          `json:"message"`
	User    AccountResponse `json:"user"`
}
