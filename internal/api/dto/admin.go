package dto

import "time"

// ListAccountsQuery holds the query parameters of the admin account listing.
type ListAccountsQuery struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Status string `query:"status"`
	Search string `query:"search"`
}

// AccountListResponse is a page of accounts.
type AccountListResponse struct {
	Users       []AccountResponse `json:"users"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	Total       int64             `json:"total"`
}

// UpdateStatusRequest changes an account's status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active banned pending"`
}

// UpdateStatusResponse is returned after a status change.
type UpdateStatusResponse struct {
	Message string          `json:"message"`
	User    AccountResponse `json:"user"`
}

// StatsResponse holds aggregate counts for the admin dashboard.
type StatsResponse struct {
	TotalUsers            int64   `json:"totalUsers"`
	ActiveUsers           int64   `json:"activeUsers"`
	BannedUsers           int64   `json:"bannedUsers"`
	PendingUsers          int64   `json:"pendingUsers"`
	AdminUsers            int64   `json:"adminUsers"`
	DailyActiveUsers      int64   `json:"dailyActiveUsers"`
	TotalStocks           int64   `json:"totalStocks"`
	TotalPredictions      int64   `json:"totalPredictions"`
	AverageConfidence     float64 `json:"averageConfidence"`
	TotalWatchlistEntries int64   `json:"totalWatchlistEntries"`
}

// GrowthPoint is the cumulative account count at the end of a day.
type GrowthPoint struct {
	Date  string `json:"date"`
	Users int64  `json:"users"`
}

// AccuracyBucket counts predictions whose confidence falls in a band.
type AccuracyBucket struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Color string `json:"color"`
}

// TopStock is a frequently predicted symbol.
type TopStock struct {
	Symbol      string  `json:"symbol"`
	Predictions int64   `json:"predictions"`
	Accuracy    float64 `json:"accuracy"`
}

// AnalyticsResponse holds the derived admin analytics.
type AnalyticsResponse struct {
	UserGrowth         []GrowthPoint    `json:"userGrowth"`
	PredictionAccuracy []AccuracyBucket `json:"predictionAccuracy"`
	TopStocks          []TopStock       `json:"topStocks"`
}

// ActivityItem is a recent event shown on the admin dashboard.
type ActivityItem struct {
	ID    string    `json:"id"`
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Type  string    `json:"type"`
}
