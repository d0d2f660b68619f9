package service

import (
	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/entity"
)

// ToAccountResponse maps an entity.Account to its public representation.
func ToAccountResponse(a *entity.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      string(a.Role),
		Status:    string(a.Status),
		LastLogin: a.LastLogin,
		CreatedAt: a.CreatedAt,
	}
}

func toWatchlistResponse(entries []entity.WatchlistEntry) []dto.WatchlistEntryResponse {
	out := make([]dto.WatchlistEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.WatchlistEntryResponse{
			Symbol:  e.Symbol,
			Name:    e.Name,
			AddedAt: e.AddedAt,
		})
	}
	return out
}

func toPredictionResponse(r entity.PredictionRecord) dto.PredictionResponse {
	factors := []string(r.Factors)
	if factors == nil {
		factors = []string{}
	}
	return dto.PredictionResponse{
		ID:           r.ID,
		Symbol:       r.Symbol,
		Prediction:   string(r.Recommendation),
		Confidence:   r.Confidence,
		TargetPrice:  r.TargetPrice,
		CurrentPrice: r.CurrentPrice,
		Days:         r.Days,
		Factors:      factors,
		CreatedAt:    r.CreatedAt,
	}
}

func toPredictionResponses(records []entity.PredictionRecord) []dto.PredictionResponse {
	out := make([]dto.PredictionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toPredictionResponse(r))
	}
	return out
}
