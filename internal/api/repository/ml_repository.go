package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"
)

const msgPredictionUnavailable = "Prediction service unavailable"

// MLRepository forwards prediction requests to the external model service.
type MLRepository interface {
	Predict(ctx context.Context, symbol string, days int) (*dto.MLPrediction, error)
}

type mlRepository struct {
	cfg        config.ML
	log        *logger.Logger
	httpClient *http.Client
}

// NewMLRepository creates a client for the prediction service at cfg.URL.
func NewMLRepository(cfg config.ML, log *logger.Logger) MLRepository {
	return &mlRepository{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Predict posts {symbol, days} to /predict. Every failure is reported as Unavailable.
func (r *mlRepository) Predict(ctx context.Context, symbol string, days int) (*dto.MLPrediction, error) {
	payload, err := json.Marshal(dto.MLPredictRequest{Symbol: symbol, Days: days})
	if err != nil {
		return nil, apperror.Internal("Failed to encode prediction request", err)
	}

	endpoint := strings.TrimRight(r.cfg.URL, "/") + "/predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperror.Internal("Failed to build prediction request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to reach prediction service", logger.StringField("url", endpoint), logger.ErrorField(err))
		return nil, apperror.Unavailable(msgPredictionUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperror.Unavailable(msgPredictionUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.log.ErrorContext(ctx, "Received non-OK response from prediction service",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", symbol),
			logger.StringField("body", truncate(string(body), 512)))
		return nil, apperror.Unavailable(msgPredictionUnavailable, fmt.Errorf("prediction service responded with status %d", resp.StatusCode))
	}

	var prediction dto.MLPrediction
	if err := json.Unmarshal(body, &prediction); err != nil {
		r.log.ErrorContext(ctx, "Malformed response from prediction service", logger.ErrorField(err))
		return nil, apperror.Unavailable(msgPredictionUnavailable, fmt.Errorf("%w: %v", errMalformedPayload, err))
	}
	if prediction.Recommendation == "" {
		return nil, apperror.Unavailable(msgPredictionUnavailable, fmt.Errorf("%w: missing recommendation", errMalformedPayload))
	}
	prediction.Raw = json.RawMessage(body)

	return &prediction, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
