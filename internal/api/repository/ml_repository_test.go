package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestML(t *testing.T, h http.HandlerFunc) MLRepository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewMLRepository(config.ML{URL: srv.URL + "/", Timeout: 200 * time.Millisecond}, logger.NewNop())
}

func TestMLRepository_Predict(t *testing.T) {
	body := `{"symbol":"AAPL","currentPrice":190.1,"predictedPrice":201.3,"confidence":84.2,"recommendation":"Strong Buy","sentiment":"Positive","days":5,"factors":["Momentum","Volume"],"extra":{"model":"lstm"}}`
	repo := newTestML(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		var req dto.MLPredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, dto.MLPredictRequest{Symbol: "AAPL", Days: 5}, req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})

	p, err := repo.Predict(context.Background(), "AAPL", 5)
	require.NoError(t, err)
	assert.Equal(t, "Strong Buy", p.Recommendation)
	assert.Equal(t, 201.3, p.PredictedPrice)
	assert.Equal(t, []string{"Momentum", "Volume"}, p.Factors)
	assert.JSONEq(t, body, string(p.Raw), "upstream body is passed through unchanged")
}

func TestMLRepository_FailuresAreUnavailable(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"symbol":`)
		},
		"missing recommendation": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"symbol":"AAPL","confidence":50}`)
		},
		"timeout": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		},
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newTestML(t, h)
			_, err := repo.Predict(context.Background(), "AAPL", 1)
			require.Error(t, err)
			assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))
			assert.Equal(t, "Prediction service unavailable", apperror.Message(err))
		})
	}
}

func TestMLRepository_Unreachable(t *testing.T) {
	repo := NewMLRepository(config.ML{URL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond}, logger.NewNop())
	_, err := repo.Predict(context.Background(), "AAPL", 1)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}
