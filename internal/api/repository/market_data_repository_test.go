package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarketDataConfig(baseURL string) config.MarketData {
	return config.MarketData{
		BaseURL:             baseURL,
		Timeout:             200 * time.Millisecond,
		MaxRetries:          3,
		RetryDelay:          5 * time.Millisecond,
		MaxRetryDelay:       20 * time.Millisecond,
		MaxRequestPerMinute: 60000,
		RequestBurst:        100,
		UserAgent:           "test",
	}
}

func newTestMarketData(t *testing.T, handler http.Handler) (*marketDataRepository, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	repo := NewMarketDataRepository(testMarketDataConfig(srv.URL), logger.NewNop()).(*marketDataRepository)
	return repo, srv
}

func TestMarketData_GetQuote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		fmt.Fprint(w, `{"quoteResponse":{"result":[{
			"symbol":"AAPL","longName":"Apple Inc.","regularMarketPrice":190.5,
			"regularMarketChange":1.5,"regularMarketChangePercent":0.7936,
			"regularMarketVolume":1000,"marketCap":3000000000000,
			"regularMarketDayHigh":191,"regularMarketDayLow":188,
			"regularMarketOpen":189,"regularMarketPreviousClose":189,
			"regularMarketTime":1700000000,"currency":"USD","fullExchangeName":"NasdaqGS"}]}}`)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"assetProfile":{"sector":"Technology"}}]}}`)
	})
	repo, _ := newTestMarketData(t, mux)

	quote, err := repo.GetQuote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "Apple Inc.", quote.Name)
	assert.Equal(t, 190.5, quote.Price)
	assert.Equal(t, 0.79, quote.ChangePercent)
	assert.Equal(t, int64(1000), quote.Volume)
	assert.Equal(t, "Technology", quote.Sector)
	require.NotNil(t, quote.MarketTime)
}

func TestMarketData_GetQuoteSectorFailureIsNotFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"MSFT","shortName":"Microsoft","regularMarketPrice":400,"regularMarketPreviousClose":380}]}}`)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/MSFT", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	repo, _ := newTestMarketData(t, mux)

	quote, err := repo.GetQuote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", quote.Sector)
	assert.Equal(t, 20.0, quote.Change)
	assert.Equal(t, 5.26, quote.ChangePercent)
}

func TestMarketData_SectorIsCachedAcrossQuotes(t *testing.T) {
	var quoteHits, summaryHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&quoteHits, 1)
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"AAPL","longName":"Apple Inc.","regularMarketPrice":190}]}}`)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&summaryHits, 1)
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"assetProfile":{"sector":"Technology"}}]}}`)
	})
	repo, _ := newTestMarketData(t, mux)

	for i := 0; i < 3; i++ {
		quote, err := repo.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "Technology", quote.Sector)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&quoteHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&summaryHits))
}

func TestMarketData_FailedSectorLookupIsNotCached(t *testing.T) {
	var summaryHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"MSFT","regularMarketPrice":400}]}}`)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/MSFT", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&summaryHits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"assetProfile":{"sector":"Technology"}}]}}`)
	})
	repo, _ := newTestMarketData(t, mux)

	first, err := repo.GetQuote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", first.Sector)

	second, err := repo.GetQuote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Technology", second.Sector)
	assert.Equal(t, int32(2), atomic.LoadInt32(&summaryHits))
}

func TestMarketData_NotFoundIsNotRetried(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"404": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"empty result": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"quoteResponse":{"result":[]}}`)
		},
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			var hits int32
			repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				h(w, r)
			}))

			_, err := repo.GetQuote(context.Background(), "NOPE")
			require.Error(t, err)
			assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
			assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
		})
	}
}

func TestMarketData_MalformedPayloadRetriedThenUnavailable(t *testing.T) {
	var hits int32
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>Will be right back</body></html>")
	}))

	_, err := repo.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
	assert.Equal(t, "Market data provider unavailable", apperror.Message(err))
}

func TestMarketData_RecoversAfterTransientFailures(t *testing.T) {
	var hits int32
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v7/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":1}]}}`)
	}))

	quote, err := repo.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestMarketData_ClientErrorIsNotRetried(t *testing.T) {
	var hits int32
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := repo.GetQuote(context.Background(), "AAPL")
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestMarketData_TimeoutOnEveryAttempt(t *testing.T) {
	var hits int32
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	repo.cfg.Timeout = 50 * time.Millisecond
	repo.cfg.RetryDelay = 10 * time.Millisecond
	repo.cfg.MaxRetryDelay = 40 * time.Millisecond

	start := time.Now()
	_, err := repo.GetHistory(context.Background(), "AAPL", "7d")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))

	// timeout x attempts + retryDelay x (2^retries - 1), plus scheduling slack
	bound := 4*repo.cfg.Timeout + 7*repo.cfg.RetryDelay + 500*time.Millisecond
	assert.Less(t, elapsed, bound)
}

func TestMarketData_HistoryIsOrderedAndDeduplicated(t *testing.T) {
	day := func(d int, hour int) int64 {
		return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC).Unix()
	}
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%d,%d,%d,%d,%d],
			"indicators":{"quote":[{"close":[11,null,10,12,12.5],"open":[1,2,3,4,5],"volume":[100,200,300,400,500]}]}}]}}`,
			day(5, 14), day(4, 14), day(3, 14), day(6, 14), day(6, 20))
	}))

	points, err := repo.GetHistory(context.Background(), "aapl", "7d")
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2024-03-03", points[0].Date)
	assert.Equal(t, 10.0, points[0].Value)
	assert.Equal(t, "2024-03-05", points[1].Date)
	assert.Equal(t, "2024-03-06", points[2].Date)
	assert.Equal(t, 12.5, points[2].Value, "later bar for the same day wins")
	assert.Equal(t, int64(500), points[2].Volume)

	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].Date, points[i].Date)
	}
}

func TestMarketData_HistoryChartError(t *testing.T) {
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))

	_, err := repo.GetHistory(context.Background(), "ZZZZ", "1m")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestMarketData_HistoryInvalidPeriod(t *testing.T) {
	var hits int32
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	_, err := repo.GetHistory(context.Background(), "AAPL", "5y")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestMarketData_Search(t *testing.T) {
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"quotes":[
			{"symbol":"AAPL","shortname":"Apple Inc.","exchDisp":"NASDAQ","quoteType":"EQUITY"},
			{"symbol":"","shortname":"ignored"}]}`)
	}))

	results, err := repo.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Symbol)
	assert.Equal(t, "Apple Inc.", results[0].Name)
	assert.Equal(t, "NASDAQ", results[0].Exchange)
}

func TestMarketData_SearchFailureReturnsEmpty(t *testing.T) {
	repo, _ := newTestMarketData(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	results, err := repo.Search(context.Background(), "apple")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}
