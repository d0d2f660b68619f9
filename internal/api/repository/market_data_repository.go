package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/retry"
	"golang-stock-tracker/pkg/utils"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxResponseBytes      = 5 << 20
	defaultSectorCacheTTL = 24 * time.Hour
)

// HistoryPeriods maps the supported history windows to their length in days.
var HistoryPeriods = map[string]int{
	"7d": 7,
	"1m": 30,
	"3m": 90,
	"1y": 365,
}

var (
	errSymbolNotFound   = errors.New("symbol not found")
	errMalformedPayload = errors.New("malformed payload from market data provider")
)

// upstreamStatusError is a non-2xx response from the provider.
type upstreamStatusError struct {
	StatusCode int
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("market data provider responded with status %d", e.StatusCode)
}

// MarketDataRepository fetches quotes, symbol matches and price history from the upstream provider.
type MarketDataRepository interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
	Search(ctx context.Context, query string) ([]dto.SearchResult, error)
	GetHistory(ctx context.Context, symbol, period string) ([]dto.HistoricalPoint, error)
}

type marketDataRepository struct {
	cfg            config.MarketData
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	sectors        *cache.Cache
	now            func() time.Time
}

// NewMarketDataRepository creates a client for the Yahoo-style finance API at cfg.BaseURL.
func NewMarketDataRepository(cfg config.MarketData, log *logger.Logger) MarketDataRepository {
	perMinute := cfg.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 120
	}
	burst := cfg.RequestBurst
	if burst <= 0 {
		burst = 1
	}
	sectorTTL := cfg.SectorCacheTTL
	if sectorTTL <= 0 {
		sectorTTL = defaultSectorCacheTTL
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)
	return &marketDataRepository{
		cfg: cfg,
		log: log,
		// Per-attempt deadlines come from the request context; this is only a backstop.
		httpClient:     &http.Client{Timeout: cfg.Timeout + time.Second},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), burst),
		sectors:        cache.New(sectorTTL, sectorTTL),
		now:            time.Now,
	}
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
	} `json:"quoteResponse"`
}

type yahooQuote struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName"`
	LongName                   string  `json:"longName"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChange        float64 `json:"regularMarketChange"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	RegularMarketVolume        int64   `json:"regularMarketVolume"`
	MarketCap                  float64 `json:"marketCap"`
	RegularMarketDayHigh       float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        float64 `json:"regularMarketDayLow"`
	RegularMarketOpen          float64 `json:"regularMarketOpen"`
	RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
	RegularMarketTime          int64   `json:"regularMarketTime"`
	Currency                   string  `json:"currency"`
	FullExchangeName           string  `json:"fullExchangeName"`
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// GetQuote returns the live quote for symbol.
func (r *marketDataRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", r.cfg.BaseURL, url.QueryEscape(symbol))

	var resp yahooQuoteResponse
	err := r.fetchJSON(ctx, "quote("+symbol+")", endpoint, func(body []byte) error {
		resp = yahooQuoteResponse{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: %v", errMalformedPayload, err)
		}
		if len(resp.QuoteResponse.Result) == 0 {
			return retry.Permanent(errSymbolNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, r.mapError(err, symbol)
	}

	q := resp.QuoteResponse.Result[0]
	quote := &dto.Quote{
		Symbol:        q.Symbol,
		Name:          firstNonEmpty(q.LongName, q.ShortName, q.Symbol),
		Price:         q.RegularMarketPrice,
		Change:        q.RegularMarketChange,
		ChangePercent: utils.RoundPrice(q.RegularMarketChangePercent),
		Volume:        q.RegularMarketVolume,
		MarketCap:     q.MarketCap,
		Sector:        "Unknown",
		DayHigh:       q.RegularMarketDayHigh,
		DayLow:        q.RegularMarketDayLow,
		Open:          q.RegularMarketOpen,
		PreviousClose: q.RegularMarketPreviousClose,
		Currency:      q.Currency,
		Exchange:      q.FullExchangeName,
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	if quote.Change == 0 && quote.PreviousClose != 0 && quote.Price != 0 {
		quote.Change = utils.RoundPrice(quote.Price - quote.PreviousClose)
		quote.ChangePercent = utils.PercentChange(quote.Price, quote.PreviousClose)
	}
	if q.RegularMarketTime > 0 {
		quote.MarketTime = utils.ToPointer(time.Unix(q.RegularMarketTime, 0).UTC())
	}
	if sector := r.fetchSector(ctx, symbol); sector != "" {
		quote.Sector = sector
	}

	return quote, nil
}

// fetchSector looks up the sector with a single attempt. Failure is not an error.
// Answers are cached for the sector TTL so repeated quotes cost one rate-limit token each.
func (r *marketDataRepository) fetchSector(ctx context.Context, symbol string) string {
	if sector, ok := r.sectors.Get(symbol); ok {
		return sector.(string)
	}

	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile", r.cfg.BaseURL, url.PathEscape(symbol))
	body, err := r.doRequest(ctx, endpoint)
	if err != nil {
		r.log.DebugContext(ctx, "Sector lookup failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return ""
	}
	var resp yahooSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.QuoteSummary.Result) == 0 {
		return ""
	}

	sector := resp.QuoteSummary.Result[0].AssetProfile.Sector
	r.sectors.Set(symbol, sector, cache.DefaultExpiration)
	return sector
}

// Search returns candidate symbols for query. Provider failures yield an empty result, never an error.
func (r *marketDataRepository) Search(ctx context.Context, query string) ([]dto.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=10&newsCount=0", r.cfg.BaseURL, url.QueryEscape(query))

	var resp yahooSearchResponse
	err := r.fetchJSON(ctx, "search("+query+")", endpoint, func(body []byte) error {
		resp = yahooSearchResponse{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: %v", errMalformedPayload, err)
		}
		return nil
	})
	if err != nil {
		r.log.WarnContext(ctx, "Search failed, returning empty result", logger.StringField("query", query), logger.ErrorField(err))
		return []dto.SearchResult{}, nil
	}

	results := make([]dto.SearchResult, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		results = append(results, dto.SearchResult{
			Symbol:   q.Symbol,
			Name:     firstNonEmpty(q.LongName, q.ShortName, q.Symbol),
			Exchange: q.Exchange,
			Type:     q.QuoteType,
		})
	}
	return results, nil
}

// GetHistory returns one point per trading day of the window, oldest first, without duplicate dates.
func (r *marketDataRepository) GetHistory(ctx context.Context, symbol, period string) ([]dto.HistoricalPoint, error) {
	days, ok := HistoryPeriods[period]
	if !ok {
		return nil, apperror.Validation("Invalid period. Use one of 7d, 1m, 3m, 1y")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	now := r.now()
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		r.cfg.BaseURL, url.PathEscape(symbol), now.AddDate(0, 0, -days).Unix(), now.Unix())

	var resp yahooChartResponse
	err := r.fetchJSON(ctx, "chart("+symbol+")", endpoint, func(body []byte) error {
		resp = yahooChartResponse{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: %v", errMalformedPayload, err)
		}
		if len(resp.Chart.Result) == 0 {
			if resp.Chart.Error != nil {
				return retry.Permanent(fmt.Errorf("%w: %s", errSymbolNotFound, resp.Chart.Error.Description))
			}
			return retry.Permanent(errSymbolNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, r.mapError(err, symbol)
	}

	return chartToPoints(resp), nil
}

func chartToPoints(resp yahooChartResponse) []dto.HistoricalPoint {
	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []dto.HistoricalPoint{}
	}
	q := result.Indicators.Quote[0]

	byDate := make(map[string]dto.HistoricalPoint, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		p := dto.HistoricalPoint{
			Date:  utils.FormatDate(time.Unix(ts, 0)),
			Value: *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			p.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			p.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			p.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			p.Volume = *q.Volume[i]
		}
		// A later bar for the same day (e.g. the live intraday bar) replaces the earlier one.
		byDate[p.Date] = p
	}

	points := make([]dto.HistoricalPoint, 0, len(byDate))
	for _, p := range byDate {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// fetchJSON GETs endpoint with retry. decode is called on each successful body and may reject it;
// errors wrapped with retry.Permanent stop the retry loop.
func (r *marketDataRepository) fetchJSON(ctx context.Context, op, endpoint string, decode func(body []byte) error) error {
	policy := retry.Policy{
		MaxRetries: r.cfg.MaxRetries,
		BaseDelay:  r.cfg.RetryDelay,
		MaxDelay:   r.cfg.MaxRetryDelay,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			r.log.WarnContext(ctx, "Market data call failed, retrying",
				logger.StringField("operation", op),
				logger.IntField("attempt", attempt),
				logger.IntField("max_attempts", r.cfg.MaxRetries+1),
				logger.DurationField("wait", wait),
				logger.ErrorField(err))
		},
	}

	attempts, err := retry.Do(ctx, policy, func(ctx context.Context, _ int) error {
		body, err := r.doRequest(ctx, endpoint)
		if err != nil {
			return err
		}
		if looksLikeHTML(body) {
			return fmt.Errorf("%w: provider returned HTML instead of JSON", errMalformedPayload)
		}
		return decode(body)
	})
	if err != nil && !errors.Is(err, errSymbolNotFound) {
		return fmt.Errorf("%s failed after %d attempt(s): %w", op, attempts, err)
	}
	return err
}

// doRequest performs a single rate-limited GET bounded by the configured per-attempt timeout.
func (r *marketDataRepository) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, retry.Permanent(err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, retry.Permanent(errSymbolNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &upstreamStatusError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, retry.Permanent(&upstreamStatusError{StatusCode: resp.StatusCode})
	}
	return body, nil
}

func (r *marketDataRepository) mapError(err error, symbol string) error {
	if errors.Is(err, errSymbolNotFound) {
		return apperror.NotFound(fmt.Sprintf("Stock %s not found", symbol))
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	r.log.Error("Market data provider unavailable", zap.String("symbol", symbol), zap.Error(err))
	return apperror.Unavailable("Market data provider unavailable", err)
}

func looksLikeHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "<")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
