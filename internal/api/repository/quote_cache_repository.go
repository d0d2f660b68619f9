package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// QuoteCacheRepository stores recently fetched quotes for a short time.
type QuoteCacheRepository interface {
	Get(ctx context.Context, symbol string) (*dto.Quote, bool)
	Set(ctx context.Context, quote *dto.Quote)
}

// NewRedisQuoteCacheRepository returns a quote cache backed by Redis.
func NewRedisQuoteCacheRepository(client *redis.Client, ttl time.Duration, log *logger.Logger) QuoteCacheRepository {
	return &redisQuoteCache{client: client, ttl: ttl, log: log}
}

type redisQuoteCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func quoteKey(symbol string) string {
	return common.RedisKeyQuotePrefix + strings.ToUpper(symbol)
}

func (c *redisQuoteCache) Get(ctx context.Context, symbol string) (*dto.Quote, bool) {
	val, err := c.client.Get(ctx, quoteKey(symbol)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "Failed to read quote from cache", logger.StringField("symbol", symbol), logger.ErrorField(err))
		}
		return nil, false
	}

	var quote dto.Quote
	if err := json.Unmarshal(val, &quote); err != nil {
		return nil, false
	}
	return &quote, true
}

func (c *redisQuoteCache) Set(ctx context.Context, quote *dto.Quote) {
	payload, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, quoteKey(quote.Symbol), payload, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "Failed to write quote to cache", logger.StringField("symbol", quote.Symbol), logger.ErrorField(err))
	}
}

// NewInMemoryQuoteCacheRepository returns a process-local quote cache, used when Redis is disabled.
func NewInMemoryQuoteCacheRepository(ttl time.Duration) QuoteCacheRepository {
	return &memoryQuoteCache{cache: cache.New(ttl, 2*ttl), ttl: ttl}
}

type memoryQuoteCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func (c *memoryQuoteCache) Get(_ context.Context, symbol string) (*dto.Quote, bool) {
	v, ok := c.cache.Get(quoteKey(symbol))
	if !ok {
		return nil, false
	}
	quote := v.(dto.Quote)
	return &quote, true
}

func (c *memoryQuoteCache) Set(_ context.Context, quote *dto.Quote) {
	c.cache.Set(quoteKey(quote.Symbol), *quote, c.ttl)
}

// NewCachedMarketDataRepository decorates inner so that quotes are served from quotes while fresh.
// Search and history always go to the provider.
func NewCachedMarketDataRepository(inner MarketDataRepository, quotes QuoteCacheRepository) MarketDataRepository {
	return &cachedMarketDataRepository{MarketDataRepository: inner, quotes: quotes}
}

type cachedMarketDataRepository struct {
	MarketDataRepository
	quotes QuoteCacheRepository
}

func (r *cachedMarketDataRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	if quote, ok := r.quotes.Get(ctx, symbol); ok {
		return quote, nil
	}
	quote, err := r.MarketDataRepository.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	r.quotes.Set(ctx, quote)
	return quote, nil
}
