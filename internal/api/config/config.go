package config

import (
	"time"

	"golang-stock-tracker/pkg/config"
)

// Auth holds token signing configuration.
type Auth struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// MarketData holds configuration for the upstream quote/search/chart provider.
type MarketData struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
	MaxRetryDelay       time.Duration `mapstructure:"max_retry_delay"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	RequestBurst        int           `mapstructure:"request_burst"`
	QuoteCacheTTL       time.Duration `mapstructure:"quote_cache_ttl"`
	SectorCacheTTL      time.Duration `mapstructure:"sector_cache_ttl"`
	UserAgent           string        `mapstructure:"user_agent"`
}

// ML holds configuration for the prediction service.
type ML struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// News holds configuration for the headline feed.
type News struct {
	FeedURL  string        `mapstructure:"feed_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Limit    int           `mapstructure:"limit"`
}

// Snapshot holds configuration for the background stock snapshot refresher.
type Snapshot struct {
	Cron string `mapstructure:"cron"`
}

// Config holds the full configuration for the API service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Telegram   config.Telegram `mapstructure:"telegram"`
	Auth       Auth            `mapstructure:"auth"`
	MarketData MarketData      `mapstructure:"market_data"`
	ML         ML              `mapstructure:"ml"`
	News       News            `mapstructure:"news"`
	Snapshot   Snapshot        `mapstructure:"snapshot"`
}

// Load loads the API configuration from the given path and fills in defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued settings with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}

	md := &c.MarketData
	if md.BaseURL == "" {
		md.BaseURL = "https://query1.finance.yahoo.com"
	}
	if md.Timeout <= 0 {
		md.Timeout = 5 * time.Second
	}
	// A negative max_retries disables retrying.
	if md.MaxRetries == 0 {
		md.MaxRetries = 3
	} else if md.MaxRetries < 0 {
		md.MaxRetries = 0
	}
	if md.RetryDelay <= 0 {
		md.RetryDelay = time.Second
	}
	if md.MaxRetryDelay <= 0 {
		md.MaxRetryDelay = 4 * md.RetryDelay
	}
	if md.MaxRequestPerMinute <= 0 {
		md.MaxRequestPerMinute = 120
	}
	if md.RequestBurst <= 0 {
		md.RequestBurst = 10
	}
	if md.UserAgent == "" {
		md.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	}

	if c.ML.URL == "" {
		c.ML.URL = "http://localhost:5001"
	}
	if c.ML.Timeout <= 0 {
		c.ML.Timeout = 10 * time.Second
	}

	if c.News.FeedURL == "" {
		c.News.FeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"
	}
	if c.News.CacheTTL <= 0 {
		c.News.CacheTTL = 5 * time.Minute
	}
	if c.News.Limit <= 0 {
		c.News.Limit = 20
	}

	if c.API.Port == 0 {
		c.API.Port = 5000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
}
