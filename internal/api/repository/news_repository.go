package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/sentiment"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

// NewsRepository fetches headlines for symbols from an RSS feed.
type NewsRepository interface {
	FetchHeadlines(ctx context.Context, symbols []string, limit int) ([]dto.NewsItem, error)
}

type newsRepository struct {
	cfg           config.News
	log           *logger.Logger
	parser        *gofeed.Parser
	inmemoryCache *cache.Cache
}

// NewNewsRepository creates a feed-backed news repository.
func NewNewsRepository(cfg config.News, log *logger.Logger) NewsRepository {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 10 * time.Second}
	parser.UserAgent = "Mozilla/5.0 (compatible; stock-tracker/1.0)"
	return &newsRepository{
		cfg:           cfg,
		log:           log,
		parser:        parser,
		inmemoryCache: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

// FetchHeadlines returns the newest headlines across symbols. Items shared by several symbols are merged.
// A feed failure for one symbol is logged and skipped.
func (r *newsRepository) FetchHeadlines(ctx context.Context, symbols []string, limit int) ([]dto.NewsItem, error) {
	merged := make(map[string]*dto.NewsItem)
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		items, err := r.fetchSymbol(ctx, symbol)
		if err != nil {
			r.log.WarnContext(ctx, "Failed to fetch news feed", logger.StringField("symbol", symbol), logger.ErrorField(err))
			continue
		}
		for _, item := range items {
			if existing, ok := merged[item.ID]; ok {
				existing.Stocks = appendUnique(existing.Stocks, item.Stocks...)
				continue
			}
			it := item
			it.Stocks = append([]string(nil), item.Stocks...)
			merged[it.ID] = &it
		}
	}

	news := make([]dto.NewsItem, 0, len(merged))
	for _, item := range merged {
		news = append(news, *item)
	}
	sort.Slice(news, func(i, j int) bool {
		if news[i].Timestamp.Equal(news[j].Timestamp) {
			return news[i].ID < news[j].ID
		}
		return news[i].Timestamp.After(news[j].Timestamp)
	})
	if limit > 0 && len(news) > limit {
		news = news[:limit]
	}
	return news, nil
}

func (r *newsRepository) fetchSymbol(ctx context.Context, symbol string) ([]dto.NewsItem, error) {
	cacheKey := common.NewsCacheKeyPrefix + symbol
	if cached, found := r.inmemoryCache.Get(cacheKey); found {
		return cached.([]dto.NewsItem), nil
	}

	feedURL := fmt.Sprintf("%s?s=%s&region=US&lang=en-US", r.cfg.FeedURL, url.QueryEscape(symbol))
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	source := "RSS"
	if feed.Title != "" {
		source = feed.Title
	}

	items := make([]dto.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil || it.Title == "" {
			continue
		}
		link := it.Link
		if link == "" {
			link = it.GUID
		}
		ts := time.Now().UTC()
		if it.PublishedParsed != nil {
			ts = it.PublishedParsed.UTC()
		} else if it.UpdatedParsed != nil {
			ts = it.UpdatedParsed.UTC()
		}

		items = append(items, dto.NewsItem{
			ID:        hashID(link, it.Title),
			Title:     strings.TrimSpace(it.Title),
			Summary:   stripHTML(it.Description),
			Impact:    string(sentiment.Classify(it.Title)),
			Stocks:    []string{symbol},
			Timestamp: ts,
			Source:    source,
			URL:       link,
		})
	}

	r.inmemoryCache.Set(cacheKey, items, cache.DefaultExpiration)
	return items, nil
}

// stripHTML returns the visible text of an HTML fragment.
func stripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func hashID(link, title string) string {
	key := link
	if key == "" {
		key = title
	}
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
