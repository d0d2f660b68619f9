package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Market Headlines</title>%s</channel></rss>`

func rssItem(title, link, desc, pub string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description><![CDATA[%s]]></description><pubDate>%s</pubDate></item>`,
		title, link, desc, pub)
}

func TestNewsRepository_FetchHeadlines(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/rss+xml")
		switch r.URL.Query().Get("s") {
		case "AAPL":
			fmt.Fprintf(w, rssTemplate,
				rssItem("Apple surges on record profit", "https://news.example/a", "<p>Shares <b>jumped</b> today</p>", "Mon, 04 Mar 2024 10:00:00 GMT")+
					rssItem("Chipmakers and Apple hold steady", "https://news.example/shared", "", "Tue, 05 Mar 2024 10:00:00 GMT"))
		case "MSFT":
			fmt.Fprintf(w, rssTemplate,
				rssItem("Microsoft shares plunge amid probe", "https://news.example/m", "", "Wed, 06 Mar 2024 10:00:00 GMT")+
					rssItem("Chipmakers and Apple hold steady", "https://news.example/shared", "", "Tue, 05 Mar 2024 10:00:00 GMT"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	repo := NewNewsRepository(config.News{FeedURL: srv.URL + "/rss", CacheTTL: time.Minute}, logger.NewNop())

	news, err := repo.FetchHeadlines(context.Background(), []string{"aapl", "MSFT", "BROKEN"}, 10)
	require.NoError(t, err)
	require.Len(t, news, 3)

	assert.Equal(t, "Microsoft shares plunge amid probe", news[0].Title)
	assert.Equal(t, "negative", news[0].Impact)
	assert.Equal(t, "Market Headlines", news[0].Source)

	assert.Equal(t, "https://news.example/shared", news[1].URL)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, news[1].Stocks)
	assert.Equal(t, "neutral", news[1].Impact)

	assert.Equal(t, "positive", news[2].Impact)
	assert.Equal(t, "Shares jumped today", news[2].Summary)
	assert.Equal(t, hashID("https://news.example/a", ""), news[2].ID)

	limited, err := repo.FetchHeadlines(context.Background(), []string{"AAPL", "MSFT"}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "second call is served from cache")
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", stripHTML("  plain text "))
	assert.Equal(t, "Hello world !", stripHTML("<div>Hello <a href='#'>world</a>\n !</div>"))
}

func TestHashID(t *testing.T) {
	assert.Equal(t, hashID("https://x", "a"), hashID("https://x", "b"))
	assert.NotEqual(t, hashID("", "a"), hashID("", "b"))
	assert.Len(t, hashID("https://x", ""), 32)
}
