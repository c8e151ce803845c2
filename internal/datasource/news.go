package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gausfin/gausthesis/pkg/models"
)

// GeneralFeedName labels the search-driven general feed in failure
// reports.
const GeneralFeedName = "general"

// NewsCollector queries the general news search feed and the curated
// publisher feeds for a ticker, normalizing every item into
// models.NewsItem. Each feed is isolated: a failing feed contributes
// nothing and is reported by name, never as an error.
type NewsCollector struct {
	generalURL   string
	curatedFeeds []string
	parser       *gofeed.Parser
	limiter      *rate.Limiter
}

// NewsOption configures the news collector.
type NewsOption func(*NewsCollector)

// WithGeneralFeedURL sets a custom general search feed base URL (used in tests).
func WithGeneralFeedURL(u string) NewsOption {
	return func(n *NewsCollector) { n.generalURL = strings.TrimRight(u, "/") }
}

// WithCuratedFeeds sets the curated publisher feed URLs.
func WithCuratedFeeds(urls []string) NewsOption {
	return func(n *NewsCollector) { n.curatedFeeds = urls }
}

// NewNewsCollector creates a news collector.
func NewNewsCollector(opts ...NewsOption) *NewsCollector {
	n := &NewsCollector{
		generalURL: "https://news.google.com/rss/search",
		parser:     gofeed.NewParser(),
		limiter:    rate.NewLimiter(rate.Limit(2), 2), // conservative: 2 req/s
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewsResult holds the outcome of one collection pass.
type NewsResult struct {
	Items         []models.NewsItem
	FailedSources []string
}

// Collect queries all feeds concurrently and returns the union of
// normalized items in deterministic source order: general feed first,
// then curated feeds in configuration order. Items without a parseable
// publish date are dropped — defaulting them to "now" would corrupt
// the recency ranking downstream.
func (n *NewsCollector) Collect(ctx context.Context, ticker, company string, windowDays int) NewsResult {
	type feedOut struct {
		name  string
		items []models.NewsItem
		err   error
	}

	out := make([]feedOut, 1+len(n.curatedFeeds))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := n.fetchGeneral(gctx, ticker, company, windowDays)
		out[0] = feedOut{name: GeneralFeedName, items: items, err: err}
		return nil // feed failures never abort the group
	})

	for i, feedURL := range n.curatedFeeds {
		i, feedURL := i, feedURL
		g.Go(func() error {
			items, name, err := n.fetchCurated(gctx, feedURL, ticker, company)
			out[i+1] = feedOut{name: name, items: items, err: err}
			return nil
		})
	}

	_ = g.Wait()

	var result NewsResult
	for _, fo := range out {
		if fo.err != nil {
			result.FailedSources = append(result.FailedSources, fo.name)
			continue
		}
		result.Items = append(result.Items, fo.items...)
	}
	return result
}

// --- Internal helpers ---

// fetchGeneral queries the general search feed for "TICKER OR company"
// within the window.
func (n *NewsCollector) fetchGeneral(ctx context.Context, ticker, company string, windowDays int) ([]models.NewsItem, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := ticker
	if company != "" && !strings.EqualFold(company, ticker) {
		query = ticker + " OR " + company
	}
	feedURL := fmt.Sprintf("%s?q=%s+when:%dd&hl=en-US&gl=US&ceid=US:en",
		n.generalURL, url.QueryEscape(query), windowDays)

	feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: general feed: %v", ErrSourceUnavailable, err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)
	var items []models.NewsItem
	for _, entry := range feed.Items {
		if entry.PublishedParsed == nil {
			continue
		}
		published := entry.PublishedParsed.UTC()
		if published.Before(cutoff) {
			continue
		}
		title, source := splitGeneralTitle(entry.Title)
		items = append(items, models.NewsItem{
			Title:       title,
			Link:        entry.Link,
			PublishedAt: published,
			Source:      source,
			Summary:     cleanHTML(entry.Description),
			Origin:      models.FeedGeneral,
		})
	}
	return items, nil
}

// fetchCurated parses one curated publisher feed and keeps only items
// mentioning the ticker or company name in title or summary.
func (n *NewsCollector) fetchCurated(ctx context.Context, feedURL, ticker, company string) ([]models.NewsItem, string, error) {
	name := feedHost(feedURL)

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, name, err
	}

	feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, name, fmt.Errorf("%w: curated feed %s: %v", ErrSourceUnavailable, name, err)
	}
	if feed.Title != "" {
		name = feed.Title
	}

	var items []models.NewsItem
	for _, entry := range feed.Items {
		if entry.PublishedParsed == nil {
			continue
		}
		summary := cleanHTML(entry.Description)
		if !mentionsAny(entry.Title+" "+summary, ticker, company) {
			continue
		}
		items = append(items, models.NewsItem{
			Title:       strings.TrimSpace(entry.Title),
			Link:        entry.Link,
			PublishedAt: entry.PublishedParsed.UTC(),
			Source:      name,
			Summary:     summary,
			Origin:      models.FeedCurated,
		})
	}
	return items, name, nil
}

// splitGeneralTitle separates "Headline - Publisher" titles emitted by
// the general search feed. When no publisher suffix exists, the feed
// itself is credited.
func splitGeneralTitle(title string) (headline, source string) {
	if idx := strings.LastIndex(title, " - "); idx > 0 && idx < len(title)-3 {
		return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
	}
	return strings.TrimSpace(title), "Google News"
}

// mentionsAny reports whether text contains the ticker or the company
// name, case-insensitive.
func mentionsAny(text, ticker, company string) bool {
	lower := strings.ToLower(text)
	if ticker != "" && strings.Contains(lower, strings.ToLower(ticker)) {
		return true
	}
	if company != "" && strings.Contains(lower, strings.ToLower(company)) {
		return true
	}
	return false
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// feedHost extracts the host of a feed URL for failure reporting.
func feedHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Host
}
