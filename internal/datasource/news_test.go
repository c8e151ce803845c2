package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gausfin/gausthesis/pkg/models"
)

func rssBody(feedTitle string, items ...string) string {
	body := fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title>`, feedTitle)
	for _, it := range items {
		body += it
	}
	return body + `</channel></rss>`
}

func rssItem(title, link, pubDate, desc string) string {
	s := fmt.Sprintf(`<item><title>%s</title><link>%s</link>`, title, link)
	if pubDate != "" {
		s += fmt.Sprintf(`<pubDate>%s</pubDate>`, pubDate)
	}
	if desc != "" {
		s += fmt.Sprintf(`<description>%s</description>`, desc)
	}
	return s + `</item>`
}

func TestCollectGeneralFeed(t *testing.T) {
	now := time.Now().UTC()
	recent := now.Add(-2 * time.Hour).Format(time.RFC1123Z)
	stale := now.AddDate(0, 0, -30).Format(time.RFC1123Z)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q == "" {
			t.Errorf("missing search query")
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody("Search Results",
			rssItem("Apple unveils new chip - TechWire", "https://example.com/a", recent, ""),
			rssItem("Old story - Archive", "https://example.com/old", stale, ""),
			rssItem("Undated story", "https://example.com/undated", "", ""),
		))
	}))
	defer srv.Close()

	n := NewNewsCollector(WithGeneralFeedURL(srv.URL), WithCuratedFeeds(nil))
	res := n.Collect(context.Background(), "AAPL", "Apple Inc.", 7)

	if len(res.FailedSources) != 0 {
		t.Fatalf("unexpected failures: %v", res.FailedSources)
	}
	// Stale item outside window and undated item both dropped.
	if len(res.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(res.Items))
	}
	item := res.Items[0]
	if item.Title != "Apple unveils new chip" {
		t.Errorf("Title: got %q", item.Title)
	}
	if item.Source != "TechWire" {
		t.Errorf("Source: got %q, want publisher suffix", item.Source)
	}
	if item.Origin != models.FeedGeneral {
		t.Errorf("Origin: got %q", item.Origin)
	}
}

func TestCollectCuratedFiltersByMention(t *testing.T) {
	pub := time.Now().UTC().Add(-1 * time.Hour).Format(time.RFC1123Z)

	curated := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody("Reuters Business",
			rssItem("Apple Inc. supplier expands", "https://example.com/1", pub, ""),
			rssItem("Banking sector update", "https://example.com/2", pub, "no relevant mention"),
			rssItem("Chipmakers rally", "https://example.com/3", pub, "AAPL leads gains"),
		))
	}))
	defer curated.Close()

	general := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody("Search Results"))
	}))
	defer general.Close()

	n := NewNewsCollector(
		WithGeneralFeedURL(general.URL),
		WithCuratedFeeds([]string{curated.URL}),
	)
	res := n.Collect(context.Background(), "AAPL", "Apple Inc.", 7)

	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2 (title match + summary match)", len(res.Items))
	}
	for _, item := range res.Items {
		if item.Origin != models.FeedCurated {
			t.Errorf("Origin: got %q", item.Origin)
		}
		if item.Source != "Reuters Business" {
			t.Errorf("Source: got %q, want feed title", item.Source)
		}
	}
}

func TestCollectIsolatesFeedFailure(t *testing.T) {
	pub := time.Now().UTC().Add(-1 * time.Hour).Format(time.RFC1123Z)

	general := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody("Search Results",
			rssItem("AAPL gains - Wire", "https://example.com/g", pub, "")))
	}))
	defer general.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	n := NewNewsCollector(
		WithGeneralFeedURL(general.URL),
		WithCuratedFeeds([]string{broken.URL}),
	)
	res := n.Collect(context.Background(), "AAPL", "Apple Inc.", 7)

	// The working feed still contributes; the broken one is flagged.
	if len(res.Items) != 1 {
		t.Fatalf("got %d items, want 1 from surviving feed", len(res.Items))
	}
	if len(res.FailedSources) != 1 {
		t.Fatalf("got %d failed sources, want 1", len(res.FailedSources))
	}
}

func TestSplitGeneralTitle(t *testing.T) {
	h, s := splitGeneralTitle("Apple hits record high - Bloomberg")
	if h != "Apple hits record high" || s != "Bloomberg" {
		t.Errorf("got %q / %q", h, s)
	}
	h, s = splitGeneralTitle("No publisher suffix")
	if h != "No publisher suffix" || s != "Google News" {
		t.Errorf("got %q / %q", h, s)
	}
}

func TestCleanHTML(t *testing.T) {
	got := cleanHTML(`<a href="x">Apple</a> beats <b>estimates</b>`)
	if got != "Apple beats estimates" {
		t.Errorf("got %q", got)
	}
}
