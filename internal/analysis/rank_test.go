package analysis

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/gausfin/gausthesis/pkg/models"
)

var rankBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newsItem(title, link string, age time.Duration, origin models.FeedOrigin, source string) models.NewsItem {
	return models.NewsItem{
		Title:       title,
		Link:        link,
		PublishedAt: rankBase.Add(-age),
		Source:      source,
		Origin:      origin,
	}
}

// ── Merge ──

func TestMergeCuratedWins(t *testing.T) {
	items := []models.NewsItem{
		newsItem("Apple beats estimates", "https://example.com/story?utm=1", 2*time.Hour, models.FeedGeneral, "Google News"),
		newsItem("Apple  Beats   Estimates", "http://EXAMPLE.com/story/", 3*time.Hour, models.FeedCurated, "Reuters"),
	}

	merged := Merge(items)
	if len(merged) != 1 {
		t.Fatalf("got %d items, want 1", len(merged))
	}
	// Same normalized (title, link): the curated copy survives even
	// though the general copy is newer.
	if merged[0].Source != "Reuters" {
		t.Errorf("surviving source: got %q, want Reuters", merged[0].Source)
	}
	if merged[0].Origin != models.FeedCurated {
		t.Errorf("surviving origin: got %q", merged[0].Origin)
	}
}

func TestMergeSameOriginKeepsNewer(t *testing.T) {
	items := []models.NewsItem{
		newsItem("Chip supply update", "https://example.com/chips", 5*time.Hour, models.FeedGeneral, "WireA"),
		newsItem("Chip supply update", "https://example.com/chips", 1*time.Hour, models.FeedGeneral, "WireB"),
	}
	merged := Merge(items)
	if len(merged) != 1 {
		t.Fatalf("got %d items, want 1", len(merged))
	}
	if merged[0].Source != "WireB" {
		t.Errorf("got %q, want the more recent copy", merged[0].Source)
	}
}

func TestMergeDistinctStoriesSurvive(t *testing.T) {
	items := []models.NewsItem{
		newsItem("Story one", "https://example.com/1", time.Hour, models.FeedGeneral, "A"),
		newsItem("Story two", "https://example.com/2", time.Hour, models.FeedCurated, "B"),
		newsItem("Story one", "https://other.com/1", time.Hour, models.FeedGeneral, "C"), // same title, different link
	}
	if got := len(Merge(items)); got != 3 {
		t.Fatalf("got %d items, want 3", got)
	}
}

func TestCanonicalLink(t *testing.T) {
	cases := map[string]string{
		"https://Example.com/a/b/?utm_source=x#frag": "example.com/a/b",
		"http://example.com/a/b":                     "example.com/a/b",
		"https://example.com/":                       "example.com",
	}
	for in, want := range cases {
		if got := canonicalLink(in); got != want {
			t.Errorf("canonicalLink(%q) = %q, want %q", in, got, want)
		}
	}
}

// ── Rank ──

func TestRankRecencyFirst(t *testing.T) {
	items := []models.NewsItem{
		newsItem("Older but relevant AAPL story", "https://e.com/1", 10*time.Hour, models.FeedCurated, "A"),
		newsItem("Newest story", "https://e.com/2", 1*time.Hour, models.FeedGeneral, "B"),
	}
	ranked := Rank(items, "AAPL", "Apple Inc.")
	if ranked[0].Link != "https://e.com/2" {
		t.Errorf("newest item should rank first, got %q", ranked[0].Link)
	}
}

func TestRankRelevanceBreaksTimestampTies(t *testing.T) {
	items := []models.NewsItem{
		newsItem("Broad market wrap", "https://e.com/1", time.Hour, models.FeedGeneral, "A"),
		newsItem("AAPL announces buyback", "https://e.com/2", time.Hour, models.FeedGeneral, "B"),
	}
	ranked := Rank(items, "AAPL", "Apple Inc.")
	if ranked[0].Link != "https://e.com/2" {
		t.Errorf("ticker mention should outrank on equal timestamps")
	}
}

func TestRankOriginBreaksRemainingTies(t *testing.T) {
	items := []models.NewsItem{
		newsItem("AAPL update alpha", "https://e.com/1", time.Hour, models.FeedGeneral, "A"),
		newsItem("AAPL update beta", "https://e.com/2", time.Hour, models.FeedCurated, "B"),
	}
	ranked := Rank(items, "AAPL", "Apple Inc.")
	if ranked[0].Origin != models.FeedCurated {
		t.Errorf("curated should outrank general on full ties")
	}
}

func TestRankDeterministic(t *testing.T) {
	var items []models.NewsItem
	for i := 0; i < 20; i++ {
		origin := models.FeedGeneral
		if i%3 == 0 {
			origin = models.FeedCurated
		}
		items = append(items, newsItem(
			fmt.Sprintf("Story %d about Apple", i),
			fmt.Sprintf("https://e.com/%d", i),
			time.Duration(i%5)*time.Hour,
			origin,
			"S",
		))
	}

	first := Rank(items, "AAPL", "Apple Inc.")
	second := Rank(items, "AAPL", "Apple Inc.")
	if !reflect.DeepEqual(first, second) {
		t.Fatal("ranking must be a deterministic total order")
	}
	// Input must not be mutated.
	if items[0].Link != "https://e.com/0" {
		t.Fatal("Rank mutated its input")
	}
}

// ── Relevance ──

func TestRelevanceScores(t *testing.T) {
	cases := []struct {
		title string
		want  int
	}{
		{"AAPL jumps on earnings", 2},
		{"Apple Inc. announces dividend", 2},
		{"Apple supplier expands", 1}, // fragment only
		{"Banking sector wrap", 0},
	}
	for _, tc := range cases {
		item := models.NewsItem{Title: tc.title}
		if got := Relevance(item, "AAPL", "Apple Inc."); got != tc.want {
			t.Errorf("Relevance(%q) = %d, want %d", tc.title, got, tc.want)
		}
	}
}

func TestRelevanceTickerNeedsTokenBoundary(t *testing.T) {
	item := models.NewsItem{Title: "Augment your portfolio"}
	if got := Relevance(item, "GM", "General Motors"); got != 0 {
		t.Errorf("got %d, want 0: short ticker must not match inside words", got)
	}
	item = models.NewsItem{Title: "GM recalls trucks"}
	if got := Relevance(item, "GM", "General Motors"); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}
