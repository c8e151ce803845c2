// Package analysis implements the pure middle of the pipeline:
// deduplication and ranking of collected news, budget selection, and
// the deterministic risk score. Everything here is a pure function
// over immutable inputs; nothing reaches the network.
package analysis

import (
	"net/url"
	"sort"
	"strings"
	"unicode"

	"github.com/gausfin/gausthesis/pkg/models"
)

// identityKey returns the dedup key for a news item: the lower-cased,
// whitespace-collapsed title joined with the canonicalized link. Two
// feeds carrying the same story collapse to the same key.
func identityKey(item models.NewsItem) string {
	return collapseTitle(item.Title) + "|" + canonicalLink(item.Link)
}

// collapseTitle lower-cases a title and collapses runs of whitespace.
func collapseTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// canonicalLink reduces a link to lower-cased host plus path with the
// trailing slash trimmed. Scheme, query parameters, and fragments are
// ignored so tracking parameters do not defeat dedup.
func canonicalLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(link))
	}
	path := strings.TrimRight(u.Path, "/")
	return strings.ToLower(u.Host) + path
}

// Merge removes duplicate stories from the union of feed items. One
// representative survives per identity key: the curated-feed copy when
// both origins carry the story, otherwise the more recent one. Output
// preserves the order in which each key first appeared, so identical
// inputs always merge identically.
func Merge(items []models.NewsItem) []models.NewsItem {
	byKey := make(map[string]int) // key → index into merged
	var merged []models.NewsItem

	for _, item := range items {
		key := identityKey(item)
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(merged)
			merged = append(merged, item)
			continue
		}

		kept := merged[idx]
		if prefer(item, kept) {
			merged[idx] = item
		}
	}
	return merged
}

// prefer reports whether candidate should replace kept as the
// surviving representative of a duplicate group.
func prefer(candidate, kept models.NewsItem) bool {
	if candidate.Origin != kept.Origin {
		return candidate.Origin == models.FeedCurated
	}
	return candidate.PublishedAt.After(kept.PublishedAt)
}

// Rank orders merged items by the composite key that becomes the
// citation numbering: recency first, then relevance to the ticker,
// then source priority (curated over general), then stable input
// order. The sort is deterministic for identical inputs.
func Rank(items []models.NewsItem, ticker, company string) []models.NewsItem {
	ranked := make([]models.NewsItem, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		ra, rb := Relevance(a, ticker, company), Relevance(b, ticker, company)
		if ra != rb {
			return ra > rb
		}
		if a.Origin != b.Origin {
			return a.Origin == models.FeedCurated
		}
		return false // stable: keep input order
	})
	return ranked
}

// Relevance scores how directly an item concerns the ticker:
//
//	2 — title/summary contains the ticker symbol as a token, or the
//	    exact company name
//	1 — contains only a leading fragment of the company name
//	0 — neither
//
// Token matching keeps short tickers like "GM" from matching inside
// unrelated words.
func Relevance(item models.NewsItem, ticker, company string) int {
	text := strings.ToLower(item.Title + " " + item.Summary)

	if ticker != "" && containsToken(text, strings.ToLower(ticker)) {
		return 2
	}
	companyLower := strings.ToLower(strings.TrimSpace(company))
	if companyLower != "" {
		if strings.Contains(text, companyLower) {
			return 2
		}
		if frag := companyFragment(companyLower); frag != "" && containsToken(text, frag) {
			return 1
		}
	}
	return 0
}

// companyFragment returns the first meaningful word of a company name,
// skipping nothing but requiring at least three characters so "A" or
// "GM" style fragments do not produce false positives.
func companyFragment(companyLower string) string {
	fields := strings.Fields(companyLower)
	if len(fields) == 0 {
		return ""
	}
	first := strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(first) < 3 {
		return ""
	}
	return first
}

// containsToken reports whether needle occurs in haystack bounded by
// non-alphanumeric characters.
func containsToken(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)

		beforeOK := idx == 0 || !isWordChar(rune(haystack[idx-1]))
		afterOK := end == len(haystack) || !isWordChar(rune(haystack[end]))
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
