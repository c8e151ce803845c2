// Package models defines the core data structures shared across the
// Gaus Thesis pipeline: market snapshots, collected news and social
// items, synthesized thesis bullets, and the terminal analysis result.
package models

import "time"

// FeedOrigin identifies which class of feed a news item came from.
// Curated publisher feeds outrank the general search feed when
// duplicate stories are merged.
type FeedOrigin string

const (
	FeedGeneral FeedOrigin = "general"
	FeedCurated FeedOrigin = "curated"
)

// Snapshot holds the market data for one ticker over one window.
// Valuation fields are pointers: nil means the provider did not report
// the figure, which is a normal condition and must never be rendered
// as zero.
type Snapshot struct {
	Ticker       string   `json:"ticker"`
	CompanyName  string   `json:"company_name"`
	CurrentPrice float64  `json:"current_price"`
	ChangePct    *float64 `json:"price_change_pct"` // nil when fewer than two closes in window
	ForwardPE    *float64 `json:"forward_pe"`
	TrailingPE   *float64 `json:"trailing_pe"`
	PriceToBook  *float64 `json:"price_to_book"`
	Beta         *float64 `json:"beta"`
	MarketCap    *float64 `json:"market_cap"`
}

// NewsItem is the normalized shape every feed source is reduced to at
// the collector boundary. Identity for dedup is the normalized
// (title, link) pair, not this struct.
type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	PublishedAt time.Time  `json:"published"`
	Source      string     `json:"source"`
	Summary     string     `json:"-"` // used for relevance matching, not serialized
	Origin      FeedOrigin `json:"-"`
}

// SocialPost is a single qualifying social mention with inline
// engagement metrics.
type SocialPost struct {
	Text      string    `json:"text"`
	PostedAt  time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
	Reshares  int       `json:"retweets"`
	AuthorID  string    `json:"author_id"`
	PostID    string    `json:"tweet_id"`
}

// Engagement returns the ranking score for a social post.
func (p SocialPost) Engagement() int { return p.Likes + p.Reshares }

// SourceRef is a citation attached to a catalyst bullet. It always
// refers to an item that was present in the numbered list handed to
// the completion service.
type SourceRef struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
}

// CatalystBullet is one parsed line of the catalyst thesis with its
// resolved citations.
type CatalystBullet struct {
	Text    string      `json:"text"`
	Sources []SourceRef `json:"sources"`
}

// DataStatus reports which optional sources degraded during a run so
// callers can render a low-data signal instead of mistaking empty
// arrays for a quiet week.
type DataStatus struct {
	NewsSourcesFailed []string `json:"news_sources_failed"`
	SocialAvailable   bool     `json:"social_available"`
	LowNews           bool     `json:"low_news"`
}

// Analysis is the terminal, immutable result of one pipeline run.
// It has no persisted identity; its lifetime is the request/response
// cycle that produced it.
type Analysis struct {
	Ticker         string           `json:"ticker"`
	CompanyName    string           `json:"company_name"`
	DaysAnalyzed   int              `json:"days_analyzed"`
	PriceData      PriceData        `json:"price_data"`
	News           []NewsItem       `json:"news"`
	Tweets         []SocialPost     `json:"tweets"`
	CatalystThesis []CatalystBullet `json:"catalyst_thesis"`
	RiskThesis     []string         `json:"risk_thesis"`
	RiskScore      int              `json:"risk_score"`
	Status         DataStatus       `json:"data_status"`
}

// PriceData is the price block of the response. It mirrors Snapshot
// but carries only the wire fields.
type PriceData struct {
	CurrentPrice   float64  `json:"current_price"`
	PriceChangePct *float64 `json:"price_change_pct"`
	ForwardPE      *float64 `json:"forward_pe"`
	TrailingPE     *float64 `json:"trailing_pe"`
	PriceToBook    *float64 `json:"price_to_book"`
	Beta           *float64 `json:"beta"`
	MarketCap      *float64 `json:"market_cap"`
}

// PriceDataFromSnapshot projects a snapshot onto the response shape.
func PriceDataFromSnapshot(s *Snapshot) PriceData {
	return PriceData{
		CurrentPrice:   s.CurrentPrice,
		PriceChangePct: s.ChangePct,
		ForwardPE:      s.ForwardPE,
		TrailingPE:     s.TrailingPE,
		PriceToBook:    s.PriceToBook,
		Beta:           s.Beta,
		MarketCap:      s.MarketCap,
	}
}

// Ref returns the citation form of a news item.
func (n NewsItem) Ref() SourceRef {
	return SourceRef{Title: n.Title, Link: n.Link, Source: n.Source}
}
