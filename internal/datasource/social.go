package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gausfin/gausthesis/pkg/models"
)

// SocialSearch queries the social recent-search API for English,
// non-reshared posts mentioning a ticker. The API sits behind a hard
// monthly read quota, so the per-request post cap is a configuration
// value and every request issues exactly one search call.
type SocialSearch struct {
	baseURL  string
	bearer   string
	maxPosts int
	client   *http.Client
}

// SocialOption configures the social source.
type SocialOption func(*SocialSearch)

// WithSocialBaseURL sets a custom API base URL (used in tests).
func WithSocialBaseURL(u string) SocialOption {
	return func(s *SocialSearch) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithSocialHTTPClient sets a custom HTTP client.
func WithSocialHTTPClient(c *http.Client) SocialOption {
	return func(s *SocialSearch) { s.client = c }
}

// NewSocialSearch creates a social search source. maxPosts is the hard
// cap on posts kept per request; values below 1 default to 1.
func NewSocialSearch(bearer string, maxPosts int, opts ...SocialOption) *SocialSearch {
	if maxPosts < 1 {
		maxPosts = 1
	}
	s := &SocialSearch{
		baseURL:  "https://api.twitter.com/2",
		bearer:   bearer,
		maxPosts: maxPosts,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the data source name.
func (s *SocialSearch) Name() string { return "X Search" }

// SocialResult is the typed outcome of one search. A degraded source
// yields Available == false with an empty Posts slice; it is never an
// error to the caller.
type SocialResult struct {
	Posts     []models.SocialPost
	Available bool
	Reason    string // why unavailable, "" when available
}

// --- API types ---

type socialSearchResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		AuthorID      string `json:"author_id"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// Search issues a single recent-search call for the ticker and returns
// the top posts by engagement. Failures of any kind degrade to an
// unavailable result; they never propagate past this boundary.
func (s *SocialSearch) Search(ctx context.Context, ticker string) SocialResult {
	if s.bearer == "" {
		return SocialResult{Reason: "credentials not configured"}
	}

	// The API requires max_results between 10 and 100 even when the
	// configured cap is lower; the cap is applied after ranking.
	maxResults := s.maxPosts
	if maxResults < 10 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	params := url.Values{}
	params.Set("query", fmt.Sprintf("(%s) lang:en -is:retweet", ticker))
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("tweet.fields", "created_at,public_metrics,author_id")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return SocialResult{Reason: "request build failed"}
	}
	req.Header.Set("Authorization", "Bearer "+s.bearer)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("datasource/social: search failed for %s: %v", ticker, err)
		return SocialResult{Reason: "social source unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		log.Printf("datasource/social: quota exhausted for %s", ticker)
		return SocialResult{Reason: "social quota exhausted"}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("datasource/social: API error %d: %s", resp.StatusCode, string(body))
		return SocialResult{Reason: fmt.Sprintf("social API error %d", resp.StatusCode)}
	}

	var parsed socialSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("datasource/social: decode failed: %v", err)
		return SocialResult{Reason: "social response malformed"}
	}

	posts := make([]models.SocialPost, 0, len(parsed.Data))
	for _, t := range parsed.Data {
		postedAt, err := time.Parse(time.RFC3339, t.CreatedAt)
		if err != nil {
			continue
		}
		posts = append(posts, models.SocialPost{
			Text:     t.Text,
			PostedAt: postedAt.UTC(),
			Likes:    t.PublicMetrics.LikeCount,
			Reshares: t.PublicMetrics.RetweetCount,
			AuthorID: t.AuthorID,
			PostID:   t.ID,
		})
	}

	// Rank by engagement, more recent first on ties, then keep the
	// configured cap.
	sort.SliceStable(posts, func(i, j int) bool {
		ei, ej := posts[i].Engagement(), posts[j].Engagement()
		if ei != ej {
			return ei > ej
		}
		return posts[i].PostedAt.After(posts[j].PostedAt)
	})
	if len(posts) > s.maxPosts {
		posts = posts[:s.maxPosts]
	}

	return SocialResult{Posts: posts, Available: true}
}
