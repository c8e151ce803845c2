package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gausfin/gausthesis/pkg/models"
	"github.com/gausfin/gausthesis/pkg/utils"
)

// Market fetches price and valuation data from the Yahoo Finance API.
type Market struct {
	baseURL string
	cache   *Cache
	limiter *rate.Limiter
}

// MarketOption configures the market source.
type MarketOption func(*Market)

// WithMarketBaseURL sets a custom base URL (used in tests).
func WithMarketBaseURL(url string) MarketOption {
	return func(m *Market) { m.baseURL = strings.TrimRight(url, "/") }
}

// NewMarket creates a new market data source.
func NewMarket(opts ...MarketOption) *Market {
	m := &Market{
		baseURL: "https://query1.finance.yahoo.com",
		cache:   NewCache(5 * time.Minute),
		limiter: rate.NewLimiter(rate.Limit(5), 5), // 5 req/s burst 5
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the data source name.
func (m *Market) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

// yfVal is Yahoo's {raw, fmt} numeric wrapper. A missing field
// unmarshals to a nil Raw, which propagates as "unavailable".
type yfVal struct {
	Raw *float64 `json:"raw"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	Price *struct {
		LongName           string `json:"longName"`
		ShortName          string `json:"shortName"`
		RegularMarketPrice yfVal  `json:"regularMarketPrice"`
		MarketCap          yfVal  `json:"marketCap"`
	} `json:"price"`
	SummaryDetail *struct {
		TrailingPE yfVal `json:"trailingPE"`
		ForwardPE  yfVal `json:"forwardPE"`
		Beta       yfVal `json:"beta"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		ForwardPE   yfVal `json:"forwardPE"`
		PriceToBook yfVal `json:"priceToBook"`
		Beta        yfVal `json:"beta"`
	} `json:"defaultKeyStatistics"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// GetSnapshot returns a market snapshot for the ticker over the given
// window. Unknown tickers fail with ErrTickerNotFound; individually
// missing valuation fields stay nil rather than failing the fetch.
func (m *Market) GetSnapshot(ctx context.Context, ticker string, windowDays int) (*models.Snapshot, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := fmt.Sprintf("snapshot:%s:%d", symbol, windowDays)
	if cached, ok := m.cache.Get(cacheKey); ok {
		return cached.(*models.Snapshot), nil
	}

	summary, err := m.fetchSummary(ctx, symbol)
	if err != nil {
		return nil, err
	}

	closes, err := m.fetchCloses(ctx, symbol, windowDays)
	if err != nil {
		return nil, err
	}

	snap := buildSnapshot(symbol, summary, closes)
	m.cache.Set(cacheKey, snap)
	return snap, nil
}

// --- Internal helpers ---

func (m *Market) fetchSummary(ctx context.Context, symbol string) (*yfSummaryResult, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,defaultKeyStatistics",
		m.baseURL, symbol,
	)
	body, _, err := m.get(ctx, url, symbol)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yfSummaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse quote summary: %w", err)
	}
	if resp.QuoteSummary.Error != nil {
		if strings.EqualFold(resp.QuoteSummary.Error.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
		}
		return nil, fmt.Errorf("market API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}
	return &resp.QuoteSummary.Result[0], nil
}

func (m *Market) fetchCloses(ctx context.Context, symbol string, windowDays int) ([]float64, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	to := time.Now()
	from := to.AddDate(0, 0, -(windowDays + 1))
	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		m.baseURL, symbol, from.Unix(), to.Unix(),
	)
	body, _, err := m.get(ctx, url, symbol)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse chart: %w", err)
	}
	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
		}
		return nil, fmt.Errorf("market chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	var closes []float64
	for _, q := range resp.Chart.Result[0].Indicators.Quote {
		for _, c := range q.Close {
			if c != nil {
				closes = append(closes, *c)
			}
		}
	}
	return closes, nil
}

// get performs a GET and maps a 404 onto ErrTickerNotFound, which the
// Yahoo endpoints use for unknown symbols.
func (m *Market) get(ctx context.Context, url, symbol string) (io.ReadCloser, int, error) {
	body, status, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		if status == 404 {
			return nil, status, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
		}
		return nil, status, fmt.Errorf("market fetch %s: %w", symbol, err)
	}
	return body, status, nil
}

// buildSnapshot assembles the snapshot from the summary fields and the
// close series. The change percentage uses exactly the first and last
// available close in the window; fewer than two closes leaves it nil.
func buildSnapshot(symbol string, s *yfSummaryResult, closes []float64) *models.Snapshot {
	snap := &models.Snapshot{
		Ticker:      symbol,
		CompanyName: symbol,
	}

	if s.Price != nil {
		if name := coalesce(s.Price.LongName, s.Price.ShortName); name != "" {
			snap.CompanyName = name
		}
		if s.Price.RegularMarketPrice.Raw != nil {
			snap.CurrentPrice = *s.Price.RegularMarketPrice.Raw
		}
		snap.MarketCap = s.Price.MarketCap.Raw
	}
	if s.SummaryDetail != nil {
		snap.TrailingPE = s.SummaryDetail.TrailingPE.Raw
		snap.ForwardPE = s.SummaryDetail.ForwardPE.Raw
		snap.Beta = s.SummaryDetail.Beta.Raw
	}
	if s.DefaultKeyStatistics != nil {
		if snap.ForwardPE == nil {
			snap.ForwardPE = s.DefaultKeyStatistics.ForwardPE.Raw
		}
		if snap.Beta == nil {
			snap.Beta = s.DefaultKeyStatistics.Beta.Raw
		}
		snap.PriceToBook = s.DefaultKeyStatistics.PriceToBook.Raw
	}

	if len(closes) >= 2 {
		first, last := closes[0], closes[len(closes)-1]
		if first != 0 {
			pct := (last - first) / first * 100
			snap.ChangePct = &pct
		}
	}
	if snap.CurrentPrice == 0 && len(closes) > 0 {
		snap.CurrentPrice = closes[len(closes)-1]
	}

	return snap
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
