package thesis

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gausfin/gausthesis/internal/analysis"
	"github.com/gausfin/gausthesis/internal/config"
	"github.com/gausfin/gausthesis/internal/datasource"
	"github.com/gausfin/gausthesis/internal/llm"
	"github.com/gausfin/gausthesis/pkg/models"
	"github.com/gausfin/gausthesis/pkg/utils"
)

// State tracks pipeline progress for one run. Transitions are linear;
// the only abort states are an unknown ticker (before any collection
// fanout) and a completion failure.
type State int

const (
	StateInit State = iota
	StateMarketFetched
	StateDataCollected
	StateBudgeted
	StatePromptsBuilt
	StateCompleting
	StateParsed
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateInit:          "init",
	StateMarketFetched: "market_fetched",
	StateDataCollected: "data_collected",
	StateBudgeted:      "budgeted",
	StatePromptsBuilt:  "prompts_built",
	StateCompleting:    "completing",
	StateParsed:        "parsed",
	StateDone:          "done",
	StateFailed:        "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarketSource supplies the gating snapshot for a ticker.
type MarketSource interface {
	GetSnapshot(ctx context.Context, ticker string, windowDays int) (*models.Snapshot, error)
}

// NewsSource collects news items for a ticker over a window.
type NewsSource interface {
	Collect(ctx context.Context, ticker, company string, windowDays int) datasource.NewsResult
}

// SocialSource searches for qualifying social posts.
type SocialSource interface {
	Search(ctx context.Context, ticker string) datasource.SocialResult
}

// Orchestrator runs the full analysis pipeline: market snapshot first,
// then concurrent news and social collection, budget selection, prompt
// synthesis, and two concurrent completion calls.
type Orchestrator struct {
	market    MarketSource
	news      NewsSource
	social    SocialSource
	completer llm.Provider

	maxNews       int
	maxSocial     int
	minNews       int
	surgeBaseline int
	fetchTimeout  time.Duration

	catalystOpts llm.Options
	riskOpts     llm.Options
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithBudgets sets the selection ceilings and the low-news floor.
func WithBudgets(maxNews, maxSocial, minNews int) Option {
	return func(o *Orchestrator) {
		o.maxNews = maxNews
		o.maxSocial = maxSocial
		o.minNews = minNews
	}
}

// WithSurgeBaseline sets the engagement total treated as a sentiment
// surge.
func WithSurgeBaseline(n int) Option {
	return func(o *Orchestrator) { o.surgeBaseline = n }
}

// WithFetchTimeout bounds each collector call.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.fetchTimeout = d }
}

// WithCompletionOptions overrides the per-call sampling parameters.
func WithCompletionOptions(catalyst, risk llm.Options) Option {
	return func(o *Orchestrator) {
		o.catalystOpts = catalyst
		o.riskOpts = risk
	}
}

// New wires an orchestrator from its sources and completion client.
func New(market MarketSource, news NewsSource, social SocialSource, completer llm.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		market:        market,
		news:          news,
		social:        social,
		completer:     completer,
		maxNews:       10,
		maxSocial:     1,
		minNews:       3,
		surgeBaseline: 500,
		fetchTimeout:  15 * time.Second,
		catalystOpts:  llm.Options{MaxTokens: 600},
		riskOpts:      llm.Options{MaxTokens: 500},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewFromConfig wires a fully configured orchestrator: Yahoo market
// snapshots, the general and curated news feeds, the social search,
// and an Anthropic completion client behind the retry wrapper.
func NewFromConfig(cfg *config.Config) (*Orchestrator, error) {
	provider, err := llm.NewAnthropicProvider(cfg.LLM.AnthropicKey,
		llm.WithAnthropicModel(cfg.LLM.Model),
		llm.WithAnthropicDefaults(cfg.LLM.Temperature, cfg.LLM.MaxTokens),
		llm.WithAnthropicHTTPClient(&http.Client{Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("completion setup failed: %w", err)
	}

	return New(
		datasource.NewMarket(),
		datasource.NewNewsCollector(datasource.WithCuratedFeeds(cfg.Sources.CuratedFeeds)),
		datasource.NewSocialSearch(cfg.Sources.SocialBearer, cfg.Sources.SocialMaxPosts),
		llm.NewRetryClient(provider),
		WithBudgets(cfg.Analysis.MaxNewsItems, cfg.Analysis.MaxSocialPosts, cfg.Analysis.MinNewsItems),
		WithSurgeBaseline(cfg.Analysis.SurgeBaseline),
		WithFetchTimeout(time.Duration(cfg.Sources.FetchTimeoutSec)*time.Second),
		WithCompletionOptions(
			llm.Options{Model: cfg.LLM.Model, Temperature: cfg.LLM.Temperature, MaxTokens: cfg.LLM.MaxTokens},
			llm.Options{Model: cfg.LLM.Model, Temperature: cfg.LLM.Temperature, MaxTokens: 500},
		),
	), nil
}

// Run executes one analysis. windowDays must already be resolved to a
// concrete positive day count (see utils.ResolveWindowDays). The
// returned Analysis is complete and immutable; partial source failures
// are reported in its data status, not as errors. Only an unknown
// ticker or a completion failure aborts the run.
func (o *Orchestrator) Run(ctx context.Context, ticker string, windowDays int) (*models.Analysis, error) {
	ticker = utils.NormalizeTicker(ticker)
	state := StateInit
	advance := func(next State) {
		state = next
		log.Printf("thesis: %s %s", ticker, state)
	}

	snap, err := o.market.GetSnapshot(ctx, ticker, windowDays)
	if err != nil {
		advance(StateFailed)
		return nil, fmt.Errorf("thesis: market snapshot for %s: %w", ticker, err)
	}
	advance(StateMarketFetched)

	// News and social are optional sources; their failures degrade the
	// result instead of aborting, so the group never returns an error.
	var (
		newsRes   datasource.NewsResult
		socialRes datasource.SocialResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, o.fetchTimeout)
		defer cancel()
		newsRes = o.news.Collect(fctx, ticker, snap.CompanyName, windowDays)
		return nil
	})
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, o.fetchTimeout)
		defer cancel()
		socialRes = o.social.Search(fctx, ticker)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		advance(StateFailed)
		return nil, err
	}
	advance(StateDataCollected)

	ranked := analysis.Rank(analysis.Merge(newsRes.Items), ticker, snap.CompanyName)
	selectedNews := analysis.SelectNews(ranked, o.maxNews)
	if selectedNews == nil {
		selectedNews = []models.NewsItem{}
	}
	selectedPosts := analysis.SelectSocial(socialRes.Posts, o.maxSocial)
	if selectedPosts == nil {
		selectedPosts = []models.SocialPost{}
	}
	advance(StateBudgeted)

	surge := analysis.SentimentSurge(selectedPosts, o.surgeBaseline)
	catalystPrompt := CatalystPrompt(ticker, snap.ChangePct, windowDays, selectedNews, selectedPosts)
	riskPrompt := RiskPrompt(ticker, snap, windowDays, selectedPosts, surge)
	advance(StatePromptsBuilt)

	advance(StateCompleting)
	var catalystText, riskText string
	cg, cctx := errgroup.WithContext(ctx)
	cg.Go(func() error {
		comp, err := o.completer.Complete(cctx, "", catalystPrompt, &o.catalystOpts)
		if err != nil {
			return fmt.Errorf("catalyst completion: %w", err)
		}
		catalystText = comp.Text
		return nil
	})
	cg.Go(func() error {
		comp, err := o.completer.Complete(cctx, "", riskPrompt, &o.riskOpts)
		if err != nil {
			return fmt.Errorf("risk completion: %w", err)
		}
		riskText = comp.Text
		return nil
	})
	if err := cg.Wait(); err != nil {
		advance(StateFailed)
		return nil, fmt.Errorf("thesis: %s: %w", ticker, err)
	}

	catalystBullets := ParseCatalyst(catalystText, selectedNews)
	if catalystBullets == nil {
		catalystBullets = []models.CatalystBullet{}
	}
	riskBullets := ParseRisk(riskText)
	if riskBullets == nil {
		riskBullets = []string{}
	}
	score := analysis.RiskScore(analysis.RiskInputsFromSnapshot(snap, surge))
	advance(StateParsed)

	result := &models.Analysis{
		Ticker:         ticker,
		CompanyName:    snap.CompanyName,
		DaysAnalyzed:   windowDays,
		PriceData:      models.PriceDataFromSnapshot(snap),
		News:           selectedNews,
		Tweets:         selectedPosts,
		CatalystThesis: catalystBullets,
		RiskThesis:     riskBullets,
		RiskScore:      score,
		Status: models.DataStatus{
			NewsSourcesFailed: emptyIfNil(newsRes.FailedSources),
			SocialAvailable:   socialRes.Available,
			LowNews:           len(selectedNews) < o.minNews,
		},
	}
	advance(StateDone)
	return result, nil
}

// emptyIfNil keeps the failed-sources field serializing as [] rather
// than null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
