// Package thesis turns collected market, news, and social data into
// the two synthesized narratives: prompt construction, completion
// response parsing, and the pipeline orchestrator that runs one
// analysis end to end.
package thesis

import (
	"fmt"
	"strings"

	"github.com/gausfin/gausthesis/pkg/models"
	"github.com/gausfin/gausthesis/pkg/utils"
)

// CatalystPrompt builds the prompt asking for 3-5 cited bullets that
// explain the window's price move. The news items are numbered in
// order; the completion cites them as [n] and the parser maps the
// citations back against the same slice, so callers must hand the
// parser the identical list.
func CatalystPrompt(ticker string, changePct *float64, days int, news []models.NewsItem, posts []models.SocialPost) string {
	change := utils.FormatChangePct(changePct)

	if len(news) == 0 && len(posts) == 0 {
		return fmt.Sprintf(`You are a sell-side analyst. %s moved %s over the last %d days.

No recent news articles were found. Based on general market knowledge, provide 3-5 bullet points explaining possible reasons for this price movement.

Be specific and concrete. Mention macro factors, sector trends, or typical catalysts for this company.

Output format: Return ONLY 3-5 bullet points, one per line.

Catalyst Thesis (3-5 bullets):`, ticker, change, days)
	}

	return fmt.Sprintf(`You are a sell-side analyst. %s moved %s over the last %d days.

Based ONLY on the news articles and tweets below, extract 3-5 key bullet points that explain this price movement.

IMPORTANT: Cite sources by their numbers (e.g., [1], [2]) after each relevant point.

Be concrete: mention specific events, actors, and timing from the articles.

Output format: Return ONLY 3-5 bullet points with source citations, one per line.
Example: "Product launch announced driving investor optimism [1][3]"

News Articles:
%s

Notable Tweets:
%s

Catalyst Thesis (3-5 bullets with citations):`, ticker, change, days, numberedNews(news), formatPosts(posts))
}

// RiskPrompt builds the prompt asking for 3-5 uncited risk bullets.
// Absent valuation fields render as "N/A" so the model never treats a
// missing ratio as zero.
func RiskPrompt(ticker string, snap *models.Snapshot, days int, posts []models.SocialPost, surge bool) string {
	valuation := fmt.Sprintf(`Forward P/E: %s
Trailing P/E: %s
Price-to-Book: %s
Beta: %s
Market Cap: %s
Recent %d-day change: %s`,
		utils.FormatRatio(snap.ForwardPE),
		utils.FormatRatio(snap.TrailingPE),
		utils.FormatRatio(snap.PriceToBook),
		utils.FormatRatio(snap.Beta),
		utils.FormatMarketCap(snap.MarketCap),
		days,
		utils.FormatChangePct(snap.ChangePct))

	engagement := 0
	for _, p := range posts {
		engagement += p.Engagement()
	}
	sentiment := fmt.Sprintf("Social media activity: %d tweets, %d total engagement (likes + retweets)", len(posts), engagement)
	if surge {
		sentiment += "\nNote: engagement is elevated versus typical activity, suggesting crowded positioning."
	}

	return fmt.Sprintf(`You are a portfolio risk analyst considering a position in %s.

Given the valuation and risk context below, identify the 3-5 most important risks to be aware of.

Be specific and data-backed. Mention valuation stretch, macro sensitivity, crowding, or any red flags.

Output format: Return ONLY 3-5 bullet points, one per line. No preamble, no conclusion.

Valuation & Risk Metrics:
%s

Sentiment/Crowding Proxy:
%s

Risk Thesis (3-5 bullets):`, ticker, valuation, sentiment)
}

func numberedNews(news []models.NewsItem) string {
	if len(news) == 0 {
		return "No recent news found."
	}
	lines := make([]string, len(news))
	for i, item := range news {
		lines[i] = fmt.Sprintf("[%d] [%s] %s - Published: %s",
			i+1, item.Source, item.Title, item.PublishedAt.UTC().Format("2006-01-02 15:04"))
	}
	return strings.Join(lines, "\n")
}

func formatPosts(posts []models.SocialPost) string {
	if len(posts) == 0 {
		return "No recent tweets found."
	}
	lines := make([]string, len(posts))
	for i, p := range posts {
		lines[i] = fmt.Sprintf("- [Likes: %d, Retweets: %d] %s", p.Likes, p.Reshares, p.Text)
	}
	return strings.Join(lines, "\n")
}
