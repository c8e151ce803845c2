// Package utils provides small shared helpers: ticker normalization,
// analysis-window resolution, and display formatting.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeTicker converts user input into the canonical uppercase
// symbol form: trimmed, uppercased, with any exchange suffix kept as-is.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// YTDSentinel is the documented request value that resolves to
// "since start of calendar year". Any non-positive day count is
// treated the same way.
const YTDSentinel = -1

// ResolveWindowDays converts a requested day count into the concrete
// positive window the pipeline runs with. Non-positive values are the
// year-to-date sentinel and resolve to the number of days elapsed
// since January 1 (minimum 1 so a request on New Year's Day still has
// a window).
func ResolveWindowDays(days int, now time.Time) int {
	if days > 0 {
		return days
	}
	jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	elapsed := int(now.Sub(jan1).Hours() / 24)
	if elapsed < 1 {
		return 1
	}
	return elapsed
}

// FormatMarketCap renders a market cap for prompt text, e.g.
// "$2,950,000,000,000". Returns "N/A" for nil.
func FormatMarketCap(cap *float64) string {
	if cap == nil {
		return "N/A"
	}
	return "$" + groupThousands(int64(*cap))
}

// FormatRatio renders an optional valuation ratio for prompt text.
func FormatRatio(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

// FormatChangePct renders a signed percentage change, or a placeholder
// when the change could not be computed.
func FormatChangePct(pct *float64) string {
	if pct == nil {
		return "data unavailable"
	}
	return fmt.Sprintf("%+.2f%%", *pct)
}

// groupThousands formats an integer with comma separators.
func groupThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}
