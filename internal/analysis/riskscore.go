package analysis

import (
	"math"

	"github.com/gausfin/gausthesis/pkg/models"
)

// RiskInputs are the signals the risk score is computed from. Every
// field may be absent; the score falls back to whatever remains.
type RiskInputs struct {
	ForwardPE      *float64
	PriceToBook    *float64
	Beta           *float64
	MarketCap      *float64
	ChangePct      *float64
	SentimentSurge bool
}

// Market-cap bands in USD.
const (
	microCap = 1_000_000_000
	smallCap = 5_000_000_000
	midCap   = 20_000_000_000
	largeCap = 100_000_000_000
	megaCap  = 500_000_000_000
)

// RiskScore computes the 1-10 risk score deterministically from the
// available signals. The weighting: a baseline of 3, forward P/E bands
// with a leniency split for mega caps (premium multiples are normal
// there), extreme price-to-book, beta volatility, the magnitude of the
// window move, market-cap size bands, and one point for a social
// sentiment surge. Absent inputs simply skip their factor, so the
// score is computable with every valuation field missing.
func RiskScore(in RiskInputs) int {
	score := 3

	if in.ForwardPE != nil {
		pe := *in.ForwardPE
		isMegaCap := in.MarketCap != nil && *in.MarketCap > megaCap
		if isMegaCap {
			switch {
			case pe > 100:
				score += 3
			case pe > 70:
				score += 2
			case pe > 45:
				score += 1
			case pe < 20:
				score -= 1
			}
		} else {
			switch {
			case pe > 80:
				score += 3
			case pe > 50:
				score += 2
			case pe > 35:
				score += 1
			case pe < 15:
				score -= 1
			}
		}
	}

	if in.PriceToBook != nil {
		switch {
		case *in.PriceToBook > 40:
			score += 2
		case *in.PriceToBook > 25:
			score += 1
		}
	}

	if in.Beta != nil {
		switch {
		case *in.Beta > 2.5:
			score += 2
		case *in.Beta > 2.0:
			score += 1
		case *in.Beta < 0.8:
			score -= 1
		}
	}

	if in.ChangePct != nil {
		move := math.Abs(*in.ChangePct)
		switch {
		case move > 20:
			score += 2
		case move > 15:
			score += 1
		case move < 3:
			score -= 1
		}
	}

	if in.MarketCap != nil {
		switch {
		case *in.MarketCap < microCap:
			score += 3
		case *in.MarketCap < smallCap:
			score += 2
		case *in.MarketCap < midCap:
			score += 1
		case *in.MarketCap > megaCap:
			score -= 2
		case *in.MarketCap > largeCap:
			score -= 1
		}
	}

	if in.SentimentSurge {
		score++
	}

	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// RiskInputsFromSnapshot builds the scoring inputs from a snapshot and
// the surge predicate.
func RiskInputsFromSnapshot(s *models.Snapshot, surge bool) RiskInputs {
	return RiskInputs{
		ForwardPE:      s.ForwardPE,
		PriceToBook:    s.PriceToBook,
		Beta:           s.Beta,
		MarketCap:      s.MarketCap,
		ChangePct:      s.ChangePct,
		SentimentSurge: surge,
	}
}

// SentimentSurge reports whether combined engagement across the
// selected posts meets the configured baseline. The same predicate
// gates the risk prompt's surge note and the risk score's surge
// point, so the narrative and the number always agree.
func SentimentSurge(posts []models.SocialPost, baseline int) bool {
	if baseline <= 0 || len(posts) == 0 {
		return false
	}
	total := 0
	for _, p := range posts {
		total += p.Engagement()
	}
	return total >= baseline
}
