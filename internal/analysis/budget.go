package analysis

import "github.com/gausfin/gausthesis/pkg/models"

// SelectNews takes the bounded prefix of ranked news items. It never
// re-ranks and never reaches past the ceiling regardless of input
// size; the prefix is what becomes the numbered citation list.
func SelectNews(ranked []models.NewsItem, max int) []models.NewsItem {
	if max <= 0 || len(ranked) == 0 {
		return nil
	}
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]models.NewsItem, len(ranked))
	copy(out, ranked)
	return out
}

// SelectSocial takes the bounded prefix of ranked social posts.
func SelectSocial(ranked []models.SocialPost, max int) []models.SocialPost {
	if max <= 0 || len(ranked) == 0 {
		return nil
	}
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]models.SocialPost, len(ranked))
	copy(out, ranked)
	return out
}
