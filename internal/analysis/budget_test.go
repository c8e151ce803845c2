package analysis

import (
	"fmt"
	"testing"

	"github.com/gausfin/gausthesis/pkg/models"
)

func TestSelectNewsCeiling(t *testing.T) {
	var items []models.NewsItem
	for i := 0; i < 100; i++ {
		items = append(items, models.NewsItem{Link: fmt.Sprintf("https://e.com/%d", i)})
	}

	selected := SelectNews(items, 10)
	if len(selected) != 10 {
		t.Fatalf("got %d, want ceiling of 10", len(selected))
	}
	// Pure prefix take: order preserved exactly.
	for i, item := range selected {
		if item.Link != fmt.Sprintf("https://e.com/%d", i) {
			t.Fatalf("selection reordered input at %d: %q", i, item.Link)
		}
	}
}

func TestSelectNewsUnderCeiling(t *testing.T) {
	items := []models.NewsItem{{Link: "a"}, {Link: "b"}}
	if got := len(SelectNews(items, 10)); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestSelectNewsZeroCeiling(t *testing.T) {
	items := []models.NewsItem{{Link: "a"}}
	if got := SelectNews(items, 0); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestSelectNewsDoesNotAliasInput(t *testing.T) {
	items := []models.NewsItem{{Link: "a"}, {Link: "b"}, {Link: "c"}}
	selected := SelectNews(items, 2)
	selected[0].Link = "mutated"
	if items[0].Link != "a" {
		t.Fatal("selection must not alias the ranked input")
	}
}

func TestSelectSocialCeiling(t *testing.T) {
	var posts []models.SocialPost
	for i := 0; i < 50; i++ {
		posts = append(posts, models.SocialPost{PostID: fmt.Sprintf("%d", i)})
	}
	selected := SelectSocial(posts, 1)
	if len(selected) != 1 || selected[0].PostID != "0" {
		t.Fatalf("got %v, want first post only", selected)
	}
}
