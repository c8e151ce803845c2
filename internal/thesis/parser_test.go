package thesis

import "testing"

func TestParseCatalystResolvesCitations(t *testing.T) {
	news := sampleNews(3)
	text := `Here is the thesis:

- Earnings beat drove the rally [1][3]
- Analyst upgrades followed [2]
Some stray commentary line.
`
	bullets := ParseCatalyst(text, news)
	if len(bullets) != 2 {
		t.Fatalf("got %d bullets, want 2", len(bullets))
	}

	first := bullets[0]
	if first.Text != "Earnings beat drove the rally" {
		t.Fatalf("citation markers not stripped: %q", first.Text)
	}
	if len(first.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(first.Sources))
	}
	if first.Sources[0] != news[0].Ref() || first.Sources[1] != news[2].Ref() {
		t.Fatalf("citations resolved to wrong items: %+v", first.Sources)
	}
	if len(bullets[1].Sources) != 1 || bullets[1].Sources[0] != news[1].Ref() {
		t.Fatalf("second bullet sources: %+v", bullets[1].Sources)
	}
}

func TestParseCatalystDropsOutOfRangeCitations(t *testing.T) {
	news := sampleNews(2)
	bullets := ParseCatalyst("- Supply chain news [1][7][0]", news)
	if len(bullets) != 1 {
		t.Fatalf("got %d bullets, want 1", len(bullets))
	}
	if len(bullets[0].Sources) != 1 || bullets[0].Sources[0] != news[0].Ref() {
		t.Fatalf("only [1] should resolve: %+v", bullets[0].Sources)
	}
}

func TestParseCatalystBulletMarkers(t *testing.T) {
	text := "- dash bullet [1]\n• dot bullet\n3. numbered bullet\nnot a bullet"
	bullets := ParseCatalyst(text, sampleNews(1))
	if len(bullets) != 3 {
		t.Fatalf("got %d bullets, want 3", len(bullets))
	}
	want := []string{"dash bullet", "dot bullet", "numbered bullet"}
	for i, w := range want {
		if bullets[i].Text != w {
			t.Errorf("bullet %d: got %q, want %q", i, bullets[i].Text, w)
		}
	}
}

func TestParseCatalystUnusableCompletion(t *testing.T) {
	if got := ParseCatalyst("I could not produce an analysis.", nil); len(got) != 0 {
		t.Fatalf("expected no bullets, got %+v", got)
	}
	if got := ParseCatalyst("", nil); len(got) != 0 {
		t.Fatalf("expected no bullets for empty text, got %+v", got)
	}
	// A bullet that is only a citation marker has no text left.
	if got := ParseCatalyst("- [1]", sampleNews(1)); len(got) != 0 {
		t.Fatalf("expected marker-only bullet dropped, got %+v", got)
	}
}

func TestParseCatalystBulletWithoutCitations(t *testing.T) {
	bullets := ParseCatalyst("- Macro headwinds weighed on megacaps", sampleNews(2))
	if len(bullets) != 1 {
		t.Fatalf("got %d bullets, want 1", len(bullets))
	}
	if len(bullets[0].Sources) != 0 {
		t.Fatalf("expected no sources, got %+v", bullets[0].Sources)
	}
}

func TestParseRisk(t *testing.T) {
	text := `Risk Thesis:
- Valuation stretched versus peers
1. Beta implies outsized drawdowns
preamble that should be ignored
`
	bullets := ParseRisk(text)
	if len(bullets) != 2 {
		t.Fatalf("got %d bullets, want 2: %+v", len(bullets), bullets)
	}
	if bullets[0] != "Valuation stretched versus peers" || bullets[1] != "Beta implies outsized drawdowns" {
		t.Fatalf("unexpected bullets: %+v", bullets)
	}
}

func TestParseRiskEmpty(t *testing.T) {
	if got := ParseRisk("no bullets here"); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}
