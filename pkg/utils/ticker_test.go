package utils

import (
	"testing"
	"time"
)

func TestNormalizeTicker(t *testing.T) {
	cases := map[string]string{
		"aapl":   "AAPL",
		" TSLA ": "TSLA",
		"Brk.B":  "BRK.B",
	}
	for in, want := range cases {
		if got := NormalizeTicker(in); got != want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveWindowDaysPositive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	if got := ResolveWindowDays(7, now); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestResolveWindowDaysYTD(t *testing.T) {
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	// Jan 1 → Feb 1 is 31 days.
	if got := ResolveWindowDays(YTDSentinel, now); got != 31 {
		t.Fatalf("got %d, want 31", got)
	}
}

func TestResolveWindowDaysYTDOnNewYear(t *testing.T) {
	now := time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)
	if got := ResolveWindowDays(0, now); got != 1 {
		t.Fatalf("got %d, want minimum window of 1", got)
	}
}

func TestFormatMarketCap(t *testing.T) {
	if got := FormatMarketCap(nil); got != "N/A" {
		t.Fatalf("nil cap: got %q", got)
	}
	v := 2_950_000_000_000.0
	if got := FormatMarketCap(&v); got != "$2,950,000,000,000" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatChangePct(t *testing.T) {
	if got := FormatChangePct(nil); got != "data unavailable" {
		t.Fatalf("got %q", got)
	}
	up := 4.2
	if got := FormatChangePct(&up); got != "+4.20%" {
		t.Fatalf("got %q", got)
	}
	down := -1.05
	if got := FormatChangePct(&down); got != "-1.05%" {
		t.Fatalf("got %q", got)
	}
}
