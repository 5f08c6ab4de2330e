package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/agnosto/chirp/posts"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{90 * time.Second, "1m"},
		{5 * time.Minute, "5m"},
		{59 * time.Minute, "59m"},
		{90 * time.Minute, "1h"},
		{5 * time.Hour, "5h"},
		{30 * time.Hour, "1d"},
		{5 * 24 * time.Hour, "5d"},
	}
	for _, tc := range cases {
		createdAt := now.Add(-tc.ago).Format(posts.TimestampLayout)
		if got := RelativeTime(createdAt, now); got != tc.want {
			t.Fatalf("%v ago: expected %q, got %q", tc.ago, tc.want, got)
		}
	}
	if got := RelativeTime("yesterday", now); got != "" {
		t.Fatalf("expected empty string for bad input, got %q", got)
	}
}

func TestFormatCount(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		9999:     "9999",
		10000:    "10K",
		50125:    "50.1K",
		50025:    "50K",
		999999:   "999.9K",
		1000000:  "1M",
		2500000:  "2.5M",
		12345678: "12.3M",
	}
	for n, want := range cases {
		if got := FormatCount(n); got != want {
			t.Fatalf("FormatCount(%d): expected %q, got %q", n, want, got)
		}
	}
}

func TestCacheFooter(t *testing.T) {
	if got := cacheFooter(1500, time.Time{}); got != "cached 1,500 posts · not synced yet" {
		t.Fatalf("unexpected footer %q", got)
	}
	got := cacheFooter(3, time.Now().Add(-3*time.Minute))
	if !strings.HasPrefix(got, "cached 3 posts · synced ") || !strings.HasSuffix(got, "ago") {
		t.Fatalf("unexpected footer %q", got)
	}
}
