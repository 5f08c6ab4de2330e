package ui

import (
	"fmt"
	"time"

	"github.com/agnosto/chirp/posts"
	"github.com/dustin/go-humanize"
)

// RelativeTime renders createdAt as a short age such as "5m" or "2d".
// It returns "" when createdAt cannot be parsed.
func RelativeTime(createdAt string, now time.Time) string {
	t, err := time.Parse(posts.TimestampLayout, createdAt)
	if err != nil {
		return ""
	}

	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < 2*time.Minute:
		return "1m"
	case diff < time.Hour:
		return fmt.Sprintf("%dm", diff/time.Minute)
	case diff < 2*time.Hour:
		return "1h"
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", diff/time.Hour)
	case diff < 48*time.Hour:
		return "1d"
	default:
		return fmt.Sprintf("%dd", diff/(24*time.Hour))
	}
}

// FormatCount shortens large counts: 50125 becomes "50.1K", 2000000 becomes "2M".
func FormatCount(n int64) string {
	if n < 10000 {
		return fmt.Sprintf("%d", n)
	}

	unit, quantifier := int64(1000), "K"
	if n >= 1000000 {
		unit, quantifier = 1000000, "M"
	}

	whole := n / unit
	tenth := n % unit / (unit / 10)
	if tenth == 0 {
		return fmt.Sprintf("%d%s", whole, quantifier)
	}
	return fmt.Sprintf("%d.%d%s", whole, tenth, quantifier)
}

// cacheFooter describes the local cache state for the status bar.
func cacheFooter(cached int64, syncedAt time.Time) string {
	if syncedAt.IsZero() {
		return fmt.Sprintf("cached %s posts · not synced yet", humanize.Comma(cached))
	}
	return fmt.Sprintf("cached %s posts · synced %s", humanize.Comma(cached), humanize.Time(syncedAt))
}
