package application

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// RelativeTime formats t as a point in time relative to now, e.g.
// "4 hours ago" or "2 days from now".
func RelativeTime(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// RelativeDuration formats the span between t and now without a direction,
// e.g. "3 days".
func RelativeDuration(t, now time.Time) string {
	return strings.TrimSpace(humanize.RelTime(t, now, "", ""))
}
