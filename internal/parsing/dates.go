// Package parsing turns user input into queue values.
package parsing

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const displayLayout = "2006-01-02 15:04"

// ParseStartTime converts user input into a download start time in epoch
// milliseconds. Empty input and "now" return 0 (run immediately). Durations
// such as "90m" or "in 2h" are relative to now; anything else goes through
// dateparse in the local zone.
func ParseStartTime(s string, now time.Time) (int64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "now":
		return 0, nil
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "in "), "+")
	if d, err := time.ParseDuration(strings.ReplaceAll(rel, " ", "")); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("start time %q is in the past", s)
		}
		return now.Add(d).UnixMilli(), nil
	}

	t, err := dateparse.ParseIn(s, now.Location())
	if err != nil {
		return 0, fmt.Errorf("unable to parse date: %s", s)
	}
	return t.UnixMilli(), nil
}

// FormatMillis formats an epoch millisecond value for display. Zero prints as "now".
func FormatMillis(ms int64) string {
	if ms == 0 {
		return "now"
	}
	return time.UnixMilli(ms).Local().Format(displayLayout)
}
