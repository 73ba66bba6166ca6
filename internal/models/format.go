package models

import (
	"fmt"
	"strconv"
	"time"
)

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// ParseTimestamp reads the backend's local date-time strings.
func ParseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a backend timestamp the way a ko-KR browser locale does,
// e.g. "2025. 3. 1. 오후 2:05:09". Unparseable input is returned unchanged.
func FormatTimestamp(raw string) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return raw
	}
	meridiem := "오전"
	hour := t.Hour()
	if hour >= 12 {
		meridiem = "오후"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d. %d. %d. %s %d:%02d:%02d", t.Year(), int(t.Month()), t.Day(), meridiem, hour, t.Minute(), t.Second())
}

// FormatScore renders a submission score, "N/A" while none is recorded.
func FormatScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

// FormatBestScore renders a leaderboard score with two decimals.
func FormatBestScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}
