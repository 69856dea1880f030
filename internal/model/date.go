package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const DateLayout = "2006-01-02"

// Day drops the time-of-day of t, keeping the wall-clock calendar date as seen in t's
// own location. The result is midnight UTC so day arithmetic never crosses DST.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDay(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return parsed, nil
}

func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Day(t).Format(DateLayout)
}

// RelativeDay describes date against today: "today", "yesterday" or a humanized distance.
func RelativeDay(date, today time.Time) string {
	date = Day(date)
	today = Day(today)
	switch {
	case date.Equal(today):
		return "today"
	case date.Equal(today.AddDate(0, 0, -1)):
		return "yesterday"
	default:
		return humanize.RelTime(date, today, "ago", "from now")
	}
}
