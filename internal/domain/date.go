package domain

import (
	"strings"
	"time"
)

// DateLayout is the day-month-year format used on the wire.
const DateLayout = "02-01-2006"

// isoDateLayout is the canonical storage form, also accepted on input.
const isoDateLayout = "2006-01-02"

// ParseDate parses a DD-MM-YYYY (or canonical YYYY-MM-DD) string into a date at
// midnight UTC. ok is false when neither layout matches.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{DateLayout, isoDateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date as DD-MM-YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf truncates t to its calendar date in t's location, expressed at
// midnight UTC so dates compare independently of zones.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
