package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format accepted alongside RFC 3339.
const DateLayout = "2006-01-02"

// ParseDate accepts an RFC 3339 timestamp or a YYYY-MM-DD calendar day and
// returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
