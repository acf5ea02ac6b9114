package schema

import (
	"fmt"
	"strings"
	"time"
)

// dateFormats are tried in order when parsing registration_date.
// Day-first slashes are not accepted: 03/04/2024 is always March 4th.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a registration date and truncates it to a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthOf formats the YYYY-MM month key of t.
func MonthOf(t time.Time) string {
	return t.Format("2006-01")
}

// QuarterOf formats the YYYYQn quarter key of t.
func QuarterOf(t time.Time) string {
	return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1)
}

// ParseMonth parses a YYYY-MM month key.
func ParseMonth(s string) (time.Time, error) {
	return time.Parse("2006-01", s)
}
