// Package rfc822 renders human-entered post dates as RSS pubDate strings.
//
// The output always ends in the literal "GMT" and always has ":00" seconds. The
// parsed wall-clock fields are printed unchanged; no timezone conversion is done,
// so the result is only correct when the source dates are authored in GMT.
package rfc822

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// InvalidDate is returned alongside ErrInvalidDate. Callers must not publish it.
const InvalidDate = "Invalid Date"

// ErrInvalidDate reports input no known layout could parse.
var ErrInvalidDate = errors.New("invalid date")

var (
	dayNames   = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// layouts are tried in order; the first that parses wins.
var layouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006.1.2",
	"2006. 1. 2.",
	"2006. 1. 2",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// Format converts dateString into "<Dow>, <DD> <Mon> <YYYY> <HH>:<MM>:00 GMT".
// Unparseable input yields InvalidDate and an error wrapping ErrInvalidDate.
func Format(dateString string) (string, error) {
	t, err := parse(dateString)
	if err != nil {
		return InvalidDate, err
	}
	return build(t), nil
}

func parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrInvalidDate)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func build(t time.Time) string {
	return fmt.Sprintf("%s, %02d %s %04d %02d:%02d:00 GMT",
		dayNames[t.Weekday()],
		t.Day(),
		monthNames[t.Month()-1],
		t.Year(),
		t.Hour(),
		t.Minute(),
	)
}
