// Package utils provides small parsing helpers shared by the HTTP and service
// layers.
package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-exercise-tracker/internal/domain"
)

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
//	n := utils.AtoiDefault("42", 0) // 42
//	n = utils.AtoiDefault("x", 5)   // 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// dateLayouts are tried in order by ParseDate. Slash dates are year first
// or US month/day order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate parses s in any accepted layout and returns the calendar day it
// names as midnight UTC. Offsets in s are honoured when picking the day, so
// "2024-01-15T23:30:00-05:00" is the 15th. ok is false for blank or
// unparseable input.
func ParseDate(s string) (day time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.CalendarDay(t), true
		}
	}
	return time.Time{}, false
}

// Today returns the current calendar day in loc (nil means UTC).
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return domain.CalendarDay(now.In(loc))
}
