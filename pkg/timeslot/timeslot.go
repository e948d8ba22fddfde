// Package timeslot provides the clock arithmetic shared by the outline,
// timetable, and conflict-detection services. All times are wall-clock
// "HH:MM" strings converted to minutes since midnight.
package timeslot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// IsClock reports whether raw is a valid "HH:MM" wall-clock string.
func IsClock(raw string) bool {
	return clockPattern.MatchString(raw)
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(raw string) (int, error) {
	if !clockPattern.MatchString(raw) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	parts := strings.SplitN(raw, ":", 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", raw, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", raw, err)
	}
	return hours*60 + minutes, nil
}

// DurationMinutes computes the length of the [start, end) window.
// When end precedes start the end is assumed to be a PM time entered
// on a 12-hour clock and 12 hours are added before differencing. The
// input format does not let us tell a wrapped PM time from a typo, so
// a reversed pair is never rejected here.
func DurationMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e < s {
		e += 720
	}
	return e - s, nil
}

// Overlaps reports whether the half-open windows [s1,e1) and [s2,e2)
// intersect. Windows that touch at a boundary do not overlap.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}
