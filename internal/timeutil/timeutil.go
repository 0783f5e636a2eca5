// Package timeutil provides the small pure helpers the rest of the core
// builds on: HH:MM parsing/formatting, half-open range intersection, and
// daily time-of-day window containment (including midnight crossing).
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHHMM parses "HH:MM" into minutes-since-midnight in [0, 1440).
func ParseHHMM(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("timeutil: malformed HH:MM %q", s)
	}
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("timeutil: malformed HH:MM %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timeutil: malformed HH:MM %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timeutil: malformed HH:MM %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("timeutil: out-of-range HH:MM %q", s)
	}
	return h*60 + m, nil
}

// FormatHHMM formats minutes-since-midnight as a zero-padded "HH:MM".
func FormatHHMM(minutes int) string {
	h := (minutes / 60) % 24
	m := minutes % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Range is a half-open [Start, End) interval of minutes-since-midnight, or
// more generally any integer unit the caller uses consistently.
type Range struct {
	Start, End int
}

// Intersect returns the overlap of a and b as [max(a.Start,b.Start),
// min(a.End,b.End)), or ok=false if the intervals don't overlap.
func Intersect(a, b Range) (Range, bool) {
	start := max(a.Start, b.Start)
	end := min(a.End, b.End)
	if start >= end {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// InWindow reports whether nowMinutes falls within the daily window
// [start, end]. When start <= end the window is a normal same-day range;
// when start > end the window crosses midnight and is satisfied by
// now >= start OR now <= end.
func InWindow(nowMinutes, start, end int) bool {
	if start <= end {
		return nowMinutes >= start && nowMinutes <= end
	}
	return nowMinutes >= start || nowMinutes <= end
}
