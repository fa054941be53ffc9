package logparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FilterWindow keeps the lines whose timestamp falls in [start, start+d).
// This is the web flow: the user picks an exact detected event time and a
// duration.
func FilterWindow(content string, start time.Time, d time.Duration, format Format, year int) string {
	end := start.Add(d)
	var out []string
	for _, line := range splitLines(content) {
		t, ok := ParseByFormat(line, format, year)
		if !ok {
			continue
		}
		if !t.Before(start) && t.Before(end) {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// FilterAround keeps the lines whose timestamp falls in
// [target-before, target+after], bounds inclusive. This is the CLI flow.
// Lines are matched with ParseLine so mixed kernel/syslog files work.
func FilterAround(lines []string, target time.Time, before, after time.Duration, year int) []string {
	start := target.Add(-before)
	end := target.Add(after)
	var out []string
	for _, line := range lines {
		t, ok := ParseLine(line, year)
		if !ok {
			continue
		}
		if !t.Before(start) && !t.After(end) {
			out = append(out, line)
		}
	}
	return out
}

// ParseOffset parses a window offset: "30s", "10m", "2h", or a bare
// integer meaning minutes.
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty offset")
	}
	unit := time.Minute
	num := s
	switch s[len(s)-1] {
	case 's':
		unit, num = time.Second, s[:len(s)-1]
	case 'm':
		unit, num = time.Minute, s[:len(s)-1]
	case 'h':
		unit, num = time.Hour, s[:len(s)-1]
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("offset %q must not be negative", s)
	}
	return time.Duration(n) * unit, nil
}

// ParseTarget parses the CLI target-time syntax "Sep-09T13:10" using the
// given year (the syntax has no year or seconds).
func ParseTarget(s string, year int) (time.Time, error) {
	t, err := time.Parse("Jan-02T15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("target time must look like 'Sep-09T13:10': %w", err)
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// Tail returns the last n lines (n <= 0 means all).
func Tail(lines []string, n int) []string {
	if n <= 0 || n >= len(lines) {
		return lines
	}
	return lines[len(lines)-n:]
}
