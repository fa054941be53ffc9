// Package logparse is the deterministic half of LogWise: timestamp
// detection, time-window filtering, and prompt preprocessing. Everything
// here is pure: no network, no clock beyond an injected "now" year.
//
// Two timestamp shapes are recognized:
//   - traditional syslog:  "Sep  9 13:12:42 host sshd[412]: ..."
//     (no year in the line; inferred from the file content)
//   - bracketed dmesg:     "[Tue Sep  9 13:12:42 2025] usb 1-1: ..."
package logparse

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Format identifies which timestamp shape a log file uses.
type Format string

const (
	FormatTraditional Format = "traditional"
	FormatBracketed   Format = "bracketed"
)

var (
	reTraditional = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2})\s+(\d{2}):(\d{2}):(\d{2})`)
	reBracketed   = regexp.MustCompile(`^\[(\w{3})\s+(\w{3})\s+(\d{1,2})\s+(\d{2}):(\d{2}):(\d{2})\s+(\d{4})\]`)
	reYear        = regexp.MustCompile(`(\d{4})[-/]`)
)

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// makeTime validates the components the way a strict datetime constructor
// would: a normalizing time.Date (Sep 31 → Oct 1) counts as no timestamp.
func makeTime(year int, month time.Month, day, hour, min, sec int) (time.Time, bool) {
	t := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != min || t.Second() != sec {
		return time.Time{}, false
	}
	return t, true
}

// ParseTraditional parses a "Sep  9 13:12:42" prefix using the given year.
func ParseTraditional(line string, year int) (time.Time, bool) {
	m := reTraditional.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := months[m[1]]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	min, _ := strconv.Atoi(m[4])
	sec, _ := strconv.Atoi(m[5])
	return makeTime(year, month, day, hour, min, sec)
}

// ParseBracketed parses a "[Tue Sep  9 13:12:42 2025]" prefix. The weekday
// token is not validated against the date; dmesg writes it, we ignore it.
func ParseBracketed(line string) (time.Time, bool) {
	m := reBracketed.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := months[m[2]]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	min, _ := strconv.Atoi(m[5])
	sec, _ := strconv.Atoi(m[6])
	year, _ := strconv.Atoi(m[7])
	return makeTime(year, month, day, hour, min, sec)
}

// ParseLine tries both shapes, bracketed first. Used by the CLI flow where
// the file may mix kernel and syslog lines.
func ParseLine(line string, year int) (time.Time, bool) {
	if t, ok := ParseBracketed(line); ok {
		return t, true
	}
	return ParseTraditional(line, year)
}

// ParseByFormat parses a line according to an already-detected format.
func ParseByFormat(line string, format Format, year int) (time.Time, bool) {
	if format == FormatBracketed {
		return ParseBracketed(line)
	}
	return ParseTraditional(line, year)
}

// DetectFormat scans the content and returns FormatBracketed if any line
// carries a bracketed timestamp, FormatTraditional otherwise.
func DetectFormat(content string) Format {
	for _, line := range splitLines(content) {
		if _, ok := ParseBracketed(line); ok {
			return FormatBracketed
		}
	}
	return FormatTraditional
}

// InferYear guesses the year of a traditional-syslog file from the first
// "YYYY-" or "YYYY/" occurrence anywhere in the content (log bodies often
// carry ISO dates even when the syslog prefix does not). Falls back to the
// current year.
func InferYear(content string) int {
	if m := reYear.FindStringSubmatch(content); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y
	}
	return time.Now().Year()
}

// DetectTimes returns the inferred year and every distinct timestamp in the
// content, sorted ascending. For bracketed content the year comes from the
// earliest timestamp itself.
func DetectTimes(content string, format Format) (int, []time.Time) {
	var year int
	if format == FormatBracketed {
		year = time.Now().Year() // replaced below once a line parses
	} else {
		year = InferYear(content)
	}

	seen := make(map[time.Time]struct{})
	var times []time.Time
	for _, line := range splitLines(content) {
		t, ok := ParseByFormat(line, format, year)
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	if format == FormatBracketed && len(times) > 0 {
		year = times[0].Year()
	}
	return year, times
}

func splitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}
