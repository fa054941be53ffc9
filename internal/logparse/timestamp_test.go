package logparse

import (
	"testing"
	"time"
)

// ─── Traditional syslog ─────────────────────────────────────────────────────

func TestParseTraditional(t *testing.T) {
	tests := []struct {
		name string
		line string
		want time.Time
		ok   bool
	}{
		{
			name: "double space day",
			line: "Sep  9 13:12:42 web01 sshd[412]: Failed password",
			want: time.Date(2025, time.September, 9, 13, 12, 42, 0, time.UTC),
			ok:   true,
		},
		{
			name: "two digit day",
			line: "Dec 31 23:59:59 web01 kernel: out of memory",
			want: time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC),
			ok:   true,
		},
		{
			name: "unknown month",
			line: "Xxx 12 10:00:00 host daemon: hello",
			ok:   false,
		},
		{
			name: "day out of range",
			line: "Sep 31 10:00:00 host daemon: hello",
			ok:   false,
		},
		{
			name: "no timestamp",
			line: "kernel panic - not syncing",
			ok:   false,
		},
		{
			name: "empty line",
			line: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTraditional(tt.line, 2025)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("time = %v, want %v", got, tt.want)
			}
		})
	}
}

// ─── Bracketed dmesg ────────────────────────────────────────────────────────

func TestParseBracketed(t *testing.T) {
	tests := []struct {
		name string
		line string
		want time.Time
		ok   bool
	}{
		{
			name: "standard dmesg",
			line: "[Tue Sep  9 13:12:42 2025] usb 1-1: device descriptor read error",
			want: time.Date(2025, time.September, 9, 13, 12, 42, 0, time.UTC),
			ok:   true,
		},
		{
			name: "single digit day",
			line: "[Mon Jan  6 04:05:06 2024] EXT4-fs error",
			want: time.Date(2024, time.January, 6, 4, 5, 6, 0, time.UTC),
			ok:   true,
		},
		{
			name: "traditional line is not bracketed",
			line: "Sep  9 13:12:42 web01 sshd[412]: Failed password",
			ok:   false,
		},
		{
			name: "bracket without year",
			line: "[Tue Sep  9 13:12:42] message",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBracketed(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("time = %v, want %v", got, tt.want)
			}
		})
	}
}

// ─── Format detection ───────────────────────────────────────────────────────

func TestDetectFormat(t *testing.T) {
	bracketed := "noise line\n[Tue Sep  9 13:12:42 2025] usb 1-1: reset\n"
	if f := DetectFormat(bracketed); f != FormatBracketed {
		t.Errorf("format = %q, want bracketed", f)
	}

	traditional := "Sep  9 13:12:42 web01 sshd[412]: Failed password\n"
	if f := DetectFormat(traditional); f != FormatTraditional {
		t.Errorf("format = %q, want traditional", f)
	}

	// No timestamps at all defaults to traditional.
	if f := DetectFormat("just some text\n"); f != FormatTraditional {
		t.Errorf("format = %q, want traditional fallback", f)
	}
}

// ─── Year inference ─────────────────────────────────────────────────────────

func TestInferYear(t *testing.T) {
	content := "Sep  9 13:12:42 web01 app: request at 2023-09-09T13:12:42Z failed\n"
	if y := InferYear(content); y != 2023 {
		t.Errorf("year = %d, want 2023", y)
	}

	content = "Sep  9 13:12:42 web01 app: backup 2021/09/09 complete\n"
	if y := InferYear(content); y != 2021 {
		t.Errorf("year = %d, want 2021", y)
	}

	// No hint falls back to the current year.
	if y := InferYear("Sep  9 13:12:42 host app: hi\n"); y != time.Now().Year() {
		t.Errorf("year = %d, want current year", y)
	}
}

// ─── Event time detection ───────────────────────────────────────────────────

func TestDetectTimes_SortedAndDeduplicated(t *testing.T) {
	content := "Sep  9 13:12:44 h a: later\n" +
		"Sep  9 13:12:42 h a: first, seen 2024-01-01\n" +
		"Sep  9 13:12:42 h a: duplicate second\n" +
		"not a timestamped line\n" +
		"Sep  9 13:12:43 h a: middle\n"

	year, times := DetectTimes(content, FormatTraditional)
	if year != 2024 {
		t.Fatalf("year = %d, want 2024", year)
	}
	if len(times) != 3 {
		t.Fatalf("len(times) = %d, want 3", len(times))
	}
	for i := 1; i < len(times); i++ {
		if !times[i-1].Before(times[i]) {
			t.Errorf("times not strictly ascending at %d: %v >= %v", i, times[i-1], times[i])
		}
	}
}

func TestDetectTimes_BracketedYearFromContent(t *testing.T) {
	content := "[Tue Sep  9 13:12:42 2025] usb reset\n[Tue Sep  9 13:12:50 2025] usb reset\n"
	year, times := DetectTimes(content, FormatBracketed)
	if year != 2025 {
		t.Errorf("year = %d, want 2025", year)
	}
	if len(times) != 2 {
		t.Errorf("len(times) = %d, want 2", len(times))
	}
}

func TestDetectTimes_Empty(t *testing.T) {
	_, times := DetectTimes("", FormatTraditional)
	if len(times) != 0 {
		t.Errorf("expected no times, got %d", len(times))
	}
}
