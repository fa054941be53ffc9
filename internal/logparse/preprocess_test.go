package logparse

import (
	"fmt"
	"strings"
	"testing"
)

func TestPreprocess_DropsBlankAndOversizedLines(t *testing.T) {
	long := strings.Repeat("x", 1200)
	content := "  first line  \n\n\t\n" + long + "\nsecond line\n"

	got := Preprocess(content, 0)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), got)
	}
	if lines[0] != "first line" {
		t.Errorf("lines not trimmed: %q", lines[0])
	}
	if strings.Contains(got, "xxx") {
		t.Error("oversized line should be dropped")
	}
}

func TestPreprocess_TruncatesMiddle(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&b, "line %03d\n", i)
	}

	got := Preprocess(b.String(), 200)
	lines := strings.Split(got, "\n")
	// 100 head + marker + 100 tail
	if len(lines) != 201 {
		t.Fatalf("got %d lines, want 201", len(lines))
	}
	if lines[0] != "line 000" {
		t.Errorf("head[0] = %q", lines[0])
	}
	if lines[100] != "... (truncated) ..." {
		t.Errorf("marker = %q", lines[100])
	}
	if lines[200] != "line 499" {
		t.Errorf("tail[last] = %q", lines[200])
	}
}

func TestPreprocess_UnderBudgetUntouched(t *testing.T) {
	content := "a\nb\nc"
	if got := Preprocess(content, 200); got != content {
		t.Errorf("got %q, want %q", got, content)
	}
}

func TestCountLines(t *testing.T) {
	if n := CountLines("a\n\nb\n  \nc"); n != 3 {
		t.Errorf("CountLines = %d, want 3", n)
	}
	if n := CountLines(""); n != 0 {
		t.Errorf("CountLines empty = %d, want 0", n)
	}
}
