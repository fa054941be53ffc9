package logparse

import "strings"

const (
	// maxLineLen drops pathological lines (stack dumps, base64 blobs)
	// that would waste the model's context window.
	maxLineLen = 1000

	// DefaultMaxLines is the preprocessing budget: beyond it the middle
	// of the file is elided, keeping the head and tail halves.
	DefaultMaxLines = 200

	truncationMarker = "... (truncated) ..."
)

// Preprocess prepares (already time-filtered) log content for prompting:
// trims each line, drops blanks and over-long lines, and elides the middle
// when more than maxLines remain. maxLines <= 0 selects DefaultMaxLines.
func Preprocess(content string, maxLines int) string {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	var kept []string
	for _, line := range splitLines(strings.TrimSpace(content)) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(line) >= maxLineLen {
			continue
		}
		kept = append(kept, trimmed)
	}

	if len(kept) > maxLines {
		half := maxLines / 2
		head := kept[:half]
		tail := kept[len(kept)-half:]
		kept = append(append(append([]string{}, head...), truncationMarker), tail...)
	}
	return strings.Join(kept, "\n")
}

// CountLines counts the non-blank lines in content.
func CountLines(content string) int {
	n := 0
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
