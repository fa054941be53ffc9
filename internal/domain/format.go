package domain

import (
	"fmt"
	"time"
)

// HumanSize renders a byte count as a short human-readable string.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// HumanDuration renders a wall-clock duration at second granularity.
func HumanDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

// HumanCount renders a line count with a thousands separator.
func HumanCount(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return HumanCount(n/1000) + fmt.Sprintf(",%03d", n%1000)
}
