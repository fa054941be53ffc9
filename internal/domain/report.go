// Package domain holds the core LogWise types and errors.
// Pure, with no infrastructure dependency.
package domain

import "time"

// Report is a completed root-cause analysis.
type Report struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Source    string        `json:"source"`
	Model     string        `json:"model"`
	Window    *TimeWindow   `json:"window,omitempty"`
	LineCount int           `json:"line_count"`
	Analysis  string        `json:"analysis"`
	Duration  time.Duration `json:"duration"`
}

// TimeWindow is the slice of log time a report covers.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls in [Start, End).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ContainsInclusive reports whether t falls in [Start, End].
func (w TimeWindow) ContainsInclusive(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// IsZero reports whether the window is unset.
func (w TimeWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}
