package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────

var (
	// Runtime errors
	ErrRuntimeUnreachable = errors.New("cannot connect to the model runtime — ensure it is running")
	ErrModelNotAvailable  = errors.New("model not available on the runtime")

	// Log content errors
	ErrNoLogContent       = errors.New("no log content to analyze")
	ErrNoTimestampedLines = errors.New("no valid timestamped lines detected")
	ErrEmptyWindow        = errors.New("no log lines in the selected time window")

	// History errors
	ErrReportNotFound = errors.New("report not found")
)
