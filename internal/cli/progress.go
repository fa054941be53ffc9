package cli

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Terminal progress bar for model and installer downloads.
// Shows: [=============>......] 42% | pulling llama3:8b | ETA 35s

const barWidth = 30 // Characters for the progress bar

type progressBar struct {
	started time.Time
}

func newProgressBar() *progressBar {
	return &progressBar{started: time.Now()}
}

// callback matches ollama.PullFunc and setup.ProgressFunc. A negative pct
// means the runtime did not report a total.
func (p *progressBar) callback(status string, pct float64) {
	if pct < 0 {
		p.renderSimple(status)
		return
	}
	p.renderBar(status, pct, time.Now())
}

func (p *progressBar) renderSimple(status string) {
	clearLine()
	fmt.Fprintf(os.Stderr, "  %s", status)
}

func (p *progressBar) renderBar(status string, pct float64, now time.Time) {
	if pct > 100 {
		pct = 100
	}

	// Build the bar: [=======>............]
	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}

	clearLine()
	fmt.Fprintf(os.Stderr, "  [%s] %3.0f%% | %s | %s", bar, pct, status, p.eta(pct, now))
	if pct >= 100 {
		fmt.Fprintln(os.Stderr)
	}
}

func (p *progressBar) eta(pct float64, now time.Time) string {
	if pct <= 0 || pct >= 100 {
		return "ETA --"
	}

	elapsed := now.Sub(p.started).Seconds()
	if elapsed < 1 {
		return "ETA --"
	}

	totalEstimated := elapsed / (pct / 100)
	remaining := totalEstimated - elapsed
	if remaining < 0 {
		remaining = 0
	}

	if remaining < 60 {
		return fmt.Sprintf("ETA %ds", int(remaining))
	}
	if remaining < 3600 {
		return fmt.Sprintf("ETA %dm%ds", int(remaining)/60, int(remaining)%60)
	}
	return fmt.Sprintf("ETA %dh%dm", int(remaining)/3600, (int(remaining)%3600)/60)
}

func clearLine() {
	fmt.Fprintf(os.Stderr, "\r\033[K")
}
