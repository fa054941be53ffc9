// Package report renders a domain.Report for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/logwise-ai/logwise/internal/domain"
)

// Format names an output rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Disclaimer is appended to every human-readable report.
const Disclaimer = "Disclaimer: this report was generated by a local AI model. " +
	"It is guidance, not ground truth — verify findings independently before acting on them."

const banner = "LogWise - AI LOG ANALYSIS & RCA REPORT"

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (text, json, markdown)", s)
	}
}

// Render produces the report in the requested format.
func Render(r *domain.Report, f Format) (string, error) {
	switch f {
	case FormatText, "":
		return Text(r), nil
	case FormatJSON:
		return JSON(r)
	case FormatMarkdown:
		return Markdown(r), nil
	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}

// Text renders the classic terminal report.
func Text(r *domain.Report) string {
	rule := strings.Repeat("=", 60)
	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	if r.Source != "" {
		fmt.Fprintf(&b, "Source:    %s (%s lines analyzed)\n", r.Source, domain.HumanCount(r.LineCount))
	}
	if r.Window != nil {
		fmt.Fprintf(&b, "Window:    %s — %s\n",
			r.Window.Start.Format("2006-01-02 15:04:05"),
			r.Window.End.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n")
	b.WriteString(r.Analysis)
	b.WriteString("\n\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Generated by LogWise (Model: %s", r.Model)
	if r.Duration > 0 {
		fmt.Fprintf(&b, ", took %s", domain.HumanDuration(r.Duration))
	}
	b.WriteString(")\n")
	b.WriteString(Disclaimer + "\n")
	return b.String()
}

// JSON renders the report as indented JSON with stable field names.
func JSON(r *domain.Report) (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(out), nil
}

// Markdown renders the web download format.
func Markdown(r *domain.Report) string {
	var b strings.Builder
	b.WriteString("# LogWise RCA Report\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Generated | %s |\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "| Model | %s |\n", r.Model)
	if r.Source != "" {
		fmt.Fprintf(&b, "| Source | %s |\n", r.Source)
	}
	fmt.Fprintf(&b, "| Lines analyzed | %d |\n", r.LineCount)
	if r.Duration > 0 {
		fmt.Fprintf(&b, "| Took | %s |\n", domain.HumanDuration(r.Duration))
	}
	if r.Window != nil {
		fmt.Fprintf(&b, "| Window | %s — %s |\n",
			r.Window.Start.Format("2006-01-02 15:04:05"),
			r.Window.End.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n")
	b.WriteString(r.Analysis)
	b.WriteString("\n\n---\n")
	b.WriteString("*" + Disclaimer + "*\n")
	return b.String()
}
