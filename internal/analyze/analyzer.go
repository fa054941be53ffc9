// Package analyze runs the RCA pipeline: runtime checks, prompt
// construction, model invocation, and report assembly.
package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/logparse"
	"github.com/logwise-ai/logwise/internal/metrics"
	"github.com/logwise-ai/logwise/internal/ollama"
)

// Runtime is the slice of the ollama client the analyzer needs.
type Runtime interface {
	Ping(ctx context.Context) error
	HasModel(ctx context.Context, name string) (bool, error)
	Pull(ctx context.Context, name string, progress ollama.PullFunc) error
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Saver persists finished reports. May be nil (no archive).
type Saver interface {
	Save(r *domain.Report) error
}

// Options tune the pipeline.
type Options struct {
	Model    string        // model to prompt
	AutoPull bool          // pull the model when the runtime lacks it
	MaxLines int           // preprocessing budget (0 = logparse default)
	Timeout  time.Duration // budget per Analyze call (0 = no cap here)
}

// Analyzer turns filtered log content into an RCA report.
type Analyzer struct {
	runtime Runtime
	store   Saver
	opts    Options
	log     zerolog.Logger
}

// New creates an Analyzer. store may be nil to skip archiving.
func New(runtime Runtime, store Saver, opts Options, log zerolog.Logger) *Analyzer {
	return &Analyzer{runtime: runtime, store: store, opts: opts, log: log}
}

// Request is one analysis job. Content must already be time-filtered;
// Window describes the filter that produced it, when one was applied.
type Request struct {
	Source  string
	Content string
	Window  *domain.TimeWindow
	Model   string // overrides Options.Model when set
}

// Analyze runs the full pipeline and returns the stored report.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*domain.Report, error) {
	if strings.TrimSpace(req.Content) == "" {
		metrics.AnalysesTotal.WithLabelValues("empty_input").Inc()
		return nil, domain.ErrNoLogContent
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = a.opts.Model
	}

	if err := a.runtime.Ping(ctx); err != nil {
		metrics.AnalysesTotal.WithLabelValues("runtime_down").Inc()
		return nil, err
	}
	if err := a.ensureModel(ctx, model); err != nil {
		metrics.AnalysesTotal.WithLabelValues("model_missing").Inc()
		return nil, err
	}

	content := logparse.Preprocess(req.Content, a.opts.MaxLines)
	lineCount := logparse.CountLines(req.Content)
	metrics.FilteredLines.Observe(float64(lineCount))

	a.log.Info().
		Str("model", model).
		Str("source", req.Source).
		Int("lines", lineCount).
		Msg("running analysis")

	started := time.Now()
	analysis, err := a.runtime.Generate(ctx, model, buildPrompt(content))
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("generate_failed").Inc()
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	elapsed := time.Since(started)

	r := &domain.Report{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Source:    req.Source,
		Model:     model,
		Window:    req.Window,
		LineCount: lineCount,
		Analysis:  strings.TrimSpace(analysis),
		Duration:  elapsed,
	}

	if a.store != nil {
		if err := a.store.Save(r); err != nil {
			// The analysis is still worth returning; archiving is best effort.
			a.log.Error().Err(err).Str("report", r.ID).Msg("failed to archive report")
		}
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	metrics.AnalyzeDuration.WithLabelValues(model).Observe(elapsed.Seconds())

	a.log.Info().
		Str("report", r.ID).
		Dur("took", elapsed).
		Msg("analysis complete")
	return r, nil
}

// ensureModel verifies the model is served, pulling it when allowed.
func (a *Analyzer) ensureModel(ctx context.Context, model string) error {
	ok, err := a.runtime.HasModel(ctx, model)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if !a.opts.AutoPull {
		return fmt.Errorf("%w: %s", domain.ErrModelNotAvailable, model)
	}

	a.log.Info().Str("model", model).Msg("model missing, pulling")
	if err := a.runtime.Pull(ctx, model, nil); err != nil {
		return fmt.Errorf("%w: %s (pull failed: %v)", domain.ErrModelNotAvailable, model, err)
	}
	return nil
}

// buildPrompt wraps preprocessed log content in the RCA instruction.
func buildPrompt(content string) string {
	return `You are an expert in troubleshooting and root cause analysis across IT systems and infrastructure.
Analyze the following log entries and provide a clear, human-readable RCA report with these sections:

## SUMMARY
## ISSUES IDENTIFIED
## SEVERITY ASSESSMENT
## ROOT CAUSE HYPOTHESIS
## RECOMMENDATIONS
## PATTERNS OBSERVED

Logs:
` + content + "\n"
}
