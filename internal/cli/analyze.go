package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/logwise-ai/logwise/internal/analyze"
	"github.com/logwise-ai/logwise/internal/daemon"
	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/history"
	"github.com/logwise-ai/logwise/internal/logparse"
	"github.com/logwise-ai/logwise/internal/ollama"
	"github.com/logwise-ai/logwise/internal/report"
)

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFile, "file", "f", "", "Log file to analyze")
	f.BoolVar(&analyzeStdin, "stdin", false, "Read log content from stdin")
	f.StringVarP(&analyzeOutput, "output", "o", "", "Write the report to a file instead of stdout")
	f.StringVar(&analyzeFormat, "format", "text", "Report format: text, json, or markdown")
	f.IntVar(&analyzeLines, "lines", 0, "Only analyze the last N lines of the input (0 = all)")
	f.StringVar(&analyzeURL, "url", "", "Model runtime URL (overrides config)")
	f.StringVar(&analyzeModel, "model", "", "Model name (overrides config)")
	f.StringVar(&analyzeTime, "time", "", "Target time to analyze around, e.g. Sep-09T13:10")
	f.StringVar(&analyzeBefore, "before", "", "Window before the target: 30s, 10m, 2h, or bare minutes")
	f.StringVar(&analyzeAfter, "after", "", "Window after the target")
	f.BoolVar(&analyzeNoSave, "no-save", false, "Do not archive the report")
	rootCmd.AddCommand(analyzeCmd)
}

var (
	analyzeFile   string
	analyzeStdin  bool
	analyzeOutput string
	analyzeFormat string
	analyzeLines  int
	analyzeURL    string
	analyzeModel  string
	analyzeTime   string
	analyzeBefore string
	analyzeAfter  string
	analyzeNoSave bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a log file and print the RCA report",
	Long: `Analyze a log file with the local LLM and produce a root cause
analysis report. Use --time to focus on a window around one event:

  logwise analyze -f /var/log/syslog --time Sep-09T13:10 --before 10m --after 5m
  dmesg | logwise analyze --stdin --format markdown`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeFile == "" && !analyzeStdin {
		return fmt.Errorf("give a log source: -f FILE or --stdin")
	}
	if analyzeFile != "" && analyzeStdin {
		return fmt.Errorf("-f and --stdin are mutually exclusive")
	}

	format, err := report.ParseFormat(analyzeFormat)
	if err != nil {
		return err
	}

	content, source, err := readInput()
	if err != nil {
		return err
	}

	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if analyzeURL != "" {
		cfg.Ollama.URL = analyzeURL
	}
	if analyzeModel != "" {
		cfg.Ollama.Model = analyzeModel
	}

	// Tail before time filtering, matching the flag's historical meaning.
	if analyzeLines > 0 {
		lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
		content = strings.Join(logparse.Tail(lines, analyzeLines), "\n")
	}

	window, content, err := applyTimeWindow(cfg, content)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return domain.ErrEmptyWindow
	}

	var store *history.Store
	if !analyzeNoSave {
		store, err = history.Open(daemon.Home())
		if err != nil {
			return fmt.Errorf("open report archive: %w", err)
		}
		defer store.Close()
	}

	analyzer := analyze.New(ollama.New(cfg.Ollama.URL), saverOrNil(store), analyze.Options{
		Model:    cfg.Ollama.Model,
		AutoPull: cfg.Analysis.AutoPull,
		MaxLines: cfg.Analysis.MaxLines,
		Timeout:  time.Duration(cfg.Analysis.Timeout) * time.Second,
	}, daemon.NewLogger(cfg.Logging))

	fmt.Fprintf(os.Stderr, "Analyzing %s with %s...\n", source, cfg.Ollama.Model)
	rep, err := analyzer.Analyze(context.Background(), analyze.Request{
		Source:  source,
		Content: content,
		Window:  window,
	})
	if err != nil {
		return err
	}

	body, err := report.Render(rep, format)
	if err != nil {
		return err
	}
	if analyzeOutput != "" {
		if err := os.WriteFile(analyzeOutput, []byte(body), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", analyzeOutput)
		return nil
	}
	fmt.Println(body)
	return nil
}

func readInput() (content, source string, err error) {
	if analyzeStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(analyzeFile)
	if err != nil {
		return "", "", err
	}
	return string(data), filepath.Base(analyzeFile), nil
}

// applyTimeWindow narrows the content to the --time window, when given.
// Lines outside the window, and lines with no parseable timestamp, drop.
func applyTimeWindow(cfg daemon.Config, content string) (*domain.TimeWindow, string, error) {
	if analyzeTime == "" {
		return nil, content, nil
	}

	year := logparse.InferYear(content)
	target, err := logparse.ParseTarget(analyzeTime, year)
	if err != nil {
		return nil, "", err
	}

	beforeStr := analyzeBefore
	if beforeStr == "" {
		beforeStr = cfg.Analysis.WindowBefore
	}
	afterStr := analyzeAfter
	if afterStr == "" {
		afterStr = cfg.Analysis.WindowAfter
	}
	before, err := logparse.ParseOffset(beforeStr)
	if err != nil {
		return nil, "", fmt.Errorf("--before: %w", err)
	}
	after, err := logparse.ParseOffset(afterStr)
	if err != nil {
		return nil, "", fmt.Errorf("--after: %w", err)
	}

	lines := logparse.FilterAround(strings.Split(content, "\n"), target, before, after, year)
	window := &domain.TimeWindow{Start: target.Add(-before), End: target.Add(after)}
	return window, strings.Join(lines, "\n"), nil
}

// saverOrNil keeps a nil *history.Store from becoming a non-nil interface.
func saverOrNil(s *history.Store) analyze.Saver {
	if s == nil {
		return nil
	}
	return s
}
