package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/logwise-ai/logwise/internal/analyze"
	"github.com/logwise-ai/logwise/internal/api"
	"github.com/logwise-ai/logwise/internal/health"
	"github.com/logwise-ai/logwise/internal/history"
	"github.com/logwise-ai/logwise/internal/ollama"
)

// Version is stamped by the CLI at startup and reported by /api/status.
var Version = "dev"

// Daemon wires the LogWise services together for `logwise serve`.
type Daemon struct {
	Config   Config
	Store    *history.Store
	Runtime  *ollama.Client
	Analyzer *analyze.Analyzer
	Health   *health.Checker
	Server   *api.Server
	Log      zerolog.Logger

	cancel context.CancelFunc
}

// New creates a Daemon from the on-disk configuration.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	log := NewLogger(cfg.Logging)

	store, err := history.Open(Home())
	if err != nil {
		return nil, fmt.Errorf("open report archive: %w", err)
	}

	runtime := ollama.New(cfg.Ollama.URL)

	analyzer := analyze.New(runtime, store, analyze.Options{
		Model:    cfg.Ollama.Model,
		AutoPull: cfg.Analysis.AutoPull,
		MaxLines: cfg.Analysis.MaxLines,
		Timeout:  time.Duration(cfg.Analysis.Timeout) * time.Second,
	}, log)

	checker := health.NewChecker(runtime, cfg.Ollama.Model, store, Home())

	srv := api.NewServer(api.ServerConfig{
		Analyzer:    analyzer,
		Store:       store,
		Runtime:     runtime,
		Checker:     checker,
		Model:       cfg.Ollama.Model,
		Version:     Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		MaxUploadMB: cfg.Server.MaxUploadMB,
		Metrics:     cfg.Telemetry.Prometheus,
		Log:         log,
	})

	return &Daemon{
		Config:   cfg,
		Store:    store,
		Runtime:  runtime,
		Analyzer: analyzer,
		Health:   checker,
		Server:   srv,
		Log:      log,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // analyses can run long
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.Store.Close()
	}()

	d.Log.Info().
		Str("addr", "http://"+addr).
		Str("runtime", d.Config.Ollama.URL).
		Str("model", d.Config.Ollama.Model).
		Msg("logwise serving")
	fmt.Printf("LogWise serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
}

// NewLogger builds the zerolog logger from config. Level falls back to
// info on unknown names; an empty File logs to stderr.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if cfg.File != "" {
		if f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			return zerolog.New(f).Level(level).With().Timestamp().Logger()
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
