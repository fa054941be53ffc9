// Package health runs periodic checks against the pieces LogWise depends
// on: the model runtime, the configured model, the report archive, and the
// data directory.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/metrics"
)

// minFreeBytes is the free-space floor below which data_dir is unhealthy.
const minFreeBytes = 100 << 20

// Runtime is the probe surface of the ollama client.
type Runtime interface {
	Ping(ctx context.Context) error
	HasModel(ctx context.Context, name string) (bool, error)
}

// Pinger is the probe surface of the history store.
type Pinger interface {
	Ping() error
}

// Check is a single named health probe.
type Check struct {
	Name    string
	CheckFn func(ctx context.Context) error
}

// Status is the result of one probe.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs the probes on a fixed interval.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker builds the standard probe set.
func NewChecker(runtime Runtime, model string, db Pinger, homeDir string) *Checker {
	return &Checker{
		interval: 60 * time.Second,
		checks: []Check{
			{
				Name: "runtime",
				CheckFn: func(ctx context.Context) error {
					err := runtime.Ping(ctx)
					if err != nil {
						metrics.RuntimeUp.Set(0)
						return err
					}
					metrics.RuntimeUp.Set(1)
					return nil
				},
			},
			{
				Name: "model",
				CheckFn: func(ctx context.Context) error {
					ok, err := runtime.HasModel(ctx, model)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("%w: %s", domain.ErrModelNotAvailable, model)
					}
					return nil
				},
			},
			{
				Name: "archive",
				CheckFn: func(ctx context.Context) error {
					return db.Ping()
				},
			},
			{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkDataDir(homeDir)
				},
			},
		},
	}
}

// Run starts the probe loop. Call in a goroutine; returns on ctx cancel.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce executes every probe once and stores the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{Name: check.Name, CheckedAt: time.Now()}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest probe results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Status, len(c.statuses))
	copy(out, c.statuses)
	return out
}

// IsHealthy reports whether every probe passed on the last run.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.statuses) == 0 {
		return false
	}
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// checkDataDir verifies the data dir is a writable directory with free
// space above minFreeBytes.
func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // not created yet, first run
		}
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	var fs syscall.Statfs_t
	if err := syscall.Statfs(dir, &fs); err != nil {
		return fmt.Errorf("statfs data dir: %w", err)
	}
	if free := uint64(fs.Bavail) * uint64(fs.Bsize); free < minFreeBytes {
		return fmt.Errorf("low disk space: %s free at %s", domain.HumanSize(int64(free)), dir)
	}

	f, err := os.CreateTemp(dir, ".healthprobe-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
