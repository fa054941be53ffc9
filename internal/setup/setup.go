// Package setup is the LogWise installer. It replaces the original
// fire-and-forget shell script with a checked, idempotent sequence:
// probe the model runtime (optionally fetching its installer), pull the
// configured model, write the config file, and emit a run wrapper.
package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/logwise-ai/logwise/internal/daemon"
	"github.com/logwise-ai/logwise/internal/ollama"
)

// RuntimeInstallerURL is the upstream install script for the model runtime.
const RuntimeInstallerURL = "https://ollama.com/install.sh"

// WrapperName is the run wrapper emitted into the LogWise home dir.
const WrapperName = "run-logwise.sh"

// Options control a setup run.
type Options struct {
	URL            string // runtime URL (empty keeps config/default)
	Model          string // model to pull (empty keeps config/default)
	InstallRuntime bool   // fetch and run the runtime installer when absent
	Force          bool   // re-pull the model even when present
	Progress       ollama.PullFunc
}

// Installer performs the setup sequence against one home directory.
type Installer struct {
	home string
	out  io.Writer
}

// New creates an Installer rooted at the LogWise home dir.
func New(home string, out io.Writer) *Installer {
	if out == nil {
		out = io.Discard
	}
	return &Installer{home: home, out: out}
}

// Run executes the full sequence. Each step fails loudly; a re-run picks
// up where the previous one stopped.
func (ins *Installer) Run(ctx context.Context, opts Options) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.URL != "" {
		cfg.Ollama.URL = opts.URL
	}
	if opts.Model != "" {
		cfg.Ollama.Model = opts.Model
	}

	client := ollama.New(cfg.Ollama.URL)

	// Step 1: runtime
	fmt.Fprintf(ins.out, "Checking model runtime at %s...\n", cfg.Ollama.URL)
	if err := client.Ping(ctx); err != nil {
		if !opts.InstallRuntime {
			return fmt.Errorf("model runtime is not reachable at %s — install it or rerun with --install-runtime: %w", cfg.Ollama.URL, err)
		}
		if err := ins.installRuntime(ctx, opts.Progress); err != nil {
			return fmt.Errorf("install runtime: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("runtime still not reachable after install: %w", err)
		}
	}
	fmt.Fprintln(ins.out, "  runtime ok")

	// Step 2: model
	if err := ins.ensureModel(ctx, client, cfg.Ollama.Model, opts); err != nil {
		return fmt.Errorf("ensure model %s: %w", cfg.Ollama.Model, err)
	}

	// Step 3: config
	if err := daemon.SaveConfig(cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(ins.out, "Wrote %s\n", daemon.ConfigPath())

	// Step 4: run wrapper
	wrapper, err := ins.writeWrapper()
	if err != nil {
		return fmt.Errorf("write run wrapper: %w", err)
	}
	fmt.Fprintf(ins.out, "Wrote %s\n", wrapper)

	fmt.Fprintln(ins.out, "Setup complete. Start the web UI with 'logwise serve'.")
	return nil
}

func (ins *Installer) ensureModel(ctx context.Context, client *ollama.Client, model string, opts Options) error {
	has, err := client.HasModel(ctx, model)
	if err != nil {
		return err
	}
	if has && !opts.Force {
		fmt.Fprintf(ins.out, "Model %s already present\n", model)
		return nil
	}

	fmt.Fprintf(ins.out, "Pulling %s...\n", model)
	if err := client.Pull(ctx, model, opts.Progress); err != nil {
		return err
	}
	fmt.Fprintf(ins.out, "Model %s ready\n", model)
	return nil
}

// installRuntime downloads the upstream installer script and runs it
// through sh. The script lands in the home dir so a failed run can be
// inspected or resumed.
func (ins *Installer) installRuntime(ctx context.Context, progress ollama.PullFunc) error {
	dest := filepath.Join(ins.home, "ollama-install.sh")
	fmt.Fprintf(ins.out, "Fetching runtime installer from %s...\n", RuntimeInstallerURL)

	var pf ProgressFunc
	if progress != nil {
		pf = ProgressFunc(progress)
	}
	if err := downloadFile(ctx, RuntimeInstallerURL, dest, pf); err != nil {
		return err
	}
	if err := os.Chmod(dest, 0755); err != nil {
		return fmt.Errorf("chmod installer: %w", err)
	}

	fmt.Fprintln(ins.out, "Running runtime installer (may ask for sudo)...")
	cmd := exec.CommandContext(ctx, "sh", dest)
	cmd.Stdout = ins.out
	cmd.Stderr = ins.out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("installer exited: %w", err)
	}
	return nil
}

// writeWrapper emits the executable run wrapper the original installer
// produced, pointed at `logwise serve`.
func (ins *Installer) writeWrapper() (string, error) {
	if err := os.MkdirAll(ins.home, 0700); err != nil {
		return "", fmt.Errorf("create home dir: %w", err)
	}
	path := filepath.Join(ins.home, WrapperName)

	script := "#!/bin/sh\n# Generated by 'logwise setup'.\nexec logwise serve \"$@\"\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		return "", err
	}
	return path, nil
}
