package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/logwise-ai/logwise/internal/daemon"
	"github.com/logwise-ai/logwise/internal/setup"
)

func init() {
	f := setupCmd.Flags()
	f.StringVar(&setupURL, "url", "", "Model runtime URL (overrides config)")
	f.StringVar(&setupModel, "model", "", "Model to pull (overrides config)")
	f.BoolVar(&setupInstallRT, "install-runtime", false, "Fetch and run the runtime installer when absent")
	f.BoolVar(&setupForce, "force", false, "Re-pull the model even when present")
	rootCmd.AddCommand(setupCmd)
}

var (
	setupURL       string
	setupModel     string
	setupInstallRT bool
	setupForce     bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the model runtime, pull the model, write the config",
	Long: `Prepare this machine for LogWise: check the model runtime (optionally
installing it), pull the configured model, write ~/.logwise/config.toml,
and emit a run wrapper. Safe to re-run; completed steps are skipped.`,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	bar := newProgressBar()
	ins := setup.New(daemon.Home(), os.Stdout)
	return ins.Run(context.Background(), setup.Options{
		URL:            setupURL,
		Model:          setupModel,
		InstallRuntime: setupInstallRT,
		Force:          setupForce,
		Progress:       bar.callback,
	})
}
