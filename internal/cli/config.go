package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/logwise-ai/logwise/internal/daemon"
)

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize the LogWise configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n", daemon.ConfigPath())
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := daemon.ConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := daemon.SaveConfig(daemon.DefaultConfig()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}
