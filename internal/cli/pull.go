package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logwise-ai/logwise/internal/daemon"
	"github.com/logwise-ai/logwise/internal/ollama"
)

func init() {
	pullCmd.Flags().StringVar(&pullURL, "url", "", "Model runtime URL (overrides config)")
	rootCmd.AddCommand(pullCmd)
}

var pullURL string

var pullCmd = &cobra.Command{
	Use:   "pull [MODEL]",
	Short: "Download a model through the local runtime",
	Long:  `Pull a model. Without an argument, pulls the configured model.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPull,
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if pullURL != "" {
		cfg.Ollama.URL = pullURL
	}

	modelName := cfg.Ollama.Model
	if len(args) == 1 {
		modelName = args[0]
	}

	client := ollama.New(cfg.Ollama.URL)
	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		return err
	}

	fmt.Printf("Pulling %s...\n", modelName)
	bar := newProgressBar()
	if err := client.Pull(ctx, modelName, bar.callback); err != nil {
		return err
	}
	fmt.Println("\nDone!")
	return nil
}
