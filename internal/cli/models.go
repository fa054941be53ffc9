package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/logwise-ai/logwise/internal/daemon"
	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/ollama"
)

func init() {
	rootCmd.AddCommand(modelsCmd)
}

var modelsCmd = &cobra.Command{
	Use:     "models",
	Aliases: []string{"ls"},
	Short:   "List models available on the local runtime",
	RunE:    runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	client := ollama.New(cfg.Ollama.URL)
	models, err := client.ListModels(context.Background())
	if err != nil {
		return err
	}

	if len(models) == 0 {
		fmt.Println("No models on the runtime. Run 'logwise pull <model>' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
	for _, m := range models {
		marker := ""
		if m.Name == cfg.Ollama.Model {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\n",
			m.Name,
			marker,
			domain.HumanSize(m.Size),
			m.ModifiedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}
