package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/logwise-ai/logwise/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LogWise web UI and API server",
	Long:  `Start the upload-and-analyze web interface at localhost:8844.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}

	// Override config from flags
	if serveHost != "" {
		d.Config.Server.Host = serveHost
	}
	if servePort > 0 {
		d.Config.Server.Port = servePort
	}

	return d.Serve(context.Background())
}
