package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/logwise-ai/logwise/internal/daemon"
	"github.com/logwise-ai/logwise/internal/history"
	"github.com/logwise-ai/logwise/internal/report"
)

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Max reports to list")
	historyShowCmd.Flags().StringVar(&historyShowFormat, "format", "text", "Report format: text, json, or markdown")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}

var (
	historyLimit      int
	historyShowFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived RCA reports",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print an archived report",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete an archived report",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

func openStore() (*history.Store, error) {
	return history.Open(daemon.Home())
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := store.List(historyLimit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No archived reports yet. Run 'logwise analyze' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSOURCE\tMODEL\tLINES")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			shortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			r.Model,
			r.LineCount,
		)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(historyShowFormat)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := findReport(store, args[0])
	if err != nil {
		return err
	}
	body, err := report.Render(rep, format)
	if err != nil {
		return err
	}
	fmt.Println(body)
	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := findReport(store, args[0])
	if err != nil {
		return err
	}
	if err := store.Delete(rep.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", shortID(rep.ID))
	return nil
}
