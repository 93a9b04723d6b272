package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ferry/internal/db"
)

// HistoryCommand creates the history command
func HistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent deployment runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.New(nil)
			if err != nil {
				return fmt.Errorf("failed to open deployment journal: %w", err)
			}
			defer database.Close()
			if err := database.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate deployment journal: %w", err)
			}

			runs, err := db.NewRunRepository(database).ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No deployments recorded yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tREPOSITORY\tBRANCH\tHOST\tPORT\tSTATUS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.RepoURL, run.Branch, run.Host, run.AppPort,
					statusLabel(run))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}

func statusLabel(run *db.Run) string {
	switch run.Status {
	case db.RunStatusSucceeded:
		return color.GreenString(run.Status)
	case db.RunStatusFailed:
		if run.Stage != "" {
			return color.RedString("%s (%s)", run.Status, run.Stage)
		}
		return color.RedString(run.Status)
	default:
		return color.YellowString(run.Status)
	}
}
