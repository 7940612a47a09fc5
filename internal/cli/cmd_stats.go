package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show total check-ins and streaks per habit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.Log.Sync()

			return runStats(cmd, app)
		},
	}
}

func runStats(cmd *cobra.Command, app *App) error {
	stats := app.Tracker.Stats()
	out := cmd.OutOrStdout()

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(out, "Today: %s\n", app.Tracker.Today())
	fmt.Fprintf(out, "Total check-ins: %d across %d days\n\n", stats.TotalCheckins, stats.ActiveDays)
	if len(stats.Habits) == 0 {
		fmt.Fprintln(out, "No habits yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HABIT\tCURRENT\tLONGEST")
	for _, h := range stats.Habits {
		fmt.Fprintf(w, "%s\t%d\t%d\n", h.Name, h.CurrentStreak, h.LongestStreak)
	}
	return w.Flush()
}
