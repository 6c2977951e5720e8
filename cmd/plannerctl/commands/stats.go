package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/stats"
	"github.com/spf13/cobra"
)

func newStatsCmd(env *Env, run runner) *cobra.Command {
	var (
		date   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics for a reference date (default today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app.App) error {
				ref := env.now().In(a.Tasks.Location())
				if date != "" {
					parsed, err := models.ParseDateKey(date, a.Tasks.Location())
					if err != nil {
						return fmt.Errorf("invalid --date %q: %w", date, err)
					}
					ref = parsed
				}

				tasks := a.Tasks.Tasks()
				dash := stats.Summarize(tasks, ref)
				day := stats.Overview(tasks, models.DateKey(ref))

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(struct {
						Dashboard stats.Dashboard   `json:"dashboard"`
						Day       stats.DayOverview `json:"day"`
					}{dash, day})
				}
				return printDashboard(cmd, dash, day)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Reference date YYYY-MM-DD")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printDashboard(cmd *cobra.Command, dash stats.Dashboard, day stats.DayOverview) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Date\t%s\n", dash.Date)
	fmt.Fprintf(w, "Today\t%d/%d done (%.0f%%), %d remaining\n", day.Completed, day.Total, day.Percentage, day.Remaining)
	fmt.Fprintf(w, "Completion rate\t%.1f%% (%d of %d)\n", dash.CompletionRate, dash.CompletedTasks, dash.TotalTasks)
	fmt.Fprintf(w, "Longest streak\t%d (by date: %d days)\n", dash.LongestStreak, dash.LongestStreakByDate)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Week\tFrom\tTo\tDone\tRate")
	for _, wk := range dash.Weekly {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%.0f%%\n", wk.Label, wk.Start, wk.End, wk.Completed, wk.Total, wk.Percentage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dash.Insight)
	return w.Flush()
}
