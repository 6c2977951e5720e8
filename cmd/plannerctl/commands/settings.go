package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/models"
	"github.com/spf13/cobra"
)

func newSettingsCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the visible day range and clock format",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show time settings and the resulting timeline slots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, a *app.App) error {
					printSettings(cmd, a)
					return nil
				})
			},
		},
		newSettingsSetCmd(run),
	)
	return cmd
}

func newSettingsSetCmd(run runner) *cobra.Command {
	var (
		start, end string
		clock      string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change time settings",
		Long:  "Change any of --start, --end (HH:MM, 24-hour) and --clock (12 or 24). The start may not be later than the end.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" && end == "" && clock == "" {
				return fmt.Errorf("nothing to change: pass --start, --end or --clock")
			}
			return run(cmd, func(ctx context.Context, a *app.App) error {
				next := a.Settings.Get()
				if start != "" {
					next.StartTime = start
				}
				if end != "" {
					next.EndTime = end
				}
				switch strings.TrimSpace(clock) {
				case "":
				case "24":
					next.Use24Hour = true
				case "12":
					next.Use24Hour = false
				default:
					return fmt.Errorf("--clock must be 12 or 24")
				}
				if err := a.Settings.Set(next); err != nil {
					return err
				}
				printSettings(cmd, a)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First hour of the day (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "Last hour of the day (HH:MM)")
	cmd.Flags().StringVar(&clock, "clock", "", "Clock format: 12 or 24")
	return cmd
}

func printSettings(cmd *cobra.Command, a *app.App) {
	s := a.Settings.Get()
	format := "12-hour"
	if s.Use24Hour {
		format = "24-hour"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Day:   %s - %s\n", s.StartTime, s.EndTime)
	fmt.Fprintf(out, "Clock: %s\n", format)

	labels := make([]string, 0, len(s.Slots()))
	for _, slot := range a.Settings.Slots() {
		labels = append(labels, models.FormatClock(slot, s.Use24Hour))
	}
	fmt.Fprintf(out, "Slots: %s\n", strings.Join(labels, ", "))
}
