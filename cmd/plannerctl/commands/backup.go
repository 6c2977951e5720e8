package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/benvon/day-planner/internal/app"
	"github.com/spf13/cobra"
)

func newBackupCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write, list and restore compressed task backups",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Write a backup now",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, a *app.App) error {
					snap, err := a.Backups.Run(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", snap.Path, snap.Size)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List backups, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, a *app.App) error {
					snaps, err := a.Backups.List()
					if err != nil {
						return err
					}
					if len(snaps) == 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "No backups in %s\n", a.Backups.Dir())
						return nil
					}
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "NAME\tCREATED\tSIZE")
					for _, s := range snaps {
						fmt.Fprintf(w, "%s\t%s\t%d\n", s.Name, s.CreatedAt.Format(time.RFC3339), s.Size)
					}
					return w.Flush()
				})
			},
		},
		newBackupRestoreCmd(run),
	)
	return cmd
}

func newBackupRestoreCmd(run runner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace all tasks with a backup (name in the backup dir, a path, or 'latest')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to replace tasks without --yes")
			}
			return run(cmd, func(ctx context.Context, a *app.App) error {
				file := args[0]
				if file == "latest" {
					snap, ok, err := a.Backups.Latest()
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("no backups in %s", a.Backups.Dir())
					}
					file = snap.Path
				}
				if err := a.Backups.Restore(ctx, file); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d tasks\n", a.Tasks.Len())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm replacing all tasks")
	return cmd
}
