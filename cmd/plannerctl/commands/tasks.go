package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/benvon/day-planner/internal/app"
	"github.com/spf13/cobra"
)

func newExportCmd(run runner) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app.App) error {
				data, err := a.Tasks.ExportTasks()
				if err != nil {
					return fmt.Errorf("failed to export tasks: %w", err)
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(out, data, 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", a.Tasks.Len(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all tasks with a JSON array export (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read import: %w", err)
			}
			return run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Tasks.ImportTasks(ctx, data); err != nil {
					return fmt.Errorf("failed to import tasks: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", a.Tasks.Len())
				return nil
			})
		},
	}
}

func newClearCmd(run runner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear tasks without --yes")
			}
			return run(cmd, func(ctx context.Context, a *app.App) error {
				removed := a.Tasks.Len()
				a.Tasks.ClearAllTasks()
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tasks\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all tasks")
	return cmd
}
