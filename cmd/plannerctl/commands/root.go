// Package commands implements the plannerctl command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Opener loads the planner stores for one command invocation
type Opener func(ctx context.Context, log *zap.Logger) (*app.App, error)

// Env carries what the commands need from the outside world
type Env struct {
	Open Opener
	// Now defaults to time.Now
	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// NewRootCmd creates the plannerctl root command
func NewRootCmd(env *Env) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Operator tool for the day planner",
		Long:          "Export, import and inspect planner data directly against the configured storage backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")

	run := func(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
		log, err := logger.NewCLILogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync(log) }()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := env.Open(ctx, log)
		if err != nil {
			return err
		}
		runErr := fn(ctx, a)

		// Close flushes pending snapshots; a failure here means the change may be lost
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to save changes: %w", err))
		}
		return runErr
	}

	root.AddCommand(
		newExportCmd(run),
		newImportCmd(run),
		newClearCmd(run),
		newStatsCmd(env, run),
		newCategoriesCmd(run),
		newSettingsCmd(run),
		newBackupCmd(run),
	)
	return root
}

// runner opens the app around fn and closes it afterwards
type runner func(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error
