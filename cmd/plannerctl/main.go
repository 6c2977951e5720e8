package main

import (
	"context"
	"fmt"
	"os"

	"github.com/benvon/day-planner/cmd/plannerctl/commands"
	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/config"
	"go.uber.org/zap"
)

func main() {
	env := &commands.Env{
		Open: func(ctx context.Context, log *zap.Logger) (*app.App, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
			return app.Open(ctx, cfg, log)
		},
	}

	if err := commands.NewRootCmd(env).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
