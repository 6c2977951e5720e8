// Package app assembles the planner's stores on top of the configured
// persistence backend. Both the server and plannerctl start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/day-planner/internal/backup"
	"github.com/benvon/day-planner/internal/config"
	"github.com/benvon/day-planner/internal/persistence"
	"github.com/benvon/day-planner/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the loaded stores and the resources behind them
type App struct {
	Config     *config.Config
	Log        *zap.Logger
	Adapter    persistence.Adapter
	Persister  *store.Persister
	Tasks      *store.TaskStore
	Categories *store.CategoryStore
	Settings   *store.SettingsStore
	Backups    *backup.Manager
}

// Open connects to storage and loads every store. On error nothing is left open.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	adapter, err := persistence.Open(cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	a, err := New(ctx, cfg, adapter, log)
	if err != nil {
		return nil, errors.Join(err, adapter.Close())
	}
	return a, nil
}

// New builds the stores over an already open adapter and loads their snapshots.
// The App takes ownership of adapter.
func New(ctx context.Context, cfg *config.Config, adapter persistence.Adapter, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := store.NewPersister(adapter, log, cfg.PersistTimeout)
	opts := []store.Option{store.WithLocation(cfg.Location()), store.WithLogger(log)}

	a := &App{
		Config:     cfg,
		Log:        log,
		Adapter:    adapter,
		Persister:  p,
		Tasks:      store.NewTaskStore(p, opts...),
		Categories: store.NewCategoryStore(p, opts...),
		Settings:   store.NewSettingsStore(p, opts...),
	}
	a.Backups = backup.NewManager(cfg.BackupDir, cfg.BackupRetention, a.Tasks, log)

	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"tasks", a.Tasks.Load},
		{"categories", a.Categories.Load},
		{"settings", a.Settings.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			_ = p.Close(ctx)
			return nil, fmt.Errorf("failed to load %s: %w", l.name, err)
		}
	}

	log.Info("stores_loaded",
		zap.String("backend", cfg.StorageBackend),
		zap.Int("tasks", a.Tasks.Len()),
		zap.Int("categories", len(a.Categories.GetCategories())),
	)
	return a, nil
}

// RedisClient returns the Redis client when storage is Redis, for sharing with the rate limiter
func (a *App) RedisClient() *redis.Client {
	if r, ok := a.Adapter.(*persistence.RedisAdapter); ok {
		return r.Client()
	}
	return nil
}

// Close drains pending writes and then closes storage
func (a *App) Close(ctx context.Context) error {
	flushErr := a.Persister.Close(ctx)
	if flushErr != nil {
		a.Log.Error("persister_close_failed", zap.Error(flushErr))
	}
	closeErr := a.Adapter.Close()
	if closeErr != nil {
		a.Log.Warn("failed_to_close_storage", zap.Error(closeErr))
	}
	return errors.Join(flushErr, closeErr)
}
