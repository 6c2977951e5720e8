package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/config"
	"github.com/benvon/day-planner/internal/logger"
	"github.com/benvon/day-planner/internal/persistence"
	"github.com/benvon/day-planner/internal/queue"
	"github.com/benvon/day-planner/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	if !cfg.BackupQueueEnabled() {
		zapLogger.Fatal("worker_requires_rabbitmq", zap.String("hint", "set RABBITMQ_URL"))
	}
	// The worker reads the snapshot the server writes, so it needs storage both processes can open
	switch cfg.StorageBackend {
	case persistence.BackendMemory, persistence.BackendBolt:
		zapLogger.Fatal("worker_requires_shared_storage", zap.String("storage_backend", cfg.StorageBackend))
	}

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("backup_dir", cfg.BackupDir),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	openCtx, openCancel := context.WithTimeout(context.Background(), 30*time.Second)
	planner, err := app.Open(openCtx, cfg, zapLogger)
	openCancel()
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage", zap.Error(err))
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer closeCancel()
		if err := planner.Close(closeCtx); err != nil {
			zapLogger.Warn("storage_close_failed", zap.Error(err))
		}
	}()

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_job_queue", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_job_queue", zap.Error(err))
		}
	}()

	worker := workers.NewBackupWorker(planner.Backups, planner.Tasks, jobQueue, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}
	zapLogger.Info("worker_started")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgChan {
			if err := worker.ProcessJob(ctx, msg); err != nil {
				zapLogger.Error("job_failed",
					zap.Error(err),
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
				)
			}
		}
	}()

	go func() {
		for err := range errChan {
			zapLogger.Error("queue_error", zap.Error(err))
		}
	}()

	select {
	case sig := <-sigChan:
		zapLogger.Info("worker_shutting_down", zap.String("signal", sig.String()))
	case <-done:
		zapLogger.Warn("message_channel_closed")
	}

	cancel()
	<-done
	zapLogger.Info("worker_stopped")
}
