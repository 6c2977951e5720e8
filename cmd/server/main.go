package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/backup"
	"github.com/benvon/day-planner/internal/config"
	"github.com/benvon/day-planner/internal/logger"
	"github.com/benvon/day-planner/internal/middleware"
	"github.com/benvon/day-planner/internal/queue"
	"github.com/benvon/day-planner/internal/telemetry"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	openAPIFlag := flag.String("openapi", filepath.Join("api", "openapi", "openapi.yaml"), "Path to the OpenAPI document")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger) // stderr sync errors are expected on some platforms
	}()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("timezone", cfg.Location().String()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
		zap.Bool("backup_queue", cfg.BackupQueueEnabled()),
	)

	tracing := false
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Endpoint:       cfg.OTELEndpoint,
		})
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracing = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	planner, err := app.Open(loadCtx, cfg, zapLogger)
	loadCancel()
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage", zap.Error(err))
	}

	handler, err := newHandler(planner, routerOptions{openAPIPath: *openAPIFlag, tracing: tracing})
	if err != nil {
		_ = planner.Close(context.Background())
		zapLogger.Fatal("failed_to_build_router", zap.Error(err))
	}

	var scheduler *backup.Scheduler
	if cfg.BackupsEnabled() {
		var jobQueue queue.JobQueue
		if cfg.BackupQueueEnabled() {
			rq, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
			if err != nil {
				_ = planner.Close(context.Background())
				zapLogger.Fatal("failed_to_connect_job_queue", zap.Error(err))
			}
			defer func() {
				if err := rq.Close(); err != nil {
					zapLogger.Warn("failed_to_close_job_queue", zap.Error(err))
				}
			}()
			jobQueue = rq
		}

		next := func() time.Time { return scheduler.Next() }
		scheduler, err = backup.NewScheduler(scheduledBackupJob(planner.Backups, jobQueue, next, time.Now), cfg.BackupSchedule, cfg.Location(), zapLogger)
		if err != nil {
			_ = planner.Close(context.Background())
			zapLogger.Fatal("failed_to_configure_backups", zap.Error(err))
		}
		scheduler.Start()
	} else {
		zapLogger.Info("backup_scheduler_disabled")
	}

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        handler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		zapLogger.Info("server_shutting_down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		zapLogger.Error("server_failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	// Pending snapshots are written before storage goes away
	if err := planner.Close(ctx); err != nil {
		zapLogger.Error("storage_close_failed", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
