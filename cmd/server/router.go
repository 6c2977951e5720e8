package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/handlers"
	"github.com/benvon/day-planner/internal/middleware"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const serviceName = "day-planner-api"

type routerOptions struct {
	openAPIPath string
	tracing     bool
	now         func() time.Time
}

// newHandler builds the full HTTP stack: router, per-route middleware and
// the outer wrappers that must run before routing (request IDs, CORS preflight).
func newHandler(a *app.App, opts routerOptions) (http.Handler, error) {
	log := a.Log
	cfg := a.Config

	r := mux.NewRouter()

	// gorilla/mux applies middleware in registration order, first registered is outermost
	if opts.tracing {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, map[string]int64{
		"/tasks/import": middleware.DefaultMaxImportSize,
	}))
	r.Use(middleware.ContentType(log))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(log))
	r.Use(middleware.Logging(log))

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, a.RedisClient(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to configure rate limiting: %w", err)
	}

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", handlers.NewHealthChecker(a.Adapter, cfg.StorageBackend).HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.VersionInfo(version)).Methods("GET")
	handlers.NewOpenAPIHandler(opts.openAPIPath).RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(rateLimitMW)

	handlers.NewTaskHandler(a.Tasks, log).RegisterRoutes(api.PathPrefix("/tasks").Subrouter())
	handlers.NewCategoryHandler(a.Categories).RegisterRoutes(api.PathPrefix("/categories").Subrouter())
	handlers.NewSettingsHandler(a.Settings).RegisterRoutes(api.PathPrefix("/settings").Subrouter())
	handlers.NewBackupHandler(a.Backups, log).RegisterRoutes(api.PathPrefix("/backups").Subrouter())

	var statsOpts []handlers.StatsHandlerOption
	if opts.now != nil {
		statsOpts = append(statsOpts, handlers.WithClock(opts.now))
	}
	handlers.NewStatsHandler(a.Tasks, a.Categories, a.Settings, statsOpts...).RegisterRoutes(api)

	return middleware.RequestID(middleware.CORS(cfg.FrontendURL, log)(r)), nil
}
