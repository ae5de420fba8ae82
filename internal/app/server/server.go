package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"paycalc/internal/auth"
	"paycalc/internal/domain/payroll"
	"paycalc/internal/platform/cache"
	"paycalc/internal/platform/config"
	"paycalc/internal/platform/metrics"
	"paycalc/internal/transport/http/api"
	payrollhandler "paycalc/internal/transport/http/handlers/payroll"
	"paycalc/internal/transport/http/middleware"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Router  http.Handler

	redis          *cache.RedisStore
	restoreGlobals func()
}

// New wires the router. When a Redis address is configured the idempotency
// store is Redis and it must answer a ping; otherwise responses are kept in
// process memory.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}
	// api.WriteJSON reports encode failures through zap.L().
	app.restoreGlobals = zap.ReplaceGlobals(logger)

	var store cache.Store = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs := cache.NewRedisStore(cfg.RedisAddr, "paycalc:")
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			_ = rs.Close()
			app.restoreGlobals()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		app.redis = rs
		store = rs
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger, app.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, app.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
	})

	router.Route("/api/v1", func(r chi.Router) {
		// Limit before authenticating so rejected tokens are throttled too.
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, logger))
		r.Use(middleware.RequireToken(cfg.JWTSecret, auth.ScopeCompute))
		r.Use(middleware.Idempotency(store, cfg.IdempotencyTTL, logger))

		calc := payroll.NewCalculator(cfg.TaxSchedule())
		payrollHandler := payrollhandler.NewHandler(calc, cfg.Workers, logger, app.Metrics)
		payrollHandler.RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

// Run listens on the configured address until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.Config.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve handles requests on ln and shuts down gracefully once ctx is done.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.Logger.Info("paycalc api listening", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.Logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-serverErr
	a.Logger.Info("server exited")
	return nil
}

func (a *App) Close() error {
	if a.restoreGlobals != nil {
		a.restoreGlobals()
		a.restoreGlobals = nil
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
