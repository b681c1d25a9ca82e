package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"takehome/internal/domain/tax"
	"takehome/internal/platform/config"
	"takehome/internal/platform/db"
	"takehome/internal/platform/jobs"
	"takehome/internal/platform/logger"
	"takehome/internal/platform/metrics"
	"takehome/internal/platform/rent"
	"takehome/internal/transport/http/api"
	taxhandler "takehome/internal/transport/http/handlers/tax"
	"takehome/internal/transport/http/middleware"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config  config.Config
	Logger  *zap.Logger
	Service *tax.Service
	Store   tax.StoreAPI
	DB      Pinger
	Metrics *metrics.Collector
}

func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}

	store := tax.NewStore(pool)
	if cfg.RunSeed {
		if err := db.Seed(ctx, store, cfg, log); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
	}

	registry, err := tax.LoadRegistry(ctx, store, cfg.TaxYear)
	if err != nil {
		return fmt.Errorf("load tax tables: %w", err)
	}

	rentClient := rent.NewClient(rent.WithBaseURL(cfg.RentBaseURL), rent.WithTimeout(cfg.RentFetchTimeout))
	service := tax.NewService(registry, rentClient,
		tax.WithLogger(log),
		tax.WithRentTimeout(cfg.RentFetchTimeout),
	)

	reloader := jobs.New(store, service, cfg.TaxYear, cfg.TaxReloadInterval, log)
	reloader.Start(ctx)

	router := NewRouter(Deps{
		Config:  cfg,
		Logger:  log,
		Service: service,
		Store:   store,
		DB:      pool,
		Metrics: metrics.New(),
	})

	return serve(ctx, cfg.Addr, router, log)
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log, deps.Metrics))
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		taxHandler := taxhandler.NewHandler(deps.Service, deps.Store, cfg.TaxDataDir, log, deps.Metrics)
		taxHandler.RentLimit = middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute,
			middleware.WithKeyFunc(middleware.ClientIPKey),
			middleware.WithRateLimitLogger(log),
		)
		taxHandler.RegisterRoutes(r)
	})

	return router
}

func serve(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("takehome server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

var _ Pinger = (*pgxpool.Pool)(nil)
