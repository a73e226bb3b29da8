// Package server wires the stores, services, and HTTP transport into a
// runnable application.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/db"
	"appraisal/internal/domain/access"
	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/directory"
	"appraisal/internal/domain/reports"
	"appraisal/internal/platform/config"
	"appraisal/internal/store"
	"appraisal/internal/store/memstore"
	"appraisal/internal/store/pgstore"
	appraisalhandler "appraisal/internal/transport/http/handlers/appraisal"
	authhandler "appraisal/internal/transport/http/handlers/auth"
	directoryhandler "appraisal/internal/transport/http/handlers/directory"
	reportshandler "appraisal/internal/transport/http/handlers/reports"
	"appraisal/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	Store  store.Store
	Router http.Handler

	pool *pgxpool.Pool
}

// New builds the application: opens the configured store, runs migrations and
// the seed when enabled, and assembles the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{Config: cfg}

	switch cfg.StoreDriver {
	case "memory":
		app.Store = memstore.New()
	case "postgres":
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		app.pool = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, "migrations"); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		app.Store = pgstore.New(pool)
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, app.Store, cfg); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	accessSvc := access.NewService(app.Store)
	directorySvc := directory.NewService(app.Store)
	appraisalSvc := appraisal.NewService(app.Store, accessSvc)
	reportsSvc := reports.NewService(app.Store)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if app.pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := app.pool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(directorySvc, accessSvc, app.Store, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		directoryhandler.NewHandler(directorySvc, accessSvc, app.Store).RegisterRoutes(r)
		appraisalhandler.NewHandler(appraisalSvc, accessSvc, app.Store).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, accessSvc).RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("appraisal server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
