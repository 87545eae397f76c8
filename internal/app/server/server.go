package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldops/internal/db"
	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/auth"
	"fieldops/internal/domain/directory"
	"fieldops/internal/domain/leave"
	"fieldops/internal/domain/notifications"
	"fieldops/internal/platform/config"
	"fieldops/internal/platform/metrics"
	"fieldops/internal/transport/http/api"
	audithandler "fieldops/internal/transport/http/handlers/audit"
	authhandler "fieldops/internal/transport/http/handlers/auth"
	leavehandler "fieldops/internal/transport/http/handlers/leave"
	notificationshandler "fieldops/internal/transport/http/handlers/notifications"
	"fieldops/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	router := NewRouter(cfg, pool)

	log.Printf("fieldops server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// Pinger is the readiness probe dependency, satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Pool interface {
	leave.DB
	Pinger
}

// NewRouter wires the middleware chain, the health endpoints and the
// /api/v1 surface around the given pool.
func NewRouter(cfg config.Config, pool Pool) http.Handler {
	collector := metrics.New()

	leaveStore := leave.NewStore(pool)
	directoryStore := directory.NewStore(pool)
	leaveService := leave.NewService(leaveStore, directoryStore)
	authStore := auth.NewStore(pool)
	auditService := audit.NewService(pool)
	notifyService := notifications.New(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.With(middleware.RequireAuth).Get("/auth/me", authHandler.HandleMe)

		leaveHandler := leavehandler.NewHandler(leaveService, notifyService, auditService)
		leaveHandler.RegisterRoutes(r)

		auditHandler := audithandler.NewHandler(auditService)
		auditHandler.RegisterRoutes(r)

		notificationsHandler := notificationshandler.NewHandler(notifyService)
		notificationsHandler.RegisterRoutes(r)
	})

	return router
}
