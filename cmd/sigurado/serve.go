package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/account"
	"github.com/gloria-mdrrmo/sigurado/internal/dashboard"
	"github.com/gloria-mdrrmo/sigurado/internal/district"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/incident"
	"github.com/gloria-mdrrmo/sigurado/internal/notification"
	"github.com/gloria-mdrrmo/sigurado/internal/responder"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/auth"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/database"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/events"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/metrics"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/middleware"
)

const maxBodyBytes = 1 << 20

// App holds all application dependencies
type App struct {
	Config     *config.Config
	Log        *zap.Logger
	Store      domain.Store
	DB         *database.DB
	Dispatcher *events.Dispatcher
	Stream     *events.StreamPublisher
	Gate       *access.Gate
	Tokens     *auth.Tokens
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	app := &App{Config: cfg, Log: log}

	app.Store, app.DB, err = openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	if cfg.Store.SeedDistricts {
		if _, err := district.Seed(ctx, app.Store, log); err != nil {
			return fmt.Errorf("failed to seed districts: %w", err)
		}
	}

	app.Gate, err = access.NewGate(cfg.Access, log.Named("access"))
	if err != nil {
		return err
	}
	app.Tokens = auth.NewTokens(cfg.Auth)
	app.Dispatcher = events.NewDispatcher(log)

	// The event mirror is optional; the platform runs without it
	if cfg.KurrentDB.Enabled {
		app.Stream, err = events.NewStreamPublisher(cfg.KurrentDB)
		if err != nil {
			log.Warn("KurrentDB not available, running without event mirror", zap.Error(err))
		} else {
			defer app.Stream.Close()
			app.Dispatcher.Register("kurrentdb.mirror", "*", app.Stream.Handle)
			log.Info("KurrentDB event mirror enabled",
				zap.String("host", cfg.KurrentDB.Host),
				zap.Int("port", cfg.KurrentDB.Port),
			)
		}
	}

	incidents := incident.NewService(app.Store, app.Gate, app.Dispatcher, cfg.Incident, log)
	notifications := notification.NewService(app.Store, app.Gate)
	responders := responder.NewService(app.Store, app.Gate, app.Dispatcher, cfg.Coordination, log)
	districts := district.NewService(app.Store, app.Gate, log)
	accounts := account.NewService(app.Store, app.Gate, app.Tokens, cfg.Auth, log)
	agg := dashboard.NewAggregator(app.Store, app.Gate, log)

	notification.NewFanout(app.Store, cfg.Notification, log).Register(app.Dispatcher)
	responders.Register(app.Dispatcher)

	if cfg.Dashboard.RefreshSpec != "" {
		refresher, err := dashboard.NewGaugeRefresher(agg, cfg.Dashboard.RefreshSpec, cfg.Database.QueryTimeout)
		if err != nil {
			return err
		}
		refresher.Start()
		defer refresher.Stop()
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go pruneLimiter(ctx, limiter, log)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	r.Use(middleware.SecurityHeaders)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(middleware.BodyLimit(maxBodyBytes))

		r.Mount("/auth", account.NewHandler(accounts, app.Tokens).Routes())

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(app.Tokens))
			r.Use(accounts.Middleware)

			r.Mount("/incidents", incident.NewHandler(incidents).Routes())
			r.Mount("/notifications", notification.NewHandler(notifications, log).Routes())
			r.Mount("/responders", responder.NewHandler(responders).Routes())

			dh := district.NewHandler(districts)
			r.Mount("/districts", dh.DistrictRoutes())
			r.Mount("/resources", dh.ResourceRoutes())

			r.Mount("/dashboard", dashboard.NewHandler(agg).Routes())
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started",
			zap.Int("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
			zap.String("store", cfg.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// pruneLimiter drops idle rate limiter buckets until ctx ends
func pruneLimiter(ctx context.Context, limiter *middleware.IPRateLimiter, log *zap.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Prune(); n > 0 {
				log.Debug("pruned idle rate limiters", zap.Int("removed", n))
			}
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"server": "ready"}

		if err := app.Store.Ping(r.Context()); err != nil {
			checks["store"] = "not ready: " + err.Error()
		} else {
			checks["store"] = "ready"
		}
		if app.DB != nil {
			// Publishes pool usage as a side effect
			app.DB.Health(r.Context())
		}

		if app.Stream != nil {
			if err := app.Stream.Health(r.Context()); err != nil {
				checks["kurrentdb"] = "not ready: " + err.Error()
			} else {
				checks["kurrentdb"] = "ready"
			}
		} else {
			checks["kurrentdb"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}
