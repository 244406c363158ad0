package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fkhayef/tripsplit/docs"
	"github.com/fkhayef/tripsplit/internal/auth"
	"github.com/fkhayef/tripsplit/internal/balance"
	"github.com/fkhayef/tripsplit/internal/config"
	"github.com/fkhayef/tripsplit/internal/database"
	"github.com/fkhayef/tripsplit/internal/expense"
	"github.com/fkhayef/tripsplit/internal/invite"
	"github.com/fkhayef/tripsplit/internal/mail"
	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/internal/user"
	"github.com/fkhayef/tripsplit/pkg/logging"
	mw "github.com/fkhayef/tripsplit/pkg/middleware"
)

// @title           tripsplit API
// @version         1.0
// @description     Trip expense splitting and balance ledger.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the session token.
func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	if envErr != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("connected to database")

	if cfg.RunMigrations {
		if err := database.RunMigrations(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Outgoing mail is delivered by a background worker
	mailWorker := mail.NewWorker(mail.NewSender(cfg.SMTP), 100, reg)
	mailWorker.Start()
	defer mailWorker.Shutdown()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)

	// User and auth features
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)
	authHandler := auth.NewHandler(auth.NewService(userRepo, jwtManager))

	// Trip feature; the guard gates every trip-scoped operation
	tripRepo := trip.NewRepository(db)
	guard := trip.NewGuard(tripRepo)
	tripHandler := trip.NewHandler(trip.NewService(tripRepo, guard))

	// Invite feature
	inviteService := invite.NewService(guard, tripRepo, userRepo, mailWorker, invite.Options{
		SigningKey:  []byte(cfg.InviteSecret),
		TTL:         cfg.InviteTTL,
		FrontendURL: cfg.FrontendURL,
	})
	inviteHandler := invite.NewHandler(inviteService)

	// Expense and balance features
	expenseHandler := expense.NewHandler(expense.NewService(expense.NewRepository(db), guard))
	balanceHandler := balance.NewHandler(balance.NewService(balance.NewRepository(db), guard))

	authenticate := mw.AuthMiddleware(jwtManager)
	if cfg.DevAuth {
		slog.Warn("DEV_AUTH enabled: requests are authenticated by the X-Test-User-ID header")
		authenticate = mw.TestUserMiddleware
	}

	metrics := mw.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(metrics.Handler)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Resolve requests against the host that served the docs
	docs.SwaggerInfo.Host = ""
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Mount("/users", userHandler.Routes())
			r.Route("/trips", func(r chi.Router) {
				inviteHandler.RegisterRoutes(r)
				tripHandler.RegisterRoutes(r)
				r.Mount("/{tripId}/expenses", expenseHandler.Routes())
				r.Mount("/{tripId}/balances", balanceHandler.Routes())
			})
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
