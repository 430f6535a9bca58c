package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ridelog/ridelog/internal/advisor"
	"github.com/ridelog/ridelog/internal/auth"
	"github.com/ridelog/ridelog/internal/config"
	"github.com/ridelog/ridelog/internal/db"
	"github.com/ridelog/ridelog/internal/garage"
	"github.com/ridelog/ridelog/internal/handlers"
	"github.com/ridelog/ridelog/internal/metrics"
	"github.com/ridelog/ridelog/internal/middleware"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.App.ConfigureLogging()

	client, err := db.ConnectMongo(cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Info("Connected to MongoDB successfully!")
	defer db.DisconnectMongo(client)

	database := client.Database(cfg.Mongo.Database)
	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx, database); err != nil {
		cancel()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	tripAdvisor, closeAdvisor := newAdvisor(cfg)
	defer closeAdvisor()

	m := metrics.New()
	authService := auth.NewService(cfg.Token.Secret, cfg.Token.Expiry, nil)
	riders := &db.MongoRiderCollection{Collection: database.Collection(db.RidersCollection)}
	garageService := garage.NewService(db.NewMongoStore(database), tripAdvisor, nil)

	router := newRouter(
		handlers.NewAuthHandler(authService, riders),
		handlers.NewGarageHandler(garageService, m),
		middleware.NewAuthMiddleware(authService),
		middleware.NewRateLimitMiddleware(nil).RateLimit(cfg.HTTP.AdvisoryRateLimit, cfg.HTTP.AdvisoryRateWindow),
		m,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("port", cfg.HTTP.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// newAdvisor builds the configured trip advisor, cached in redis when an
// address is set. A redis server that cannot be reached disables the cache.
func newAdvisor(cfg *config.Container) (advisor.TripAdvisor, func()) {
	var next advisor.TripAdvisor
	switch cfg.Advisor.Mode {
	case config.AdvisorRemote:
		next = advisor.NewRemote(cfg.Advisor.URL, cfg.Advisor.APIKey, cfg.Advisor.Timeout)
	default:
		next = advisor.NewLocal(nil)
	}
	log.WithField("mode", cfg.Advisor.Mode).Info("Trip advisor configured")

	if !cfg.Redis.CacheEnabled() {
		return next, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).WithField("address", cfg.Redis.Address).Warn("Redis unavailable, advisories will not be cached")
		rdb.Close()
		return next, func() {}
	}

	log.WithFields(log.Fields{
		"address": cfg.Redis.Address,
		"ttl":     cfg.Advisor.CacheTTL,
	}).Info("Caching advisories in redis")
	closeRedis := func() {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}
	return advisor.NewCached(next, advisor.NewRedisCache(rdb), cfg.Advisor.CacheTTL, nil), closeRedis
}

// newRouter mounts every route behind the auth middleware. Public paths are
// let through by the middleware itself.
func newRouter(
	authHandler *handlers.AuthHandler,
	garageHandler *handlers.GarageHandler,
	authMiddleware *middleware.AuthMiddleware,
	advisoryLimit func(http.Handler) http.Handler,
	m *metrics.Metrics,
) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern, route string, h http.Handler) {
		mux.Handle(pattern, m.Instrument(route, h))
	}

	handle("/api/auth/register", "register", http.HandlerFunc(authHandler.Register))
	handle("/api/auth/login", "login", http.HandlerFunc(authHandler.Login))
	handle("/api/auth/profile", "profile", http.HandlerFunc(authHandler.GetProfile))
	handle("/api/bike", "bike", http.HandlerFunc(authHandler.UpdateBike))

	handle("/api/fuel", "fuel", http.HandlerFunc(garageHandler.Fuel))
	handle("DELETE /api/fuel/{id}", "fuel_item", http.HandlerFunc(garageHandler.DeleteFuel))
	handle("/api/services", "services", http.HandlerFunc(garageHandler.Services))
	handle("DELETE /api/services/{id}", "service_item", http.HandlerFunc(garageHandler.DeleteService))
	handle("/api/reminders", "reminders", http.HandlerFunc(garageHandler.Reminders))
	handle("POST /api/reminders/{id}/complete", "reminder_complete", http.HandlerFunc(garageHandler.CompleteReminder))
	handle("DELETE /api/reminders/{id}", "reminder_item", http.HandlerFunc(garageHandler.DeleteReminder))

	handle("/api/trips", "trips", http.HandlerFunc(garageHandler.Trips))
	handle("POST /api/trips/{id}/start", "trip_start", http.HandlerFunc(garageHandler.StartTrip))
	handle("POST /api/trips/{id}/end", "trip_end", http.HandlerFunc(garageHandler.EndTrip))
	handle("POST /api/trips/{id}/expenses", "trip_expenses", http.HandlerFunc(garageHandler.AddTripExpense))
	handle("GET /api/trips/{id}/summary", "trip_summary", http.HandlerFunc(garageHandler.TripSummary))

	handle("/api/dashboard", "dashboard", http.HandlerFunc(garageHandler.Dashboard))
	handle("/api/reports", "reports", http.HandlerFunc(garageHandler.Reports))
	handle("/api/advisory", "advisory", advisoryLimit(http.HandlerFunc(garageHandler.Advisory)))

	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", m.Handler())

	return authMiddleware.Authenticate(mux)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
