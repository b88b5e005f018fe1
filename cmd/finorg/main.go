package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finorg/internal/api"
	"finorg/internal/config"
	"finorg/internal/events"
	apphttp "finorg/internal/http"
	"finorg/internal/log"
	"finorg/internal/middleware/ratelimit"
	"finorg/internal/query"
	"finorg/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store backed by SQLite so logins survive restarts.
	store, err := session.NewStore(cfg.SessionDBPath)
	if err != nil {
		logger.Error("Failed to open session store", log.FieldError, err, "path", cfg.SessionDBPath)
		os.Exit(1)
	}
	defer store.Close()

	sessions := session.NewManager(store, cfg.JWTSecret, cfg.CookieName, cfg.SessionTTL)
	sessions.StartCleanup(ctx, time.Hour)

	var apiOpts []api.Option
	if cfg.RequestTimeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.RequestTimeout))
	}
	if cfg.RequestRetries > 0 {
		apiOpts = append(apiOpts, api.WithRetries(cfg.RequestRetries))
	}
	client := api.NewClient(cfg.APIBaseURL, sessions, apiOpts...)

	queries := query.NewStore(cfg.CacheMaxSize, cfg.CacheTTL)
	queries.StartCleanup(10 * time.Minute)
	defer queries.Stop()

	// Activity events are optional; a nil publisher is a no-op.
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher = events.Connect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5)
		if publisher != nil {
			defer publisher.Close()
		}
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           ":" + cfg.Port,
		BackendBaseURL: cfg.APIBaseURL,
		API:            client,
		Queries:        queries,
		Sessions:       sessions,
		Events:         publisher,
		RateLimit: ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		},
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting finorg server", "port", cfg.Port, "backend_api", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
