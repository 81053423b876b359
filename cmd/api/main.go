package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-angel-api/internal"
	"asset-angel-api/internal/auth"
	"asset-angel-api/internal/config"
	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"
)

func main() {
	// Load and validate configuration
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	seed, err := store.LoadSeedFile(cfg.SeedPath)
	if err != nil {
		return err
	}
	st, err := store.NewFromSeed(seed)
	if err != nil {
		return err
	}

	creds, err := auth.NewCredentials(map[models.Role]string{
		models.RoleAdmin:    cfg.AdminPassword,
		models.RoleEmployee: cfg.EmployeePassword,
	}, 0)
	if err != nil {
		return err
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	if err := tokens.ValidateConfig(); err != nil {
		return err
	}

	metrics := internal.NewMetrics()
	gate := auth.NewGate(st, creds, tokens,
		auth.WithLoginDelay(cfg.LoginDelay),
		auth.WithLoginHook(metrics.ObserveLogin),
	)
	srv := internal.NewServer(cfg, st, gate, logger, metrics)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting asset angel api",
		"addr", cfg.ListenAddr,
		"environment", cfg.Environment,
		"jwt_issuer", cfg.JWTIssuer,
		"jwt_audience", cfg.JWTAudience,
		"jwt_expiry", cfg.JWTExpiry,
		"metrics", cfg.EnableMetrics,
		"swagger", cfg.EnableSwagger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
