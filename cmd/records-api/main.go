// Package main provides the entry point for the records API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maplecrm/records-api/internal/api"
	"github.com/maplecrm/records-api/internal/audit"
	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/config"
	"github.com/maplecrm/records-api/internal/logging"
	"github.com/maplecrm/records-api/internal/metrics"
	"github.com/maplecrm/records-api/internal/perm"
	"github.com/maplecrm/records-api/internal/storage"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "records-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting records API", "version", version, "addr", cfg.ListenAddr)

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := metrics.Init(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ownerEmail := cfg.BootstrapEmail
	if ownerEmail == "" {
		ownerEmail = "owner@localhost"
	}
	boot, err := auth.EnsureBootstrap(ctx, store, cfg.BootstrapTenant, ownerEmail, logger)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if boot != nil {
		// The secret is shown exactly once; only its hash is stored.
		fmt.Printf("bootstrap credential for %s (tenant %s): %s\n",
			boot.Owner.Email, boot.Tenant.Name, boot.RawSecret)
	}

	resolver := perm.NewResolver(perm.BuiltinTables())
	validator := auth.NewValidator(store, resolver, logger)
	recorder := audit.NewRecorder(store, logger)
	server := api.NewServer(store, validator, recorder, logger)

	apiServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsListenAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("API listening", "addr", cfg.ListenAddr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics listening", "addr", cfg.MetricsListenAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown", "error", err)
	}
	return nil
}
