// Package main implements the entry point for the uptopd daemon, which
// keeps an inventory data set synchronized from a remote source, applies
// the user's saved view over it, and exposes the result through a
// reactive state store and a Prometheus metrics endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/MdEnamulHaque007/UPTOP-sub000/config"
	"github.com/MdEnamulHaque007/UPTOP-sub000/datasync"
	"github.com/MdEnamulHaque007/UPTOP-sub000/metric"
	"github.com/MdEnamulHaque007/UPTOP-sub000/pipeline"
	"github.com/MdEnamulHaque007/UPTOP-sub000/statestore"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "uptopd"
)

// State store paths the daemon writes.
const (
	pathData     = "data"
	pathFiltered = "view.filtered"
	pathSummary  = "view.summary"
	pathStatus   = "sync.status"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if cliCfg.ShowVersion {
		fmt.Printf("%s %s (build %s)\n", appName, Version, BuildTime)
		return nil
	}
	if err := validateFlags(cliCfg); err != nil {
		return err
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cliCfg.Validate {
		logger.Info("Configuration is valid", "path", cliCfg.ConfigPath)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metric.NewRegistry()

	durable, err := cfg.OpenDurable(ctx)
	if err != nil {
		return fmt.Errorf("open durable cache: %w", err)
	}

	opts := []datasync.Option{
		datasync.WithLogger(logger),
		datasync.WithMetrics(registry),
	}
	if durable != nil {
		opts = append(opts, datasync.WithDurableCache(durable))
	}
	svc, err := datasync.New(cfg.ServiceOptions(), opts...)
	if err != nil {
		return fmt.Errorf("create data service: %w", err)
	}
	defer svc.Close()

	if err := svc.LoadDurable(ctx); err != nil {
		logger.Warn("Durable cache load failed, starting cold", "error", err)
	}

	prefs, err := config.LoadPreferences(cfg.PrefsPath)
	if err != nil {
		logger.Warn("Preferences load failed, using defaults", "error", err)
	}

	store := statestore.New(nil,
		statestore.WithLogger(logger),
		statestore.WithMetrics(registry),
	)

	if cliCfg.MetricsPort > 0 {
		startMetricsServer(ctx, logger, registry, cliCfg.MetricsPort)
	}

	refresh := func(useCache bool) {
		for key := range cfg.Service.Resources {
			syncResource(ctx, logger, svc, store, prefs.Criteria, key, useCache)
		}
	}

	logger.Info("Starting",
		"resources", len(cfg.Service.Resources),
		"refresh_interval", cliCfg.RefreshInterval,
	)
	refresh(true)

	ticker := time.NewTicker(cliCfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down")
			return nil
		case <-ticker.C:
			refresh(false)
		}
	}
}

// syncResource fetches one resource and projects it into the store: raw
// records under data.<key>, the filtered view and its summary under
// view.*, and the sync outcome under sync.status.<key>.
func syncResource(
	ctx context.Context,
	logger *slog.Logger,
	svc *datasync.Service,
	store *statestore.Store,
	criteria pipeline.Criteria,
	key string,
	useCache bool,
) {
	result, err := svc.Fetch(ctx, key, useCache)
	if err != nil {
		logger.Error("Fetch failed", "resource", key, "error", err)
		store.Set(pathStatus+"."+key, map[string]any{
			"state": "error",
			"error": err.Error(),
		})
		return
	}

	state := "fresh"
	if result.Degraded {
		state = "degraded"
	}
	store.Set(pathData+"."+key, result.Records)
	store.Set(pathFiltered, pipeline.Apply(result.Records, criteria))
	store.RecomputeSummary(pathFiltered, pathSummary)
	store.Set(pathStatus+"."+key, map[string]any{
		"state":      state,
		"fetched_at": result.FetchedAt.Format(time.RFC3339),
		"warnings":   len(result.Warnings),
	})

	logger.Info("Resource synchronized",
		"resource", key,
		"records", len(result.Records),
		"state", state,
		"warnings", len(result.Warnings),
	)
}

func startMetricsServer(ctx context.Context, logger *slog.Logger, registry *metric.Registry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
