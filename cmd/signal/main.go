package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vitatrack/auth"
	"vitatrack/infrastructure/rest"
	"vitatrack/infrastructure/storage"
	"vitatrack/infrastructure/ws"
	"vitatrack/internal"
	"vitatrack/observability"
	"vitatrack/runtime"
	"vitatrack/runtime/workers"
	"vitatrack/services"
)

// Exit codes for the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Signal server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a termination signal or a server failure.
// Deferred cleanups run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Account store (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(ctx, config, logger))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(registry)

	// 4. Signaling core & supervision
	relay := runtime.NewRelay(logger, metrics)
	coordinator := runtime.NewCoordinator(logger, relay, metrics)
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(logger, supervisor, coordinator, metrics,
		config.RoomSweepInterval, config.HeartbeatInterval)

	// 5. Account service
	tokens := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	accountService := services.NewAccountService(storage.NewUserRepository(db, logger), tokens)

	// 6. HTTP routes
	api := http.NewServeMux()
	rest.NewAccountServer(logger, accountService, tokens).Register(api)

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewSignalingServer(logger, orchestrator.Coordinator(), config.TransportOptions()))
	mux.Handle("/api/", rest.WithCORS(api))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              config.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	go func() {
		logger.Info("Starting signal server", "address", config.Address(), "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		orchestrator.Stop()
		return exitRuntime, err
	}

	// 8. Graceful shutdown. Hijacked websocket connections are not tracked by
	// Shutdown; they end when the process exits and peers see a disconnect.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	orchestrator.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(ctx context.Context, config internal.Config, logger *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}
