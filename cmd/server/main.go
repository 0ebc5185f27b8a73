// Command server runs the analytics HTTP service.
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

	"retailpulse/internal/config"
	"retailpulse/internal/pipeline"
	transport "retailpulse/internal/transport/http"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	defaults := pipeline.DefaultConfig()
	defaults.MovingAverageWindow = cfg.Pipeline.MovingAverageWindow
	defaults.SmoothingAlpha = cfg.Pipeline.SmoothingAlpha
	defaults.ForecastHorizonDays = cfg.Pipeline.ForecastHorizonDays
	defaults.ServiceLevelZ = cfg.Pipeline.ServiceLevelZ
	defaults.MaxRejectionRate = cfg.Pipeline.MaxRejectionRate
	defaults.OrderCost = cfg.Pipeline.OrderCost
	defaults.HoldingCost = cfg.Pipeline.HoldingCost

	handler := transport.NewRouter(cfg, defaults, version, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      http.TimeoutHandler(handler, cfg.Server.RequestTimeout, `{"success":false,"error":{"status_code":503,"error_code":"REQUEST_TIMEOUT","message":"Request timed out"}}`),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.Int("port", cfg.Server.Port),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
