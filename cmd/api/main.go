package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/pickup-games/internal/app"
	"github.com/riskibarqy/pickup-games/internal/config"
	"github.com/riskibarqy/pickup-games/internal/observability"
	"github.com/riskibarqy/pickup-games/internal/platform/logging"
	"github.com/riskibarqy/pickup-games/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "version", cfg.ServiceVersion)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger) error {
	telemetry, err := observability.StartTelemetry(cfg, logger)
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		_ = telemetry.Shutdown(context.Background())
		return fmt.Errorf("build app: %w", err)
	}

	var sweeper *app.Sweeper
	if cfg.AutoStartEnabled {
		var observer interface{ ObserveAutoStart(started, skipped, failed int) }
		if application.Metrics != nil {
			observer = application.Metrics
		}
		sweeper, err = app.NewSweeper(cfg.AutoStartSchedule, application.Games, observer, usecase.StartDueGamesInput{
			Limit:      cfg.AutoStartBatch,
			MaxWorkers: cfg.AutoStartWorkers,
		}, logger)
		if err != nil {
			return err
		}
		sweeper.Start()
		logger.Info("auto-start sweeper scheduled", "schedule", cfg.AutoStartSchedule)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop intake first, then release dependencies and flush telemetry together.
	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			logger.Warn("auto-start sweeper stop timed out", "error", err)
		}
	}
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("http shutdown: %w", err))
	}

	p := pool.New().WithErrors().WithContext(shutdownCtx)
	p.Go(func(ctx context.Context) error { return application.Close(ctx) })
	p.Go(func(ctx context.Context) error { return telemetry.Shutdown(ctx) })
	if err := p.Wait(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("release resources: %w", err))
	}

	logger.Info("http server stopped")
	return runErr
}
