package cmd

import (
	"context"
	"fmt"
	"time"

	"lotto/application"
	"lotto/config"
	"lotto/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run starts the lottery service and blocks until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	cfg.ConfigureLogging()
	log.WithField("environment", cfg.Environment).Info("Starting lotto service...")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}

	app, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var stopWorker func()
	if app.Beacon != nil {
		worker := application.NewResolutionWorker(app.UoWFactory, app.Handler, observability.GetMetrics(), cfg.ResolverSchedule)
		stopWorker, err = worker.Start(ctx)
		if err != nil {
			return fmt.Errorf("failed to start resolution worker: %w", err)
		}
	}

	log.Info("Lotto service is running")
	<-ctx.Done()

	log.Info("Shutting down lotto service...")
	if stopWorker != nil {
		stopWorker()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}
