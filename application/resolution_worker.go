package application

import (
	"context"
	"errors"
	"fmt"

	"lotto/domain/entities"
	"lotto/infrastructure/observability"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ResolutionWorker periodically resolves sold out block hash lotteries
// whose seed block has been mined
type ResolutionWorker struct {
	uowFactory UnitOfWorkFactory
	handler    LotteryHandler
	metrics    MetricsRecorder
	schedule   string
}

// NewResolutionWorker creates a new resolution worker
func NewResolutionWorker(uowFactory UnitOfWorkFactory, handler LotteryHandler, metrics MetricsRecorder, schedule string) *ResolutionWorker {
	return &ResolutionWorker{
		uowFactory: uowFactory,
		handler:    handler,
		metrics:    metrics,
		schedule:   schedule,
	}
}

// Start schedules the worker and returns a function that stops it and waits
// for a running pass to finish
func (w *ResolutionWorker) Start(ctx context.Context) (func(), error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := c.AddFunc(w.schedule, func() {
		if _, err := w.ResolvePending(ctx); err != nil {
			log.WithError(err).Error("Resolution pass failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid resolver schedule %q: %w", w.schedule, err)
	}

	c.Start()
	log.WithField("schedule", w.schedule).Info("Resolution worker started")

	return func() {
		<-c.Stop().Done()
		log.Info("Resolution worker stopped")
	}, nil
}

// ResolvePending attempts to resolve every lottery waiting on entropy and
// returns how many were resolved
func (w *ResolutionWorker) ResolvePending(ctx context.Context) (int, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	pending, err := uow.LotteryRepository().ListAwaitingEntropy(ctx)
	if err != nil {
		uow.Rollback()
		return 0, fmt.Errorf("failed to list lotteries awaiting entropy: %w", err)
	}
	uow.Rollback()

	if len(pending) == 0 {
		log.Debug("No lotteries awaiting entropy")
		return 0, nil
	}

	var resolved, waiting, failed int
	for _, lottery := range pending {
		winner, err := w.handler.Winner(ctx, lottery.ID)
		switch {
		case err == nil:
			resolved++
			w.metrics.RecordResolverRun(observability.OutcomeResolved)
			log.WithFields(log.Fields{
				"lottery_id": lottery.ID,
				"winner":     winner.Hex(),
			}).Info("Resolved lottery from block hash")
		case errors.Is(err, entities.ErrWinnerNotResolved):
			waiting++
			w.metrics.RecordResolverRun(observability.OutcomePending)
		default:
			failed++
			w.metrics.RecordResolverRun(observability.OutcomeFailed)
			log.WithError(err).WithField("lottery_id", lottery.ID).Error("Failed to resolve lottery")
		}
	}

	log.WithFields(log.Fields{
		"total":    len(pending),
		"resolved": resolved,
		"waiting":  waiting,
		"failed":   failed,
	}).Info("Completed resolution pass")

	return resolved, nil
}
