package utils

import (
	"context"
	"fmt"

	"lotto/domain/events"
	"lotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordEvent appends an event to the lottery's event log and hands it to the publisher.
// This is the single entry point for every lottery event. The log write is part of the
// caller's transaction and its failure aborts the operation; publish failures are only logged.
func RecordEvent(ctx context.Context, eventLogRepo interfaces.EventLogRepository, eventPublisher interfaces.EventPublisher, event events.Event) error {
	if err := eventLogRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to record %s event: %w", event.Type(), err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"lotteryID": event.AggregateID(),
	}).Debug("Publishing lottery event")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish lottery event")
	}
	return nil
}
