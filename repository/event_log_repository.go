package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"
)

// EventLogRepository persists lottery events in the same transaction as the state change
type EventLogRepository struct {
	q Queryable
}

// NewEventLogRepository creates an event log repository over a pool or transaction
func NewEventLogRepository(q Queryable) interfaces.EventLogRepository {
	return &EventLogRepository{q: q}
}

// Append records an event
func (r *EventLogRepository) Append(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type(), err)
	}

	query := `
		INSERT INTO lottery_events (lottery_id, event_type, payload)
		VALUES ($1, $2, $3)
	`
	if _, err := r.q.Exec(ctx, query, event.AggregateID(), string(event.Type()), payload); err != nil {
		return fmt.Errorf("failed to append %s event: %w", event.Type(), err)
	}
	return nil
}

// ListByLottery returns the events of a lottery in emission order
func (r *EventLogRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.EventRecord, error) {
	query := `
		SELECT id, lottery_id, event_type, payload, created_at
		FROM lottery_events
		WHERE lottery_id = $1
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for lottery %d: %w", lotteryID, err)
	}
	defer rows.Close()

	var records []*entities.EventRecord
	for rows.Next() {
		var (
			record  entities.EventRecord
			payload []byte
		)
		if err := rows.Scan(&record.ID, &record.LotteryID, &record.EventType, &payload, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		record.Payload = json.RawMessage(payload)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return records, nil
}
