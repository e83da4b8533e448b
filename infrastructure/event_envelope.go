package infrastructure

import (
	"encoding/json"
	"fmt"
	"time"

	"lotto/domain/events"

	"github.com/google/uuid"
)

const sourceService = "lotto"

// EventEnvelope wraps every event published to the message bus
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope serializes event into a new envelope
func NewEventEnvelope(event events.Event, at time.Time) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     at.UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}, nil
}
