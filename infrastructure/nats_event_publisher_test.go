package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSEventPublisher_PublishesEnvelope(t *testing.T) {
	t.Parallel()

	bus := &fakeMessageBus{}
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	event := events.RewardClaimedEvent{
		LotteryID: 7,
		Winner:    common.HexToAddress("0x00000000000000000000000000000000000000b0"),
		Amount:    300,
	}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, bus.subjects, 1)
	assert.Equal(t, "lottery.reward.claimed", bus.subjects[0])

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(bus.messages[0], &envelope))
	assert.Equal(t, string(events.EventTypeRewardClaimed), envelope.EventType)
	assert.Equal(t, "lotto", envelope.SourceService)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.False(t, envelope.Timestamp.IsZero())

	var payload events.RewardClaimedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestNATSEventPublisher_LocalHandlersRunFirst(t *testing.T) {
	t.Parallel()

	bus := &fakeMessageBus{}
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	var seen []events.Event
	publisher.RegisterLocalHandler(events.EventTypeLotteryResolved, func(ctx context.Context, event events.Event) error {
		seen = append(seen, event)
		return errors.New("handler failure does not block publishing")
	})

	event := events.LotteryResolvedEvent{LotteryID: 3, WinningIndex: 1}
	require.NoError(t, publisher.Publish(event))
	require.NoError(t, publisher.Publish(events.LotteryCreatedEvent{LotteryID: 4}))

	assert.Equal(t, []events.Event{event}, seen)
	assert.Len(t, bus.messages, 2)
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	t.Parallel()

	publisher := NewNATSEventPublisher(&fakeMessageBus{err: errors.New("timeout")}, NewEventSubjectMapper())
	err := publisher.Publish(events.LotteryCreatedEvent{LotteryID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event to NATS")

	publisher = NewNATSEventPublisher(&fakeMessageBus{err: errors.New("nats: no response from stream")}, NewEventSubjectMapper())
	assert.NoError(t, publisher.Publish(events.LotteryCreatedEvent{LotteryID: 1}))
}

func TestEventSubjectMapper(t *testing.T) {
	t.Parallel()

	mapper := NewEventSubjectMapper()
	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.LotteryCreatedEvent{}, "lottery.created"},
		{events.TicketPurchasedEvent{}, "lottery.ticket.purchased"},
		{events.LotterySoldOutEvent{}, "lottery.sold_out"},
		{events.NumberRevealedEvent{}, "lottery.number.revealed"},
		{events.LotteryResolvedEvent{}, "lottery.resolved"},
		{events.RewardClaimedEvent{}, "lottery.reward.claimed"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(tt.subject))
			assert.Contains(t, mapper.GetAllSubjects(), tt.subject)
		})
	}
}
