package infrastructure

import (
	"context"
	"errors"
	"testing"

	"lotto/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalPublisher_FlushPublishesInOrder(t *testing.T) {
	t.Parallel()

	sink := &MockEventPublisher{}
	publisher := NewTransactionalPublisher(sink)

	first := events.TicketPurchasedEvent{LotteryID: 1, TicketIndex: 0}
	second := events.LotterySoldOutEvent{LotteryID: 1, Pot: 300}
	require.NoError(t, publisher.Publish(first))
	require.NoError(t, publisher.Publish(second))
	assert.Empty(t, sink.PublishedEvents, "events are held until flush")

	require.NoError(t, publisher.Flush(context.Background()))
	assert.Equal(t, []events.Event{first, second}, sink.PublishedEvents)

	// Flushed events are not published twice
	require.NoError(t, publisher.Flush(context.Background()))
	assert.Len(t, sink.PublishedEvents, 2)
}

func TestTransactionalPublisher_Discard(t *testing.T) {
	t.Parallel()

	sink := &MockEventPublisher{}
	publisher := NewTransactionalPublisher(sink)

	require.NoError(t, publisher.Publish(events.LotteryCreatedEvent{LotteryID: 1}))
	publisher.Discard()
	require.NoError(t, publisher.Flush(context.Background()))

	assert.Empty(t, sink.PublishedEvents)
}

func TestTransactionalPublisher_FlushSwallowsPublishErrors(t *testing.T) {
	t.Parallel()

	sink := &MockEventPublisher{PublishError: errors.New("bus down")}
	publisher := NewTransactionalPublisher(sink)

	require.NoError(t, publisher.Publish(events.LotteryCreatedEvent{LotteryID: 1}))
	assert.NoError(t, publisher.Flush(context.Background()))
}
