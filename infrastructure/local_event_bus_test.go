package infrastructure

import (
	"context"
	"sync/atomic"
	"testing"

	"lotto/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEventBus_DispatchesToMatchingHandlers(t *testing.T) {
	t.Parallel()

	bus := NewLocalEventBus()
	var claimed, created atomic.Int32

	bus.RegisterLocalHandler(events.EventTypeRewardClaimed, func(ctx context.Context, event events.Event) error {
		claimed.Add(1)
		return nil
	})
	bus.RegisterLocalHandler(events.EventTypeRewardClaimed, func(ctx context.Context, event events.Event) error {
		panic("recovered by the bus")
	})
	bus.RegisterLocalHandler(events.EventTypeLotteryCreated, func(ctx context.Context, event events.Event) error {
		created.Add(1)
		return nil
	})

	require.NoError(t, bus.Publish(events.RewardClaimedEvent{LotteryID: 1}))
	require.NoError(t, bus.Publish(events.TicketPurchasedEvent{LotteryID: 1}))
	bus.Wait()

	assert.Equal(t, int32(1), claimed.Load())
	assert.Equal(t, int32(0), created.Load())
}
