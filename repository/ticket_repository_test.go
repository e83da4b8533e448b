package repository

import (
	"context"
	"testing"
	"time"

	"lotto/repository/testutil"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	lottery := testutil.CreateTestLottery(testutil.TestAddress(1), 3, 10)
	require.NoError(t, NewLotteryRepository(testDB.DB).Create(ctx, lottery))

	repo := NewTicketRepository(testDB.DB)
	owner := testutil.TestAddress(2)

	// Inserted out of order to check the index ordering on read
	second := testutil.CreateTestTicket(lottery.ID, 1, owner, 7)
	first := testutil.CreateTestTicket(lottery.ID, 0, owner, 5)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	t.Run("duplicate index is rejected", func(t *testing.T) {
		dup := testutil.CreateTestTicket(lottery.ID, 1, testutil.TestAddress(3), 9)
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tickets_lottery_index_unique")
	})

	t.Run("list ordered by index", func(t *testing.T) {
		tickets, err := repo.ListByLottery(ctx, lottery.ID)
		require.NoError(t, err)
		require.Len(t, tickets, 2)
		assert.Equal(t, uint64(0), tickets[0].Index)
		assert.Equal(t, uint64(1), tickets[1].Index)
		assert.Equal(t, owner, tickets[0].Owner)
		assert.Equal(t, first.Commitment, tickets[0].Commitment)
		assert.Nil(t, tickets[0].RevealedValue)
	})

	t.Run("reveal stores full width values", func(t *testing.T) {
		maxValue := new(uint256.Int).SetAllOne()
		now := time.Now().UTC().Truncate(time.Microsecond)
		first.Reveal(maxValue, now)
		require.NoError(t, repo.MarkRevealed(ctx, first))

		tickets, err := repo.ListByLottery(ctx, lottery.ID)
		require.NoError(t, err)
		require.NotNil(t, tickets[0].RevealedValue)
		assert.True(t, maxValue.Eq(tickets[0].RevealedValue))
		require.NotNil(t, tickets[0].RevealedAt)
		assert.True(t, now.Equal(*tickets[0].RevealedAt))
		assert.Nil(t, tickets[1].RevealedValue)
	})

	t.Run("second reveal is rejected", func(t *testing.T) {
		err := repo.MarkRevealed(ctx, first)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already revealed")
	})
}
