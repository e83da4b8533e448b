package repository

import (
	"context"
	"testing"
	"time"

	"lotto/domain/entities"
	"lotto/repository/testutil"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotteryRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewLotteryRepository(testDB.DB)

	t.Run("not found", func(t *testing.T) {
		lottery, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, lottery)
	})

	t.Run("round trip", func(t *testing.T) {
		creator := testutil.TestAddress(1)
		lottery := testutil.CreateTestLottery(creator, 3, 100)
		require.NoError(t, repo.Create(ctx, lottery))
		require.NotZero(t, lottery.ID)
		assert.False(t, lottery.CreatedAt.IsZero())

		saved, err := repo.GetByID(ctx, lottery.ID)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, creator, saved.Creator)
		assert.Equal(t, uint64(3), saved.TicketsTotal)
		assert.Equal(t, uint64(100), saved.TicketPrice)
		assert.Equal(t, entities.StateSelling, saved.State)
		assert.Equal(t, entities.EntropyCommitReveal, saved.EntropyMode)
		assert.Nil(t, saved.Seed)
		assert.Nil(t, saved.Winner)
		assert.Nil(t, saved.SoldOutAt)
	})
}

func TestLotteryRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewLotteryRepository(testDB.DB)

	creator := testutil.TestAddress(1)
	lottery := testutil.CreateTestLottery(creator, 1, 250)
	require.NoError(t, repo.Create(ctx, lottery))

	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := lottery.Purchase(creator, common.HexToHash("0x01"), 250, now)
	require.NoError(t, err)

	ticket := testutil.CreateTestTicket(lottery.ID, 0, creator, 1)
	require.NoError(t, lottery.Resolve(common.HexToHash("0x2a"), []*entities.Ticket{ticket}, now))
	require.NoError(t, repo.Update(ctx, lottery))

	saved, err := repo.GetByID(ctx, lottery.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, entities.StateResolved, saved.State)
	assert.Equal(t, uint64(250), saved.Pot)
	assert.Equal(t, uint64(1), saved.TicketsSold)
	require.NotNil(t, saved.Seed)
	assert.Equal(t, common.HexToHash("0x2a"), *saved.Seed)
	require.NotNil(t, saved.WinningIndex)
	assert.Equal(t, uint64(0), *saved.WinningIndex)
	require.NotNil(t, saved.Winner)
	assert.Equal(t, creator, *saved.Winner)
	require.NotNil(t, saved.ResolvedAt)
	assert.True(t, now.Equal(*saved.ResolvedAt))

	t.Run("missing lottery", func(t *testing.T) {
		ghost := testutil.CreateTestLottery(creator, 1, 1)
		ghost.ID = 424242
		err := repo.Update(ctx, ghost)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestLotteryRepository_ListAwaitingEntropy(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewLotteryRepository(testDB.DB)

	creator := testutil.TestAddress(1)
	now := time.Now().UTC()

	blockHash, err := entities.NewLottery(creator, entities.LotteryConfig{
		TicketsTotal: 1,
		TicketPrice:  10,
		EntropyMode:  entities.EntropyBlockHash,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, blockHash))
	_, err = blockHash.Purchase(creator, common.Hash{}, 10, now)
	require.NoError(t, err)
	blockHash.SetEntropyAnchor(1234)
	require.NoError(t, repo.Update(ctx, blockHash))

	// Sold out commit-reveal lotteries wait on reveals, not the beacon
	commitReveal := testutil.CreateTestLottery(creator, 1, 10)
	require.NoError(t, repo.Create(ctx, commitReveal))
	_, err = commitReveal.Purchase(creator, common.HexToHash("0x01"), 10, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, commitReveal))

	pending, err := repo.ListAwaitingEntropy(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, blockHash.ID, pending[0].ID)
	require.NotNil(t, pending[0].EntropyAnchor)
	assert.Equal(t, uint64(1234), *pending[0].EntropyAnchor)

	all, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, commitReveal.ID, all[0].ID, "most recent first")
}

func TestLotteryRepository_GetByIDForUpdateBlocksConcurrentLock(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	lottery := testutil.CreateTestLottery(testutil.TestAddress(1), 2, 10)
	require.NoError(t, NewLotteryRepository(testDB.DB).Create(ctx, lottery))

	tx1, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx1.Rollback(ctx)

	locked, err := NewLotteryRepository(tx1).GetByIDForUpdate(ctx, lottery.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)

	tx2, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = NewLotteryRepository(tx2).GetByIDForUpdate(waitCtx, lottery.ID)
	require.Error(t, err, "second lock must wait for the first transaction")

	require.NoError(t, tx1.Commit(ctx))
}
