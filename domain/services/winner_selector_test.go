package services

import (
	"context"
	"errors"
	"testing"

	"lotto/domain/entities"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLotteryService_Winner(t *testing.T) {
	t.Parallel()

	t.Run("selling lottery has no winner", func(t *testing.T) {
		t.Parallel()

		m := setupLotteryServiceMocks()
		lottery := createTestLottery(t, 1, 5, 100, entities.EntropyCommitReveal)
		m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(lottery, nil)

		_, err := m.service(false).Winner(context.Background(), 1)
		assert.ErrorIs(t, err, entities.ErrWinnerNotResolved)
		m.ticketRepo.AssertNotCalled(t, "ListByLottery", mock.Anything, mock.Anything)
	})

	// Scenario C
	t.Run("sold out without reveals has no winner", func(t *testing.T) {
		t.Parallel()

		m := setupLotteryServiceMocks()
		lottery, tickets := soldOutLottery(t, 1, 2, entities.EntropyCommitReveal)
		m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(lottery, nil)
		m.ticketRepo.On("ListByLottery", mock.Anything, int64(1)).Return(tickets, nil)

		_, err := m.service(false).Winner(context.Background(), 1)
		assert.ErrorIs(t, err, entities.ErrWinnerNotResolved)
		assert.Equal(t, entities.KindState, entities.KindOf(err))
		m.lotteryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("resolved lottery returns stored winner", func(t *testing.T) {
		t.Parallel()

		m := setupLotteryServiceMocks()
		lottery, tickets := soldOutLottery(t, 1, 2, entities.EntropyCommitReveal)
		require.NoError(t, lottery.Resolve(common.Hash{}, tickets, lottery.CreatedAt))
		m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(lottery, nil)

		winner, err := m.service(false).Winner(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, testCreator, winner)
		m.ticketRepo.AssertNotCalled(t, "ListByLottery", mock.Anything, mock.Anything)
	})

	t.Run("block hash not ready", func(t *testing.T) {
		t.Parallel()

		m := setupLotteryServiceMocks()
		lottery, tickets := soldOutLottery(t, 1, 2, entities.EntropyBlockHash)
		lottery.SetEntropyAnchor(100)
		m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(lottery, nil)
		m.ticketRepo.On("ListByLottery", mock.Anything, int64(1)).Return(tickets, nil)
		m.beacon.On("Ready", mock.Anything, uint64(100)).Return(false, nil)

		_, err := m.service(true).Winner(context.Background(), 1)
		assert.ErrorIs(t, err, entities.ErrWinnerNotResolved)
		m.beacon.AssertNotCalled(t, "Seed", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("block hash ready resolves from beacon seed", func(t *testing.T) {
		t.Parallel()

		m := setupLotteryServiceMocks()
		lottery, tickets := soldOutLottery(t, 1, 4, entities.EntropyBlockHash)
		lottery.SetEntropyAnchor(100)
		seed := common.BigToHash(uint256.NewInt(7).ToBig()) // 7 mod 4 = 3

		m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(lottery, nil)
		m.ticketRepo.On("ListByLottery", mock.Anything, int64(1)).Return(tickets, nil)
		m.beacon.On("Ready", mock.Anything, uint64(100)).Return(true, nil)
		m.beacon.On("Seed", mock.Anything, uint64(100)).Return(seed, nil)
		m.lotteryRepo.On("Update", mock.Anything, lottery).Return(nil)
		m.expectEvents()

		winner, err := m.service(true).Winner(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, testBuyer, winner)
		assert.Equal(t, uint64(3), *lottery.WinningIndex)
		assert.Equal(t, entities.StateResolved, lottery.State)
		m.assertExpectations(t)
	})

	t.Run("beacon error surfaces", func(t *testing.T) {
		t.Parallel()

		m := setupLotteryServiceMocks()
		lottery, tickets := soldOutLottery(t, 1, 2, entities.EntropyBlockHash)
		lottery.SetEntropyAnchor(100)
		rpcErr := errors.New("rpc timeout")
		m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(lottery, nil)
		m.ticketRepo.On("ListByLottery", mock.Anything, int64(1)).Return(tickets, nil)
		m.beacon.On("Ready", mock.Anything, uint64(100)).Return(false, rpcErr)

		_, err := m.service(true).Winner(context.Background(), 1)
		assert.ErrorIs(t, err, rpcErr)
	})
}

func TestBeaconSeedSource_WithoutAnchor(t *testing.T) {
	t.Parallel()

	m := setupLotteryServiceMocks()
	source := &beaconSeedSource{beacon: m.beacon}

	ready, err := source.Ready(context.Background())
	require.NoError(t, err)
	assert.False(t, ready)

	_, err = source.Seed(context.Background())
	assert.ErrorIs(t, err, entities.ErrEntropyUnavailable)
	m.beacon.AssertNotCalled(t, "Ready", mock.Anything, mock.Anything)
}
