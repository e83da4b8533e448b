package entropy

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"lotto/domain/entities"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	head    uint64
	headErr error
	headers map[uint64]*types.Header
}

func newFakeChain(head uint64) *fakeChain {
	c := &fakeChain{head: head, headers: make(map[uint64]*types.Header)}
	for n := uint64(0); n <= head; n++ {
		c.headers[n] = &types.Header{Number: new(big.Int).SetUint64(n), Extra: []byte{byte(n)}}
	}
	return c
}

func (c *fakeChain) BlockNumber(ctx context.Context) (uint64, error) {
	return c.head, c.headErr
}

func (c *fakeChain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	header, ok := c.headers[number.Uint64()]
	if !ok {
		return nil, ethereum.NotFound
	}
	return header, nil
}

func TestBlockHashBeacon_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	chain := newFakeChain(100)
	beacon := NewBlockHashBeacon(chain, 3)

	anchor, err := beacon.Anchor(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), anchor)
	assert.Equal(t, uint64(103), beacon.TargetBlock(anchor))

	ready, err := beacon.Ready(ctx, anchor)
	require.NoError(t, err)
	assert.False(t, ready)

	_, err = beacon.Seed(ctx, anchor)
	assert.ErrorIs(t, err, entities.ErrWinnerNotResolved)

	chain = newFakeChain(103)
	beacon.reader = chain

	ready, err = beacon.Ready(ctx, anchor)
	require.NoError(t, err)
	assert.True(t, ready)

	seed, err := beacon.Seed(ctx, anchor)
	require.NoError(t, err)
	assert.Equal(t, chain.headers[103].Hash(), seed)

	again, err := beacon.Seed(ctx, anchor)
	require.NoError(t, err)
	assert.Equal(t, seed, again, "seed is stable once the block exists")
}

func TestBlockHashBeacon_ZeroConfirmationsUsesNextBlock(t *testing.T) {
	t.Parallel()

	beacon := NewBlockHashBeacon(newFakeChain(10), 0)
	assert.Equal(t, uint64(11), beacon.TargetBlock(10))
}

func TestBlockHashBeacon_AnchorErrorIsEntropyUnavailable(t *testing.T) {
	t.Parallel()

	chain := newFakeChain(1)
	chain.headErr = errors.New("connection refused")
	beacon := NewBlockHashBeacon(chain, 1)

	_, err := beacon.Anchor(context.Background())
	assert.ErrorIs(t, err, entities.ErrEntropyUnavailable)

	_, err = beacon.Ready(context.Background(), 1)
	assert.Error(t, err)
}
