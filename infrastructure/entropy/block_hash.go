// Package entropy provides external seed sources for lotteries that do not use
// commit-reveal. A lottery anchors to the chain head when it sells out and its
// seed is the hash of the block a fixed number of confirmations later.
package entropy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"lotto/domain/entities"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
)

// HeaderReader is the subset of an Ethereum JSON-RPC client the beacon needs
type HeaderReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// BlockHashBeacon implements interfaces.EntropyBeacon over block hashes
type BlockHashBeacon struct {
	reader        HeaderReader
	confirmations uint64
}

// NewBlockHashBeacon creates a beacon reading from reader. At least one
// confirmation is always required so the seed block is unknown at sellout.
func NewBlockHashBeacon(reader HeaderReader, confirmations uint64) *BlockHashBeacon {
	if confirmations == 0 {
		confirmations = 1
	}
	return &BlockHashBeacon{
		reader:        reader,
		confirmations: confirmations,
	}
}

// Dial connects to a JSON-RPC endpoint and returns a beacon plus a close function
func Dial(ctx context.Context, rpcURL string, confirmations uint64) (*BlockHashBeacon, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	head, err := client.BlockNumber(ctx)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to read chain head: %w", err)
	}

	log.WithFields(log.Fields{
		"head":          head,
		"confirmations": confirmations,
	}).Info("Connected block hash entropy beacon")

	return NewBlockHashBeacon(client, confirmations), client.Close, nil
}

// Anchor returns the current chain head
func (b *BlockHashBeacon) Anchor(ctx context.Context) (uint64, error) {
	head, err := b.reader.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entities.ErrEntropyUnavailable, err)
	}
	return head, nil
}

// TargetBlock is the block whose hash seeds a lottery anchored at anchor
func (b *BlockHashBeacon) TargetBlock(anchor uint64) uint64 {
	return anchor + b.confirmations
}

// Ready reports whether the target block for anchor has been produced
func (b *BlockHashBeacon) Ready(ctx context.Context, anchor uint64) (bool, error) {
	head, err := b.reader.BlockNumber(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read chain head: %w", err)
	}
	return head >= b.TargetBlock(anchor), nil
}

// Seed returns the hash of the target block for anchor
func (b *BlockHashBeacon) Seed(ctx context.Context, anchor uint64) (common.Hash, error) {
	target := b.TargetBlock(anchor)
	header, err := b.reader.HeaderByNumber(ctx, new(big.Int).SetUint64(target))
	if errors.Is(err, ethereum.NotFound) {
		return common.Hash{}, fmt.Errorf("%w: block %d not produced yet", entities.ErrWinnerNotResolved, target)
	}
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to read block %d: %w", target, err)
	}
	return header.Hash(), nil
}
