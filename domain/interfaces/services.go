package interfaces

import (
	"context"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding transaction settles
type TransactionalEventPublisher interface {
	EventPublisher
	// Flush publishes pending events; call after commit
	Flush(ctx context.Context) error
	// Discard drops pending events; call after rollback
	Discard()
}

// Escrow moves value between caller accounts and a lottery pot
type Escrow interface {
	// Deposit debits amount from an account into the lottery pot
	Deposit(ctx context.Context, lotteryID int64, from common.Address, amount uint64) error

	// Payout credits amount from the lottery pot to an account
	Payout(ctx context.Context, lotteryID int64, to common.Address, amount uint64) error
}

// EntropyBeacon is an external randomness source anchored at sellout time.
// The seed for an anchor is only available some time after the anchor is taken.
type EntropyBeacon interface {
	// Anchor returns the current position of the source (e.g. chain head)
	Anchor(ctx context.Context) (uint64, error)

	// Ready reports whether the seed for anchor can be read
	Ready(ctx context.Context, anchor uint64) (bool, error)

	// Seed returns the seed for anchor. Callers check Ready first.
	Seed(ctx context.Context, anchor uint64) (common.Hash, error)
}

// SeedSource yields the seed for a single lottery
type SeedSource interface {
	Ready(ctx context.Context) (bool, error)
	Seed(ctx context.Context) (common.Hash, error)
}

// CreateLotteryParams holds the inputs for opening a lottery
type CreateLotteryParams struct {
	Creator common.Address
	Config  entities.LotteryConfig
	// InitialCommitment, when set, buys ticket 0 for the creator at ticket price
	InitialCommitment *common.Hash
}

// LotteryDetail is a lottery together with its tickets
type LotteryDetail struct {
	Lottery *entities.Lottery
	Tickets []*entities.Ticket
}

// LotteryService defines the interface for lottery operations
type LotteryService interface {
	// CreateLottery opens a lottery for sale
	CreateLottery(ctx context.Context, params CreateLotteryParams) (*entities.Lottery, error)

	// GetLottery returns a lottery and its tickets
	GetLottery(ctx context.Context, lotteryID int64) (*LotteryDetail, error)

	// TicketsAvailable returns the number of unsold tickets
	TicketsAvailable(ctx context.Context, lotteryID int64) (uint64, error)

	// BuyTicket sells the next ticket to caller
	BuyTicket(ctx context.Context, lotteryID int64, caller common.Address, commitment common.Hash, payment uint64) (*entities.Ticket, error)

	// RevealNumber opens the caller's commitments matching number
	RevealNumber(ctx context.Context, lotteryID int64, caller common.Address, number *uint256.Int) ([]*entities.Ticket, error)

	// Winner returns the winner, resolving it if the seed is available
	Winner(ctx context.Context, lotteryID int64) (common.Address, error)

	// ClaimReward pays the pot to the winner exactly once
	ClaimReward(ctx context.Context, lotteryID int64, caller common.Address) (uint64, error)
}
