package application

import (
	"context"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EventSubscriber registers in-process handlers for committed events
type EventSubscriber interface {
	RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error)
}

// MetricsRecorder receives lottery lifecycle measurements
type MetricsRecorder interface {
	RecordLotteryCreated(entropyMode string)
	RecordTicketPurchased()
	RecordNumberRevealed(tickets int)
	RecordLotteryResolved()
	RecordRewardClaimed(amount uint64)
	RecordResolverRun(outcome string)
}

// LotteryHandler is the synchronous entry point for every lottery operation.
// Each call runs in its own unit of work.
type LotteryHandler interface {
	CreateLottery(ctx context.Context, params interfaces.CreateLotteryParams) (*entities.Lottery, error)
	GetLottery(ctx context.Context, lotteryID int64) (*interfaces.LotteryDetail, error)
	ListLotteries(ctx context.Context, limit int) ([]*entities.Lottery, error)

	TicketsTotal(ctx context.Context, lotteryID int64) (uint64, error)
	TicketPrice(ctx context.Context, lotteryID int64) (uint64, error)
	TicketsAvailable(ctx context.Context, lotteryID int64) (uint64, error)

	BuyTicket(ctx context.Context, lotteryID int64, caller common.Address, commitment common.Hash, payment uint64) (*entities.Ticket, error)
	RevealNumber(ctx context.Context, lotteryID int64, caller common.Address, number *uint256.Int) ([]*entities.Ticket, error)
	Winner(ctx context.Context, lotteryID int64) (common.Address, error)
	ClaimReward(ctx context.Context, lotteryID int64, caller common.Address) (uint64, error)

	Events(ctx context.Context, lotteryID int64) ([]*entities.EventRecord, error)

	FundAccount(ctx context.Context, address common.Address, amount uint64) (*entities.Account, error)
	Balance(ctx context.Context, address common.Address) (uint64, error)
	LedgerEntries(ctx context.Context, address common.Address, limit int) ([]*entities.LedgerEntry, error)
}
