package interfaces

import (
	"context"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
)

// LotteryRepository defines the interface for lottery data access
type LotteryRepository interface {
	// Create inserts a new lottery and fills in its ID and CreatedAt
	Create(ctx context.Context, lottery *entities.Lottery) error

	// GetByID retrieves a lottery by its ID, returning nil if it does not exist
	GetByID(ctx context.Context, id int64) (*entities.Lottery, error)

	// GetByIDForUpdate retrieves a lottery and holds its row lock until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lottery, error)

	// Update persists the mutable fields of a lottery
	Update(ctx context.Context, lottery *entities.Lottery) error

	// ListAwaitingEntropy returns sold out block hash lotteries that have no winner yet
	ListAwaitingEntropy(ctx context.Context) ([]*entities.Lottery, error)

	// List returns the most recent lotteries
	List(ctx context.Context, limit int) ([]*entities.Lottery, error)
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// Create inserts a ticket. The (lottery, index) pair is unique.
	Create(ctx context.Context, ticket *entities.Ticket) error

	// MarkRevealed stores the revealed value of a ticket
	MarkRevealed(ctx context.Context, ticket *entities.Ticket) error

	// ListByLottery returns all tickets of a lottery ordered by index
	ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.Ticket, error)
}

// AccountRepository defines operator access to ledger balances
type AccountRepository interface {
	// Fund credits an account, creating it if needed
	Fund(ctx context.Context, address common.Address, amount uint64) (*entities.Account, error)

	// GetBalance returns the balance of an account, zero if it does not exist
	GetBalance(ctx context.Context, address common.Address) (uint64, error)

	// ListEntries returns the most recent ledger entries of an account
	ListEntries(ctx context.Context, address common.Address, limit int) ([]*entities.LedgerEntry, error)
}

// LedgerRepository is the value ledger: escrow movements plus account access
type LedgerRepository interface {
	Escrow
	AccountRepository
}

// EventLogRepository persists emitted events alongside the state change that caused them
type EventLogRepository interface {
	// Append records an event in the current transaction
	Append(ctx context.Context, event events.Event) error

	// ListByLottery returns the events of a lottery in emission order
	ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.EventRecord, error)
}
