package repository

import (
	"context"
	"errors"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

const lotteryColumns = `
	id, creator, tickets_total, ticket_price, tickets_sold, pot, state, entropy_mode,
	entropy_anchor, seed, winning_index, winner, created_at, sold_out_at, resolved_at, claimed_at`

// LotteryRepository implements lottery data access
type LotteryRepository struct {
	q Queryable
}

// NewLotteryRepository creates a lottery repository over a pool or transaction
func NewLotteryRepository(q Queryable) interfaces.LotteryRepository {
	return &LotteryRepository{q: q}
}

// Create inserts a new lottery
func (r *LotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	query := `
		INSERT INTO lotteries (creator, tickets_total, ticket_price, tickets_sold, pot, state, entropy_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		lottery.Creator.Bytes(),
		int64(lottery.TicketsTotal),
		int64(lottery.TicketPrice),
		int64(lottery.TicketsSold),
		int64(lottery.Pot),
		string(lottery.State),
		string(lottery.EntropyMode),
	).Scan(&lottery.ID, &lottery.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lottery: %w", err)
	}

	return nil
}

// GetByID retrieves a lottery by its ID
func (r *LotteryRepository) GetByID(ctx context.Context, id int64) (*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries WHERE id = $1`

	lottery, err := scanLottery(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery by ID %d: %w", id, err)
	}

	return lottery, nil
}

// GetByIDForUpdate retrieves a lottery by ID with row lock for update
func (r *LotteryRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries WHERE id = $1 FOR UPDATE`

	lottery, err := scanLottery(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery for update by ID %d: %w", id, err)
	}

	return lottery, nil
}

// Update persists the mutable fields of a lottery
func (r *LotteryRepository) Update(ctx context.Context, lottery *entities.Lottery) error {
	query := `
		UPDATE lotteries
		SET tickets_sold = $2,
		    pot = $3,
		    state = $4,
		    entropy_anchor = $5,
		    seed = $6,
		    winning_index = $7,
		    winner = $8,
		    sold_out_at = $9,
		    resolved_at = $10,
		    claimed_at = $11
		WHERE id = $1
	`

	var seed, winner []byte
	if lottery.Seed != nil {
		seed = lottery.Seed.Bytes()
	}
	if lottery.Winner != nil {
		winner = lottery.Winner.Bytes()
	}

	result, err := r.q.Exec(ctx, query,
		lottery.ID,
		int64(lottery.TicketsSold),
		int64(lottery.Pot),
		string(lottery.State),
		nullableInt64(lottery.EntropyAnchor),
		seed,
		nullableInt64(lottery.WinningIndex),
		winner,
		lottery.SoldOutAt,
		lottery.ResolvedAt,
		lottery.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update lottery %d: %w", lottery.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("lottery with ID %d not found", lottery.ID)
	}

	return nil
}

// ListAwaitingEntropy returns sold out block hash lotteries without a winner
func (r *LotteryRepository) ListAwaitingEntropy(ctx context.Context) ([]*entities.Lottery, error) {
	query := `
		SELECT ` + lotteryColumns + `
		FROM lotteries
		WHERE state = 'sold_out' AND entropy_mode = 'block_hash'
		ORDER BY id ASC
	`
	return r.list(ctx, query)
}

// List returns the most recent lotteries
func (r *LotteryRepository) List(ctx context.Context, limit int) ([]*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries ORDER BY id DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *LotteryRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Lottery, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lotteries: %w", err)
	}
	defer rows.Close()

	var lotteries []*entities.Lottery
	for rows.Next() {
		lottery, err := scanLottery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lottery: %w", err)
		}
		lotteries = append(lotteries, lottery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lotteries: %w", err)
	}

	return lotteries, nil
}

func scanLottery(row rowScanner) (*entities.Lottery, error) {
	var (
		lottery                                entities.Lottery
		creator, seed, winner                  []byte
		ticketsTotal, ticketPrice, ticketsSold int64
		pot                                    int64
		state, mode                            string
		anchor, winningIndex                   *int64
	)

	err := row.Scan(
		&lottery.ID,
		&creator,
		&ticketsTotal,
		&ticketPrice,
		&ticketsSold,
		&pot,
		&state,
		&mode,
		&anchor,
		&seed,
		&winningIndex,
		&winner,
		&lottery.CreatedAt,
		&lottery.SoldOutAt,
		&lottery.ResolvedAt,
		&lottery.ClaimedAt,
	)
	if err != nil {
		return nil, err
	}

	lottery.Creator = addressFromBytes(creator)
	lottery.TicketsTotal = uint64(ticketsTotal)
	lottery.TicketPrice = uint64(ticketPrice)
	lottery.TicketsSold = uint64(ticketsSold)
	lottery.Pot = uint64(pot)
	lottery.State = entities.LotteryState(state)
	lottery.EntropyMode = entities.EntropyMode(mode)
	lottery.EntropyAnchor = optionalUint64(anchor)
	lottery.WinningIndex = optionalUint64(winningIndex)
	if seed != nil {
		h := common.BytesToHash(seed)
		lottery.Seed = &h
	}
	if winner != nil {
		a := addressFromBytes(winner)
		lottery.Winner = &a
	}

	return &lottery, nil
}
