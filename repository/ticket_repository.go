package repository

import (
	"context"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5/pgtype"
)

// TicketRepository implements ticket data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a ticket repository over a pool or transaction
func NewTicketRepository(q Queryable) interfaces.TicketRepository {
	return &TicketRepository{q: q}
}

// Create inserts a ticket; a duplicate (lottery_id, ticket_index) violates the unique constraint
func (r *TicketRepository) Create(ctx context.Context, ticket *entities.Ticket) error {
	query := `
		INSERT INTO tickets (lottery_id, ticket_index, owner, commitment, purchased_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		ticket.LotteryID,
		int64(ticket.Index),
		ticket.Owner.Bytes(),
		ticket.Commitment.Bytes(),
		ticket.PurchasedAt,
	).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("failed to create ticket %d for lottery %d: %w", ticket.Index, ticket.LotteryID, err)
	}

	return nil
}

// MarkRevealed stores the revealed value of a ticket that has not been revealed yet
func (r *TicketRepository) MarkRevealed(ctx context.Context, ticket *entities.Ticket) error {
	if ticket.RevealedValue == nil {
		return fmt.Errorf("ticket %d has no revealed value", ticket.ID)
	}

	query := `
		UPDATE tickets
		SET revealed_value = $2,
		    revealed_at = $3
		WHERE id = $1
		  AND revealed_value IS NULL
	`

	value := pgtype.Numeric{Int: ticket.RevealedValue.ToBig(), Exp: 0, Valid: true}
	result, err := r.q.Exec(ctx, query, ticket.ID, value, ticket.RevealedAt)
	if err != nil {
		return fmt.Errorf("failed to reveal ticket %d: %w", ticket.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d not found or already revealed", ticket.ID)
	}

	return nil
}

// ListByLottery returns all tickets of a lottery ordered by index
func (r *TicketRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.Ticket, error) {
	query := `
		SELECT id, lottery_id, ticket_index, owner, commitment, revealed_value::text, purchased_at, revealed_at
		FROM tickets
		WHERE lottery_id = $1
		ORDER BY ticket_index ASC
	`

	rows, err := r.q.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets for lottery %d: %w", lotteryID, err)
	}
	defer rows.Close()

	var tickets []*entities.Ticket
	for rows.Next() {
		var (
			ticket            entities.Ticket
			index             int64
			owner, commitment []byte
			revealed          *string
		)
		err := rows.Scan(
			&ticket.ID,
			&ticket.LotteryID,
			&index,
			&owner,
			&commitment,
			&revealed,
			&ticket.PurchasedAt,
			&ticket.RevealedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}

		ticket.Index = uint64(index)
		ticket.Owner = addressFromBytes(owner)
		ticket.Commitment = common.BytesToHash(commitment)
		if revealed != nil {
			value, err := uint256.FromDecimal(*revealed)
			if err != nil {
				return nil, fmt.Errorf("failed to parse revealed value of ticket %d: %w", ticket.ID, err)
			}
			ticket.RevealedValue = value
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}
