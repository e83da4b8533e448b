package entities

import (
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Ticket is one sold slot of a lottery
type Ticket struct {
	ID            int64          `db:"id"`
	LotteryID     int64          `db:"lottery_id"`
	Index         uint64         `db:"ticket_index"` // 0-based, equals tickets sold at purchase time
	Owner         common.Address `db:"owner"`
	Commitment    common.Hash    `db:"commitment"`     // zero in block hash mode
	RevealedValue *uint256.Int   `db:"revealed_value"` // NULL until revealed
	PurchasedAt   time.Time      `db:"purchased_at"`
	RevealedAt    *time.Time     `db:"revealed_at"`
}

// IsRevealed returns true once the owner has revealed the secret number
func (t *Ticket) IsRevealed() bool {
	return t.RevealedValue != nil
}

// Matches reports whether number opens this ticket's commitment for owner
func (t *Ticket) Matches(owner common.Address, number *uint256.Int) bool {
	return t.Owner == owner && t.Commitment == ComputeCommitment(owner, number)
}

// Reveal records the revealed number
func (t *Ticket) Reveal(number *uint256.Int, at time.Time) {
	t.RevealedValue = new(uint256.Int).Set(number)
	t.RevealedAt = &at
}

// Clone returns a deep copy of the ticket
func (t *Ticket) Clone() *Ticket {
	c := *t
	if t.RevealedValue != nil {
		c.RevealedValue = new(uint256.Int).Set(t.RevealedValue)
	}
	if t.RevealedAt != nil {
		at := *t.RevealedAt
		c.RevealedAt = &at
	}
	return &c
}

// SortTickets orders tickets by index in place
func SortTickets(tickets []*Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].Index < tickets[j].Index
	})
}

// AllRevealed reports whether every ticket has been revealed.
// An empty set is never considered revealed.
func AllRevealed(tickets []*Ticket) bool {
	if len(tickets) == 0 {
		return false
	}
	for _, t := range tickets {
		if !t.IsRevealed() {
			return false
		}
	}
	return true
}

// RevealedValues returns the revealed numbers in ticket index order
func RevealedValues(tickets []*Ticket) []*uint256.Int {
	ordered := make([]*Ticket, len(tickets))
	copy(ordered, tickets)
	SortTickets(ordered)

	values := make([]*uint256.Int, 0, len(ordered))
	for _, t := range ordered {
		if t.RevealedValue != nil {
			values = append(values, t.RevealedValue)
		}
	}
	return values
}

// TicketsOwnedBy filters tickets by owner
func TicketsOwnedBy(tickets []*Ticket, owner common.Address) []*Ticket {
	var owned []*Ticket
	for _, t := range tickets {
		if t.Owner == owner {
			owned = append(owned, t)
		}
	}
	return owned
}
