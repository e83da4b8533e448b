package entities

import (
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// LotteryState is the lifecycle position of a lottery
type LotteryState string

const (
	StateSelling  LotteryState = "selling"
	StateSoldOut  LotteryState = "sold_out"
	StateResolved LotteryState = "resolved"
	StateClaimed  LotteryState = "claimed"
)

// EntropyMode selects where the winning seed comes from
type EntropyMode string

const (
	EntropyCommitReveal EntropyMode = "commit_reveal"
	EntropyBlockHash    EntropyMode = "block_hash"
)

// IsValid reports whether the mode is one of the known modes
func (m EntropyMode) IsValid() bool {
	return m == EntropyCommitReveal || m == EntropyBlockHash
}

// LotteryConfig is fixed at creation
type LotteryConfig struct {
	TicketsTotal uint64
	TicketPrice  uint64
	EntropyMode  EntropyMode
}

// Validate checks the configuration bounds. The pot must fit the BIGINT column.
func (c LotteryConfig) Validate() error {
	if c.TicketsTotal == 0 {
		return fmt.Errorf("%w: tickets total must be positive", ErrInvalidConfig)
	}
	if c.TicketPrice == 0 {
		return fmt.Errorf("%w: ticket price must be positive", ErrInvalidConfig)
	}
	if c.TicketPrice > math.MaxInt64/c.TicketsTotal {
		return fmt.Errorf("%w: pot of %d tickets at %d overflows", ErrInvalidConfig, c.TicketsTotal, c.TicketPrice)
	}
	if !c.EntropyMode.IsValid() {
		return fmt.Errorf("%w: unknown entropy mode %q", ErrInvalidConfig, c.EntropyMode)
	}
	return nil
}

// Lottery is the aggregate for one lottery instance
type Lottery struct {
	ID            int64           `db:"id"`
	Creator       common.Address  `db:"creator"`
	TicketsTotal  uint64          `db:"tickets_total"`
	TicketPrice   uint64          `db:"ticket_price"`
	TicketsSold   uint64          `db:"tickets_sold"`
	Pot           uint64          `db:"pot"`
	State         LotteryState    `db:"state"`
	EntropyMode   EntropyMode     `db:"entropy_mode"`
	EntropyAnchor *uint64         `db:"entropy_anchor"` // block number seen at sellout, block hash mode only
	Seed          *common.Hash    `db:"seed"`
	WinningIndex  *uint64         `db:"winning_index"`
	Winner        *common.Address `db:"winner"`
	CreatedAt     time.Time       `db:"created_at"`
	SoldOutAt     *time.Time      `db:"sold_out_at"`
	ResolvedAt    *time.Time      `db:"resolved_at"`
	ClaimedAt     *time.Time      `db:"claimed_at"`
}

// NewLottery builds a lottery in the selling state
func NewLottery(creator common.Address, cfg LotteryConfig) (*Lottery, error) {
	if cfg.EntropyMode == "" {
		cfg.EntropyMode = EntropyCommitReveal
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Lottery{
		Creator:      creator,
		TicketsTotal: cfg.TicketsTotal,
		TicketPrice:  cfg.TicketPrice,
		State:        StateSelling,
		EntropyMode:  cfg.EntropyMode,
	}, nil
}

// Config returns the immutable configuration
func (l *Lottery) Config() LotteryConfig {
	return LotteryConfig{
		TicketsTotal: l.TicketsTotal,
		TicketPrice:  l.TicketPrice,
		EntropyMode:  l.EntropyMode,
	}
}

// TicketsAvailable returns the number of unsold tickets
func (l *Lottery) TicketsAvailable() uint64 {
	return l.TicketsTotal - l.TicketsSold
}

// IsSoldOut returns true once every ticket has been sold
func (l *Lottery) IsSoldOut() bool {
	return l.TicketsSold == l.TicketsTotal
}

// IsResolved returns true once a winner is fixed
func (l *Lottery) IsResolved() bool {
	return l.Winner != nil
}

// IsClaimed returns true once the pot has been paid out
func (l *Lottery) IsClaimed() bool {
	return l.State == StateClaimed
}

// Purchase sells the next ticket to owner. Payment is checked before
// availability so a short payment always reports a payment error.
func (l *Lottery) Purchase(owner common.Address, commitment common.Hash, payment uint64, at time.Time) (*Ticket, error) {
	if payment < l.TicketPrice {
		return nil, fmt.Errorf("%w: paid %d, price is %d", ErrInsufficientPayment, payment, l.TicketPrice)
	}
	if l.State != StateSelling || l.TicketsAvailable() == 0 {
		return nil, ErrNoTicketsAvailable
	}
	if l.EntropyMode == EntropyCommitReveal && commitment == (common.Hash{}) {
		return nil, ErrMissingCommitment
	}

	ticket := &Ticket{
		LotteryID:   l.ID,
		Index:       l.TicketsSold,
		Owner:       owner,
		Commitment:  commitment,
		PurchasedAt: at,
	}
	l.TicketsSold++
	l.Pot += l.TicketPrice

	if l.IsSoldOut() {
		l.State = StateSoldOut
		l.SoldOutAt = &at
	}
	return ticket, nil
}

// SetEntropyAnchor records the block observed at sellout
func (l *Lottery) SetEntropyAnchor(block uint64) {
	l.EntropyAnchor = &block
}

// Reveal opens every unrevealed ticket of caller whose commitment matches number
func (l *Lottery) Reveal(tickets []*Ticket, caller common.Address, number *uint256.Int, at time.Time) ([]*Ticket, error) {
	if l.EntropyMode != EntropyCommitReveal {
		return nil, ErrRevealNotRequired
	}
	if l.State == StateSelling {
		return nil, ErrNotSoldOut
	}

	owned := TicketsOwnedBy(tickets, caller)
	if len(owned) == 0 {
		return nil, ErrNotTicketOwner
	}

	commitment := ComputeCommitment(caller, number)
	var matched []*Ticket
	pending := 0
	matchedRevealed := false
	for _, t := range owned {
		if t.IsRevealed() {
			if t.Commitment == commitment {
				matchedRevealed = true
			}
			continue
		}
		pending++
		if t.Commitment == commitment {
			matched = append(matched, t)
		}
	}

	if len(matched) == 0 {
		if pending == 0 || matchedRevealed {
			return nil, ErrAlreadyRevealed
		}
		return nil, ErrRevealMismatch
	}

	for _, t := range matched {
		t.Reveal(number, at)
	}
	return matched, nil
}

// Resolve fixes the winner from seed. It is a no-op once resolved.
func (l *Lottery) Resolve(seed common.Hash, tickets []*Ticket, at time.Time) error {
	switch l.State {
	case StateResolved, StateClaimed:
		return nil
	case StateSelling:
		return ErrWinnerNotResolved
	}

	index := SelectWinningIndex(seed, l.TicketsTotal)
	owner, ok := OwnerAt(tickets, index)
	if !ok {
		return fmt.Errorf("winning ticket %d missing for lottery %d", index, l.ID)
	}

	l.Seed = &seed
	l.WinningIndex = &index
	l.Winner = &owner
	l.State = StateResolved
	l.ResolvedAt = &at
	return nil
}

// Claim marks the pot as paid to caller and returns the amount to release.
// Checks run in order: resolved, caller is winner, not yet claimed.
func (l *Lottery) Claim(caller common.Address, at time.Time) (uint64, error) {
	if !l.IsResolved() {
		return 0, ErrWinnerNotResolved
	}
	if *l.Winner != caller {
		return 0, ErrNotWinner
	}
	if l.IsClaimed() {
		return 0, ErrRewardAlreadyClaimed
	}

	amount := l.Pot
	l.Pot = 0
	l.State = StateClaimed
	l.ClaimedAt = &at
	return amount, nil
}

// Clone returns a deep copy of the lottery
func (l *Lottery) Clone() *Lottery {
	c := *l
	if l.EntropyAnchor != nil {
		v := *l.EntropyAnchor
		c.EntropyAnchor = &v
	}
	if l.Seed != nil {
		v := *l.Seed
		c.Seed = &v
	}
	if l.WinningIndex != nil {
		v := *l.WinningIndex
		c.WinningIndex = &v
	}
	if l.Winner != nil {
		v := *l.Winner
		c.Winner = &v
	}
	c.SoldOutAt = cloneTime(l.SoldOutAt)
	c.ResolvedAt = cloneTime(l.ResolvedAt)
	c.ClaimedAt = cloneTime(l.ClaimedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
