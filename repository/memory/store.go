package memory

import (
	"time"

	"lotto/domain/entities"

	"github.com/ethereum/go-ethereum/common"
)

// Store is an in-process backend for the lottery repositories. Units of work
// take the single writer slot, operate on a private copy of the state and
// swap it in on commit, so a rollback leaves no trace.
type Store struct {
	writer chan struct{}
	state  *state
	now    func() time.Time
}

type state struct {
	nextLotteryID int64
	nextTicketID  int64
	nextEntryID   int64
	nextEventID   int64
	lotteries     map[int64]*entities.Lottery
	tickets       map[int64][]*entities.Ticket
	accounts      map[common.Address]*entities.Account
	entries       []*entities.LedgerEntry
	events        []*entities.EventRecord
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{
		writer: make(chan struct{}, 1),
		state: &state{
			lotteries: make(map[int64]*entities.Lottery),
			tickets:   make(map[int64][]*entities.Ticket),
			accounts:  make(map[common.Address]*entities.Account),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	return s
}

func (s *state) clone() *state {
	c := &state{
		nextLotteryID: s.nextLotteryID,
		nextTicketID:  s.nextTicketID,
		nextEntryID:   s.nextEntryID,
		nextEventID:   s.nextEventID,
		lotteries:     make(map[int64]*entities.Lottery, len(s.lotteries)),
		tickets:       make(map[int64][]*entities.Ticket, len(s.tickets)),
		accounts:      make(map[common.Address]*entities.Account, len(s.accounts)),
		// Ledger entries and events are append-only, so sharing the records is safe
		entries: append([]*entities.LedgerEntry(nil), s.entries...),
		events:  append([]*entities.EventRecord(nil), s.events...),
	}
	for id, l := range s.lotteries {
		c.lotteries[id] = l.Clone()
	}
	for id, ts := range s.tickets {
		copied := make([]*entities.Ticket, len(ts))
		for i, t := range ts {
			copied[i] = t.Clone()
		}
		c.tickets[id] = copied
	}
	for addr, a := range s.accounts {
		account := *a
		c.accounts[addr] = &account
	}
	return c
}
