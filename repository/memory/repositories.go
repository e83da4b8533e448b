package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
)

type lotteryRepository struct {
	tx *txState
}

func (r *lotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	st := r.tx.state
	st.nextLotteryID++
	lottery.ID = st.nextLotteryID
	lottery.CreatedAt = r.tx.now()
	st.lotteries[lottery.ID] = lottery.Clone()
	return nil
}

func (r *lotteryRepository) GetByID(ctx context.Context, id int64) (*entities.Lottery, error) {
	lottery, ok := r.tx.state.lotteries[id]
	if !ok {
		return nil, nil
	}
	return lottery.Clone(), nil
}

// GetByIDForUpdate needs no row lock: the unit of work already holds the writer slot
func (r *lotteryRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lottery, error) {
	return r.GetByID(ctx, id)
}

func (r *lotteryRepository) Update(ctx context.Context, lottery *entities.Lottery) error {
	if _, ok := r.tx.state.lotteries[lottery.ID]; !ok {
		return fmt.Errorf("lottery with ID %d not found", lottery.ID)
	}
	r.tx.state.lotteries[lottery.ID] = lottery.Clone()
	return nil
}

func (r *lotteryRepository) ListAwaitingEntropy(ctx context.Context) ([]*entities.Lottery, error) {
	var result []*entities.Lottery
	for _, l := range r.tx.state.lotteries {
		if l.State == entities.StateSoldOut && l.EntropyMode == entities.EntropyBlockHash {
			result = append(result, l.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *lotteryRepository) List(ctx context.Context, limit int) ([]*entities.Lottery, error) {
	var result []*entities.Lottery
	for _, l := range r.tx.state.lotteries {
		result = append(result, l.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type ticketRepository struct {
	tx *txState
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entities.Ticket) error {
	st := r.tx.state
	if _, ok := st.lotteries[ticket.LotteryID]; !ok {
		return fmt.Errorf("failed to create ticket: lottery %d does not exist", ticket.LotteryID)
	}
	for _, existing := range st.tickets[ticket.LotteryID] {
		if existing.Index == ticket.Index {
			return fmt.Errorf("failed to create ticket %d for lottery %d: duplicate index", ticket.Index, ticket.LotteryID)
		}
	}
	st.nextTicketID++
	ticket.ID = st.nextTicketID
	st.tickets[ticket.LotteryID] = append(st.tickets[ticket.LotteryID], ticket.Clone())
	entities.SortTickets(st.tickets[ticket.LotteryID])
	return nil
}

func (r *ticketRepository) MarkRevealed(ctx context.Context, ticket *entities.Ticket) error {
	if ticket.RevealedValue == nil {
		return fmt.Errorf("ticket %d has no revealed value", ticket.ID)
	}
	for i, existing := range r.tx.state.tickets[ticket.LotteryID] {
		if existing.ID != ticket.ID {
			continue
		}
		if existing.IsRevealed() {
			return fmt.Errorf("ticket %d not found or already revealed", ticket.ID)
		}
		r.tx.state.tickets[ticket.LotteryID][i] = ticket.Clone()
		return nil
	}
	return fmt.Errorf("ticket %d not found or already revealed", ticket.ID)
}

func (r *ticketRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.Ticket, error) {
	stored := r.tx.state.tickets[lotteryID]
	tickets := make([]*entities.Ticket, len(stored))
	for i, t := range stored {
		tickets[i] = t.Clone()
	}
	return tickets, nil
}

type ledgerRepository struct {
	tx *txState
}

func (r *ledgerRepository) Deposit(ctx context.Context, lotteryID int64, from common.Address, amount uint64) error {
	if amount == 0 || amount > math.MaxInt64 {
		return entities.ErrInvalidAmount
	}
	account, ok := r.tx.state.accounts[from]
	if !ok || account.Balance < amount {
		return fmt.Errorf("%w: %s cannot cover %d", entities.ErrInsufficientFunds, from.Hex(), amount)
	}
	account.Balance -= amount
	account.UpdatedAt = r.tx.now()
	r.recordEntry(from, &lotteryID, entities.LedgerEntryTicketPurchase, -int64(amount), account.Balance)
	return nil
}

func (r *ledgerRepository) Payout(ctx context.Context, lotteryID int64, to common.Address, amount uint64) error {
	account, err := r.credit(to, amount)
	if err != nil {
		return err
	}
	r.recordEntry(to, &lotteryID, entities.LedgerEntryRewardPayout, int64(amount), account.Balance)
	return nil
}

func (r *ledgerRepository) Fund(ctx context.Context, address common.Address, amount uint64) (*entities.Account, error) {
	if amount == 0 {
		return nil, entities.ErrInvalidAmount
	}
	account, err := r.credit(address, amount)
	if err != nil {
		return nil, err
	}
	r.recordEntry(address, nil, entities.LedgerEntryFund, int64(amount), account.Balance)
	copied := *account
	return &copied, nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, address common.Address) (uint64, error) {
	if account, ok := r.tx.state.accounts[address]; ok {
		return account.Balance, nil
	}
	return 0, nil
}

func (r *ledgerRepository) ListEntries(ctx context.Context, address common.Address, limit int) ([]*entities.LedgerEntry, error) {
	var result []*entities.LedgerEntry
	entries := r.tx.state.entries
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Address != address {
			continue
		}
		copied := *entries[i]
		result = append(result, &copied)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// credit adds amount to an account. Balances are capped at MaxInt64 like the BIGINT column.
func (r *ledgerRepository) credit(address common.Address, amount uint64) (*entities.Account, error) {
	account, ok := r.tx.state.accounts[address]
	var balance uint64
	if ok {
		balance = account.Balance
	}
	if amount > math.MaxInt64 || balance > math.MaxInt64-amount {
		return nil, fmt.Errorf("%w: crediting %d to %s overflows its balance", entities.ErrInvalidAmount, amount, address.Hex())
	}
	if !ok {
		account = &entities.Account{Address: address}
		r.tx.state.accounts[address] = account
	}
	account.Balance += amount
	account.UpdatedAt = r.tx.now()
	return account, nil
}

func (r *ledgerRepository) recordEntry(address common.Address, lotteryID *int64, entryType entities.LedgerEntryType, amount int64, balanceAfter uint64) {
	st := r.tx.state
	st.nextEntryID++
	st.entries = append(st.entries, &entities.LedgerEntry{
		ID:           st.nextEntryID,
		Address:      address,
		LotteryID:    lotteryID,
		EntryType:    entryType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    r.tx.now(),
	})
}

type eventLogRepository struct {
	tx *txState
}

func (r *eventLogRepository) Append(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type(), err)
	}
	st := r.tx.state
	st.nextEventID++
	st.events = append(st.events, &entities.EventRecord{
		ID:        st.nextEventID,
		LotteryID: event.AggregateID(),
		EventType: string(event.Type()),
		Payload:   payload,
		CreatedAt: r.tx.now(),
	})
	return nil
}

func (r *eventLogRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.EventRecord, error) {
	var result []*entities.EventRecord
	for _, record := range r.tx.state.events {
		if record.LotteryID == lotteryID {
			copied := *record
			result = append(result, &copied)
		}
	}
	return result, nil
}
