package entities

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// LedgerEntryType describes why an account balance moved
type LedgerEntryType string

const (
	LedgerEntryFund           LedgerEntryType = "fund"
	LedgerEntryTicketPurchase LedgerEntryType = "ticket_purchase"
	LedgerEntryRewardPayout   LedgerEntryType = "reward_payout"
)

// Account is a balance held on the value ledger
type Account struct {
	Address   common.Address `db:"address"`
	Balance   uint64         `db:"balance"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// LedgerEntry is an append-only record of a balance change
type LedgerEntry struct {
	ID           int64           `db:"id"`
	Address      common.Address  `db:"address"`
	LotteryID    *int64          `db:"lottery_id"`
	EntryType    LedgerEntryType `db:"entry_type"`
	Amount       int64           `db:"amount"` // negative for debits
	BalanceAfter uint64          `db:"balance_after"`
	CreatedAt    time.Time       `db:"created_at"`
}

// EventRecord is a persisted domain event
type EventRecord struct {
	ID        int64           `db:"id"`
	LotteryID int64           `db:"lottery_id"`
	EventType string          `db:"event_type"`
	Payload   json.RawMessage `db:"payload"`
	CreatedAt time.Time       `db:"created_at"`
}
