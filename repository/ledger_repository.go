package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"lotto/domain/entities"
	"lotto/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the value ledger: account balances plus an
// append-only entry per movement. It is the escrow behind every lottery pot.
type LedgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a ledger repository over a pool or transaction
func NewLedgerRepository(q Queryable) interfaces.LedgerRepository {
	return &LedgerRepository{q: q}
}

// Deposit debits amount from an account into a lottery pot
func (r *LedgerRepository) Deposit(ctx context.Context, lotteryID int64, from common.Address, amount uint64) error {
	if amount == 0 || amount > math.MaxInt64 {
		return entities.ErrInvalidAmount
	}

	query := `
		UPDATE accounts
		SET balance = balance - $2,
		    updated_at = NOW()
		WHERE address = $1
		  AND balance >= $2
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, from.Bytes(), int64(amount)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s cannot cover %d", entities.ErrInsufficientFunds, from.Hex(), amount)
	}
	if err != nil {
		return fmt.Errorf("failed to debit account %s: %w", from.Hex(), err)
	}

	return r.recordEntry(ctx, &entities.LedgerEntry{
		Address:      from,
		LotteryID:    &lotteryID,
		EntryType:    entities.LedgerEntryTicketPurchase,
		Amount:       -int64(amount),
		BalanceAfter: uint64(balance),
	})
}

// Payout credits amount from a lottery pot to an account
func (r *LedgerRepository) Payout(ctx context.Context, lotteryID int64, to common.Address, amount uint64) error {
	balance, err := r.credit(ctx, to, amount)
	if err != nil {
		return err
	}

	return r.recordEntry(ctx, &entities.LedgerEntry{
		Address:      to,
		LotteryID:    &lotteryID,
		EntryType:    entities.LedgerEntryRewardPayout,
		Amount:       int64(amount),
		BalanceAfter: balance,
	})
}

// Fund credits an account outside of any lottery
func (r *LedgerRepository) Fund(ctx context.Context, address common.Address, amount uint64) (*entities.Account, error) {
	if amount == 0 {
		return nil, entities.ErrInvalidAmount
	}

	balance, err := r.credit(ctx, address, amount)
	if err != nil {
		return nil, err
	}

	if err := r.recordEntry(ctx, &entities.LedgerEntry{
		Address:      address,
		EntryType:    entities.LedgerEntryFund,
		Amount:       int64(amount),
		BalanceAfter: balance,
	}); err != nil {
		return nil, err
	}

	return r.getAccount(ctx, address)
}

// GetBalance returns the balance of an account, zero if it does not exist
func (r *LedgerRepository) GetBalance(ctx context.Context, address common.Address) (uint64, error) {
	account, err := r.getAccount(ctx, address)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, nil
	}
	return account.Balance, nil
}

// ListEntries returns the most recent ledger entries of an account
func (r *LedgerRepository) ListEntries(ctx context.Context, address common.Address, limit int) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, address, lottery_id, entry_type, amount, balance_after, created_at
		FROM ledger_entries
		WHERE address = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, address.Bytes(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for %s: %w", address.Hex(), err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var (
			entry        entities.LedgerEntry
			addr         []byte
			entryType    string
			balanceAfter int64
		)
		if err := rows.Scan(&entry.ID, &addr, &entry.LotteryID, &entryType, &entry.Amount, &balanceAfter, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entry.Address = addressFromBytes(addr)
		entry.EntryType = entities.LedgerEntryType(entryType)
		entry.BalanceAfter = uint64(balanceAfter)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// credit adds amount to an account, refusing credits that would overflow the BIGINT balance
func (r *LedgerRepository) credit(ctx context.Context, address common.Address, amount uint64) (uint64, error) {
	if amount > math.MaxInt64 {
		return 0, fmt.Errorf("%w: credit of %d exceeds the maximum balance", entities.ErrInvalidAmount, amount)
	}

	query := `
		INSERT INTO accounts (address, balance)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE
		SET balance = accounts.balance + EXCLUDED.balance,
		    updated_at = NOW()
		WHERE accounts.balance <= 9223372036854775807 - EXCLUDED.balance
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, address.Bytes(), int64(amount)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: crediting %d to %s overflows its balance", entities.ErrInvalidAmount, amount, address.Hex())
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit account %s: %w", address.Hex(), err)
	}
	return uint64(balance), nil
}

func (r *LedgerRepository) getAccount(ctx context.Context, address common.Address) (*entities.Account, error) {
	query := `SELECT address, balance, updated_at FROM accounts WHERE address = $1`

	var (
		account entities.Account
		addr    []byte
		balance int64
	)
	err := r.q.QueryRow(ctx, query, address.Bytes()).Scan(&addr, &balance, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", address.Hex(), err)
	}

	account.Address = addressFromBytes(addr)
	account.Balance = uint64(balance)
	return &account, nil
}

func (r *LedgerRepository) recordEntry(ctx context.Context, entry *entities.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (address, lottery_id, entry_type, amount, balance_after)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.Address.Bytes(),
		entry.LotteryID,
		string(entry.EntryType),
		entry.Amount,
		int64(entry.BalanceAfter),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}
