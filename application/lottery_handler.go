package application

import (
	"context"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/interfaces"
	"lotto/domain/services"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// LotteryHandlerImpl implements the LotteryHandler interface
type LotteryHandlerImpl struct {
	uowFactory UnitOfWorkFactory
	beacon     interfaces.EntropyBeacon
}

// NewLotteryHandler creates a new lottery handler. beacon may be nil when no
// block hash source is configured.
func NewLotteryHandler(uowFactory UnitOfWorkFactory, beacon interfaces.EntropyBeacon) *LotteryHandlerImpl {
	return &LotteryHandlerImpl{
		uowFactory: uowFactory,
		beacon:     beacon,
	}
}

// withService runs fn inside one unit of work and commits only if fn succeeds
func (h *LotteryHandlerImpl) withService(ctx context.Context, fn func(svc interfaces.LotteryService, uow UnitOfWork) error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			log.WithError(err).Error("Failed to roll back unit of work")
		}
	}()

	svc := services.NewLotteryService(
		uow.LotteryRepository(),
		uow.TicketRepository(),
		uow.LedgerRepository(),
		uow.EventLogRepository(),
		uow.EventBus(),
		h.beacon,
	)

	if err := fn(svc, uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateLottery opens a lottery, optionally buying ticket 0 for the creator
func (h *LotteryHandlerImpl) CreateLottery(ctx context.Context, params interfaces.CreateLotteryParams) (*entities.Lottery, error) {
	var lottery *entities.Lottery
	err := h.withService(ctx, func(svc interfaces.LotteryService, _ UnitOfWork) error {
		var err error
		lottery, err = svc.CreateLottery(ctx, params)
		return err
	})
	return lottery, err
}

// GetLottery returns a lottery with its tickets
func (h *LotteryHandlerImpl) GetLottery(ctx context.Context, lotteryID int64) (*interfaces.LotteryDetail, error) {
	var detail *interfaces.LotteryDetail
	err := h.withService(ctx, func(svc interfaces.LotteryService, _ UnitOfWork) error {
		var err error
		detail, err = svc.GetLottery(ctx, lotteryID)
		return err
	})
	return detail, err
}

// ListLotteries returns the most recent lotteries
func (h *LotteryHandlerImpl) ListLotteries(ctx context.Context, limit int) ([]*entities.Lottery, error) {
	var lotteries []*entities.Lottery
	err := h.withService(ctx, func(_ interfaces.LotteryService, uow UnitOfWork) error {
		var err error
		lotteries, err = uow.LotteryRepository().List(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list lotteries: %w", err)
		}
		return nil
	})
	return lotteries, err
}

// TicketsTotal returns the configured number of tickets
func (h *LotteryHandlerImpl) TicketsTotal(ctx context.Context, lotteryID int64) (uint64, error) {
	detail, err := h.GetLottery(ctx, lotteryID)
	if err != nil {
		return 0, err
	}
	return detail.Lottery.TicketsTotal, nil
}

// TicketPrice returns the configured ticket price
func (h *LotteryHandlerImpl) TicketPrice(ctx context.Context, lotteryID int64) (uint64, error) {
	detail, err := h.GetLottery(ctx, lotteryID)
	if err != nil {
		return 0, err
	}
	return detail.Lottery.TicketPrice, nil
}

// TicketsAvailable returns the number of unsold tickets
func (h *LotteryHandlerImpl) TicketsAvailable(ctx context.Context, lotteryID int64) (uint64, error) {
	var available uint64
	err := h.withService(ctx, func(svc interfaces.LotteryService, _ UnitOfWork) error {
		var err error
		available, err = svc.TicketsAvailable(ctx, lotteryID)
		return err
	})
	return available, err
}

// BuyTicket sells the next ticket to caller
func (h *LotteryHandlerImpl) BuyTicket(ctx context.Context, lotteryID int64, caller common.Address, commitment common.Hash, payment uint64) (*entities.Ticket, error) {
	var ticket *entities.Ticket
	err := h.withService(ctx, func(svc interfaces.LotteryService, _ UnitOfWork) error {
		var err error
		ticket, err = svc.BuyTicket(ctx, lotteryID, caller, commitment, payment)
		return err
	})
	return ticket, err
}

// RevealNumber opens the caller's commitments matching number
func (h *LotteryHandlerImpl) RevealNumber(ctx context.Context, lotteryID int64, caller common.Address, number *uint256.Int) ([]*entities.Ticket, error) {
	var revealed []*entities.Ticket
	err := h.withService(ctx, func(svc interfaces.LotteryService, _ UnitOfWork) error {
		var err error
		revealed, err = svc.RevealNumber(ctx, lotteryID, caller, number)
		return err
	})
	return revealed, err
}

// Winner returns the winner, resolving the lottery if its seed is available
func (h *LotteryHandlerImpl) Winner(ctx context.Context, lotteryID int64) (common.Address, error) {
	var winner common.Address
	err := h.withService(ctx, func(svc interfaces.LotteryService, _ UnitOfWork) error {
		var err error
		winner, err = svc.Winner(ctx, lotteryID)
		return err
	})
	return winner, err
}

// ClaimReward pays the pot to the winner
func (h *LotteryHandlerImpl) ClaimReward(ctx context.Context, lotteryID int64, caller common.Address) (uint64, error) {
	var amount uint64
	err := h.withService(ctx, func(svc interfaces.LotteryService, _ UnitOfWork) error {
		var err error
		amount, err = svc.ClaimReward(ctx, lotteryID, caller)
		return err
	})
	return amount, err
}

// Events returns the event log of a lottery
func (h *LotteryHandlerImpl) Events(ctx context.Context, lotteryID int64) ([]*entities.EventRecord, error) {
	var records []*entities.EventRecord
	err := h.withService(ctx, func(_ interfaces.LotteryService, uow UnitOfWork) error {
		lottery, err := uow.LotteryRepository().GetByID(ctx, lotteryID)
		if err != nil {
			return fmt.Errorf("failed to get lottery: %w", err)
		}
		if lottery == nil {
			return entities.ErrLotteryNotFound
		}

		records, err = uow.EventLogRepository().ListByLottery(ctx, lotteryID)
		if err != nil {
			return fmt.Errorf("failed to get events: %w", err)
		}
		return nil
	})
	return records, err
}

// FundAccount credits an account on the ledger
func (h *LotteryHandlerImpl) FundAccount(ctx context.Context, address common.Address, amount uint64) (*entities.Account, error) {
	var account *entities.Account
	err := h.withService(ctx, func(_ interfaces.LotteryService, uow UnitOfWork) error {
		var err error
		account, err = uow.LedgerRepository().Fund(ctx, address, amount)
		if err != nil {
			return fmt.Errorf("failed to fund account: %w", err)
		}
		return nil
	})
	if err == nil {
		log.WithFields(log.Fields{
			"address": address.Hex(),
			"amount":  amount,
			"balance": account.Balance,
		}).Info("Account funded")
	}
	return account, err
}

// Balance returns the ledger balance of an address
func (h *LotteryHandlerImpl) Balance(ctx context.Context, address common.Address) (uint64, error) {
	var balance uint64
	err := h.withService(ctx, func(_ interfaces.LotteryService, uow UnitOfWork) error {
		var err error
		balance, err = uow.LedgerRepository().GetBalance(ctx, address)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		return nil
	})
	return balance, err
}

// LedgerEntries returns the most recent ledger movements of an address
func (h *LotteryHandlerImpl) LedgerEntries(ctx context.Context, address common.Address, limit int) ([]*entities.LedgerEntry, error) {
	var entries []*entities.LedgerEntry
	err := h.withService(ctx, func(_ interfaces.LotteryService, uow UnitOfWork) error {
		var err error
		entries, err = uow.LedgerRepository().ListEntries(ctx, address, limit)
		if err != nil {
			return fmt.Errorf("failed to get ledger entries: %w", err)
		}
		return nil
	})
	return entries, err
}
