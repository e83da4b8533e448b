package services

import (
	"context"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// BuyTicket sells the next ticket of a lottery to caller
func (s *lotteryService) BuyTicket(ctx context.Context, lotteryID int64, caller common.Address, commitment common.Hash, payment uint64) (*entities.Ticket, error) {
	lottery, err := s.lockLottery(ctx, lotteryID)
	if err != nil {
		return nil, err
	}
	return s.purchase(ctx, lottery, caller, commitment, payment)
}

// purchase sells a ticket on a lottery the caller already holds the lock for.
// Only the ticket price is taken from the buyer's account, never the full payment.
func (s *lotteryService) purchase(ctx context.Context, lottery *entities.Lottery, caller common.Address, commitment common.Hash, payment uint64) (*entities.Ticket, error) {
	ticket, err := lottery.Purchase(caller, commitment, payment, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.escrow.Deposit(ctx, lottery.ID, caller, lottery.TicketPrice); err != nil {
		return nil, fmt.Errorf("failed to deposit ticket price: %w", err)
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	if lottery.IsSoldOut() && lottery.EntropyMode == entities.EntropyBlockHash {
		if s.beacon == nil {
			return nil, entities.ErrEntropyUnavailable
		}
		anchor, err := s.beacon.Anchor(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read entropy anchor: %w", err)
		}
		lottery.SetEntropyAnchor(anchor)
	}

	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.record(ctx, events.TicketPurchasedEvent{
		LotteryID:   lottery.ID,
		Owner:       caller,
		TicketIndex: ticket.Index,
		Price:       lottery.TicketPrice,
	}); err != nil {
		return nil, err
	}

	if lottery.IsSoldOut() {
		if err := s.record(ctx, events.LotterySoldOutEvent{
			LotteryID:     lottery.ID,
			Pot:           lottery.Pot,
			EntropyAnchor: lottery.EntropyAnchor,
		}); err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"lotteryID":   lottery.ID,
			"pot":         lottery.Pot,
			"entropyMode": lottery.EntropyMode,
		}).Info("Lottery sold out")
	}

	return ticket, nil
}
