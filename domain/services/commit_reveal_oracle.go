package services

import (
	"context"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// RevealNumber opens the caller's commitments matching number. When it opens
// the last outstanding ticket the winner is resolved in the same transaction.
func (s *lotteryService) RevealNumber(ctx context.Context, lotteryID int64, caller common.Address, number *uint256.Int) ([]*entities.Ticket, error) {
	if number == nil {
		return nil, fmt.Errorf("%w: number is required", entities.ErrInvalidAmount)
	}

	lottery, err := s.lockLottery(ctx, lotteryID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.ticketRepo.ListByLottery(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}

	revealed, err := lottery.Reveal(tickets, caller, number, s.now())
	if err != nil {
		return nil, err
	}

	indexes := make([]uint64, 0, len(revealed))
	for _, t := range revealed {
		if err := s.ticketRepo.MarkRevealed(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to mark ticket %d revealed: %w", t.Index, err)
		}
		indexes = append(indexes, t.Index)
	}

	if err := s.record(ctx, events.NumberRevealedEvent{
		LotteryID:     lottery.ID,
		Owner:         caller,
		Number:        number.Dec(),
		TicketIndexes: indexes,
	}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"lotteryID": lottery.ID,
		"owner":     caller.Hex(),
		"tickets":   len(revealed),
	}).Debug("Number revealed")

	if _, err := s.resolveIfReady(ctx, lottery, tickets); err != nil {
		return nil, err
	}

	return revealed, nil
}

// revealSeedSource folds the revealed numbers of a commit-reveal lottery
type revealSeedSource struct {
	tickets []*entities.Ticket
}

func (r *revealSeedSource) Ready(ctx context.Context) (bool, error) {
	return entities.AllRevealed(r.tickets), nil
}

func (r *revealSeedSource) Seed(ctx context.Context) (common.Hash, error) {
	if !entities.AllRevealed(r.tickets) {
		return common.Hash{}, entities.ErrWinnerNotResolved
	}
	return entities.FoldReveals(entities.RevealedValues(r.tickets)), nil
}
