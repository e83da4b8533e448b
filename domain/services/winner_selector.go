package services

import (
	"context"
	"fmt"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// Winner returns the winner of a lottery, resolving it first if the seed has become available
func (s *lotteryService) Winner(ctx context.Context, lotteryID int64) (common.Address, error) {
	lottery, err := s.lockLottery(ctx, lotteryID)
	if err != nil {
		return common.Address{}, err
	}

	resolved, err := s.ensureResolved(ctx, lottery)
	if err != nil {
		return common.Address{}, err
	}
	if !resolved {
		return common.Address{}, entities.ErrWinnerNotResolved
	}
	return *lottery.Winner, nil
}

// ensureResolved resolves a locked lottery if possible and reports whether it has a winner
func (s *lotteryService) ensureResolved(ctx context.Context, lottery *entities.Lottery) (bool, error) {
	if lottery.IsResolved() {
		return true, nil
	}
	if lottery.State == entities.StateSelling {
		return false, nil
	}

	tickets, err := s.ticketRepo.ListByLottery(ctx, lottery.ID)
	if err != nil {
		return false, fmt.Errorf("failed to get tickets: %w", err)
	}
	return s.resolveIfReady(ctx, lottery, tickets)
}

// resolveIfReady fixes the winner when the lottery's seed source is ready
func (s *lotteryService) resolveIfReady(ctx context.Context, lottery *entities.Lottery, tickets []*entities.Ticket) (bool, error) {
	if lottery.IsResolved() {
		return true, nil
	}

	source := s.seedSourceFor(lottery, tickets)
	ready, err := source.Ready(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check seed availability: %w", err)
	}
	if !ready {
		return false, nil
	}

	seed, err := source.Seed(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read seed: %w", err)
	}

	if err := lottery.Resolve(seed, tickets, s.now()); err != nil {
		return false, err
	}

	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return false, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.record(ctx, events.LotteryResolvedEvent{
		LotteryID:    lottery.ID,
		Seed:         *lottery.Seed,
		WinningIndex: *lottery.WinningIndex,
		Winner:       *lottery.Winner,
	}); err != nil {
		return false, err
	}

	log.WithFields(log.Fields{
		"lotteryID":    lottery.ID,
		"winningIndex": *lottery.WinningIndex,
		"winner":       lottery.Winner.Hex(),
	}).Info("Lottery resolved")

	return true, nil
}

// seedSourceFor picks the seed source matching the lottery's entropy mode
func (s *lotteryService) seedSourceFor(lottery *entities.Lottery, tickets []*entities.Ticket) interfaces.SeedSource {
	if lottery.EntropyMode == entities.EntropyBlockHash {
		return &beaconSeedSource{beacon: s.beacon, anchor: lottery.EntropyAnchor}
	}
	return &revealSeedSource{tickets: tickets}
}

// beaconSeedSource binds an entropy beacon to the anchor recorded at sellout
type beaconSeedSource struct {
	beacon interfaces.EntropyBeacon
	anchor *uint64
}

func (b *beaconSeedSource) Ready(ctx context.Context) (bool, error) {
	if b.beacon == nil || b.anchor == nil {
		return false, nil
	}
	return b.beacon.Ready(ctx, *b.anchor)
}

func (b *beaconSeedSource) Seed(ctx context.Context) (common.Hash, error) {
	if b.beacon == nil || b.anchor == nil {
		return common.Hash{}, entities.ErrEntropyUnavailable
	}
	return b.beacon.Seed(ctx, *b.anchor)
}
