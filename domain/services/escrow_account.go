package services

import (
	"context"
	"fmt"

	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// ClaimReward pays the pot to the winner. The claimed state is written before
// the payout is issued, so a failing or repeated payout can never release twice.
func (s *lotteryService) ClaimReward(ctx context.Context, lotteryID int64, caller common.Address) (uint64, error) {
	lottery, err := s.lockLottery(ctx, lotteryID)
	if err != nil {
		return 0, err
	}

	if _, err := s.ensureResolved(ctx, lottery); err != nil {
		return 0, err
	}

	amount, err := lottery.Claim(caller, s.now())
	if err != nil {
		return 0, err
	}

	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return 0, fmt.Errorf("failed to mark reward claimed: %w", err)
	}

	if err := s.escrow.Payout(ctx, lottery.ID, caller, amount); err != nil {
		return 0, fmt.Errorf("failed to pay out reward: %w", err)
	}

	if err := s.record(ctx, events.RewardClaimedEvent{
		LotteryID: lottery.ID,
		Winner:    caller,
		Amount:    amount,
	}); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"lotteryID": lottery.ID,
		"winner":    caller.Hex(),
		"amount":    amount,
	}).Info("Reward claimed")

	return amount, nil
}
