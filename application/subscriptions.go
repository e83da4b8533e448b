package application

import (
	"context"

	"lotto/domain/events"

	log "github.com/sirupsen/logrus"
)

// RegisterApplicationSubscriptions wires logging and metrics to committed lottery events
func RegisterApplicationSubscriptions(subscriber EventSubscriber, metrics MetricsRecorder) {
	subscriber.RegisterLocalHandler(events.EventTypeLotteryCreated, func(ctx context.Context, event events.Event) error {
		e, err := AssertEventType[events.LotteryCreatedEvent](event, "LotteryCreatedEvent")
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"lottery_id":    e.LotteryID,
			"creator":       e.Creator.Hex(),
			"tickets_total": e.TicketsTotal,
			"ticket_price":  e.TicketPrice,
			"entropy_mode":  e.EntropyMode,
		}).Info("Lottery created")
		metrics.RecordLotteryCreated(e.EntropyMode)
		return nil
	})

	subscriber.RegisterLocalHandler(events.EventTypeTicketPurchased, func(ctx context.Context, event events.Event) error {
		e, err := AssertEventType[events.TicketPurchasedEvent](event, "TicketPurchasedEvent")
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"lottery_id":   e.LotteryID,
			"owner":        e.Owner.Hex(),
			"ticket_index": e.TicketIndex,
		}).Debug("Ticket purchased")
		metrics.RecordTicketPurchased()
		return nil
	})

	subscriber.RegisterLocalHandler(events.EventTypeLotterySoldOut, func(ctx context.Context, event events.Event) error {
		e, err := AssertEventType[events.LotterySoldOutEvent](event, "LotterySoldOutEvent")
		if err != nil {
			return err
		}
		fields := log.Fields{
			"lottery_id": e.LotteryID,
			"pot":        e.Pot,
		}
		if e.EntropyAnchor != nil {
			fields["entropy_anchor"] = *e.EntropyAnchor
		}
		log.WithFields(fields).Info("Lottery sold out")
		return nil
	})

	subscriber.RegisterLocalHandler(events.EventTypeNumberRevealed, func(ctx context.Context, event events.Event) error {
		e, err := AssertEventType[events.NumberRevealedEvent](event, "NumberRevealedEvent")
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"lottery_id": e.LotteryID,
			"owner":      e.Owner.Hex(),
			"tickets":    len(e.TicketIndexes),
		}).Info("Number revealed")
		metrics.RecordNumberRevealed(len(e.TicketIndexes))
		return nil
	})

	subscriber.RegisterLocalHandler(events.EventTypeLotteryResolved, func(ctx context.Context, event events.Event) error {
		e, err := AssertEventType[events.LotteryResolvedEvent](event, "LotteryResolvedEvent")
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"lottery_id":    e.LotteryID,
			"seed":          e.Seed.Hex(),
			"winning_index": e.WinningIndex,
			"winner":        e.Winner.Hex(),
		}).Info("Lottery resolved")
		metrics.RecordLotteryResolved()
		return nil
	})

	subscriber.RegisterLocalHandler(events.EventTypeRewardClaimed, func(ctx context.Context, event events.Event) error {
		e, err := AssertEventType[events.RewardClaimedEvent](event, "RewardClaimedEvent")
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"lottery_id": e.LotteryID,
			"winner":     e.Winner.Hex(),
			"amount":     e.Amount,
		}).Info("Reward claimed")
		metrics.RecordRewardClaimed(e.Amount)
		return nil
	})
}
