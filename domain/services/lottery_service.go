package services

import (
	"context"
	"fmt"
	"time"

	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"
	"lotto/domain/utils"

	log "github.com/sirupsen/logrus"
)

// lotteryService implements business logic for lottery operations.
// Every method expects to run inside a single transaction.
type lotteryService struct {
	lotteryRepo    interfaces.LotteryRepository
	ticketRepo     interfaces.TicketRepository
	escrow         interfaces.Escrow
	eventLogRepo   interfaces.EventLogRepository
	eventPublisher interfaces.EventPublisher
	beacon         interfaces.EntropyBeacon
	now            func() time.Time
}

// NewLotteryService creates a new lottery service. beacon may be nil, in which
// case block hash lotteries cannot be created.
func NewLotteryService(
	lotteryRepo interfaces.LotteryRepository,
	ticketRepo interfaces.TicketRepository,
	escrow interfaces.Escrow,
	eventLogRepo interfaces.EventLogRepository,
	eventPublisher interfaces.EventPublisher,
	beacon interfaces.EntropyBeacon,
) interfaces.LotteryService {
	return &lotteryService{
		lotteryRepo:    lotteryRepo,
		ticketRepo:     ticketRepo,
		escrow:         escrow,
		eventLogRepo:   eventLogRepo,
		eventPublisher: eventPublisher,
		beacon:         beacon,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateLottery opens a lottery for sale
func (s *lotteryService) CreateLottery(ctx context.Context, params interfaces.CreateLotteryParams) (*entities.Lottery, error) {
	lottery, err := entities.NewLottery(params.Creator, params.Config)
	if err != nil {
		return nil, err
	}
	if lottery.EntropyMode == entities.EntropyBlockHash && s.beacon == nil {
		return nil, entities.ErrEntropyUnavailable
	}

	if err := s.lotteryRepo.Create(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to create lottery: %w", err)
	}

	if err := s.record(ctx, events.LotteryCreatedEvent{
		LotteryID:    lottery.ID,
		Creator:      lottery.Creator,
		TicketsTotal: lottery.TicketsTotal,
		TicketPrice:  lottery.TicketPrice,
		EntropyMode:  string(lottery.EntropyMode),
	}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"lotteryID":    lottery.ID,
		"creator":      lottery.Creator.Hex(),
		"ticketsTotal": lottery.TicketsTotal,
		"ticketPrice":  lottery.TicketPrice,
		"entropyMode":  lottery.EntropyMode,
	}).Info("Lottery created")

	if params.InitialCommitment != nil {
		if _, err := s.purchase(ctx, lottery, params.Creator, *params.InitialCommitment, lottery.TicketPrice); err != nil {
			return nil, fmt.Errorf("failed to buy initial ticket: %w", err)
		}
	}

	return lottery, nil
}

// GetLottery returns a lottery and its tickets
func (s *lotteryService) GetLottery(ctx context.Context, lotteryID int64) (*interfaces.LotteryDetail, error) {
	lottery, err := s.lotteryRepo.GetByID(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, entities.ErrLotteryNotFound
	}

	tickets, err := s.ticketRepo.ListByLottery(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}

	return &interfaces.LotteryDetail{Lottery: lottery, Tickets: tickets}, nil
}

// TicketsAvailable returns the number of unsold tickets
func (s *lotteryService) TicketsAvailable(ctx context.Context, lotteryID int64) (uint64, error) {
	lottery, err := s.lotteryRepo.GetByID(ctx, lotteryID)
	if err != nil {
		return 0, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return 0, entities.ErrLotteryNotFound
	}
	return lottery.TicketsAvailable(), nil
}

// lockLottery loads a lottery holding its row lock for the rest of the transaction
func (s *lotteryService) lockLottery(ctx context.Context, lotteryID int64) (*entities.Lottery, error) {
	lottery, err := s.lotteryRepo.GetByIDForUpdate(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lottery: %w", err)
	}
	if lottery == nil {
		return nil, entities.ErrLotteryNotFound
	}
	return lottery, nil
}

func (s *lotteryService) record(ctx context.Context, event events.Event) error {
	return utils.RecordEvent(ctx, s.eventLogRepo, s.eventPublisher, event)
}
