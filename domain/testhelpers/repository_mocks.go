package testhelpers

import (
	"context"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

// MockLotteryRepository is a mock implementation of LotteryRepository
type MockLotteryRepository struct {
	mock.Mock
}

func (m *MockLotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	args := m.Called(ctx, lottery)
	return args.Error(0)
}

func (m *MockLotteryRepository) GetByID(ctx context.Context, id int64) (*entities.Lottery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lottery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) Update(ctx context.Context, lottery *entities.Lottery) error {
	args := m.Called(ctx, lottery)
	return args.Error(0)
}

func (m *MockLotteryRepository) ListAwaitingEntropy(ctx context.Context) ([]*entities.Lottery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) List(ctx context.Context, limit int) ([]*entities.Lottery, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lottery), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *entities.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) MarkRevealed(ctx context.Context, ticket *entities.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.Ticket, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

// MockEscrow is a mock implementation of Escrow
type MockEscrow struct {
	mock.Mock
}

func (m *MockEscrow) Deposit(ctx context.Context, lotteryID int64, from common.Address, amount uint64) error {
	args := m.Called(ctx, lotteryID, from, amount)
	return args.Error(0)
}

func (m *MockEscrow) Payout(ctx context.Context, lotteryID int64, to common.Address, amount uint64) error {
	args := m.Called(ctx, lotteryID, to, amount)
	return args.Error(0)
}

// MockEventLogRepository is a mock implementation of EventLogRepository
type MockEventLogRepository struct {
	mock.Mock
}

func (m *MockEventLogRepository) Append(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventLogRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.EventRecord, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EventRecord), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockEntropyBeacon is a mock implementation of EntropyBeacon
type MockEntropyBeacon struct {
	mock.Mock
}

func (m *MockEntropyBeacon) Anchor(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockEntropyBeacon) Ready(ctx context.Context, anchor uint64) (bool, error) {
	args := m.Called(ctx, anchor)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntropyBeacon) Seed(ctx context.Context, anchor uint64) (common.Hash, error) {
	args := m.Called(ctx, anchor)
	return args.Get(0).(common.Hash), args.Error(1)
}
