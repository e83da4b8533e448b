package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLotteryService_BuyTicket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		lottery    func(t *testing.T) *entities.Lottery
		payment    uint64
		commitment common.Hash
		withBeacon bool
		setupMocks func(m *serviceMocks, l *entities.Lottery)
		wantErr    error
		wantKind   entities.ErrorKind
		check      func(t *testing.T, l *entities.Lottery, ticket *entities.Ticket)
	}{
		{
			name:    "lottery not found",
			lottery: func(t *testing.T) *entities.Lottery { return nil },
			payment: 100,
			setupMocks: func(m *serviceMocks, l *entities.Lottery) {
				m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(nil, nil)
			},
			wantErr:  entities.ErrLotteryNotFound,
			wantKind: entities.KindNotFound,
		},
		{
			name: "insufficient payment takes nothing",
			lottery: func(t *testing.T) *entities.Lottery {
				return createTestLottery(t, 1, 50, 100, entities.EntropyCommitReveal)
			},
			payment:    99,
			commitment: testCommitment(testBuyer, 200),
			setupMocks: func(m *serviceMocks, l *entities.Lottery) {
				m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(l, nil)
			},
			wantErr:  entities.ErrInsufficientPayment,
			wantKind: entities.KindPayment,
		},
		{
			name: "sold out",
			lottery: func(t *testing.T) *entities.Lottery {
				l, _ := soldOutLottery(t, 1, 1, entities.EntropyCommitReveal)
				return l
			},
			payment:    100,
			commitment: testCommitment(testBuyer, 200),
			setupMocks: func(m *serviceMocks, l *entities.Lottery) {
				m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(l, nil)
			},
			wantErr:  entities.ErrNoTicketsAvailable,
			wantKind: entities.KindState,
		},
		{
			name: "ledger rejects debit",
			lottery: func(t *testing.T) *entities.Lottery {
				return createTestLottery(t, 1, 50, 100, entities.EntropyCommitReveal)
			},
			payment:    100,
			commitment: testCommitment(testBuyer, 200),
			setupMocks: func(m *serviceMocks, l *entities.Lottery) {
				m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(l, nil)
				m.escrow.On("Deposit", mock.Anything, int64(1), testBuyer, uint64(100)).
					Return(fmt.Errorf("%w: balance 50", entities.ErrInsufficientFunds))
			},
			wantErr:  entities.ErrInsufficientFunds,
			wantKind: entities.KindFunds,
		},
		{
			name: "overpayment debits only the price",
			lottery: func(t *testing.T) *entities.Lottery {
				return createTestLottery(t, 1, 50, 100, entities.EntropyCommitReveal)
			},
			payment:    250,
			commitment: testCommitment(testBuyer, 200),
			setupMocks: func(m *serviceMocks, l *entities.Lottery) {
				m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(l, nil)
				m.escrow.On("Deposit", mock.Anything, int64(1), testBuyer, uint64(100)).Return(nil)
				m.ticketRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Ticket")).Return(nil)
				m.lotteryRepo.On("Update", mock.Anything, l).Return(nil)
				m.eventLogRepo.On("Append", mock.Anything, mock.MatchedBy(func(e events.TicketPurchasedEvent) bool {
					return e.Owner == testBuyer && e.TicketIndex == 0 && e.LotteryID == 1
				})).Return(nil)
				m.eventPublisher.On("Publish", mock.AnythingOfType("events.TicketPurchasedEvent")).Return(nil)
			},
			check: func(t *testing.T, l *entities.Lottery, ticket *entities.Ticket) {
				assert.Equal(t, uint64(0), ticket.Index)
				assert.Equal(t, uint64(100), l.Pot)
				assert.Equal(t, uint64(49), l.TicketsAvailable())
			},
		},
		{
			name: "last ticket in block hash mode records anchor",
			lottery: func(t *testing.T) *entities.Lottery {
				return createTestLottery(t, 1, 1, 100, entities.EntropyBlockHash)
			},
			payment:    100,
			withBeacon: true,
			setupMocks: func(m *serviceMocks, l *entities.Lottery) {
				m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(l, nil)
				m.escrow.On("Deposit", mock.Anything, int64(1), testBuyer, uint64(100)).Return(nil)
				m.ticketRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.beacon.On("Anchor", mock.Anything).Return(uint64(1234), nil)
				m.lotteryRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *entities.Lottery) bool {
					return l.EntropyAnchor != nil && *l.EntropyAnchor == 1234
				})).Return(nil)
				m.eventLogRepo.On("Append", mock.Anything, mock.AnythingOfType("events.TicketPurchasedEvent")).Return(nil)
				m.eventLogRepo.On("Append", mock.Anything, mock.MatchedBy(func(e events.LotterySoldOutEvent) bool {
					return e.Pot == 100 && e.EntropyAnchor != nil && *e.EntropyAnchor == 1234
				})).Return(nil)
				m.eventPublisher.On("Publish", mock.Anything).Return(nil).Times(2)
			},
			check: func(t *testing.T, l *entities.Lottery, ticket *entities.Ticket) {
				assert.Equal(t, entities.StateSoldOut, l.State)
			},
		},
		{
			name: "beacon failure aborts purchase",
			lottery: func(t *testing.T) *entities.Lottery {
				return createTestLottery(t, 1, 1, 100, entities.EntropyBlockHash)
			},
			payment:    100,
			withBeacon: true,
			setupMocks: func(m *serviceMocks, l *entities.Lottery) {
				m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(l, nil)
				m.escrow.On("Deposit", mock.Anything, int64(1), testBuyer, uint64(100)).Return(nil)
				m.ticketRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.beacon.On("Anchor", mock.Anything).Return(uint64(0), errors.New("rpc down"))
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := setupLotteryServiceMocks()
			lottery := tt.lottery(t)
			tt.setupMocks(m, lottery)
			svc := m.service(tt.withBeacon)

			ticket, err := svc.BuyTicket(context.Background(), 1, testBuyer, tt.commitment, tt.payment)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantKind, entities.KindOf(err))
				assert.Nil(t, ticket)
				m.lotteryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				m.eventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
			case tt.check == nil:
				assert.Error(t, err)
				m.lotteryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			default:
				require.NoError(t, err)
				tt.check(t, lottery, ticket)
			}
			m.assertExpectations(t)
		})
	}
}

func TestLotteryService_BuyTicket_PaymentCheckedBeforeAvailability(t *testing.T) {
	t.Parallel()

	m := setupLotteryServiceMocks()
	lottery, _ := soldOutLottery(t, 1, 2, entities.EntropyCommitReveal)
	m.lotteryRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(lottery, nil)

	_, err := m.service(false).BuyTicket(context.Background(), 1, testOther, testCommitment(testOther, 1), 1)
	assert.ErrorIs(t, err, entities.ErrInsufficientPayment)
	m.escrow.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
