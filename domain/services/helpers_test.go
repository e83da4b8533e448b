package services

import (
	"testing"
	"time"

	"lotto/domain/entities"
	"lotto/domain/interfaces"
	"lotto/domain/testhelpers"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// serviceMocks groups the collaborators of the lottery service for tests
type serviceMocks struct {
	lotteryRepo    *testhelpers.MockLotteryRepository
	ticketRepo     *testhelpers.MockTicketRepository
	escrow         *testhelpers.MockEscrow
	eventLogRepo   *testhelpers.MockEventLogRepository
	eventPublisher *testhelpers.MockEventPublisher
	beacon         *testhelpers.MockEntropyBeacon
}

func setupLotteryServiceMocks() *serviceMocks {
	return &serviceMocks{
		lotteryRepo:    new(testhelpers.MockLotteryRepository),
		ticketRepo:     new(testhelpers.MockTicketRepository),
		escrow:         new(testhelpers.MockEscrow),
		eventLogRepo:   new(testhelpers.MockEventLogRepository),
		eventPublisher: new(testhelpers.MockEventPublisher),
		beacon:         new(testhelpers.MockEntropyBeacon),
	}
}

// service builds a lottery service; withBeacon controls whether block hash entropy is configured
func (m *serviceMocks) service(withBeacon bool) interfaces.LotteryService {
	var beacon interfaces.EntropyBeacon
	if withBeacon {
		beacon = m.beacon
	}
	return NewLotteryService(m.lotteryRepo, m.ticketRepo, m.escrow, m.eventLogRepo, m.eventPublisher, beacon)
}

// expectEvents accepts any number of recorded events
func (m *serviceMocks) expectEvents() {
	m.eventLogRepo.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.eventPublisher.On("Publish", mock.Anything).Return(nil).Maybe()
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	m.lotteryRepo.AssertExpectations(t)
	m.ticketRepo.AssertExpectations(t)
	m.escrow.AssertExpectations(t)
	m.eventLogRepo.AssertExpectations(t)
	m.eventPublisher.AssertExpectations(t)
	m.beacon.AssertExpectations(t)
}

var (
	testCreator = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	testBuyer   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	testOther   = common.HexToAddress("0x00000000000000000000000000000000000000f1")
)

func testCommitment(owner common.Address, n uint64) common.Hash {
	return entities.ComputeCommitment(owner, uint256.NewInt(n))
}

// createTestLottery builds a lottery with the given config and ID
func createTestLottery(t *testing.T, id int64, total, price uint64, mode entities.EntropyMode) *entities.Lottery {
	t.Helper()
	l, err := entities.NewLottery(testCreator, entities.LotteryConfig{
		TicketsTotal: total,
		TicketPrice:  price,
		EntropyMode:  mode,
	})
	require.NoError(t, err)
	l.ID = id
	l.CreatedAt = time.Now()
	return l
}

// soldOutLottery sells every ticket: ticket 0 to the creator and the rest to the buyer
func soldOutLottery(t *testing.T, id int64, total uint64, mode entities.EntropyMode) (*entities.Lottery, []*entities.Ticket) {
	t.Helper()
	l := createTestLottery(t, id, total, 100, mode)
	var tickets []*entities.Ticket
	for i := uint64(0); i < total; i++ {
		owner, n := testBuyer, uint64(200)
		if i == 0 {
			owner, n = testCreator, 100
		}
		var c common.Hash
		if mode == entities.EntropyCommitReveal {
			c = testCommitment(owner, n)
		}
		ticket, err := l.Purchase(owner, c, 100, time.Now())
		require.NoError(t, err)
		ticket.ID = int64(i + 1)
		tickets = append(tickets, ticket)
	}
	return l, tickets
}
