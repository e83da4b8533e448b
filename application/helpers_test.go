package application_test

import (
	"context"
	"sync"
	"testing"

	"lotto/application"
	"lotto/domain/entities"
	"lotto/domain/interfaces"
	"lotto/infrastructure"
	"lotto/repository/memory"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	creator = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	buyer   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	other   = common.HexToAddress("0x00000000000000000000000000000000000000f1")
)

// testEnv is an in-memory deployment of the lottery application
type testEnv struct {
	bus        *infrastructure.LocalEventBus
	uowFactory *infrastructure.UnitOfWorkFactory
	handler    *application.LotteryHandlerImpl
}

func newTestEnv(t *testing.T, beacon interfaces.EntropyBeacon) *testEnv {
	t.Helper()
	bus := infrastructure.NewLocalEventBus()
	uowFactory := infrastructure.NewUnitOfWorkFactory(memory.NewUnitOfWorkFactory(memory.NewStore()), bus)
	return &testEnv{
		bus:        bus,
		uowFactory: uowFactory,
		handler:    application.NewLotteryHandler(uowFactory, beacon),
	}
}

func (e *testEnv) fund(t *testing.T, address common.Address, amount uint64) {
	t.Helper()
	_, err := e.handler.FundAccount(context.Background(), address, amount)
	require.NoError(t, err)
}

func commitment(owner common.Address, n uint64) common.Hash {
	return entities.ComputeCommitment(owner, uint256.NewInt(n))
}

// fakeBeacon serves block hashes from a head that tests advance by hand
type fakeBeacon struct {
	mu            sync.Mutex
	head          uint64
	confirmations uint64
}

func (b *fakeBeacon) advance(blocks uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head += blocks
}

func (b *fakeBeacon) Anchor(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.head, nil
}

func (b *fakeBeacon) Ready(ctx context.Context, anchor uint64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.head >= anchor+b.confirmations, nil
}

func (b *fakeBeacon) Seed(ctx context.Context, anchor uint64) (common.Hash, error) {
	return blockHash(anchor + b.confirmations), nil
}

func blockHash(number uint64) common.Hash {
	word := uint256.NewInt(number).Bytes32()
	return crypto.Keccak256Hash(word[:])
}

// recordingMetrics counts the metrics calls made by subscriptions and the worker
type recordingMetrics struct {
	mu       sync.Mutex
	created  []string
	tickets  int
	revealed int
	resolved int
	claimed  []uint64
	runs     []string
}

func (m *recordingMetrics) RecordLotteryCreated(entropyMode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, entropyMode)
}

func (m *recordingMetrics) RecordTicketPurchased() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets++
}

func (m *recordingMetrics) RecordNumberRevealed(tickets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revealed += tickets
}

func (m *recordingMetrics) RecordLotteryResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolved++
}

func (m *recordingMetrics) RecordRewardClaimed(amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimed = append(m.claimed, amount)
}

func (m *recordingMetrics) RecordResolverRun(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, outcome)
}
