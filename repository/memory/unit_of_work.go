package memory

import (
	"context"
	"fmt"
	"time"

	"lotto/application"
	"lotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// txState is the private working copy of one unit of work
type txState struct {
	state *state
	now   func() time.Time
}

type unitOfWork struct {
	store                  *Store
	ctx                    context.Context
	tx                     *txState
	transactionalPublisher interfaces.TransactionalEventPublisher
	lotteryRepo            interfaces.LotteryRepository
	ticketRepo             interfaces.TicketRepository
	ledgerRepo             interfaces.LedgerRepository
	eventLogRepo           interfaces.EventLogRepository
}

type unitOfWorkFactory struct {
	store *Store
}

// NewUnitOfWorkFactory creates a UnitOfWork factory over store
func NewUnitOfWorkFactory(store *Store) *unitOfWorkFactory {
	return &unitOfWorkFactory{store: store}
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *unitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		store:                  f.store,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin waits for the writer slot and snapshots the store
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	select {
	case u.store.writer <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("failed to begin transaction: %w", ctx.Err())
	}

	u.ctx = ctx
	u.tx = &txState{state: u.store.state.clone(), now: u.store.now}

	u.lotteryRepo = &lotteryRepository{tx: u.tx}
	u.ticketRepo = &ticketRepository{tx: u.tx}
	u.ledgerRepo = &ledgerRepository{tx: u.tx}
	u.eventLogRepo = &eventLogRepository{tx: u.tx}

	return nil
}

// Commit swaps the working copy into the store. Events are flushed before the
// writer slot is released so the bus sees them in commit order.
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	u.store.state = u.tx.state
	u.tx = nil

	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Warn("Failed to flush events after commit")
		}
	}

	<-u.store.writer
	return nil
}

// Rollback drops the working copy
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	u.tx = nil
	<-u.store.writer

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

func (u *unitOfWork) LotteryRepository() interfaces.LotteryRepository {
	if u.lotteryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.lotteryRepo
}

func (u *unitOfWork) TicketRepository() interfaces.TicketRepository {
	if u.ticketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ticketRepo
}

func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	if u.ledgerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerRepo
}

func (u *unitOfWork) EventLogRepository() interfaces.EventLogRepository {
	if u.eventLogRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.eventLogRepo
}

func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work has no event publisher")
	}
	return u.transactionalPublisher
}
