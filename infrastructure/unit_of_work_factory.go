package infrastructure

import (
	"context"

	"lotto/application"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RepositoryFactory creates storage-backed units of work around a transactional publisher
type RepositoryFactory interface {
	CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
}

// localHandlerRegistry is implemented by publishers that can run in-process handlers
type localHandlerRegistry interface {
	RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error)
}

// UnitOfWorkFactory implements application.UnitOfWorkFactory and application.EventSubscriber.
// Each unit of work gets a fresh transactional publisher over the shared event publisher.
type UnitOfWorkFactory struct {
	repoFactory    RepositoryFactory
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(repoFactory RepositoryFactory, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repoFactory,
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with a transactional event publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewTransactionalPublisher(f.eventPublisher))
}

// RegisterLocalHandler registers a handler invoked in-process for committed events
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	registry, ok := f.eventPublisher.(localHandlerRegistry)
	if !ok {
		log.WithField("eventType", eventType).Warn("Event publisher does not support local handlers")
		return
	}
	registry.RegisterLocalHandler(eventType, handler)
}
