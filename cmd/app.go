package cmd

import (
	"context"
	"fmt"

	"lotto/application"
	"lotto/config"
	"lotto/database"
	"lotto/domain/interfaces"
	"lotto/infrastructure"
	"lotto/infrastructure/entropy"
	"lotto/infrastructure/observability"
	"lotto/repository"
	"lotto/repository/memory"

	log "github.com/sirupsen/logrus"
)

// App holds the wired lottery application and the resources it owns
type App struct {
	Handler    *application.LotteryHandlerImpl
	UoWFactory *infrastructure.UnitOfWorkFactory
	Beacon     interfaces.EntropyBeacon

	closers []func()
}

// Build wires storage, events and entropy according to cfg
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	repoFactory, err := app.openStorage(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	eventPublisher, err := app.openEventPublisher(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.EthRPCURL != "" {
		log.WithField("confirmations", cfg.EntropyConfirmations).Info("Connecting to Ethereum RPC for block hash entropy...")
		beacon, closeBeacon, err := entropy.Dial(ctx, cfg.EthRPCURL, cfg.EntropyConfirmations)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
		}
		app.Beacon = beacon
		app.closers = append(app.closers, closeBeacon)
		log.Info("Block hash entropy enabled")
	} else {
		log.Info("ETH_RPC_URL not set, block hash lotteries are disabled")
	}

	app.UoWFactory = infrastructure.NewUnitOfWorkFactory(repoFactory, eventPublisher)
	app.Handler = application.NewLotteryHandler(app.UoWFactory, app.Beacon)
	application.RegisterApplicationSubscriptions(app.UoWFactory, observability.GetMetrics())

	return app, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (infrastructure.RepositoryFactory, error) {
	if cfg.UsesMemoryStorage() {
		log.Warn("Using in-memory storage, state is lost on exit")
		return memory.NewUnitOfWorkFactory(memory.NewStore()), nil
	}

	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	log.Info("Database connection established successfully")

	return repository.NewUnitOfWorkFactory(db), nil
}

func (a *App) openEventPublisher(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, error) {
	if !cfg.NATSEnabled {
		log.Info("NATS disabled, dispatching events in-process")
		bus := infrastructure.NewLocalEventBus()
		a.closers = append(a.closers, bus.Wait)
		return bus, nil
	}

	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS client")
		}
	})

	publisher := infrastructure.NewNATSEventPublisher(client, infrastructure.NewEventSubjectMapper())
	if err := publisher.EnsureDomainEventStream(client); err != nil {
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}
	log.Info("NATS event publisher ready")
	return publisher, nil
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
