package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lotto/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the lottery service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	lotteriesCreatedCounter      metric.Int64Counter
	lotteriesOpenGauge           metric.Int64UpDownCounter
	ticketsPurchasedCounter      metric.Int64Counter
	numbersRevealedCounter       metric.Int64Counter
	lotteriesResolvedCounter     metric.Int64Counter
	rewardsClaimedCounter        metric.Int64Counter
	rewardsClaimedAmountCounter  metric.Int64Counter
	resolverRunsCounter          metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		// Schemaless so the merge never conflicts with the SDK default schema
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)

	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter(MetricPrefix)

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&mp.lotteriesCreatedCounter, LotteriesCreatedTotal, "Total number of lotteries opened", "1"},
		{&mp.ticketsPurchasedCounter, TicketsPurchasedTotal, "Total number of tickets sold", "1"},
		{&mp.numbersRevealedCounter, NumbersRevealedTotal, "Total number of tickets revealed", "1"},
		{&mp.lotteriesResolvedCounter, LotteriesResolvedTotal, "Total number of lotteries with a fixed winner", "1"},
		{&mp.rewardsClaimedCounter, RewardsClaimedTotal, "Total number of pots paid out", "1"},
		{&mp.rewardsClaimedAmountCounter, RewardsClaimedAmount, "Total value paid out to winners", "{unit}"},
		{&mp.resolverRunsCounter, ResolverRunsTotal, "Resolution attempts by the background worker", "1"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published", "1"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
	}

	var err error
	mp.lotteriesOpenGauge, err = mp.meter.Int64UpDownCounter(
		LotteriesOpen,
		metric.WithDescription("Current number of lotteries not yet claimed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create open lotteries gauge: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordLotteryCreated counts a new lottery and adds it to the open gauge
func (mp *MetricsProvider) RecordLotteryCreated(entropyMode string) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.String(LabelEntropyMode, entropyMode))
	mp.lotteriesCreatedCounter.Add(context.Background(), 1, attrs)
	mp.lotteriesOpenGauge.Add(context.Background(), 1, attrs)
}

// RecordTicketPurchased counts a sold ticket
func (mp *MetricsProvider) RecordTicketPurchased() {
	if !mp.isEnabled() {
		return
	}

	mp.ticketsPurchasedCounter.Add(context.Background(), 1)
}

// RecordNumberRevealed counts the tickets opened by one reveal
func (mp *MetricsProvider) RecordNumberRevealed(tickets int) {
	if !mp.isEnabled() {
		return
	}

	mp.numbersRevealedCounter.Add(context.Background(), int64(tickets))
}

// RecordLotteryResolved counts a lottery whose winner became fixed
func (mp *MetricsProvider) RecordLotteryResolved() {
	if !mp.isEnabled() {
		return
	}

	mp.lotteriesResolvedCounter.Add(context.Background(), 1)
}

// RecordRewardClaimed counts a payout and removes the lottery from the open gauge
func (mp *MetricsProvider) RecordRewardClaimed(amount uint64) {
	if !mp.isEnabled() {
		return
	}

	mp.rewardsClaimedCounter.Add(context.Background(), 1)
	mp.rewardsClaimedAmountCounter.Add(context.Background(), int64(amount))
	mp.lotteriesOpenGauge.Add(context.Background(), -1)
}

// RecordResolverRun records the outcome of one background resolution attempt
func (mp *MetricsProvider) RecordResolverRun(outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.resolverRunsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOutcome, outcome)),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider, nil before initialization
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
