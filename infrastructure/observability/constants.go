package observability

// Metric name prefixes
const (
	MetricPrefix = "lotto"
)

// Metric names
const (
	// Lottery lifecycle metrics
	LotteriesCreatedTotal  = MetricPrefix + ".lotteries.created_total"
	LotteriesOpen          = MetricPrefix + ".lotteries.open"
	TicketsPurchasedTotal  = MetricPrefix + ".tickets.purchased_total"
	NumbersRevealedTotal   = MetricPrefix + ".tickets.revealed_total"
	LotteriesResolvedTotal = MetricPrefix + ".lotteries.resolved_total"
	RewardsClaimedTotal    = MetricPrefix + ".rewards.claimed_total"
	RewardsClaimedAmount   = MetricPrefix + ".rewards.claimed_amount"

	// Resolution worker metrics
	ResolverRunsTotal = MetricPrefix + ".resolver.runs_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelEntropyMode = "entropy_mode"
	LabelEventType   = "event_type"
	LabelOutcome     = "outcome"
)

// Resolver outcomes
const (
	OutcomeResolved = "resolved"
	OutcomePending  = "pending"
	OutcomeFailed   = "failed"
)
