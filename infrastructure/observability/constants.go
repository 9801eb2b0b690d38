package observability

// Metric name prefixes
const (
	MetricPrefix = "summa"
)

// Metric names
const (
	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"

	// Game metrics
	GameSessionsActive   = MetricPrefix + ".game_sessions.active"
	PlayerMutationsTotal = MetricPrefix + ".players.mutations_total"

	// Live subscription metrics
	SubscriptionsActive = MetricPrefix + ".subscriptions.active"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelRoute     = "route"
	LabelStatus    = "status"

	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Player mutation types
const (
	PlayerMutationAdd     = "add"
	PlayerMutationRemove  = "remove"
	PlayerMutationStack   = "stack"
	PlayerMutationBuyins  = "buyins"
	PlayerMutationGeneric = "update"
)
