package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"summa/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the summa service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	httpRequestsCounter          metric.Int64Counter
	httpRequestDurationHist      metric.Float64Histogram
	gameSessionsActiveGauge      metric.Int64UpDownCounter
	playerMutationsCounter       metric.Int64Counter
	subscriptionsActiveGauge     metric.Int64UpDownCounter
	natsMessagesReceivedCounter  metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
	databaseQueriesCounter       metric.Int64Counter
	databaseQueryDurationHist    metric.Float64Histogram
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
		resource.NewWithAttributes(
			semconv.SchemaURL,
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
	mp.meter = mp.meterProvider.Meter("summa")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.httpRequestsCounter, err = mp.meter.Int64Counter(
		HTTPRequestsTotal,
		metric.WithDescription("Total number of HTTP requests served"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http requests counter: %w", err)
	}

	mp.httpRequestDurationHist, err = mp.meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http request duration histogram: %w", err)
	}

	// UpDownCounter for gauge-like behaviour
	mp.gameSessionsActiveGauge, err = mp.meter.Int64UpDownCounter(
		GameSessionsActive,
		metric.WithDescription("Current number of running game sessions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create game sessions gauge: %w", err)
	}

	mp.playerMutationsCounter, err = mp.meter.Int64Counter(
		PlayerMutationsTotal,
		metric.WithDescription("Total number of player mutations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create player mutations counter: %w", err)
	}

	mp.subscriptionsActiveGauge, err = mp.meter.Int64UpDownCounter(
		SubscriptionsActive,
		metric.WithDescription("Current number of live subscriptions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create subscriptions gauge: %w", err)
	}

	mp.natsMessagesReceivedCounter, err = mp.meter.Int64Counter(
		NATSMessagesReceivedTotal,
		metric.WithDescription("Total number of NATS messages received"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages received counter: %w", err)
	}

	mp.natsMessagesPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	mp.databaseQueriesCounter, err = mp.meter.Int64Counter(
		DatabaseQueriesTotal,
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create database queries counter: %w", err)
	}

	mp.databaseQueryDurationHist, err = mp.meter.Float64Histogram(
		DatabaseQueryDuration,
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create database query duration histogram: %w", err)
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

// RecordHTTPRequest records a served request
func (mp *MetricsProvider) RecordHTTPRequest(route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelRoute, route),
		attribute.String(LabelStatus, strconv.Itoa(status)),
	)
	mp.httpRequestsCounter.Add(context.Background(), 1, attrs)
	mp.httpRequestDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// UpdateActiveGameSessions moves the running-session gauge by delta
func (mp *MetricsProvider) UpdateActiveGameSessions(delta int64) {
	if !mp.isEnabled() {
		return
	}
	mp.gameSessionsActiveGauge.Add(context.Background(), delta)
}

// RecordPlayerMutation records one player write
func (mp *MetricsProvider) RecordPlayerMutation(mutationType string) {
	if !mp.isEnabled() {
		return
	}

	mp.playerMutationsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, mutationType),
		),
	)
}

// UpdateActiveSubscriptions moves the live-subscription gauge by delta
func (mp *MetricsProvider) UpdateActiveSubscriptions(kind string, delta int64) {
	if !mp.isEnabled() {
		return
	}

	mp.subscriptionsActiveGauge.Add(context.Background(), delta,
		metric.WithAttributes(
			attribute.String(LabelType, kind),
		),
	)
}

// RecordNATSMessageReceived records a NATS message being received
func (mp *MetricsProvider) RecordNATSMessageReceived(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesReceivedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// RecordDatabaseQuery records a database query with duration
func (mp *MetricsProvider) RecordDatabaseQuery(repository, method string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelRepository, repository),
		attribute.String(LabelMethod, method),
	)

	mp.databaseQueriesCounter.Add(context.Background(), 1, attrs)
	mp.databaseQueryDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// MeasureDatabaseQuery returns a function to measure database query duration
// Usage:
//
//	defer mp.MeasureDatabaseQuery("game_session", "GetByID")()
func (mp *MetricsProvider) MeasureDatabaseQuery(repository, method string) func() {
	start := time.Now()
	return func() {
		mp.RecordDatabaseQuery(repository, method, time.Since(start))
	}
}

// isEnabled is nil-safe so callers can record before initialization
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled
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
