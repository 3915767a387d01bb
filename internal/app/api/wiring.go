package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	marketplaceclient "github.com/Apurer/provider-onboarding/internal/clients/http/marketplace"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/authsession"
	authredis "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/authsession/redis"
	marketplacebackend "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/external/marketplace"
	onboardingmemory "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/memory"
	onboardingpostgres "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/persistence/postgres"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	"github.com/Apurer/provider-onboarding/internal/platform/migrations"
	platformobservability "github.com/Apurer/provider-onboarding/internal/platform/observability"
	platformpostgres "github.com/Apurer/provider-onboarding/internal/platform/postgres"
)

// ErrTemporalDisabled is returned by DialTemporal when TEMPORAL_DISABLED is set.
var ErrTemporalDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED")

// ObservabilitySettings derives telemetry settings for the named process.
func (c Config) ObservabilitySettings(serviceName string) platformobservability.Settings {
	return platformobservability.Settings{
		ServiceName:  serviceName,
		Environment:  c.Environment,
		LogLevel:     c.LogLevel,
		OTLPEndpoint: c.OTLPEndpoint,
		OTLPInsecure: c.OTLPInsecure,
	}
}

// NewMarketplaceBackend builds the REST client and the backend port over it. Outgoing
// requests are traced with otelhttp.
func NewMarketplaceBackend(cfg Config) (ports.Backend, error) {
	httpClient := &http.Client{
		Timeout:   cfg.MarketplaceTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	c, err := marketplaceclient.NewClient(cfg.MarketplaceBaseURL,
		marketplaceclient.WithHTTPClient(httpClient),
		marketplaceclient.WithUserAgent(serviceName),
	)
	if err != nil {
		return nil, err
	}
	return marketplacebackend.NewBackend(c), nil
}

// OpenAuditJournal returns the Postgres journal when POSTGRES_DSN connects and migrates,
// otherwise an in-memory journal.
func OpenAuditJournal(ctx context.Context, cfg Config, logger *slog.Logger) (ports.AuditJournal, func()) {
	db, cleanup := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return onboardingmemory.NewAuditJournal(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("audit schema migration failed, audit journal stays in memory", slog.String("error", err.Error()))
		cleanup()
		return onboardingmemory.NewAuditJournal(), func() {}
	}
	logger.Info("audit journal configured with postgres")
	return onboardingpostgres.NewAuditJournal(db), cleanup
}

// NewSessionPublisher always publishes to the in-process broker and additionally to Redis
// when REDIS_ADDR is set and reachable.
func NewSessionPublisher(ctx context.Context, cfg Config, broker *authsession.Broker, logger *slog.Logger) (ports.SessionPublisher, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, session hand-off stays in process")
		return broker, func() {}
	}
	rdb, err := authredis.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, session hand-off stays in process", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
		return broker, func() {}
	}
	logger.Info("session hand-off published to redis", slog.String("channel", cfg.RedisChannel))
	publisher := authredis.NewPublisher(rdb, authredis.WithChannel(cfg.RedisChannel))
	return authsession.Fanout{broker, publisher}, func() { _ = rdb.Close() }
}

// DialTemporal connects a traced Temporal client. instruments may be nil, in which case
// the global tracer provider and default logger are used.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, ErrTemporalDisabled
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	if instruments != nil && instruments.Logger != nil {
		logger = instruments.Logger
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
