package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/authsession"
	onboardinghttp "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/http"
	onboardingmemory "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/memory"
	onboardingobs "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/observability"
	onboardingworkflows "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/workflows"
	onboardingapp "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	platformobservability "github.com/Apurer/provider-onboarding/internal/platform/observability"
)

const serviceName = "provider-onboarding-api"

// Run boots the onboarding HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.ObservabilitySettings(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, err := NewMarketplaceBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure marketplace client: %w", err)
	}
	journal, closeJournal := OpenAuditJournal(ctx, cfg, logger)
	defer closeJournal()

	broker := authsession.NewBroker(16)
	defer broker.Close()
	handoffs, unsubscribe := broker.Subscribe()
	defer unsubscribe()
	go logHandoffs(handoffs, logger)
	publisher, closePublisher := NewSessionPublisher(ctx, cfg, broker, logger)
	defer closePublisher()

	orchestrator := onboardingapp.NewServiceEntryOrchestrator(backend,
		onboardingapp.WithOrchestratorLogger(logger),
		onboardingapp.WithOrchestratorJournal(journal),
	)
	var runner ports.ServiceEntryRunner = onboardingworkflows.NewInlineRunner(orchestrator)
	if temporalClient, err := DialTemporal(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running service submissions inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		runner = onboardingworkflows.NewTemporalRunner(temporalClient,
			onboardingworkflows.WithFallback(orchestrator),
			onboardingworkflows.WithLogger(logger),
		)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	store := onboardingmemory.NewSessionStore(cfg.SessionTTL)
	controller := onboardingapp.NewController(store, backend,
		onboardingapp.WithLogger(logger),
		onboardingapp.WithRunner(runner),
		onboardingapp.WithPublisher(publisher),
		onboardingapp.WithAuditJournal(journal),
		onboardingapp.WithHomeRoute(cfg.HomeRoute),
	)
	store.OnExpired(controller.Forget)

	service := onboardingobs.New(controller,
		onboardingobs.WithLogger(logger),
		onboardingobs.WithTracer(instruments.Tracer("internal.onboarding.application")),
		onboardingobs.WithMeter(instruments.Meter("internal.onboarding.application")),
	)

	router := NewRouter(onboardinghttp.NewOnboardingAPI(service))
	return serve(ctx, &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}, logger)
}

// NewRouter builds the gin engine with tracing, recovery and the onboarding routes.
func NewRouter(api *onboardinghttp.OnboardingAPI) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	onboardinghttp.RegisterRoutes(router, api)
	return router
}

func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("onboarding API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("onboarding API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("onboarding API shutting down")
	return srv.Shutdown(shutdownCtx)
}

func logHandoffs(sessions <-chan domain.AuthSession, logger *slog.Logger) {
	for session := range sessions {
		logger.Info("provider session handed off",
			slog.Int64("providerId", session.ProviderID),
			slog.Time("expiresAt", session.ExpiresAt),
		)
	}
}
