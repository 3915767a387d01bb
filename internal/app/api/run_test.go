package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/authsession"
	onboardinghttp "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/http"
	onboardingmemory "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/memory"
	onboardingapp "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application"
)

func testConfig() Config {
	return Config{
		Port:               "0",
		MarketplaceBaseURL: "http://marketplace.invalid",
		MarketplaceTimeout: time.Second,
		SessionTTL:         time.Hour,
		AuditRetention:     time.Hour,
		TemporalDisabled:   true,
	}
}

func TestNewRouter_ServesHealthAndSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	backend, err := NewMarketplaceBackend(testConfig())
	require.NoError(t, err)
	ctrl := onboardingapp.NewController(onboardingmemory.NewSessionStore(time.Hour), backend)
	router := NewRouter(onboardinghttp.NewOnboardingAPI(ctrl))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, onboardinghttp.BasePath, nil))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestNewMarketplaceBackend_RequiresAbsoluteURL(t *testing.T) {
	cfg := testConfig()
	cfg.MarketplaceBaseURL = "marketplace"
	_, err := NewMarketplaceBackend(cfg)
	require.Error(t, err)
}

func TestWiringFallsBackWithoutInfrastructure(t *testing.T) {
	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	journal, cleanup := OpenAuditJournal(context.Background(), cfg, logger)
	defer cleanup()
	require.IsType(t, &onboardingmemory.AuditJournal{}, journal)

	broker := authsession.NewBroker(1)
	publisher, closePublisher := NewSessionPublisher(context.Background(), cfg, broker, logger)
	defer closePublisher()
	require.Same(t, broker, publisher)

	_, err := DialTemporal(cfg, nil)
	require.ErrorIs(t, err, ErrTemporalDisabled)
}
