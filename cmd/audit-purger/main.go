package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/Apurer/provider-onboarding/internal/app/api"
	onboardingpostgres "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/provider-onboarding/internal/platform/observability"
	platformpostgres "github.com/Apurer/provider-onboarding/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.ReadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.AuditRetention <= 0 {
		log.Fatal("AUDIT_RETENTION must be positive")
	}
	logger := platformobservability.NewLogger(cfg.LogLevel)

	db, cleanup := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; nothing to purge")
	}

	cutoff := time.Now().Add(-cfg.AuditRetention)
	removed, err := onboardingpostgres.NewAuditJournal(db).PurgeBefore(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to purge audit journal: %v", err)
	}
	logger.Info("audit purge completed", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
}
