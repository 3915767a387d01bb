package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/provider-onboarding/internal/app/api"
	onboardingapp "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application"
	onboardingworkflows "github.com/Apurer/provider-onboarding/internal/durable/temporal/workflows/onboarding"
	platformobservability "github.com/Apurer/provider-onboarding/internal/platform/observability"
	onboardingactivities "github.com/Apurer/provider-onboarding/internal/platform/temporal/activities/onboarding"
)

func main() {
	ctx := context.Background()
	const serviceName = "provider-onboarding-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.ObservabilitySettings(serviceName))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, err := api.NewMarketplaceBackend(cfg)
	if err != nil {
		logger.Error("failed to configure marketplace client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	journal, closeJournal := api.OpenAuditJournal(ctx, cfg, logger)
	defer closeJournal()
	orchestrator := onboardingapp.NewServiceEntryOrchestrator(backend,
		onboardingapp.WithOrchestratorLogger(logger),
		onboardingapp.WithOrchestratorJournal(journal),
	)
	activities := onboardingactivities.NewActivities(orchestrator)

	temporalClient, err := api.DialTemporal(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, onboardingworkflows.ServiceEntryTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(onboardingworkflows.ServiceEntryWorkflow, workflow.RegisterOptions{Name: onboardingworkflows.ServiceEntryWorkflowName})
	w.RegisterActivityWithOptions(activities.RunServiceEntry, activity.RegisterOptions{Name: onboardingactivities.RunServiceEntryActivityName})

	logger.Info("worker listening", slog.String("taskQueue", onboardingworkflows.ServiceEntryTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
