package onboarding

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	onboardingports "github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

// RunServiceEntryActivityName creates one service with its photos and schedules.
const RunServiceEntryActivityName = "onboarding.activities.RunServiceEntry"

// Activities groups the activities of the onboarding bounded context.
type Activities struct {
	runner onboardingports.ServiceEntryRunner
}

// NewActivities wires the inline service entry saga into the Temporal activities bundle.
// runner must not itself dispatch to Temporal.
func NewActivities(runner onboardingports.ServiceEntryRunner) *Activities {
	return &Activities{runner: runner}
}

// RunServiceEntry executes the three-phase submission and returns its report.
func (a *Activities) RunServiceEntry(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.runner == nil {
		logger.Error("service entry activity not initialized", "sessionId", cmd.SessionID)
		return onboardingtypes.EntryReport{}, errors.New("service entry activity not initialized")
	}
	info := activity.GetInfo(ctx)
	if info.Attempt > 1 {
		// the saga is not idempotent; a retried attempt would create a second service
		logger.Error("RunServiceEntry activity retried", "sessionId", cmd.SessionID, "attempt", info.Attempt)
		return onboardingtypes.EntryReport{}, errors.New("service entry activity must not be retried")
	}
	logger.Info("RunServiceEntry activity started", "sessionId", cmd.SessionID, "categoryId", cmd.Draft.CategoryID)
	report, err := a.runner.RunServiceEntry(ctx, cmd)
	if err != nil {
		logger.Error("RunServiceEntry activity failed", "sessionId", cmd.SessionID, "error", err)
		return onboardingtypes.EntryReport{}, err
	}
	logger.Info("RunServiceEntry activity completed", "sessionId", cmd.SessionID, "status", string(report.Status), "serviceId", report.Service.ID)
	return report, nil
}
