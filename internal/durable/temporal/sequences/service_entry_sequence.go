package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	onboardingactivities "github.com/Apurer/provider-onboarding/internal/platform/temporal/activities/onboarding"
)

// RunServiceEntrySequence executes the service submission activity exactly once.
func RunServiceEntrySequence(ctx workflow.Context, cmd onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("service entry sequence started", "sessionId", cmd.SessionID, "attempt", cmd.Attempt)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var report onboardingtypes.EntryReport
	err := workflow.ExecuteActivity(ctx, onboardingactivities.RunServiceEntryActivityName, cmd).Get(ctx, &report)
	if err != nil {
		logger.Error("service entry sequence failed", "sessionId", cmd.SessionID, "error", err)
		return onboardingtypes.EntryReport{}, err
	}
	logger.Info("service entry sequence completed", "sessionId", cmd.SessionID, "status", string(report.Status))
	return report, nil
}
