package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	onboardingactivities "github.com/Apurer/provider-onboarding/internal/platform/temporal/activities/onboarding"
)

type runnerFunc func(context.Context, onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error)

func (f runnerFunc) RunServiceEntry(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error) {
	return f(ctx, cmd)
}

func testCommand(t *testing.T) onboardingtypes.ServiceEntryCommand {
	t.Helper()
	draft := domain.NewServiceDraft()
	require.NoError(t, draft.SetFields(domain.ServiceFields{CategoryID: 3, Title: "Deep clean", Active: true}))
	_, err := draft.Schedule.Add(time.Monday, domain.MustClockTime("09:00"), domain.MustClockTime("17:00"))
	require.NoError(t, err)
	return onboardingtypes.ServiceEntryCommand{SessionID: "s-1", ProviderID: 42, Attempt: 1, Draft: draft}
}

func TestServiceEntryWorkflow_ReturnsReport(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	calls := 0
	acts := onboardingactivities.NewActivities(runnerFunc(func(_ context.Context, cmd onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error) {
		calls++
		require.Equal(t, 1, cmd.Draft.Schedule.Len())
		return onboardingtypes.EntryReport{
			Status:     onboardingtypes.EntryCompleted,
			CategoryID: cmd.Draft.CategoryID,
			Service:    onboardingtypes.ServiceRef{ID: 900, Confirmed: true},
		}, nil
	}))
	env.RegisterActivityWithOptions(acts.RunServiceEntry, activity.RegisterOptions{Name: onboardingactivities.RunServiceEntryActivityName})

	env.ExecuteWorkflow(ServiceEntryWorkflow, ServiceEntryWorkflowInput{Command: testCommand(t), TraceID: "trace"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var report onboardingtypes.EntryReport
	require.NoError(t, env.GetWorkflowResult(&report))
	require.Equal(t, onboardingtypes.EntryCompleted, report.Status)
	require.Equal(t, int64(900), report.Service.ID)
	require.Equal(t, 1, calls)
}

func TestServiceEntryWorkflow_DoesNotRetryActivity(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	calls := 0
	acts := onboardingactivities.NewActivities(runnerFunc(func(context.Context, onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error) {
		calls++
		return onboardingtypes.EntryReport{}, errors.New("journal unavailable")
	}))
	env.RegisterActivityWithOptions(acts.RunServiceEntry, activity.RegisterOptions{Name: onboardingactivities.RunServiceEntryActivityName})

	env.ExecuteWorkflow(ServiceEntryWorkflow, ServiceEntryWorkflowInput{Command: testCommand(t)})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.Equal(t, 1, calls)
}
