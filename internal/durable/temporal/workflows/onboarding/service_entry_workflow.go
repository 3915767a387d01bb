package onboarding

import (
	"go.temporal.io/sdk/workflow"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/durable/temporal/sequences"
)

const (
	// ServiceEntryWorkflowName is the public identifier for registering the workflow.
	ServiceEntryWorkflowName = "onboarding.workflows.ServiceEntry"
	// ServiceEntryTaskQueue is the queue consumed by the worker processing service submissions.
	ServiceEntryTaskQueue = "ONBOARDING_SERVICE_ENTRY"
)

// ServiceEntryWorkflowInput captures one service submission.
type ServiceEntryWorkflowInput struct {
	Command onboardingtypes.ServiceEntryCommand
	TraceID string
}

// ServiceEntryWorkflow runs the service submission saga for one draft.
func ServiceEntryWorkflow(ctx workflow.Context, input ServiceEntryWorkflowInput) (onboardingtypes.EntryReport, error) {
	logger := workflow.GetLogger(ctx)
	cmd := input.Command
	logger.Info("ServiceEntryWorkflow started", withTraceID(input.TraceID, "sessionId", cmd.SessionID, "categoryId", cmd.Draft.CategoryID)...)
	report, err := sequences.RunServiceEntrySequence(ctx, cmd)
	if err != nil {
		logger.Error("ServiceEntryWorkflow failed", withTraceID(input.TraceID, "sessionId", cmd.SessionID, "error", err)...)
		return onboardingtypes.EntryReport{}, err
	}
	logger.Info("ServiceEntryWorkflow completed", withTraceID(input.TraceID, "sessionId", cmd.SessionID, "status", string(report.Status), "serviceId", report.Service.ID)...)
	return report, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
