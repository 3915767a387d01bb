package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	onboardingworkflows "github.com/Apurer/provider-onboarding/internal/durable/temporal/workflows/onboarding"
)

const (
	// DefaultPayloadBudget keeps workflow inputs well below Temporal's blob size limit.
	DefaultPayloadBudget = 3 << 19
	// DefaultWaitTimeout bounds a service entry workflow: the activity's two minutes plus
	// time to be picked up by a worker.
	DefaultWaitTimeout = 3 * time.Minute
)

var (
	_ ports.ServiceEntryRunner = (*TemporalRunner)(nil)
	_ ports.ServiceEntryRunner = (*InlineRunner)(nil)
)

// TemporalRunner dispatches service submissions to a Temporal cluster.
type TemporalRunner struct {
	client    client.Client
	taskQueue string
	fallback  ports.ServiceEntryRunner
	budget    int
	wait      time.Duration
	logger    *slog.Logger
}

// TemporalOption configures a TemporalRunner.
type TemporalOption func(*TemporalRunner)

// WithFallback sets the runner used when a draft is too large for a workflow payload.
func WithFallback(runner ports.ServiceEntryRunner) TemporalOption {
	return func(r *TemporalRunner) {
		r.fallback = runner
	}
}

// WithPayloadBudget overrides the maximum draft size sent through Temporal.
func WithPayloadBudget(bytes int) TemporalOption {
	return func(r *TemporalRunner) {
		if bytes > 0 {
			r.budget = bytes
		}
	}
}

// WithWaitTimeout overrides how long a submission waits for its workflow.
func WithWaitTimeout(d time.Duration) TemporalOption {
	return func(r *TemporalRunner) {
		if d > 0 {
			r.wait = d
		}
	}
}

// WithLogger injects a logger.
func WithLogger(logger *slog.Logger) TemporalOption {
	return func(r *TemporalRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewTemporalRunner wires a Temporal client into the runner.
func NewTemporalRunner(c client.Client, opts ...TemporalOption) *TemporalRunner {
	r := &TemporalRunner{
		client:    c,
		taskQueue: onboardingworkflows.ServiceEntryTaskQueue,
		budget:    DefaultPayloadBudget,
		wait:      DefaultWaitTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RunServiceEntry starts the service entry workflow and waits for its report. A workflow
// already started for the same session, category and attempt is joined instead of repeated.
// A workflow that does not finish in time is reported as awaiting acknowledgement since
// the service may or may not exist.
func (r *TemporalRunner) RunServiceEntry(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error) {
	if r == nil || r.client == nil {
		return onboardingtypes.EntryReport{}, errors.New("temporal service entry runner not configured")
	}
	if size := cmd.Draft.PayloadSize(); size > r.budget {
		if r.fallback == nil {
			return onboardingtypes.EntryReport{}, fmt.Errorf("draft payload of %d bytes exceeds workflow budget", size)
		}
		r.logger.InfoContext(ctx, "draft exceeds workflow payload budget, running inline",
			slog.String("session.id", cmd.SessionID),
			slog.Int("payload.bytes", size),
		)
		return r.fallback.RunServiceEntry(ctx, cmd)
	}

	workflowID := buildServiceEntryWorkflowID(cmd)
	options := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                r.taskQueue,
		WorkflowExecutionTimeout: r.wait,
	}
	run, err := r.client.ExecuteWorkflow(
		ctx,
		options,
		onboardingworkflows.ServiceEntryWorkflow,
		onboardingworkflows.ServiceEntryWorkflowInput{Command: cmd, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return onboardingtypes.EntryReport{}, err
		}
		run = r.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()
	var report onboardingtypes.EntryReport
	if err := run.Get(waitCtx, &report); err != nil {
		var timeoutErr *temporal.TimeoutError
		if errors.As(err, &timeoutErr) || errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			r.logger.WarnContext(ctx, "service entry workflow did not finish in time",
				slog.String("workflow.id", workflowID),
				slog.Duration("timeout", r.wait),
				slog.String("error", err.Error()),
			)
			return unfinishedReport(cmd), nil
		}
		return onboardingtypes.EntryReport{}, err
	}
	return report, nil
}

func unfinishedReport(cmd onboardingtypes.ServiceEntryCommand) onboardingtypes.EntryReport {
	report := onboardingtypes.EntryReport{
		Status:     onboardingtypes.EntryAwaitingAcknowledgement,
		CategoryID: cmd.Draft.CategoryID,
		Title:      cmd.Draft.Title,
		Service:    onboardingtypes.ServiceRef{ID: cmd.Draft.ResumeServiceID, Confirmed: false},
	}
	report.Notice("The submission did not finish in time. Check the marketplace for the service before confirming.")
	if len(cmd.Draft.Photos) > 0 {
		report.Photos.Unconfirmed = true
	}
	report.Schedules.Unconfirmed = true
	return report
}

// InlineRunner executes the saga in process, useful for tests or dev fallbacks.
type InlineRunner struct {
	runner ports.ServiceEntryRunner
}

// NewInlineRunner wraps the application orchestrator for synchronous execution.
func NewInlineRunner(runner ports.ServiceEntryRunner) *InlineRunner {
	return &InlineRunner{runner: runner}
}

// RunServiceEntry delegates without durable orchestration.
func (r *InlineRunner) RunServiceEntry(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error) {
	if r == nil || r.runner == nil {
		return onboardingtypes.EntryReport{}, errors.New("inline service entry runner not configured")
	}
	return r.runner.RunServiceEntry(ctx, cmd)
}

func buildServiceEntryWorkflowID(cmd onboardingtypes.ServiceEntryCommand) string {
	if cmd.SessionID == "" {
		return fmt.Sprintf("service-entry-fallback-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("service-entry-%s-%d-%d", cmd.SessionID, cmd.Draft.CategoryID, cmd.Attempt)
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
