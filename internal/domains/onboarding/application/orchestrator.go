package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	"github.com/Apurer/provider-onboarding/internal/shared/remote"
)

// ServiceEntryOrchestrator runs the service submission saga: create the service, then
// upload photos, then create schedules. Phases run strictly in order, nothing is retried
// and nothing already created is rolled back.
type ServiceEntryOrchestrator struct {
	backend ports.Backend
	journal ports.AuditJournal
	logger  *slog.Logger
	now     func() time.Time
}

// OrchestratorOption configures a ServiceEntryOrchestrator.
type OrchestratorOption func(*ServiceEntryOrchestrator)

// WithOrchestratorLogger injects the logger used for phase warnings.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *ServiceEntryOrchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOrchestratorJournal injects the audit journal.
func WithOrchestratorJournal(journal ports.AuditJournal) OrchestratorOption {
	return func(o *ServiceEntryOrchestrator) {
		if journal != nil {
			o.journal = journal
		}
	}
}

// WithOrchestratorClock overrides the clock used for journal timestamps.
func WithOrchestratorClock(now func() time.Time) OrchestratorOption {
	return func(o *ServiceEntryOrchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewServiceEntryOrchestrator wires the saga over the marketplace backend.
func NewServiceEntryOrchestrator(backend ports.Backend, opts ...OrchestratorOption) *ServiceEntryOrchestrator {
	o := &ServiceEntryOrchestrator{
		backend: backend,
		journal: ports.NoopAuditJournal,
		logger:  defaultLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// RunServiceEntry executes the saga for one draft. The returned error is reserved for
// misconfiguration; every remote outcome is described by the report.
func (o *ServiceEntryOrchestrator) RunServiceEntry(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error) {
	if o == nil || o.backend == nil {
		return onboardingtypes.EntryReport{}, errors.New("service entry orchestrator not configured")
	}
	draft := cmd.Draft
	report := onboardingtypes.EntryReport{CategoryID: draft.CategoryID, Title: draft.Title}
	logger := o.logger.With(
		slog.String("session.id", cmd.SessionID),
		slog.Int64("provider.id", cmd.ProviderID),
		slog.Int64("category.id", draft.CategoryID),
		slog.Int("attempt", cmd.Attempt),
	)

	serviceID, proceed := o.createService(ctx, cmd, logger, &report)
	if !proceed {
		return report, nil
	}
	if len(draft.Photos) > 0 {
		o.uploadPhotos(ctx, cmd, serviceID, logger, &report)
	}
	o.createSchedules(ctx, cmd, serviceID, logger, &report)
	return report, nil
}

func (o *ServiceEntryOrchestrator) createService(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand, logger *slog.Logger, report *onboardingtypes.EntryReport) (int64, bool) {
	draft := cmd.Draft
	if draft.ResumeServiceID != 0 {
		report.Service = onboardingtypes.ServiceRef{ID: draft.ResumeServiceID, Confirmed: true, Resumed: true}
		logger.InfoContext(ctx, "resuming previously created service", slog.Int64("service.id", draft.ResumeServiceID))
		return draft.ResumeServiceID, true
	}

	outcome := o.backend.CreateService(ctx, cmd.ProviderID, draft.ServiceFields)
	switch outcome.Kind {
	case remote.KindConfirmed:
		report.Service = onboardingtypes.ServiceRef{ID: outcome.Value.ID, Confirmed: true}
		return outcome.Value.ID, true
	case remote.KindAmbiguous:
		steps := []string{
			fmt.Sprintf("Check the provider's services on the marketplace for one titled %q.", draft.Title),
			"If it exists, accept the acknowledgement and add its photos and weekly schedule from the service page.",
			"If it does not exist, decline the acknowledgement and submit the draft again.",
		}
		logger.WarnContext(ctx, "service creation outcome is ambiguous",
			slog.String("operation", onboardingtypes.OperationCreateService),
			slog.String("raw_failure", outcome.Reason),
			slog.Int("status", outcome.Status),
			slog.Any("corrective_steps", steps),
		)
		o.record(ctx, cmd, ports.AuditEntry{
			ServiceID:       outcome.Value.ID,
			Operation:       onboardingtypes.OperationCreateService,
			Kind:            ports.AuditAmbiguous,
			Reason:          outcome.Reason,
			CorrectiveSteps: steps,
		}, logger)
		report.Status = onboardingtypes.EntryAwaitingAcknowledgement
		report.Service = onboardingtypes.ServiceRef{ID: outcome.Value.ID, Confirmed: false}
		report.Notice("The service may have been created, but the marketplace response could not be read. Confirm to count it as done.")
		o.skipDependentPhases(ctx, cmd, logger, report)
		return 0, false
	default:
		logger.WarnContext(ctx, "service creation failed",
			slog.String("operation", onboardingtypes.OperationCreateService),
			slog.String("reason", outcome.Reason),
			slog.Int("status", outcome.Status),
		)
		o.record(ctx, cmd, ports.AuditEntry{
			Operation:       onboardingtypes.OperationCreateService,
			Kind:            ports.AuditFailed,
			Reason:          outcome.Reason,
			CorrectiveSteps: []string{"Fix the reported problem and submit the draft again."},
		}, logger)
		report.Status = onboardingtypes.EntryFailed
		report.Failure = &onboardingtypes.EntryFailure{
			Operation: onboardingtypes.OperationCreateService,
			Reason:    outcome.Reason,
			Status:    outcome.Status,
		}
		return 0, false
	}
}

func (o *ServiceEntryOrchestrator) skipDependentPhases(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand, logger *slog.Logger, report *onboardingtypes.EntryReport) {
	if len(cmd.Draft.Photos) > 0 {
		report.Photos.Skipped = true
		logger.WarnContext(ctx, "photo upload skipped: service id is not confirmed",
			slog.String("operation", onboardingtypes.OperationUploadPhotos),
			slog.Int("photos", len(cmd.Draft.Photos)),
		)
		o.record(ctx, cmd, ports.AuditEntry{
			Operation:       onboardingtypes.OperationUploadPhotos,
			Kind:            ports.AuditSkipped,
			Reason:          "service id is not confirmed",
			CorrectiveSteps: []string{"Upload the photos from the service page once the service is visible."},
		}, logger)
	}
	report.Schedules.Skipped = true
	logger.WarnContext(ctx, "schedule creation skipped: service id is not confirmed",
		slog.String("operation", onboardingtypes.OperationCreateSchedules),
		slog.Int("entries", cmd.Draft.Schedule.Len()),
	)
	o.record(ctx, cmd, ports.AuditEntry{
		Operation:       onboardingtypes.OperationCreateSchedules,
		Kind:            ports.AuditSkipped,
		Reason:          "service id is not confirmed",
		CorrectiveSteps: []string{"Add the weekly schedule from the service page once the service is visible."},
	}, logger)
}

func (o *ServiceEntryOrchestrator) uploadPhotos(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand, serviceID int64, logger *slog.Logger, report *onboardingtypes.EntryReport) {
	photos := cmd.Draft.Photos
	report.Photos.Attempted = true
	outcome := o.backend.UploadServicePhotos(ctx, serviceID, photos)
	switch outcome.Kind {
	case remote.KindFailed:
		for _, p := range photos {
			report.Photos.Failed = append(report.Photos.Failed, onboardingtypes.ItemFailure{Item: p.Filename, Reason: outcome.Reason})
		}
		report.Notice(fmt.Sprintf("Photos could not be uploaded (%s). You can add them later from the service page.", outcome.Reason))
		logger.WarnContext(ctx, "photo upload failed",
			slog.String("operation", onboardingtypes.OperationUploadPhotos),
			slog.Int64("service.id", serviceID),
			slog.String("reason", outcome.Reason),
		)
		o.record(ctx, cmd, ports.AuditEntry{
			ServiceID: serviceID, Operation: onboardingtypes.OperationUploadPhotos,
			Kind: ports.AuditFailed, Reason: outcome.Reason,
			CorrectiveSteps: []string{"Upload the photos again from the service page."},
		}, logger)
	case remote.KindAmbiguous:
		report.Photos.Unconfirmed = true
		report.Notice("Photo upload could not be confirmed. Check the service page to see which photos were stored.")
		logger.WarnContext(ctx, "photo upload outcome is ambiguous",
			slog.String("operation", onboardingtypes.OperationUploadPhotos),
			slog.Int64("service.id", serviceID),
			slog.String("raw_failure", outcome.Reason),
		)
		o.record(ctx, cmd, ports.AuditEntry{
			ServiceID: serviceID, Operation: onboardingtypes.OperationUploadPhotos,
			Kind: ports.AuditAmbiguous, Reason: outcome.Reason,
			CorrectiveSteps: []string{"Open the service page and re-upload any missing photos."},
		}, logger)
	default:
		for _, r := range outcome.Value {
			if r.Stored {
				report.Photos.Uploaded = append(report.Photos.Uploaded, r.Filename)
				continue
			}
			report.Photos.Failed = append(report.Photos.Failed, onboardingtypes.ItemFailure{Item: r.Filename, Reason: r.Error})
		}
		if n := len(report.Photos.Failed); n > 0 {
			report.Notice(fmt.Sprintf("%d of %d photos were not uploaded.", n, len(photos)))
			logger.WarnContext(ctx, "some photos were rejected",
				slog.String("operation", onboardingtypes.OperationUploadPhotos),
				slog.Int64("service.id", serviceID),
				slog.Int("rejected", n),
			)
		}
	}
}

func (o *ServiceEntryOrchestrator) createSchedules(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand, serviceID int64, logger *slog.Logger, report *onboardingtypes.EntryReport) {
	entries := cmd.Draft.Schedule.Entries()
	report.Schedules.Attempted = true
	outcome := o.backend.CreateServiceSchedules(ctx, serviceID, entries)
	switch outcome.Kind {
	case remote.KindFailed:
		o.failSchedules(ctx, cmd, serviceID, outcome.Reason, outcome.Status, logger, report)
		for _, e := range entries {
			report.Schedules.Failed = append(report.Schedules.Failed, onboardingtypes.ItemFailure{Item: domain.WeekdayName(e.Weekday), Reason: outcome.Reason})
		}
		return
	case remote.KindAmbiguous:
		report.Schedules.Unconfirmed = true
		report.Notice("The weekly schedule was sent but could not be confirmed. Check the service page before accepting bookings.")
		logger.WarnContext(ctx, "schedule creation outcome is ambiguous",
			slog.String("operation", onboardingtypes.OperationCreateSchedules),
			slog.Int64("service.id", serviceID),
			slog.String("raw_failure", outcome.Reason),
		)
		o.record(ctx, cmd, ports.AuditEntry{
			ServiceID: serviceID, Operation: onboardingtypes.OperationCreateSchedules,
			Kind: ports.AuditAmbiguous, Reason: outcome.Reason,
			CorrectiveSteps: []string{"Open the service page and add any missing availability windows."},
		}, logger)
		report.Status = onboardingtypes.EntryCompleted
		return
	}

	for _, r := range outcome.Value {
		name := domain.WeekdayName(r.Weekday)
		if r.Created {
			report.Schedules.Created = append(report.Schedules.Created, name)
			continue
		}
		report.Schedules.Failed = append(report.Schedules.Failed, onboardingtypes.ItemFailure{Item: name, Reason: r.Error})
	}
	if len(report.Schedules.Created) == 0 {
		o.failSchedules(ctx, cmd, serviceID, "every schedule entry was rejected", outcome.Status, logger, report)
		return
	}
	if n := len(report.Schedules.Failed); n > 0 {
		report.Notice(fmt.Sprintf("%d of %d availability windows were not created.", n, len(entries)))
		logger.WarnContext(ctx, "some schedule entries were rejected",
			slog.String("operation", onboardingtypes.OperationCreateSchedules),
			slog.Int64("service.id", serviceID),
			slog.Int("rejected", n),
		)
	}
	report.Status = onboardingtypes.EntryCompleted
}

func (o *ServiceEntryOrchestrator) failSchedules(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand, serviceID int64, reason string, status int, logger *slog.Logger, report *onboardingtypes.EntryReport) {
	logger.WarnContext(ctx, "schedule creation failed",
		slog.String("operation", onboardingtypes.OperationCreateSchedules),
		slog.Int64("service.id", serviceID),
		slog.String("reason", reason),
	)
	o.record(ctx, cmd, ports.AuditEntry{
		ServiceID: serviceID, Operation: onboardingtypes.OperationCreateSchedules,
		Kind: ports.AuditFailed, Reason: reason,
		CorrectiveSteps: []string{fmt.Sprintf("Submit the draft again; service %d already exists and will be reused.", serviceID)},
	}, logger)
	report.Status = onboardingtypes.EntryFailed
	report.Failure = &onboardingtypes.EntryFailure{
		Operation: onboardingtypes.OperationCreateSchedules,
		Reason:    reason,
		Status:    status,
	}
}

func (o *ServiceEntryOrchestrator) record(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand, entry ports.AuditEntry, logger *slog.Logger) {
	entry.SessionID = cmd.SessionID
	entry.ProviderID = cmd.ProviderID
	entry.CategoryID = cmd.Draft.CategoryID
	entry.RecordedAt = o.now().UTC()
	if err := o.journal.Record(ctx, entry); err != nil {
		logger.ErrorContext(ctx, "failed to journal remote outcome",
			slog.String("operation", entry.Operation),
			slog.String("error", err.Error()),
		)
	}
}

var _ ports.ServiceEntryRunner = (*ServiceEntryOrchestrator)(nil)
