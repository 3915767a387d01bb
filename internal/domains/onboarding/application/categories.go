package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	"github.com/Apurer/provider-onboarding/internal/shared/remote"
)

// CategorySelectionStep registers the provider's selected categories with the backend.
type CategorySelectionStep struct {
	backend ports.Backend
	journal ports.AuditJournal
	logger  *slog.Logger
	now     func() time.Time
}

// NewCategorySelectionStep wires the step.
func NewCategorySelectionStep(backend ports.Backend, journal ports.AuditJournal, logger *slog.Logger) *CategorySelectionStep {
	if journal == nil {
		journal = ports.NoopAuditJournal
	}
	if logger == nil {
		logger = defaultLogger()
	}
	return &CategorySelectionStep{backend: backend, journal: journal, logger: logger, now: time.Now}
}

// Register succeeds only when the backend confirms every selected id, counting ids it
// reports as already registered. An unreadable response is a failure: registering the
// same ids again is harmless.
func (c *CategorySelectionStep) Register(ctx context.Context, sessionID string, providerID int64, selection domain.CategorySet) error {
	outcome := c.backend.RegisterCategories(ctx, providerID, selection.IDs())
	switch outcome.Kind {
	case remote.KindConfirmed:
		missing := selection.Difference(outcome.Value.Confirmed())
		if len(missing) == 0 {
			return nil
		}
		reason := fmt.Sprintf("backend did not confirm categories %v", missing)
		c.journalFailure(ctx, sessionID, providerID, ports.AuditFailed, reason)
		return &RemoteFailureError{Operation: onboardingtypes.OperationRegisterCategories, Reason: reason, Status: outcome.Status}
	case remote.KindAmbiguous:
		c.logger.WarnContext(ctx, "category registration outcome is ambiguous",
			slog.String("session.id", sessionID),
			slog.String("operation", onboardingtypes.OperationRegisterCategories),
			slog.String("raw_failure", outcome.Reason),
			slog.Any("corrective_steps", []string{"Submit the category selection again."}),
		)
		c.journalFailure(ctx, sessionID, providerID, ports.AuditAmbiguous, outcome.Reason)
		return remoteFailure(onboardingtypes.OperationRegisterCategories, outcome)
	default:
		c.journalFailure(ctx, sessionID, providerID, ports.AuditFailed, outcome.Reason)
		return remoteFailure(onboardingtypes.OperationRegisterCategories, outcome)
	}
}

func (c *CategorySelectionStep) journalFailure(ctx context.Context, sessionID string, providerID int64, kind ports.AuditKind, reason string) {
	err := c.journal.Record(ctx, ports.AuditEntry{
		SessionID:       sessionID,
		ProviderID:      providerID,
		Operation:       onboardingtypes.OperationRegisterCategories,
		Kind:            kind,
		Reason:          reason,
		CorrectiveSteps: []string{"Submit the category selection again."},
		RecordedAt:      c.now().UTC(),
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to journal category registration", slog.String("error", err.Error()))
	}
}
