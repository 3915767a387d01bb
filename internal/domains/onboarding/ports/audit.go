package ports

import (
	"context"
	"time"
)

// AuditKind classifies a journal entry.
type AuditKind string

const (
	AuditFailed    AuditKind = "failed"
	AuditAmbiguous AuditKind = "ambiguous"
	AuditSkipped   AuditKind = "skipped"
	AuditDeclined  AuditKind = "declined"
)

// AuditEntry records a remote outcome that needs operator attention.
type AuditEntry struct {
	ID              int64
	SessionID       string
	ProviderID      int64
	CategoryID      int64
	ServiceID       int64
	Operation       string
	Kind            AuditKind
	Reason          string
	CorrectiveSteps []string
	RecordedAt      time.Time
}

// AuditJournal persists audit entries.
type AuditJournal interface {
	Record(ctx context.Context, entry AuditEntry) error
	ListBySession(ctx context.Context, sessionID string) ([]AuditEntry, error)
	// PurgeBefore removes entries recorded before the cutoff and returns how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NoopAuditJournal discards every entry.
var NoopAuditJournal AuditJournal = noopAuditJournal{}

type noopAuditJournal struct{}

func (noopAuditJournal) Record(context.Context, AuditEntry) error { return nil }
func (noopAuditJournal) ListBySession(context.Context, string) ([]AuditEntry, error) {
	return nil, nil
}
func (noopAuditJournal) PurgeBefore(context.Context, time.Time) (int64, error) { return 0, nil }
