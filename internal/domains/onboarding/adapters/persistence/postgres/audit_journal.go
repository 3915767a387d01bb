package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

var _ ports.AuditJournal = (*AuditJournal)(nil)

// AuditJournal persists remote outcome entries in PostgreSQL.
type AuditJournal struct {
	db *gorm.DB
}

// NewAuditJournal wires a PostgreSQL-backed audit journal.
func NewAuditJournal(db *gorm.DB) *AuditJournal {
	return &AuditJournal{db: db}
}

// Record inserts one entry.
func (j *AuditJournal) Record(ctx context.Context, entry ports.AuditEntry) error {
	if err := j.ensureDB(); err != nil {
		return err
	}
	record := toRecord(entry)
	return j.db.WithContext(ctx).Create(&record).Error
}

// ListBySession returns the entries of one session, oldest first.
func (j *AuditJournal) ListBySession(ctx context.Context, sessionID string) ([]ports.AuditEntry, error) {
	if err := j.ensureDB(); err != nil {
		return nil, err
	}
	var records []outcomeRecord
	err := j.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("recorded_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]ports.AuditEntry, 0, len(records))
	for i := range records {
		out = append(out, toEntry(&records[i]))
	}
	return out, nil
}

// PurgeBefore deletes entries recorded before the cutoff.
func (j *AuditJournal) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := j.ensureDB(); err != nil {
		return 0, err
	}
	res := j.db.WithContext(ctx).Where("recorded_at < ?", cutoff.UTC()).Delete(&outcomeRecord{})
	return res.RowsAffected, res.Error
}

func (j *AuditJournal) ensureDB() error {
	if j == nil || j.db == nil {
		return errors.New("postgres audit journal not configured")
	}
	return nil
}

type outcomeRecord struct {
	ID              int64          `gorm:"primaryKey;autoIncrement;column:id"`
	SessionID       string         `gorm:"column:session_id;size:64;index"`
	ProviderID      int64          `gorm:"column:provider_id;index"`
	CategoryID      int64          `gorm:"column:category_id"`
	ServiceID       int64          `gorm:"column:service_id"`
	Operation       string         `gorm:"column:operation;type:varchar(32)"`
	Kind            string         `gorm:"column:kind;type:varchar(16);index"`
	Reason          string         `gorm:"column:reason"`
	CorrectiveSteps pq.StringArray `gorm:"column:corrective_steps;type:text[]"`
	RecordedAt      time.Time      `gorm:"column:recorded_at;index"`
}

func (outcomeRecord) TableName() string { return "onboarding_outcomes" }

func toRecord(entry ports.AuditEntry) outcomeRecord {
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	return outcomeRecord{
		SessionID:       entry.SessionID,
		ProviderID:      entry.ProviderID,
		CategoryID:      entry.CategoryID,
		ServiceID:       entry.ServiceID,
		Operation:       entry.Operation,
		Kind:            string(entry.Kind),
		Reason:          entry.Reason,
		CorrectiveSteps: pq.StringArray(append([]string(nil), entry.CorrectiveSteps...)),
		RecordedAt:      recordedAt.UTC(),
	}
}

func toEntry(r *outcomeRecord) ports.AuditEntry {
	return ports.AuditEntry{
		ID:              r.ID,
		SessionID:       r.SessionID,
		ProviderID:      r.ProviderID,
		CategoryID:      r.CategoryID,
		ServiceID:       r.ServiceID,
		Operation:       r.Operation,
		Kind:            ports.AuditKind(r.Kind),
		Reason:          r.Reason,
		CorrectiveSteps: []string(r.CorrectiveSteps),
		RecordedAt:      r.RecordedAt,
	}
}
