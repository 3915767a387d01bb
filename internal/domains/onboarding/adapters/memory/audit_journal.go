package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

var _ ports.AuditJournal = (*AuditJournal)(nil)

// AuditJournal keeps audit entries in memory for development and tests.
type AuditJournal struct {
	mu      sync.RWMutex
	entries []ports.AuditEntry
	nextID  int64
}

func NewAuditJournal() *AuditJournal {
	return &AuditJournal{}
}

func (j *AuditJournal) Record(_ context.Context, entry ports.AuditEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextID++
	entry.ID = j.nextID
	entry.CorrectiveSteps = append([]string(nil), entry.CorrectiveSteps...)
	j.entries = append(j.entries, entry)
	return nil
}

func (j *AuditJournal) ListBySession(_ context.Context, sessionID string) ([]ports.AuditEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []ports.AuditEntry
	for _, e := range j.entries {
		if e.SessionID == sessionID {
			e.CorrectiveSteps = append([]string(nil), e.CorrectiveSteps...)
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *AuditJournal) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	kept := j.entries[:0]
	var removed int64
	for _, e := range j.entries {
		if e.RecordedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	j.entries = kept
	return removed, nil
}
