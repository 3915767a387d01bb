package mapper

import (
	"time"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

// Session is the HTTP representation of an onboarding session.
type Session struct {
	ID                     string                         `json:"id"`
	Step                   string                         `json:"step"`
	Provider               *domain.ProviderIdentity       `json:"provider,omitempty"`
	SelectedCategoryIDs    []int64                        `json:"selectedCategoryIds"`
	SelectionConfirmed     bool                           `json:"selectionConfirmed"`
	CompletedCategoryIDs   []int64                        `json:"completedCategoryIds"`
	RemainingCategoryIDs   []int64                        `json:"remainingCategoryIds"`
	Draft                  *Draft                         `json:"draft,omitempty"`
	PendingAcknowledgement *domain.PendingAcknowledgement `json:"pendingAcknowledgement,omitempty"`
	Services               []domain.ServiceRecord         `json:"services"`
	CanAddService          bool                           `json:"canAddService"`
	CanFinish              bool                           `json:"canFinish"`
	CreatedAt              time.Time                      `json:"createdAt"`
	UpdatedAt              time.Time                      `json:"updatedAt"`
}

// Draft is the HTTP representation of the service being drafted.
type Draft struct {
	domain.ServiceFields
	Schedule        []ScheduleEntry `json:"schedule"`
	Photos          []Photo         `json:"photos"`
	ResumeServiceID int64           `json:"resumeServiceId,omitempty"`
}

// ScheduleEntry is one availability window.
type ScheduleEntry struct {
	ID      string `json:"id"`
	Weekday string `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Photo describes an attachment without its bytes.
type Photo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// Submission is the response of a draft submission.
type Submission struct {
	Session Session                     `json:"session"`
	Report  onboardingtypes.EntryReport `json:"report"`
}

// Finish is the response of a completed onboarding.
type Finish struct {
	Session   Session            `json:"session"`
	Auth      domain.AuthSession `json:"auth"`
	HomeRoute string             `json:"homeRoute"`
}

// CategoryToggle reports the selection after a toggle.
type CategoryToggle struct {
	Selected bool    `json:"selected"`
	Session  Session `json:"session"`
}

// ScheduleEntryChange reports the affected entry with the session.
type ScheduleEntryChange struct {
	Entry   ScheduleEntry `json:"entry"`
	Session Session       `json:"session"`
}

// WeekdaySuggestion carries the next free weekday.
type WeekdaySuggestion struct {
	Weekday string `json:"weekday"`
}

// FromProjection converts a session snapshot into its HTTP view.
func FromProjection(p *onboardingtypes.SessionProjection) Session {
	if p == nil || p.Entity == nil {
		return Session{}
	}
	s := p.Entity
	out := Session{
		ID:                     s.ID,
		Step:                   string(s.Step),
		Provider:               s.Identity,
		SelectedCategoryIDs:    s.Selection.IDs(),
		SelectionConfirmed:     s.SelectionFrozen,
		CompletedCategoryIDs:   s.Completed.IDs(),
		RemainingCategoryIDs:   s.Selection.Difference(s.Completed),
		PendingAcknowledgement: s.Pending,
		Services:               s.Services,
		CanAddService:          s.CanAddService(),
		CanFinish:              s.CanFinish(),
		CreatedAt:              p.Metadata.CreatedAt,
		UpdatedAt:              p.Metadata.UpdatedAt,
	}
	if out.Services == nil {
		out.Services = []domain.ServiceRecord{}
	}
	if s.Step == domain.StepServiceEntryLoop {
		draft := FromDraft(&s.Draft)
		out.Draft = &draft
	}
	return out
}

// FromDraft converts a draft, dropping photo bytes.
func FromDraft(d *domain.ServiceDraft) Draft {
	out := Draft{
		ServiceFields:   d.ServiceFields,
		Schedule:        make([]ScheduleEntry, 0, d.Schedule.Len()),
		Photos:          make([]Photo, 0, len(d.Photos)),
		ResumeServiceID: d.ResumeServiceID,
	}
	for _, e := range d.Schedule.Entries() {
		out.Schedule = append(out.Schedule, FromScheduleEntry(e))
	}
	for _, p := range d.Photos {
		out.Photos = append(out.Photos, Photo{ID: p.ID, Filename: p.Filename, ContentType: p.ContentType, Size: len(p.Data)})
	}
	return out
}

// FromScheduleEntry converts one availability window.
func FromScheduleEntry(e domain.ScheduleEntry) ScheduleEntry {
	return ScheduleEntry{
		ID:      e.ID,
		Weekday: domain.WeekdayName(e.Weekday),
		Start:   e.Start.String(),
		End:     e.End.String(),
	}
}

// FromSubmission converts a submission result.
func FromSubmission(r *onboardingtypes.SubmissionResult) Submission {
	return Submission{Session: FromProjection(r.Session), Report: r.Report}
}

// FromFinish converts a finish result.
func FromFinish(r *onboardingtypes.FinishResult) Finish {
	return Finish{Session: FromProjection(r.Session), Auth: r.Auth, HomeRoute: r.HomeRoute}
}

// Outcome is one journaled remote outcome of a session.
type Outcome struct {
	Operation       string    `json:"operation"`
	Kind            string    `json:"kind"`
	CategoryID      int64     `json:"categoryId,omitempty"`
	ServiceID       int64     `json:"serviceId,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	CorrectiveSteps []string  `json:"correctiveSteps"`
	RecordedAt      time.Time `json:"recordedAt"`
}

// FromOutcomes converts journal entries, oldest first.
func FromOutcomes(entries []ports.AuditEntry) []Outcome {
	out := make([]Outcome, 0, len(entries))
	for _, e := range entries {
		steps := e.CorrectiveSteps
		if steps == nil {
			steps = []string{}
		}
		out = append(out, Outcome{
			Operation:       e.Operation,
			Kind:            string(e.Kind),
			CategoryID:      e.CategoryID,
			ServiceID:       e.ServiceID,
			Reason:          e.Reason,
			CorrectiveSteps: steps,
			RecordedAt:      e.RecordedAt,
		})
	}
	return out
}
