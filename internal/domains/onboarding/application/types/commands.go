package types

import (
	"time"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
)

// SessionIdentifier addresses one onboarding session.
type SessionIdentifier struct {
	SessionID string
}

// RegistrationInput carries the basic info form and its documents.
type RegistrationInput struct {
	SessionID string
	Info      domain.BasicInfo
	Documents []domain.Document
}

// ToggleCategoryInput flips one category in the pending selection.
type ToggleCategoryInput struct {
	SessionID  string
	CategoryID int64
}

// CategorySubmissionInput replaces the selection and submits it. A nil CategoryIDs submits
// the selection built by toggling.
type CategorySubmissionInput struct {
	SessionID   string
	CategoryIDs []int64
}

// DraftFieldsInput replaces the scalar fields of the current draft.
type DraftFieldsInput struct {
	SessionID string
	Fields    domain.ServiceFields
}

// ScheduleEntryInput adds one availability window to the draft.
type ScheduleEntryInput struct {
	SessionID string
	Weekday   time.Weekday
	Start     domain.ClockTime
	End       domain.ClockTime
}

// ScheduleEntryPatchInput edits one availability window addressed by id.
type ScheduleEntryPatchInput struct {
	SessionID string
	EntryID   string
	Patch     domain.SchedulePatch
}

// ScheduleEntryRef addresses one availability window.
type ScheduleEntryRef struct {
	SessionID string
	EntryID   string
}

// PhotoInput attaches one photo to the draft.
type PhotoInput struct {
	SessionID string
	Filename  string
	Data      []byte
}

// PhotoRef addresses one attached photo.
type PhotoRef struct {
	SessionID string
	PhotoID   string
}

// AcknowledgementInput answers the prompt raised by an ambiguous service creation.
type AcknowledgementInput struct {
	SessionID string
	Accept    bool
}

// ServiceEntryCommand is everything the three-phase service submission needs. It is the
// payload of the durable workflow, so it must stay serializable.
type ServiceEntryCommand struct {
	SessionID  string              `json:"sessionId"`
	ProviderID int64               `json:"providerId"`
	Attempt    int                 `json:"attempt"`
	Draft      domain.ServiceDraft `json:"draft"`
}
