package types

import (
	"time"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/shared/projection"
)

// EntryStatus is the overall result of one service submission.
type EntryStatus string

const (
	EntryCompleted               EntryStatus = "completed"
	EntryAwaitingAcknowledgement EntryStatus = "awaiting_acknowledgement"
	EntryFailed                  EntryStatus = "failed"
)

// Operation names used in reports, logs and the audit journal.
const (
	OperationRegisterProvider   = "register_provider"
	OperationRegisterCategories = "register_categories"
	OperationCreateService      = "create_service"
	OperationUploadPhotos       = "upload_photos"
	OperationCreateSchedules    = "create_schedules"
	OperationEstablishSession   = "establish_session"
)

// EntryFailure describes why a submission did not complete.
type EntryFailure struct {
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
	Status    int    `json:"status,omitempty"`
}

// ServiceRef identifies the service a submission created or resumed.
type ServiceRef struct {
	ID        int64 `json:"id,omitempty"`
	Confirmed bool  `json:"confirmed"`
	Resumed   bool  `json:"resumed,omitempty"`
}

// ItemFailure is one rejected element of a collection call.
type ItemFailure struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// PhotoReport summarizes the best-effort photo phase.
type PhotoReport struct {
	Attempted   bool          `json:"attempted"`
	Skipped     bool          `json:"skipped,omitempty"`
	Unconfirmed bool          `json:"unconfirmed,omitempty"`
	Uploaded    []string      `json:"uploaded,omitempty"`
	Failed      []ItemFailure `json:"failed,omitempty"`
}

// ScheduleReport summarizes the schedule phase. Created and Failed hold weekday names.
type ScheduleReport struct {
	Attempted   bool          `json:"attempted"`
	Skipped     bool          `json:"skipped,omitempty"`
	Unconfirmed bool          `json:"unconfirmed,omitempty"`
	Created     []string      `json:"created,omitempty"`
	Failed      []ItemFailure `json:"failed,omitempty"`
}

// EntryReport is the structured result of a service submission. Remote failures are
// carried here instead of as Go errors so the report survives workflow serialization.
type EntryReport struct {
	Status     EntryStatus    `json:"status"`
	CategoryID int64          `json:"categoryId"`
	Title      string         `json:"title"`
	Service    ServiceRef     `json:"service"`
	Failure    *EntryFailure  `json:"failure,omitempty"`
	Photos     PhotoReport    `json:"photos"`
	Schedules  ScheduleReport `json:"schedules"`
	Notices    []string       `json:"notices,omitempty"`
}

// Notice appends a user-facing message.
func (r *EntryReport) Notice(msg string) {
	r.Notices = append(r.Notices, msg)
}

// SessionProjection is a session snapshot plus store timestamps.
type SessionProjection = projection.Projection[*domain.Session]

// SubmissionResult pairs the updated session with the submission report.
type SubmissionResult struct {
	Session *SessionProjection
	Report  EntryReport
}

// FinishResult is returned when onboarding completes.
type FinishResult struct {
	Session   *SessionProjection
	Auth      domain.AuthSession
	HomeRoute string
}

// CategoryToggleResult reports the selection after a toggle.
type CategoryToggleResult struct {
	Session  *SessionProjection
	Selected bool
}

// ScheduleEntryResult is returned by schedule edits.
type ScheduleEntryResult struct {
	Session *SessionProjection
	Entry   domain.ScheduleEntry
}

// WeekdaySuggestion is the next free weekday for a new schedule row.
type WeekdaySuggestion struct {
	Weekday time.Weekday
}
