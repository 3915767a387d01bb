package ports

import (
	"context"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
)

// Service defines the onboarding use cases exposed to adapters (inbound/driving port).
type Service interface {
	StartSession(ctx context.Context) (*onboardingtypes.SessionProjection, error)
	GetSession(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SessionProjection, error)
	SubmitBasicInfo(ctx context.Context, input onboardingtypes.RegistrationInput) (*onboardingtypes.SessionProjection, error)
	ToggleCategory(ctx context.Context, input onboardingtypes.ToggleCategoryInput) (*onboardingtypes.CategoryToggleResult, error)
	SubmitCategories(ctx context.Context, input onboardingtypes.CategorySubmissionInput) (*onboardingtypes.SessionProjection, error)
	UpdateDraftFields(ctx context.Context, input onboardingtypes.DraftFieldsInput) (*onboardingtypes.SessionProjection, error)
	AddScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryInput) (*onboardingtypes.ScheduleEntryResult, error)
	UpdateScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryPatchInput) (*onboardingtypes.ScheduleEntryResult, error)
	RemoveScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryRef) (*onboardingtypes.SessionProjection, error)
	SuggestWeekday(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.WeekdaySuggestion, error)
	AttachPhoto(ctx context.Context, input onboardingtypes.PhotoInput) (*onboardingtypes.SessionProjection, error)
	RemovePhoto(ctx context.Context, input onboardingtypes.PhotoRef) (*onboardingtypes.SessionProjection, error)
	DiscardDraft(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SessionProjection, error)
	SubmitCurrentDraft(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SubmissionResult, error)
	AcknowledgeAmbiguous(ctx context.Context, input onboardingtypes.AcknowledgementInput) (*onboardingtypes.SessionProjection, error)
	Finish(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.FinishResult, error)
	ListOutcomes(ctx context.Context, input onboardingtypes.SessionIdentifier) ([]AuditEntry, error)
}
