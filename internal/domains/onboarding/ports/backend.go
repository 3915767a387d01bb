package ports

import (
	"context"
	"time"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/shared/remote"
)

// CategoryRegistration is the backend's answer to a category registration.
type CategoryRegistration struct {
	Registered        []int64
	AlreadyRegistered []int64
}

// Confirmed returns every id the backend acknowledged, new or pre-existing.
func (r CategoryRegistration) Confirmed() domain.CategorySet {
	set := domain.NewCategorySet(r.Registered...)
	for _, id := range r.AlreadyRegistered {
		set.Add(id)
	}
	return set
}

// CreatedService is the backend's view of a newly created service.
type CreatedService struct {
	ID int64
}

// PhotoUploadResult is the per-photo outcome of an upload call, keyed by attachment id.
type PhotoUploadResult struct {
	AttachmentID string
	Filename     string
	Stored       bool
	RemoteID     int64
	URL          string
	Error        string
}

// ScheduleCreationResult is the per-entry outcome of a schedule creation call.
type ScheduleCreationResult struct {
	EntryID  string
	Weekday  time.Weekday
	Created  bool
	RemoteID int64
	Error    string
}

// Backend is the marketplace REST backend as seen by the onboarding workflow (outbound port).
// Every call reports a tagged remote.Outcome instead of an error.
type Backend interface {
	RegisterProvider(ctx context.Context, info domain.BasicInfo, documents []domain.Document) remote.Outcome[domain.ProviderIdentity]
	RegisterCategories(ctx context.Context, providerID int64, categoryIDs []int64) remote.Outcome[CategoryRegistration]
	CreateService(ctx context.Context, providerID int64, fields domain.ServiceFields) remote.Outcome[CreatedService]
	UploadServicePhotos(ctx context.Context, serviceID int64, photos []domain.PhotoAttachment) remote.Outcome[[]PhotoUploadResult]
	CreateServiceSchedules(ctx context.Context, serviceID int64, entries []domain.ScheduleEntry) remote.Outcome[[]ScheduleCreationResult]
	EstablishSession(ctx context.Context, providerID int64, email string) remote.Outcome[domain.AuthSession]
}
