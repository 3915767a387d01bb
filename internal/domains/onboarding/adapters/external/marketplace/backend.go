package marketplace

import (
	"context"

	marketplaceclient "github.com/Apurer/provider-onboarding/internal/clients/http/marketplace"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	"github.com/Apurer/provider-onboarding/internal/shared/remote"
)

var _ ports.Backend = (*Backend)(nil)

// Backend implements the outbound backend port on top of the marketplace REST client.
type Backend struct {
	client *marketplaceclient.Client
}

// NewBackend wires a marketplace client into the port adapter.
func NewBackend(client *marketplaceclient.Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) RegisterProvider(ctx context.Context, info domain.BasicInfo, documents []domain.Document) remote.Outcome[domain.ProviderIdentity] {
	if b == nil || b.client == nil {
		return remote.Failed[domain.ProviderIdentity]("marketplace backend not configured", 0)
	}
	outcome := b.client.RegisterProvider(ctx, ToRegistration(info, documents))
	return remote.Map(outcome, func(resp marketplaceclient.ProviderResponse) domain.ProviderIdentity {
		return ToIdentity(resp, info)
	})
}

func (b *Backend) RegisterCategories(ctx context.Context, providerID int64, categoryIDs []int64) remote.Outcome[ports.CategoryRegistration] {
	if b == nil || b.client == nil {
		return remote.Failed[ports.CategoryRegistration]("marketplace backend not configured", 0)
	}
	outcome := b.client.RegisterCategories(ctx, providerID, categoryIDs)
	return remote.Map(outcome, func(resp marketplaceclient.CategoryResponse) ports.CategoryRegistration {
		return ports.CategoryRegistration{Registered: resp.Registered, AlreadyRegistered: resp.AlreadyRegistered}
	})
}

func (b *Backend) CreateService(ctx context.Context, providerID int64, fields domain.ServiceFields) remote.Outcome[ports.CreatedService] {
	if b == nil || b.client == nil {
		return remote.Failed[ports.CreatedService]("marketplace backend not configured", 0)
	}
	outcome := b.client.CreateService(ctx, providerID, ToServiceRequest(fields))
	return remote.Map(outcome, func(resp marketplaceclient.ServiceResponse) ports.CreatedService {
		return ports.CreatedService{ID: resp.ID}
	})
}

func (b *Backend) UploadServicePhotos(ctx context.Context, serviceID int64, photos []domain.PhotoAttachment) remote.Outcome[[]ports.PhotoUploadResult] {
	if b == nil || b.client == nil {
		return remote.Failed[[]ports.PhotoUploadResult]("marketplace backend not configured", 0)
	}
	outcome := b.client.UploadServicePhotos(ctx, serviceID, ToPhotoUploads(photos))
	return remote.Map(outcome, func(resp marketplaceclient.PhotoUploadResponse) []ports.PhotoUploadResult {
		return FromPhotoResults(photos, resp.Results)
	})
}

func (b *Backend) CreateServiceSchedules(ctx context.Context, serviceID int64, entries []domain.ScheduleEntry) remote.Outcome[[]ports.ScheduleCreationResult] {
	if b == nil || b.client == nil {
		return remote.Failed[[]ports.ScheduleCreationResult]("marketplace backend not configured", 0)
	}
	outcome := b.client.CreateServiceSchedules(ctx, serviceID, ToScheduleSlots(entries))
	return remote.Map(outcome, func(resp marketplaceclient.ScheduleResponse) []ports.ScheduleCreationResult {
		return FromScheduleResults(entries, resp.Results)
	})
}

func (b *Backend) EstablishSession(ctx context.Context, providerID int64, email string) remote.Outcome[domain.AuthSession] {
	if b == nil || b.client == nil {
		return remote.Failed[domain.AuthSession]("marketplace backend not configured", 0)
	}
	outcome := b.client.EstablishSession(ctx, marketplaceclient.SessionRequest{ProviderID: providerID, Email: email})
	return remote.Map(outcome, func(resp marketplaceclient.SessionResponse) domain.AuthSession {
		return domain.AuthSession{ProviderID: providerID, Email: email, Token: resp.Token, ExpiresAt: resp.ExpiresAt}
	})
}
