package application

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	"github.com/Apurer/provider-onboarding/internal/shared/remote"
)

// fakeBackend answers every call with a configurable outcome and records the calls.
type fakeBackend struct {
	mu sync.Mutex

	register   remote.Outcome[domain.ProviderIdentity]
	categories func(ids []int64) remote.Outcome[ports.CategoryRegistration]
	create     remote.Outcome[ports.CreatedService]
	photos     func(photos []domain.PhotoAttachment) remote.Outcome[[]ports.PhotoUploadResult]
	schedules  func(entries []domain.ScheduleEntry) remote.Outcome[[]ports.ScheduleCreationResult]
	session    remote.Outcome[domain.AuthSession]

	calls map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		register: remote.Confirmed(domain.ProviderIdentity{ID: 42, DisplayName: "Ada", BusinessName: "Analytical Cleaning", Email: "ada@example.com"}),
		categories: func(ids []int64) remote.Outcome[ports.CategoryRegistration] {
			return remote.Confirmed(ports.CategoryRegistration{Registered: ids})
		},
		create: remote.Confirmed(ports.CreatedService{ID: 900}),
		photos: func(photos []domain.PhotoAttachment) remote.Outcome[[]ports.PhotoUploadResult] {
			out := make([]ports.PhotoUploadResult, 0, len(photos))
			for _, p := range photos {
				out = append(out, ports.PhotoUploadResult{AttachmentID: p.ID, Filename: p.Filename, Stored: true})
			}
			return remote.Confirmed(out)
		},
		schedules: func(entries []domain.ScheduleEntry) remote.Outcome[[]ports.ScheduleCreationResult] {
			out := make([]ports.ScheduleCreationResult, 0, len(entries))
			for _, e := range entries {
				out = append(out, ports.ScheduleCreationResult{EntryID: e.ID, Weekday: e.Weekday, Created: true})
			}
			return remote.Confirmed(out)
		},
		session: remote.Confirmed(domain.AuthSession{ProviderID: 42, Email: "ada@example.com", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}),
		calls:   map[string]int{},
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) RegisterProvider(context.Context, domain.BasicInfo, []domain.Document) remote.Outcome[domain.ProviderIdentity] {
	f.hit("register")
	return f.register
}

func (f *fakeBackend) RegisterCategories(_ context.Context, _ int64, ids []int64) remote.Outcome[ports.CategoryRegistration] {
	f.hit("categories")
	return f.categories(ids)
}

func (f *fakeBackend) CreateService(context.Context, int64, domain.ServiceFields) remote.Outcome[ports.CreatedService] {
	f.hit("create")
	return f.create
}

func (f *fakeBackend) UploadServicePhotos(_ context.Context, _ int64, photos []domain.PhotoAttachment) remote.Outcome[[]ports.PhotoUploadResult] {
	f.hit("photos")
	return f.photos(photos)
}

func (f *fakeBackend) CreateServiceSchedules(_ context.Context, _ int64, entries []domain.ScheduleEntry) remote.Outcome[[]ports.ScheduleCreationResult] {
	f.hit("schedules")
	return f.schedules(entries)
}

func (f *fakeBackend) EstablishSession(context.Context, int64, string) remote.Outcome[domain.AuthSession] {
	f.hit("session")
	return f.session
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []domain.AuthSession
}

func (p *recordingPublisher) Publish(_ context.Context, session domain.AuthSession) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, session)
	return nil
}

var _ ports.Backend = (*fakeBackend)(nil)
