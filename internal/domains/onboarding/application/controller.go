package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

// DefaultHomeRoute is where a provider lands once onboarding completes.
const DefaultHomeRoute = "/provider/home"

// Controller drives one visitor's onboarding session through the wizard steps. Operations
// on the same session are serialized; different sessions proceed in parallel.
type Controller struct {
	store      ports.SessionStore
	backend    ports.Backend
	runner     ports.ServiceEntryRunner
	categories *CategorySelectionStep
	publisher  ports.SessionPublisher
	journal    ports.AuditJournal
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
	homeRoute  string
	locks      sync.Map
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithRunner overrides how service submissions run (inline by default).
func WithRunner(runner ports.ServiceEntryRunner) Option {
	return func(c *Controller) { c.runner = runner }
}

// WithPublisher injects the session hand-off publisher.
func WithPublisher(publisher ports.SessionPublisher) Option {
	return func(c *Controller) { c.publisher = publisher }
}

// WithAuditJournal injects the audit journal.
func WithAuditJournal(journal ports.AuditJournal) Option {
	return func(c *Controller) { c.journal = journal }
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// WithHomeRoute sets the route returned when onboarding completes.
func WithHomeRoute(route string) Option {
	return func(c *Controller) { c.homeRoute = route }
}

// NewController wires the onboarding use cases.
func NewController(store ports.SessionStore, backend ports.Backend, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		backend:   backend,
		journal:   ports.NoopAuditJournal,
		logger:    defaultLogger(),
		now:       time.Now,
		newID:     uuid.NewString,
		homeRoute: DefaultHomeRoute,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.logger == nil {
		c.logger = defaultLogger()
	}
	if c.journal == nil {
		c.journal = ports.NoopAuditJournal
	}
	if c.runner == nil {
		c.runner = NewServiceEntryOrchestrator(backend,
			WithOrchestratorLogger(c.logger),
			WithOrchestratorJournal(c.journal),
			WithOrchestratorClock(c.now),
		)
	}
	c.categories = NewCategorySelectionStep(backend, c.journal, c.logger)
	c.categories.now = c.now
	return c
}

// StartSession opens a new unregistered session.
func (c *Controller) StartSession(ctx context.Context) (*onboardingtypes.SessionProjection, error) {
	session := domain.NewSession(c.newID(), c.now().UTC())
	saved, err := c.store.Create(ctx, session)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetSession returns the current snapshot.
func (c *Controller) GetSession(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SessionProjection, error) {
	proj, err := c.store.Get(ctx, input.SessionID)
	if err != nil {
		return nil, mapError(err)
	}
	return proj, nil
}

// SubmitBasicInfo validates the registration form and registers the provider.
func (c *Controller) SubmitBasicInfo(ctx context.Context, input onboardingtypes.RegistrationInput) (*onboardingtypes.SessionProjection, error) {
	unlock := c.lock(input.SessionID)
	defer unlock()

	session, err := c.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Require("submit basic info", domain.StepUnregistered); err != nil {
		return nil, mapError(err)
	}
	info := input.Info.Normalized()
	if err := domain.ValidateRegistration(info, input.Documents); err != nil {
		return nil, mapError(err)
	}
	outcome := c.backend.RegisterProvider(ctx, info, input.Documents)
	if !outcome.IsConfirmed() {
		if outcome.IsAmbiguous() {
			c.logger.WarnContext(ctx, "provider registration outcome is ambiguous",
				slog.String("session.id", session.ID),
				slog.String("operation", onboardingtypes.OperationRegisterProvider),
				slog.String("raw_failure", outcome.Reason),
				slog.Any("corrective_steps", []string{"Try logging in with the submitted email before registering again."}),
			)
		}
		c.audit(ctx, session, onboardingtypes.OperationRegisterProvider, auditKindFor(outcome.IsAmbiguous()), outcome.Reason,
			"Try logging in with the submitted email before registering again.")
		return nil, remoteFailure(onboardingtypes.OperationRegisterProvider, outcome)
	}
	if err := session.RecordRegistration(outcome.Value); err != nil {
		return nil, mapError(err)
	}
	return c.save(ctx, session)
}

// ToggleCategory flips one category in the pending selection.
func (c *Controller) ToggleCategory(ctx context.Context, input onboardingtypes.ToggleCategoryInput) (*onboardingtypes.CategoryToggleResult, error) {
	var selected bool
	proj, err := c.mutate(ctx, input.SessionID, func(s *domain.Session) error {
		var err error
		selected, err = s.ToggleCategory(input.CategoryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &onboardingtypes.CategoryToggleResult{Session: proj, Selected: selected}, nil
}

// SubmitCategories registers the selection. On failure the session stays in
// categories_selected with the selection intact so the visitor can retry.
func (c *Controller) SubmitCategories(ctx context.Context, input onboardingtypes.CategorySubmissionInput) (*onboardingtypes.SessionProjection, error) {
	unlock := c.lock(input.SessionID)
	defer unlock()

	session, err := c.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	selection := session.Selection
	if input.CategoryIDs != nil {
		selection = domain.NewCategorySet(input.CategoryIDs...)
	}
	if err := session.BeginCategorySubmission(selection); err != nil {
		return nil, mapError(err)
	}
	if _, err := c.save(ctx, session); err != nil {
		return nil, err
	}
	if err := c.categories.Register(ctx, session.ID, session.Identity.ID, session.Selection); err != nil {
		return nil, mapError(err)
	}
	if err := session.ConfirmCategories(); err != nil {
		return nil, mapError(err)
	}
	return c.save(ctx, session)
}

// UpdateDraftFields replaces the scalar fields of the draft.
func (c *Controller) UpdateDraftFields(ctx context.Context, input onboardingtypes.DraftFieldsInput) (*onboardingtypes.SessionProjection, error) {
	return c.mutateDraft(ctx, input.SessionID, "edit draft", func(s *domain.Session) error {
		return s.Draft.SetFields(input.Fields)
	})
}

// AddScheduleEntry adds an availability window.
func (c *Controller) AddScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryInput) (*onboardingtypes.ScheduleEntryResult, error) {
	var entry domain.ScheduleEntry
	proj, err := c.mutateDraft(ctx, input.SessionID, "add schedule entry", func(s *domain.Session) error {
		var err error
		entry, err = s.Draft.Schedule.Add(input.Weekday, input.Start, input.End)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &onboardingtypes.ScheduleEntryResult{Session: proj, Entry: entry}, nil
}

// UpdateScheduleEntry edits an availability window by id.
func (c *Controller) UpdateScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryPatchInput) (*onboardingtypes.ScheduleEntryResult, error) {
	var entry domain.ScheduleEntry
	proj, err := c.mutateDraft(ctx, input.SessionID, "update schedule entry", func(s *domain.Session) error {
		var err error
		entry, err = s.Draft.Schedule.Update(input.EntryID, input.Patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &onboardingtypes.ScheduleEntryResult{Session: proj, Entry: entry}, nil
}

// RemoveScheduleEntry deletes an availability window by id.
func (c *Controller) RemoveScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryRef) (*onboardingtypes.SessionProjection, error) {
	return c.mutateDraft(ctx, input.SessionID, "remove schedule entry", func(s *domain.Session) error {
		if !s.Draft.Schedule.Remove(input.EntryID) {
			return domain.ErrScheduleEntryNotFound
		}
		return nil
	})
}

// SuggestWeekday proposes the weekday for the next schedule row.
func (c *Controller) SuggestWeekday(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.WeekdaySuggestion, error) {
	session, err := c.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Require("suggest weekday", domain.StepServiceEntryLoop); err != nil {
		return nil, mapError(err)
	}
	return &onboardingtypes.WeekdaySuggestion{Weekday: session.Draft.Schedule.NextSuggestedWeekday()}, nil
}

// AttachPhoto sniffs and attaches a photo to the draft.
func (c *Controller) AttachPhoto(ctx context.Context, input onboardingtypes.PhotoInput) (*onboardingtypes.SessionProjection, error) {
	photo, err := domain.NewPhotoAttachment(input.Filename, input.Data)
	if err != nil {
		return nil, mapError(err)
	}
	return c.mutateDraft(ctx, input.SessionID, "attach photo", func(s *domain.Session) error {
		return s.Draft.AttachPhoto(photo)
	})
}

// RemovePhoto detaches a pending photo.
func (c *Controller) RemovePhoto(ctx context.Context, input onboardingtypes.PhotoRef) (*onboardingtypes.SessionProjection, error) {
	return c.mutateDraft(ctx, input.SessionID, "remove photo", func(s *domain.Session) error {
		return s.Draft.RemovePhoto(input.PhotoID)
	})
}

// DiscardDraft clears the draft, including any service kept for resumption.
func (c *Controller) DiscardDraft(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SessionProjection, error) {
	return c.mutateDraft(ctx, input.SessionID, "discard draft", func(s *domain.Session) error {
		if s.Draft.ResumeServiceID != 0 {
			c.logger.WarnContext(ctx, "discarding draft of a service created without schedules",
				slog.String("session.id", s.ID),
				slog.Int64("service.id", s.Draft.ResumeServiceID),
			)
		}
		s.Draft = domain.NewServiceDraft()
		return nil
	})
}

// SubmitCurrentDraft validates the draft and runs the service submission saga. Remote
// outcomes are returned in the report; the error is reserved for local problems.
func (c *Controller) SubmitCurrentDraft(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SubmissionResult, error) {
	unlock := c.lock(input.SessionID)
	defer unlock()

	session, err := c.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if err := session.RequireDraftEditable("submit service"); err != nil {
		return nil, mapError(err)
	}
	if err := session.Draft.Validate(session.Selection, session.Completed); err != nil {
		return nil, mapError(err)
	}
	cmd := onboardingtypes.ServiceEntryCommand{
		SessionID:  session.ID,
		ProviderID: session.Identity.ID,
		Attempt:    session.NextAttempt(),
		Draft:      session.Draft.Clone(),
	}

	// The saga keeps going if the caller disconnects so its result is not lost.
	report, err := c.runner.RunServiceEntry(context.WithoutCancel(ctx), cmd)
	if err != nil {
		if _, saveErr := c.save(ctx, session); saveErr != nil {
			c.logger.ErrorContext(ctx, "failed to save session after runner error", slog.String("error", saveErr.Error()))
		}
		return nil, err
	}

	switch report.Status {
	case onboardingtypes.EntryCompleted:
		err = session.CompleteService(domain.ServiceRecord{
			CategoryID:  report.CategoryID,
			ServiceID:   report.Service.ID,
			Title:       report.Title,
			Confirmed:   report.Service.Confirmed,
			Notices:     append([]string(nil), report.Notices...),
			CompletedAt: c.now().UTC(),
		})
		if err != nil {
			return nil, mapError(err)
		}
	case onboardingtypes.EntryAwaitingAcknowledgement:
		reason := ""
		if len(report.Notices) > 0 {
			reason = report.Notices[0]
		}
		session.HoldForAcknowledgement(domain.PendingAcknowledgement{
			CategoryID:     report.CategoryID,
			ProvisionalID:  report.Service.ID,
			Title:          report.Title,
			Reason:         reason,
			CorrectiveHint: "Check the marketplace for the service before confirming.",
			RaisedAt:       c.now().UTC(),
		})
	case onboardingtypes.EntryFailed:
		if report.Service.Confirmed && report.Service.ID != 0 {
			session.RetainForResumption(report.Service.ID, settledPhotos(cmd.Draft, report.Photos))
		}
	default:
		return nil, errors.New("service entry runner returned an unknown status")
	}

	proj, err := c.save(context.WithoutCancel(ctx), session)
	if err != nil {
		return nil, err
	}
	return &onboardingtypes.SubmissionResult{Session: proj, Report: report}, nil
}

// AcknowledgeAmbiguous resolves the prompt raised by an ambiguous service creation.
func (c *Controller) AcknowledgeAmbiguous(ctx context.Context, input onboardingtypes.AcknowledgementInput) (*onboardingtypes.SessionProjection, error) {
	unlock := c.lock(input.SessionID)
	defer unlock()

	session, err := c.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	pending, err := session.ResolveAcknowledgement(input.Accept, c.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	if !input.Accept {
		c.logger.WarnContext(ctx, "ambiguous service declined; it may still exist on the marketplace",
			slog.String("session.id", session.ID),
			slog.Int64("category.id", pending.CategoryID),
			slog.String("title", pending.Title),
		)
		c.audit(ctx, session, onboardingtypes.OperationCreateService, ports.AuditDeclined, pending.Reason,
			"Remove the duplicate service from the marketplace if the resubmission creates a second one.")
	}
	return c.save(ctx, session)
}

// Finish establishes the authenticated session and completes onboarding.
func (c *Controller) Finish(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.FinishResult, error) {
	unlock := c.lock(input.SessionID)
	defer unlock()

	session, err := c.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CheckFinish(); err != nil {
		return nil, mapError(err)
	}
	outcome := c.backend.EstablishSession(ctx, session.Identity.ID, session.Identity.Email)
	if !outcome.IsConfirmed() {
		c.audit(ctx, session, onboardingtypes.OperationEstablishSession, auditKindFor(outcome.IsAmbiguous()), outcome.Reason,
			"Finish onboarding again or log in with the registered email.")
		return nil, remoteFailure(onboardingtypes.OperationEstablishSession, outcome)
	}
	auth := outcome.Value
	if err := session.Finish(auth); err != nil {
		return nil, mapError(err)
	}
	proj, err := c.save(ctx, session)
	if err != nil {
		return nil, err
	}
	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, auth); err != nil {
			c.logger.ErrorContext(ctx, "failed to publish provider session",
				slog.String("session.id", session.ID),
				slog.Int64("provider.id", auth.ProviderID),
				slog.String("error", err.Error()),
			)
		}
	}
	return &onboardingtypes.FinishResult{Session: proj, Auth: auth, HomeRoute: c.homeRoute}, nil
}

// ListOutcomes returns the journaled outcomes of a session that needed attention.
func (c *Controller) ListOutcomes(ctx context.Context, input onboardingtypes.SessionIdentifier) ([]ports.AuditEntry, error) {
	if _, err := c.store.Get(ctx, input.SessionID); err != nil {
		return nil, mapError(err)
	}
	return c.journal.ListBySession(ctx, input.SessionID)
}

// Forget drops the per-session lock once a session is gone from the store.
func (c *Controller) Forget(sessionID string) {
	c.locks.Delete(sessionID)
}

func (c *Controller) lock(sessionID string) func() {
	value, _ := c.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (c *Controller) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	proj, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	return proj.Entity, nil
}

func (c *Controller) save(ctx context.Context, session *domain.Session) (*onboardingtypes.SessionProjection, error) {
	session.UpdatedAt = c.now().UTC()
	proj, err := c.store.Save(ctx, session)
	if err != nil {
		return nil, mapError(err)
	}
	return proj, nil
}

// mutate runs fn under the session lock and saves only when fn succeeds.
func (c *Controller) mutate(ctx context.Context, sessionID string, fn func(*domain.Session) error) (*onboardingtypes.SessionProjection, error) {
	unlock := c.lock(sessionID)
	defer unlock()

	session, err := c.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, mapError(err)
	}
	return c.save(ctx, session)
}

func (c *Controller) mutateDraft(ctx context.Context, sessionID, operation string, fn func(*domain.Session) error) (*onboardingtypes.SessionProjection, error) {
	return c.mutate(ctx, sessionID, func(s *domain.Session) error {
		if err := s.RequireDraftEditable(operation); err != nil {
			return err
		}
		return fn(s)
	})
}

func (c *Controller) audit(ctx context.Context, session *domain.Session, operation string, kind ports.AuditKind, reason, step string) {
	entry := ports.AuditEntry{
		SessionID:       session.ID,
		Operation:       operation,
		Kind:            kind,
		Reason:          reason,
		CorrectiveSteps: []string{step},
		RecordedAt:      c.now().UTC(),
	}
	if session.Identity != nil {
		entry.ProviderID = session.Identity.ID
	}
	if err := c.journal.Record(ctx, entry); err != nil {
		c.logger.ErrorContext(ctx, "failed to journal remote outcome",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}
}

func auditKindFor(ambiguous bool) ports.AuditKind {
	if ambiguous {
		return ports.AuditAmbiguous
	}
	return ports.AuditFailed
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Controller)(nil)

// settledPhotos names the photos a retry must not send again: those stored, plus every
// photo of an upload whose outcome could not be confirmed.
func settledPhotos(draft domain.ServiceDraft, photos onboardingtypes.PhotoReport) []string {
	if !photos.Unconfirmed {
		return photos.Uploaded
	}
	names := make([]string, 0, len(draft.Photos))
	for _, p := range draft.Photos {
		names = append(names, p.Filename)
	}
	return names
}
