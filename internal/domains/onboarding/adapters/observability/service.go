package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

const tracerName = "github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/observability/service"

// Service decorates the onboarding application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// StartSession opens a new onboarding session.
func (s *Service) StartSession(ctx context.Context) (*onboardingtypes.SessionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.StartSession")
	defer span.End()

	result, err := s.inner.StartSession(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to start onboarding session")
	}
	span.SetAttributes(attribute.String("session.id", result.Entity.ID))
	s.metrics.recordStarted(ctx)
	s.logInfo(ctx, "onboarding session started", slog.String("session.id", result.Entity.ID))
	return result, nil
}

// GetSession returns the current snapshot.
func (s *Service) GetSession(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SessionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetSession", attribute.String("session.id", input.SessionID))
	defer span.End()

	result, err := s.inner.GetSession(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load onboarding session", slog.String("session.id", input.SessionID))
	}
	span.SetAttributes(attribute.String("session.step", string(result.Entity.Step)))
	return result, nil
}

// SubmitBasicInfo registers the provider.
func (s *Service) SubmitBasicInfo(ctx context.Context, input onboardingtypes.RegistrationInput) (*onboardingtypes.SessionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SubmitBasicInfo",
		attribute.String("session.id", input.SessionID),
		attribute.Int("documents.count", len(input.Documents)),
	)
	defer span.End()

	s.logInfo(ctx, "submitting basic info", slog.String("session.id", input.SessionID))
	result, err := s.inner.SubmitBasicInfo(ctx, input)
	if err != nil {
		s.metrics.recordRegistration(ctx, "failed")
		return nil, s.handleError(ctx, span, err, "failed to submit basic info", slog.String("session.id", input.SessionID))
	}
	s.metrics.recordRegistration(ctx, "registered")
	if result.Entity.Identity != nil {
		span.SetAttributes(attribute.Int64("provider.id", result.Entity.Identity.ID))
		s.logInfo(ctx, "provider registered",
			slog.String("session.id", input.SessionID),
			slog.Int64("provider.id", result.Entity.Identity.ID),
		)
	}
	return result, nil
}

// ToggleCategory flips one category.
func (s *Service) ToggleCategory(ctx context.Context, input onboardingtypes.ToggleCategoryInput) (*onboardingtypes.CategoryToggleResult, error) {
	ctx, span := s.startSpan(ctx, "Service.ToggleCategory",
		attribute.String("session.id", input.SessionID),
		attribute.Int64("category.id", input.CategoryID),
	)
	defer span.End()

	result, err := s.inner.ToggleCategory(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to toggle category", slog.Int64("category.id", input.CategoryID))
	}
	span.SetAttributes(attribute.Bool("category.selected", result.Selected))
	return result, nil
}

// SubmitCategories registers the selection.
func (s *Service) SubmitCategories(ctx context.Context, input onboardingtypes.CategorySubmissionInput) (*onboardingtypes.SessionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SubmitCategories",
		attribute.String("session.id", input.SessionID),
		attribute.Int64Slice("category.ids", input.CategoryIDs),
	)
	defer span.End()

	s.logInfo(ctx, "submitting categories", slog.String("session.id", input.SessionID), slog.Any("category.ids", input.CategoryIDs))
	result, err := s.inner.SubmitCategories(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit categories", slog.String("session.id", input.SessionID))
	}
	s.logInfo(ctx, "categories confirmed",
		slog.String("session.id", input.SessionID),
		slog.Any("category.ids", result.Entity.Selection.IDs()),
	)
	return result, nil
}

// UpdateDraftFields edits the draft.
func (s *Service) UpdateDraftFields(ctx context.Context, input onboardingtypes.DraftFieldsInput) (*onboardingtypes.SessionProjection, error) {
	return traced(s, ctx, "Service.UpdateDraftFields", input.SessionID, func(ctx context.Context) (*onboardingtypes.SessionProjection, error) {
		return s.inner.UpdateDraftFields(ctx, input)
	})
}

// AddScheduleEntry adds an availability window.
func (s *Service) AddScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryInput) (*onboardingtypes.ScheduleEntryResult, error) {
	return traced(s, ctx, "Service.AddScheduleEntry", input.SessionID, func(ctx context.Context) (*onboardingtypes.ScheduleEntryResult, error) {
		return s.inner.AddScheduleEntry(ctx, input)
	})
}

// UpdateScheduleEntry edits an availability window.
func (s *Service) UpdateScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryPatchInput) (*onboardingtypes.ScheduleEntryResult, error) {
	return traced(s, ctx, "Service.UpdateScheduleEntry", input.SessionID, func(ctx context.Context) (*onboardingtypes.ScheduleEntryResult, error) {
		return s.inner.UpdateScheduleEntry(ctx, input)
	})
}

// RemoveScheduleEntry deletes an availability window.
func (s *Service) RemoveScheduleEntry(ctx context.Context, input onboardingtypes.ScheduleEntryRef) (*onboardingtypes.SessionProjection, error) {
	return traced(s, ctx, "Service.RemoveScheduleEntry", input.SessionID, func(ctx context.Context) (*onboardingtypes.SessionProjection, error) {
		return s.inner.RemoveScheduleEntry(ctx, input)
	})
}

// SuggestWeekday proposes the next weekday.
func (s *Service) SuggestWeekday(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.WeekdaySuggestion, error) {
	return traced(s, ctx, "Service.SuggestWeekday", input.SessionID, func(ctx context.Context) (*onboardingtypes.WeekdaySuggestion, error) {
		return s.inner.SuggestWeekday(ctx, input)
	})
}

// AttachPhoto attaches a photo.
func (s *Service) AttachPhoto(ctx context.Context, input onboardingtypes.PhotoInput) (*onboardingtypes.SessionProjection, error) {
	return traced(s, ctx, "Service.AttachPhoto", input.SessionID, func(ctx context.Context) (*onboardingtypes.SessionProjection, error) {
		return s.inner.AttachPhoto(ctx, input)
	})
}

// RemovePhoto detaches a photo.
func (s *Service) RemovePhoto(ctx context.Context, input onboardingtypes.PhotoRef) (*onboardingtypes.SessionProjection, error) {
	return traced(s, ctx, "Service.RemovePhoto", input.SessionID, func(ctx context.Context) (*onboardingtypes.SessionProjection, error) {
		return s.inner.RemovePhoto(ctx, input)
	})
}

// DiscardDraft clears the draft.
func (s *Service) DiscardDraft(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SessionProjection, error) {
	return traced(s, ctx, "Service.DiscardDraft", input.SessionID, func(ctx context.Context) (*onboardingtypes.SessionProjection, error) {
		return s.inner.DiscardDraft(ctx, input)
	})
}

// SubmitCurrentDraft runs the service submission.
func (s *Service) SubmitCurrentDraft(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.SubmissionResult, error) {
	ctx, span := s.startSpan(ctx, "Service.SubmitCurrentDraft", attribute.String("session.id", input.SessionID))
	defer span.End()

	s.logInfo(ctx, "submitting service draft", slog.String("session.id", input.SessionID))
	result, err := s.inner.SubmitCurrentDraft(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit service draft", slog.String("session.id", input.SessionID))
	}
	report := result.Report
	span.SetAttributes(
		attribute.String("entry.status", string(report.Status)),
		attribute.Int64("category.id", report.CategoryID),
		attribute.Bool("service.confirmed", report.Service.Confirmed),
	)
	s.metrics.recordDraftSubmitted(ctx, report.Status)
	if report.Status == onboardingtypes.EntryAwaitingAcknowledgement || report.Photos.Unconfirmed || report.Schedules.Unconfirmed {
		s.metrics.recordAmbiguous(ctx)
	}
	if report.Failure != nil {
		span.SetAttributes(attribute.String("entry.failed_operation", report.Failure.Operation))
	}
	s.logInfo(ctx, "service draft processed",
		slog.String("session.id", input.SessionID),
		slog.String("status", string(report.Status)),
		slog.Int64("service.id", report.Service.ID),
		slog.Int("notices", len(report.Notices)),
	)
	return result, nil
}

// AcknowledgeAmbiguous resolves a pending ambiguous submission.
func (s *Service) AcknowledgeAmbiguous(ctx context.Context, input onboardingtypes.AcknowledgementInput) (*onboardingtypes.SessionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.AcknowledgeAmbiguous",
		attribute.String("session.id", input.SessionID),
		attribute.Bool("acknowledgement.accept", input.Accept),
	)
	defer span.End()

	result, err := s.inner.AcknowledgeAmbiguous(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve acknowledgement", slog.String("session.id", input.SessionID))
	}
	s.logInfo(ctx, "acknowledgement resolved", slog.String("session.id", input.SessionID), slog.Bool("accepted", input.Accept))
	return result, nil
}

// Finish completes onboarding.
func (s *Service) Finish(ctx context.Context, input onboardingtypes.SessionIdentifier) (*onboardingtypes.FinishResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Finish", attribute.String("session.id", input.SessionID))
	defer span.End()

	result, err := s.inner.Finish(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to finish onboarding", slog.String("session.id", input.SessionID))
	}
	s.metrics.recordCompleted(ctx, result.Session.Entity.Completed.Len())
	s.logInfo(ctx, "onboarding completed",
		slog.String("session.id", input.SessionID),
		slog.Int64("provider.id", result.Auth.ProviderID),
		slog.Int("services", result.Session.Entity.Completed.Len()),
	)
	return result, nil
}

// ListOutcomes reads the session's outcome journal.
func (s *Service) ListOutcomes(ctx context.Context, input onboardingtypes.SessionIdentifier) ([]ports.AuditEntry, error) {
	return traced(s, ctx, "Service.ListOutcomes", input.SessionID, func(ctx context.Context) ([]ports.AuditEntry, error) {
		return s.inner.ListOutcomes(ctx, input)
	})
}

func traced[T any](s *Service, ctx context.Context, name, sessionID string, call func(context.Context) (T, error)) (T, error) {
	ctx, span := s.startSpan(ctx, name, attribute.String("session.id", sessionID))
	defer span.End()

	result, err := call(ctx)
	if err != nil {
		var zero T
		return zero, s.handleError(ctx, span, err, "draft operation failed", slog.String("operation", name), slog.String("session.id", sessionID))
	}
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	sessionsStarted metric.Int64Counter
	registrations   metric.Int64Counter
	draftsSubmitted metric.Int64Counter
	ambiguous       metric.Int64Counter
	completions     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	sessionsStarted, _ := m.Int64Counter("onboarding.sessions.started", metric.WithDescription("Number of onboarding sessions opened"))
	registrations, _ := m.Int64Counter("onboarding.registrations", metric.WithDescription("Basic info submissions by result"))
	draftsSubmitted, _ := m.Int64Counter("onboarding.drafts.submitted", metric.WithDescription("Service submissions by status"))
	ambiguous, _ := m.Int64Counter("onboarding.outcomes.ambiguous", metric.WithDescription("Service submissions with an unconfirmed remote outcome"))
	completions, _ := m.Int64Counter("onboarding.completions", metric.WithDescription("Onboardings finished"))
	return serviceMetrics{
		sessionsStarted: sessionsStarted,
		registrations:   registrations,
		draftsSubmitted: draftsSubmitted,
		ambiguous:       ambiguous,
		completions:     completions,
	}
}

func (m serviceMetrics) recordStarted(ctx context.Context) {
	addCounter(ctx, m.sessionsStarted, 1)
}

func (m serviceMetrics) recordRegistration(ctx context.Context, result string) {
	addCounter(ctx, m.registrations, 1, attribute.String("result", result))
}

func (m serviceMetrics) recordDraftSubmitted(ctx context.Context, status onboardingtypes.EntryStatus) {
	addCounter(ctx, m.draftsSubmitted, 1, attribute.String("entry.status", string(status)))
}

func (m serviceMetrics) recordAmbiguous(ctx context.Context) {
	addCounter(ctx, m.ambiguous, 1)
}

func (m serviceMetrics) recordCompleted(ctx context.Context, services int) {
	addCounter(ctx, m.completions, 1, attribute.Int("services", services))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
