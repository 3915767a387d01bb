package domain

import (
	"errors"
	"fmt"
	"time"
)

// Step is the position of a visitor in the onboarding wizard. Steps only move forward.
type Step string

const (
	StepUnregistered       Step = "unregistered"
	StepBasicInfoSubmitted Step = "basic_info_submitted"
	StepCategoriesSelected Step = "categories_selected"
	StepServiceEntryLoop   Step = "service_entry_loop"
	StepCompleted          Step = "completed"
)

var (
	ErrStepMismatch             = errors.New("operation not allowed in the current onboarding step")
	ErrEmptySelection           = errors.New("select at least one category")
	ErrSelectionFrozen          = errors.New("category selection is already confirmed")
	ErrAcknowledgementPending   = errors.New("an ambiguous service submission awaits acknowledgement")
	ErrNoPendingAcknowledgement = errors.New("nothing awaits acknowledgement")
	ErrNothingCompleted         = errors.New("complete at least one service before finishing")
	ErrCategoryNotSelected      = errors.New("category is not part of the selection")
)

// StepError reports an operation attempted outside the steps that allow it.
type StepError struct {
	Operation string
	Current   Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s is not allowed in step %s", e.Operation, e.Current)
}

func (e *StepError) Is(target error) bool {
	return target == ErrStepMismatch
}

// PendingAcknowledgement holds a service whose creation could not be confirmed. The visitor
// must accept it (counting the category as done) or decline it (keeping the draft).
type PendingAcknowledgement struct {
	CategoryID     int64     `json:"categoryId"`
	ProvisionalID  int64     `json:"provisionalId,omitempty"`
	Title          string    `json:"title"`
	Reason         string    `json:"reason"`
	CorrectiveHint string    `json:"correctiveHint"`
	RaisedAt       time.Time `json:"raisedAt"`
}

// ServiceRecord is a service counted toward completion.
type ServiceRecord struct {
	CategoryID  int64     `json:"categoryId"`
	ServiceID   int64     `json:"serviceId,omitempty"`
	Title       string    `json:"title"`
	Confirmed   bool      `json:"confirmed"`
	Notices     []string  `json:"notices,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

// AuthSession is the authenticated session established when onboarding finishes.
type AuthSession struct {
	ProviderID int64     `json:"providerId"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Session is the onboarding state of one visitor. It is mutated only through its
// transition methods; stores hand out clones.
type Session struct {
	ID              string
	Step            Step
	Identity        *ProviderIdentity
	Selection       CategorySet
	SelectionFrozen bool
	Completed       CategorySet
	Draft           ServiceDraft
	Pending         *PendingAcknowledgement
	Services        []ServiceRecord
	Auth            *AuthSession
	Submissions     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewSession starts an unregistered session.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Step:      StepUnregistered,
		Draft:     NewServiceDraft(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Require fails with a *StepError unless the session is in one of the allowed steps.
func (s *Session) Require(operation string, allowed ...Step) error {
	for _, step := range allowed {
		if s.Step == step {
			return nil
		}
	}
	return &StepError{Operation: operation, Current: s.Step}
}

// RecordRegistration stores the identity created by basic registration.
func (s *Session) RecordRegistration(identity ProviderIdentity) error {
	if err := s.Require("submit basic info", StepUnregistered); err != nil {
		return err
	}
	s.Identity = &identity
	s.Step = StepBasicInfoSubmitted
	return nil
}

// ToggleCategory flips one category in the selection before it is confirmed.
func (s *Session) ToggleCategory(id int64) (bool, error) {
	if err := s.Require("toggle category", StepBasicInfoSubmitted, StepCategoriesSelected); err != nil {
		return false, err
	}
	if s.SelectionFrozen {
		return false, ErrSelectionFrozen
	}
	return s.Selection.Toggle(id), nil
}

// BeginCategorySubmission replaces the selection and marks it pending confirmation.
func (s *Session) BeginCategorySubmission(selection CategorySet) error {
	if err := s.Require("submit categories", StepBasicInfoSubmitted, StepCategoriesSelected); err != nil {
		return err
	}
	if s.SelectionFrozen {
		return ErrSelectionFrozen
	}
	if selection.Len() == 0 {
		return &ValidationError{Fields: map[string]string{"categoryIds": ErrEmptySelection.Error()}}
	}
	s.Selection = selection.Clone()
	s.Step = StepCategoriesSelected
	return nil
}

// ConfirmCategories freezes the selection and opens the service entry loop.
func (s *Session) ConfirmCategories() error {
	if err := s.Require("confirm categories", StepCategoriesSelected); err != nil {
		return err
	}
	s.SelectionFrozen = true
	s.Step = StepServiceEntryLoop
	s.Draft = NewServiceDraft()
	return nil
}

// RequireDraftEditable guards every draft mutation and submission.
func (s *Session) RequireDraftEditable(operation string) error {
	if err := s.Require(operation, StepServiceEntryLoop); err != nil {
		return err
	}
	if s.Pending != nil {
		return ErrAcknowledgementPending
	}
	return nil
}

// CanAddService reports whether some selected category still lacks a service.
func (s *Session) CanAddService() bool {
	return s.Step == StepServiceEntryLoop && s.Completed.Len() < s.Selection.Len()
}

// CanFinish reports whether Finish would be accepted.
func (s *Session) CanFinish() bool {
	return s.Step == StepServiceEntryLoop && s.Completed.Len() > 0 && s.Pending == nil
}

// CompleteService counts the category as done and resets the draft.
func (s *Session) CompleteService(record ServiceRecord) error {
	if !s.Selection.Has(record.CategoryID) {
		return fmt.Errorf("%w: %d", ErrCategoryNotSelected, record.CategoryID)
	}
	s.Completed.Add(record.CategoryID)
	s.Services = append(s.Services, record)
	s.Draft = NewServiceDraft()
	return nil
}

// HoldForAcknowledgement parks an ambiguous submission until the visitor decides.
func (s *Session) HoldForAcknowledgement(pending PendingAcknowledgement) {
	s.Pending = &pending
}

// RetainForResumption remembers a confirmed service whose schedules still need creating.
// Photos the marketplace already holds for it are taken out of the draft.
func (s *Session) RetainForResumption(serviceID int64, settledPhotos []string) {
	s.Draft.ResumeServiceID = serviceID
	s.Draft.dropPhotos(settledPhotos)
}

// ResolveAcknowledgement applies the visitor's answer to a pending ambiguous submission.
// Accepting counts the category as done; declining keeps the draft for another attempt.
func (s *Session) ResolveAcknowledgement(accept bool, now time.Time) (PendingAcknowledgement, error) {
	if err := s.Require("acknowledge submission", StepServiceEntryLoop); err != nil {
		return PendingAcknowledgement{}, err
	}
	if s.Pending == nil {
		return PendingAcknowledgement{}, ErrNoPendingAcknowledgement
	}
	pending := *s.Pending
	s.Pending = nil
	if !accept {
		return pending, nil
	}
	err := s.CompleteService(ServiceRecord{
		CategoryID:  pending.CategoryID,
		ServiceID:   pending.ProvisionalID,
		Title:       pending.Title,
		Confirmed:   false,
		Notices:     []string{pending.Reason},
		CompletedAt: now,
	})
	return pending, err
}

// NextAttempt numbers a new service submission.
func (s *Session) NextAttempt() int {
	s.Submissions++
	return s.Submissions
}

// CheckFinish reports why Finish would be rejected, or nil.
func (s *Session) CheckFinish() error {
	if err := s.Require("finish onboarding", StepServiceEntryLoop); err != nil {
		return err
	}
	if s.Pending != nil {
		return ErrAcknowledgementPending
	}
	if s.Completed.Len() == 0 {
		return ErrNothingCompleted
	}
	return nil
}

// Finish closes onboarding once at least one service is complete.
func (s *Session) Finish(auth AuthSession) error {
	if err := s.CheckFinish(); err != nil {
		return err
	}
	s.Auth = &auth
	s.Step = StepCompleted
	return nil
}

// Clone returns a deep copy safe to mutate independently.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Identity != nil {
		identity := *s.Identity
		out.Identity = &identity
	}
	out.Selection = s.Selection.Clone()
	out.Completed = s.Completed.Clone()
	out.Draft = s.Draft.Clone()
	if s.Pending != nil {
		pending := *s.Pending
		out.Pending = &pending
	}
	out.Services = make([]ServiceRecord, len(s.Services))
	for i, rec := range s.Services {
		rec.Notices = append([]string(nil), rec.Notices...)
		out.Services[i] = rec
	}
	if s.Auth != nil {
		auth := *s.Auth
		out.Auth = &auth
	}
	return &out
}
