package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	"github.com/Apurer/provider-onboarding/internal/shared/remote"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid onboarding input")
	// ErrNotFound signals the session or one of its draft items does not exist.
	ErrNotFound = errors.New("onboarding resource not found")
	// ErrNotAllowed signals the operation does not fit the session's current state.
	ErrNotAllowed = errors.New("onboarding operation not allowed now")
	// ErrRemoteFailure is matched by every *RemoteFailureError.
	ErrRemoteFailure = errors.New("marketplace backend call did not succeed")
)

// RemoteFailureError reports a backend call that failed or could not be confirmed.
type RemoteFailureError struct {
	Operation string
	Reason    string
	Status    int
	Ambiguous bool
}

func (e *RemoteFailureError) Error() string {
	verb := "failed"
	if e.Ambiguous {
		verb = "could not be confirmed"
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s (status %d): %s", e.Operation, verb, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Operation, verb, e.Reason)
}

func (e *RemoteFailureError) Is(target error) bool {
	return target == ErrRemoteFailure
}

func remoteFailure[T any](operation string, outcome remote.Outcome[T]) *RemoteFailureError {
	return &RemoteFailureError{
		Operation: operation,
		Reason:    outcome.Reason,
		Status:    outcome.Status,
		Ambiguous: outcome.IsAmbiguous(),
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotAllowed) {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicateWeekday),
		errors.Is(err, domain.ErrScheduleFull),
		errors.Is(err, domain.ErrInvalidTimeRange),
		errors.Is(err, domain.ErrInvalidWeekday),
		errors.Is(err, domain.ErrInvalidClockTime),
		errors.Is(err, domain.ErrTooManyPhotos),
		errors.Is(err, domain.ErrPhotoTooLarge),
		errors.Is(err, domain.ErrEmptyPhoto),
		errors.Is(err, domain.ErrUnsupportedPhoto),
		errors.Is(err, domain.ErrDraftCategoryFixed):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrSessionNotFound),
		errors.Is(err, domain.ErrScheduleEntryNotFound),
		errors.Is(err, domain.ErrPhotoNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, domain.ErrStepMismatch),
		errors.Is(err, domain.ErrSelectionFrozen),
		errors.Is(err, domain.ErrAcknowledgementPending),
		errors.Is(err, domain.ErrNoPendingAcknowledgement),
		errors.Is(err, domain.ErrNothingCompleted),
		errors.Is(err, domain.ErrCategoryNotSelected):
		return fmt.Errorf("%w: %w", ErrNotAllowed, err)
	}
	return err
}
