package ports

import (
	"context"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
)

// ServiceEntryRunner executes the three-phase service submission, either inline or on a
// durable workflow engine.
type ServiceEntryRunner interface {
	RunServiceEntry(ctx context.Context, cmd onboardingtypes.ServiceEntryCommand) (onboardingtypes.EntryReport, error)
}

// SessionPublisher announces the authenticated session created when onboarding finishes.
type SessionPublisher interface {
	Publish(ctx context.Context, session domain.AuthSession) error
}
