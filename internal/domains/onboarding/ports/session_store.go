package ports

import (
	"context"
	"errors"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/shared/projection"
)

var ErrSessionNotFound = errors.New("onboarding session not found")

// SessionStore keeps onboarding sessions between requests. Implementations hand out clones,
// so callers must Save to publish a mutation.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) (*projection.Projection[*domain.Session], error)
	Get(ctx context.Context, id string) (*projection.Projection[*domain.Session], error)
	Save(ctx context.Context, session *domain.Session) (*projection.Projection[*domain.Session], error)
}
