package authsession

import (
	"context"
	"errors"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

var _ ports.SessionPublisher = Fanout(nil)

// Fanout publishes to every publisher and joins their errors.
type Fanout []ports.SessionPublisher

func (f Fanout) Publish(ctx context.Context, session domain.AuthSession) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, session); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
