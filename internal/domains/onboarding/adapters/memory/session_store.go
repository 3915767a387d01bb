package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
	"github.com/Apurer/provider-onboarding/internal/shared/projection"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// DefaultSessionTTL is how long an idle onboarding session is kept.
const DefaultSessionTTL = 2 * time.Hour

// SessionStore keeps sessions in process memory. Every save renews the session's TTL;
// idle sessions expire and cannot be restored.
type SessionStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
	now   func() time.Time
}

type storedSession struct {
	session  *domain.Session
	metadata projection.Metadata
}

// NewSessionStore builds a store with the given idle TTL; ttl <= 0 disables expiry.
func NewSessionStore(ttl time.Duration) *SessionStore {
	cleanup := time.Minute
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	} else if ttl < cleanup {
		cleanup = ttl
	}
	return &SessionStore{cache: gocache.New(ttl, cleanup), now: time.Now}
}

// WithClock overrides the time source for metadata.
func (s *SessionStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// OnExpired registers a callback run when a session leaves the store by expiry or deletion.
func (s *SessionStore) OnExpired(fn func(sessionID string)) {
	s.cache.OnEvicted(func(key string, _ interface{}) {
		fn(key)
	})
}

// Create stores a new session.
func (s *SessionStore) Create(_ context.Context, session *domain.Session) (*projection.Projection[*domain.Session], error) {
	if session == nil {
		return nil, errors.New("cannot store nil session")
	}
	timestamp := s.now()
	stored := &storedSession{
		session:  session.Clone(),
		metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp},
	}
	if err := s.cache.Add(session.ID, stored, gocache.DefaultExpiration); err != nil {
		return nil, fmt.Errorf("create session %s: %w", session.ID, err)
	}
	return snapshot(stored), nil
}

// Get returns a clone of the stored session.
func (s *SessionStore) Get(_ context.Context, id string) (*projection.Projection[*domain.Session], error) {
	value, ok := s.cache.Get(id)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return snapshot(value.(*storedSession)), nil
}

// Save replaces a live session. A session that already expired is not resurrected.
func (s *SessionStore) Save(_ context.Context, session *domain.Session) (*projection.Projection[*domain.Session], error) {
	if session == nil {
		return nil, errors.New("cannot store nil session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.cache.Get(session.ID)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	previous := value.(*storedSession)
	stored := &storedSession{
		session: session.Clone(),
		metadata: projection.Metadata{
			CreatedAt: previous.metadata.CreatedAt,
			UpdatedAt: s.now(),
		},
	}
	s.cache.Set(session.ID, stored, gocache.DefaultExpiration)
	return snapshot(stored), nil
}

func snapshot(stored *storedSession) *projection.Projection[*domain.Session] {
	return &projection.Projection[*domain.Session]{
		Entity:   stored.session.Clone(),
		Metadata: stored.metadata,
	}
}
