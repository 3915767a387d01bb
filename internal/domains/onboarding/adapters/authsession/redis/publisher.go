package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

const (
	// DefaultChannel receives every established provider session.
	DefaultChannel = "provider.sessions"
	// DefaultKeyPrefix namespaces the latest session per provider.
	DefaultKeyPrefix = "provider:session:"
)

var _ ports.SessionPublisher = (*Publisher)(nil)

// Publisher hands established sessions to the rest of the platform through Redis: the
// session is stored under a per-provider key until it expires and announced on a channel.
type Publisher struct {
	client    goredis.UniversalClient
	channel   string
	keyPrefix string
	now       func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithChannel overrides the pub/sub channel.
func WithChannel(channel string) Option {
	return func(p *Publisher) {
		if channel != "" {
			p.channel = channel
		}
	}
}

// WithKeyPrefix overrides the session key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(p *Publisher) {
		if prefix != "" {
			p.keyPrefix = prefix
		}
	}
}

// WithClock overrides the clock used to compute key expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPublisher wires a Redis client into the publisher.
func NewPublisher(client goredis.UniversalClient, opts ...Option) *Publisher {
	p := &Publisher{
		client:    client,
		channel:   DefaultChannel,
		keyPrefix: DefaultKeyPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

type sessionMessage struct {
	ProviderID int64     `json:"providerId"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Publish stores and announces the session in one transaction.
func (p *Publisher) Publish(ctx context.Context, session domain.AuthSession) error {
	payload, err := json.Marshal(sessionMessage(session))
	if err != nil {
		return fmt.Errorf("encode provider session: %w", err)
	}
	ttl := time.Duration(0)
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(p.now())
		if ttl <= 0 {
			return fmt.Errorf("provider session for %d already expired", session.ProviderID)
		}
	}
	if p.client == nil {
		return errors.New("redis session publisher not configured")
	}
	_, err = p.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, p.Key(session.ProviderID), payload, ttl)
		pipe.Publish(ctx, p.channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish provider session: %w", err)
	}
	return nil
}

// Key is the Redis key holding the provider's latest session.
func (p *Publisher) Key(providerID int64) string {
	return p.keyPrefix + strconv.FormatInt(providerID, 10)
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
