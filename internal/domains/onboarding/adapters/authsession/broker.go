package authsession

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

var _ ports.SessionPublisher = (*Broker)(nil)

// ErrBrokerClosed is returned by Publish after Close.
var ErrBrokerClosed = errors.New("auth session broker closed")

// Broker is an in-process fan-out of established provider sessions. Subscribers
// receive every session published after they subscribe; slow subscribers lose sessions
// rather than block the publisher.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan domain.AuthSession
	nextID int
	buffer int
	closed bool
}

// NewBroker creates a broker whose subscriber channels hold up to buffer sessions.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{
		subs:   map[int]chan domain.AuthSession{},
		buffer: buffer,
	}
}

// Publish notifies subscribers.
func (b *Broker) Publish(_ context.Context, session domain.AuthSession) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for _, ch := range b.subs {
		select {
		case ch <- session:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of future sessions and a function that unsubscribes.
func (b *Broker) Subscribe() (<-chan domain.AuthSession, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan domain.AuthSession, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Close closes every subscriber channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
