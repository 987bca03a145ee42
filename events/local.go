package events

import (
	"context"
	"sync"

	"tasky/models"
)

// LocalBus delivers notifications inside one process. It backs
// `serve --memory` and the stream tests.
type LocalBus struct {
	mu   sync.Mutex
	subs map[uint]map[*localSubscription]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: map[uint]map[*localSubscription]struct{}{}}
}

// Publish never blocks: a subscriber whose buffer is full misses the message
func (b *LocalBus) Publish(_ context.Context, n models.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[n.UserID] {
		select {
		case sub.ch <- n:
		default:
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(_ context.Context, userID uint) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &localSubscription{bus: b, userID: userID, ch: make(chan models.Notification, 16)}
	if b.subs[userID] == nil {
		b.subs[userID] = map[*localSubscription]struct{}{}
	}
	b.subs[userID][sub] = struct{}{}
	return sub, nil
}

type localSubscription struct {
	bus    *LocalBus
	userID uint
	ch     chan models.Notification
	once   sync.Once
}

func (s *localSubscription) C() <-chan models.Notification { return s.ch }

func (s *localSubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		delete(s.bus.subs[s.userID], s)
		close(s.ch)
	})
	return nil
}
