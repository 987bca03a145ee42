// Package events fans stored notifications out to live websocket streams.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"tasky/models"
)

const channelPrefix = "tasky:notifications:"

// Channel returns the pub/sub channel of a user
func Channel(userID uint) string {
	return fmt.Sprintf("%s%d", channelPrefix, userID)
}

// Subscription delivers notifications until closed
type Subscription interface {
	C() <-chan models.Notification
	Close() error
}

// Bus publishes notifications and opens per-user subscriptions
type Bus interface {
	Publish(ctx context.Context, notification models.Notification) error
	Subscribe(ctx context.Context, userID uint) (Subscription, error)
}

// RedisBus uses Redis pub/sub, so every API instance sees every notification
type RedisBus struct {
	client *redis.Client
	log    logrus.FieldLogger
}

func NewRedisBus(client *redis.Client, log logrus.FieldLogger) *RedisBus {
	return &RedisBus{client: client, log: log.WithField("component", "bus")}
}

func (b *RedisBus) Publish(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return b.client.Publish(ctx, Channel(n.UserID), payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, userID uint) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, Channel(userID))
	// Wait for the subscription confirmation so no message is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	sub := newRedisSubscription(pubsub)
	go sub.forward(pubsub.Channel(), b.log.WithField("user_id", userID))
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan models.Notification
	done   chan struct{}
	once   sync.Once
}

func newRedisSubscription(pubsub *redis.PubSub) *redisSubscription {
	return &redisSubscription{
		pubsub: pubsub,
		out:    make(chan models.Notification, 16),
		done:   make(chan struct{}),
	}
}

// forward decodes messages into out until msgs closes or the subscription is closed
func (s *redisSubscription) forward(msgs <-chan *redis.Message, log logrus.FieldLogger) {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var n models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				log.WithError(err).Warn("Dropping malformed notification message")
				continue
			}
			select {
			case s.out <- n:
			case <-s.done:
				return
			}
		}
	}
}

func (s *redisSubscription) C() <-chan models.Notification { return s.out }

func (s *redisSubscription) Close() error {
	s.stop()
	return s.pubsub.Close()
}

func (s *redisSubscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// NopBus drops every notification. Its subscriptions are closed from the start.
type NopBus struct{}

func (NopBus) Publish(context.Context, models.Notification) error { return nil }

func (NopBus) Subscribe(context.Context, uint) (Subscription, error) {
	ch := make(chan models.Notification)
	close(ch)
	return closedSubscription{ch: ch}, nil
}

type closedSubscription struct {
	ch chan models.Notification
}

func (s closedSubscription) C() <-chan models.Notification { return s.ch }

func (closedSubscription) Close() error { return nil }
