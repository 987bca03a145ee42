package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/models"
)

func redisMessage(t *testing.T, n models.Notification) *redis.Message {
	t.Helper()
	payload, err := json.Marshal(n)
	require.NoError(t, err)
	return &redis.Message{Channel: Channel(n.UserID), Payload: string(payload)}
}

func waitClosed(t *testing.T, ch <-chan models.Notification) {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("subscription channel was not closed")
		}
	}
}

func TestRedisSubscriptionDecodes(t *testing.T) {
	log, hook := test.NewNullLogger()
	msgs := make(chan *redis.Message, 2)
	sub := newRedisSubscription(nil)
	go sub.forward(msgs, log)

	msgs <- &redis.Message{Payload: "{not json"}
	msgs <- redisMessage(t, models.Notification{ID: 7, UserID: 3, Title: "Task completed"})
	close(msgs)

	got, ok := <-sub.C()
	require.True(t, ok)
	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, "Task completed", got.Title)
	waitClosed(t, sub.C())

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRedisSubscriptionStopsWhenReaderIsGone(t *testing.T) {
	log, _ := test.NewNullLogger()
	msgs := make(chan *redis.Message, 32)
	sub := newRedisSubscription(nil)

	returned := make(chan struct{})
	go func() {
		sub.forward(msgs, log)
		close(returned)
	}()

	// Nobody reads C(), so the forwarder ends up blocked on a full buffer
	for i := 0; i < 20; i++ {
		msgs <- redisMessage(t, models.Notification{ID: uint(i + 1), UserID: 3})
	}
	require.Eventually(t, func() bool { return len(sub.out) == cap(sub.out) }, time.Second, 5*time.Millisecond)

	sub.stop()
	sub.stop()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("forwarder is still blocked after the subscription was closed")
	}
	waitClosed(t, sub.C())
}
