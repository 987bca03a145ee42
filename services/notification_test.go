package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/models"
	"tasky/services"
	"tasky/utils"
)

func TestNotificationInbox(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	team := f.team(t, a, b)
	task := f.task(t, a, team, b)

	var batch []models.Notification
	for i := 0; i < 3; i++ {
		batch = append(batch, models.Notification{
			UserID:  a.ID,
			TaskID:  utils.Pointer(task.ID),
			Type:    models.NotificationTaskCompleted,
			Title:   "Task completed",
			Message: "bob completed a task",
		})
	}
	batch = append(batch, models.Notification{UserID: b.ID, Type: models.NotificationTaskCompleted, Title: "Other"})
	require.NoError(t, f.notifications.Notify(f.ctx, batch))

	list, err := f.notifications.List(f.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Greater(t, list[0].ID, list[1].ID, "newest first")
	require.NotNil(t, list[0].TaskTitle)
	assert.Equal(t, task.Title, *list[0].TaskTitle)

	t.Run("mark read of another user", func(t *testing.T) {
		err := f.notifications.MarkRead(f.ctx, b.ID, list[0].ID)
		require.Error(t, err)
		assert.Equal(t, services.KindNotFound, kindOf(err))
	})

	t.Run("mark read", func(t *testing.T) {
		require.NoError(t, f.notifications.MarkRead(f.ctx, a.ID, list[0].ID))
		count, err := f.notifications.MarkAllRead(f.ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		count, err = f.notifications.MarkAllRead(f.ctx, a.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("task deletion keeps notifications", func(t *testing.T) {
		require.NoError(t, f.tasks.Delete(f.ctx, a.ID, task.ID))
		list, err := f.notifications.List(f.ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Nil(t, list[0].TaskID)
		assert.Nil(t, list[0].TaskTitle)
	})
}

func TestNotifyPublishesAndMails(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")

	sub, err := f.bus.Subscribe(f.ctx, a.ID)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, f.notifications.Notify(f.ctx, []models.Notification{
		{UserID: a.ID, Type: models.NotificationTaskDeadline, Title: "Deadline approaching", Message: "due soon"},
	}))

	select {
	case n := <-sub.C():
		assert.Equal(t, models.NotificationTaskDeadline, n.Type)
	case <-time.After(time.Second):
		t.Fatal("no notification published")
	}

	sent := f.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, a.Email, sent[0].To)
	assert.Equal(t, "Deadline approaching", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Hello alice")
}

func TestNotifyUnknownRecipient(t *testing.T) {
	f := newFixture(t)

	err := f.notifications.Notify(f.ctx, []models.Notification{{UserID: 999, Type: models.NotificationTaskReminder}})
	require.Error(t, err)
	assert.Empty(t, f.store.AllNotifications())
	assert.Empty(t, f.mail.Sent())
}
