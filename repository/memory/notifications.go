package memory

import (
	"context"
	"fmt"

	"tasky/models"
	"tasky/repository"
)

type NotificationRepository struct {
	s *Store
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(notifications) == 0 {
		return nil
	}
	if err := r.s.fail("notifications.create"); err != nil {
		return err
	}
	for _, n := range notifications {
		if !r.s.userExists(n.UserID) {
			return fmt.Errorf("%w: notifications.user_id", repository.ErrForeignKey)
		}
	}

	now := r.s.now()
	for i := range notifications {
		notifications[i].ID = r.s.id()
		notifications[i].CreatedAt = now
		stored := notifications[i]
		stored.User, stored.Task = models.User{}, nil
		r.s.d.notifications[stored.ID] = stored
	}
	return nil
}

func (r *NotificationRepository) ListForUser(_ context.Context, userID uint, limit int) ([]models.NotificationView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	keys := sortedKeys(r.s.d.notifications)
	out := []models.NotificationView{}
	// Newest first: ids grow with creation time
	for i := len(keys) - 1; i >= 0 && len(out) < limit; i-- {
		n := r.s.d.notifications[keys[i]]
		if n.UserID != userID {
			continue
		}
		view := models.NotificationView{Notification: n}
		if n.TaskID != nil {
			if t, ok := r.s.d.tasks[*n.TaskID]; ok {
				view.TaskTitle = &t.Title
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.d.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	r.s.d.notifications[id] = n
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for id, n := range r.s.d.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.d.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) Exists(_ context.Context, userID, taskID uint, typ models.NotificationType) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.d.notifications {
		if n.UserID == userID && n.Type == typ && n.TaskID != nil && *n.TaskID == taskID {
			return true, nil
		}
	}
	return false, nil
}
