package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tasky/models"
	"tasky/services"
	"tasky/utils"
)

// DeadlineWorker warns assignees about tasks that are due soon
type DeadlineWorker struct {
	tasks         services.TaskRepository
	notifications services.NotificationRepository
	notifier      services.Notifier
	interval      time.Duration
	window        time.Duration
	startDelay    time.Duration
	now           func() time.Time
	log           logrus.FieldLogger
}

func NewDeadlineWorker(
	tasks services.TaskRepository,
	notifications services.NotificationRepository,
	notifier services.Notifier,
	interval, window time.Duration,
	log logrus.FieldLogger,
) *DeadlineWorker {
	return &DeadlineWorker{
		tasks:         tasks,
		notifications: notifications,
		notifier:      notifier,
		interval:      interval,
		window:        window,
		startDelay:    10 * time.Second,
		now:           time.Now,
		log:           log.WithField("component", "deadline_worker"),
	}
}

func (dw *DeadlineWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	select {
	case <-ctx.Done():
		return
	case <-time.After(dw.startDelay):
	}

	dw.log.WithField("interval", dw.interval.String()).Info("Deadline worker started")

	ticker := time.NewTicker(dw.interval)
	defer ticker.Stop()

	for {
		if _, err := dw.RunOnce(ctx); err != nil {
			utils.LogError(dw.log, "deadline_scan", err, nil)
		}

		select {
		case <-ctx.Done():
			dw.log.Info("Deadline worker shutting down...")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce creates one deadline notification per due task and assignee that
// has not been warned yet. It returns the number of notifications created.
func (dw *DeadlineWorker) RunOnce(ctx context.Context) (int, error) {
	now := dw.now()
	due, err := dw.tasks.DueBetween(ctx, now, now.Add(dw.window))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due tasks: %w", err)
	}

	var batch []models.Notification
	for _, task := range due {
		if task.AssignedTo == nil || task.Deadline == nil {
			continue
		}
		exists, err := dw.notifications.Exists(ctx, *task.AssignedTo, task.ID, models.NotificationTaskDeadline)
		if err != nil {
			return 0, err
		}
		if exists {
			continue
		}

		batch = append(batch, models.Notification{
			UserID:  *task.AssignedTo,
			TaskID:  utils.Pointer(task.ID),
			Type:    models.NotificationTaskDeadline,
			Title:   "Deadline approaching",
			Message: fmt.Sprintf("Task %q is due %s", task.Title, task.Deadline.Format("Jan 2, 15:04 MST")),
		})
	}

	if len(batch) == 0 {
		return 0, nil
	}
	if err := dw.notifier.Notify(ctx, batch); err != nil {
		return 0, err
	}

	dw.log.WithField("count", len(batch)).Info("Created deadline notifications")
	return len(batch), nil
}
