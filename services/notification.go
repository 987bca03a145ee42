package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tasky/models"
	"tasky/utils"
)

const notificationListLimit = 50

type NotificationService struct {
	notifications NotificationRepository
	users         UserRepository
	publisher     Publisher
	mailer        utils.Mailer
	log           logrus.FieldLogger
}

func NewNotificationService(
	notifications NotificationRepository,
	users UserRepository,
	publisher Publisher,
	mailer utils.Mailer,
	log logrus.FieldLogger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		publisher:     publisher,
		mailer:        mailer,
		log:           log.WithField("component", "notifications"),
	}
}

// Notify stores the batch, then pushes each notification to live streams and
// mails reminders. Only the store step can fail the call.
func (s *NotificationService) Notify(ctx context.Context, batch []models.Notification) error {
	if len(batch) == 0 {
		return nil
	}
	if err := s.notifications.CreateBatch(ctx, batch); err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}

	for _, n := range batch {
		if err := s.publisher.Publish(ctx, n); err != nil {
			s.log.WithError(err).WithField("notification_id", n.ID).Warn("Failed to publish notification")
		}
		if n.Type == models.NotificationTaskReminder || n.Type == models.NotificationTaskDeadline {
			s.mail(ctx, n)
		}
	}
	return nil
}

func (s *NotificationService) mail(ctx context.Context, n models.Notification) {
	log := s.log.WithFields(logrus.Fields{"notification_id": n.ID, "user_id": n.UserID})

	user, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to load notification recipient")
		return
	}
	body, err := utils.RenderNotificationEmail(user.Name, n.Title, n.Message)
	if err != nil {
		log.WithError(err).Warn("Failed to render notification email")
		return
	}
	if err := s.mailer.Send(user.Email, n.Title, body); err != nil {
		log.WithError(err).Warn("Failed to send notification email")
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	notifications, err := s.notifications.ListForUser(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, NewInternal(err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	return storeError(s.notifications.MarkRead(ctx, notificationID, userID), "Notification not found")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, NewInternal(err)
	}
	return count, nil
}
