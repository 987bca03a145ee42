package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"tasky/models"
)

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts all notifications in one statement and fills in their ids
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := r.db.Conn(ctx).Omit(clause.Associations).Create(&notifications).Error; err != nil {
		return fmt.Errorf("failed to insert notifications: %w", translate(err))
	}
	return nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID uint, limit int) ([]models.NotificationView, error) {
	var notifications []models.NotificationView
	err := r.db.Conn(ctx).
		Table("notifications n").
		Select("n.*, t.title AS task_title").
		Joins("LEFT JOIN tasks t ON t.id = n.task_id").
		Where("n.user_id = ?", userID).
		Order("n.created_at DESC, n.id DESC").
		Limit(limit).
		Scan(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags one notification of the user as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	result := r.db.Conn(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.Conn(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *NotificationRepository) Exists(ctx context.Context, userID, taskID uint, typ models.NotificationType) (bool, error) {
	var count int64
	err := r.db.Conn(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND task_id = ? AND type = ?", userID, taskID, typ).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}
	return count > 0, nil
}
