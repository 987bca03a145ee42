package models

import "time"

type NotificationType string

const (
	NotificationTaskCompleted NotificationType = "task_completed"
	NotificationTaskReminder  NotificationType = "task_reminder"
	NotificationTaskDeadline  NotificationType = "task_deadline"
)

// Notification is created by server-side workflows only. Clients can only flip IsRead.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	TaskID    *uint            `gorm:"index" json:"task_id"`
	Type      NotificationType `gorm:"not null;size:50" json:"type"`
	Title     string           `gorm:"not null;size:255" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`

	User User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:SET NULL" json:"-"`
}

// NotificationView is a notification with the title of its task
type NotificationView struct {
	Notification
	TaskTitle *string `json:"task_title"`
}
