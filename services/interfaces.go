package services

import (
	"context"
	"time"

	"tasky/models"
)

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	Update(ctx context.Context, id uint, columns map[string]interface{}) error
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uint) (*models.Team, error)
	Update(ctx context.Context, id uint, columns map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	ListForUser(ctx context.Context, userID uint) ([]models.TeamSummary, error)
}

type MemberRepository interface {
	Add(ctx context.Context, teamID, userID uint, role models.TeamRole) (bool, error)
	Role(ctx context.Context, teamID, userID uint) (models.TeamRole, error)
	SetRole(ctx context.Context, teamID, userID uint, role models.TeamRole) error
	Remove(ctx context.Context, teamID, userID uint) error
	List(ctx context.Context, teamID uint) ([]models.MemberView, error)
	Leaders(ctx context.Context, teamID uint) ([]uint, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	GetDetail(ctx context.Context, id uint) (*models.TaskDetail, error)
	ListForUser(ctx context.Context, userID uint) ([]models.TaskView, error)
	ListForTeam(ctx context.Context, teamID uint) ([]models.Task, error)
	Update(ctx context.Context, id uint, columns map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	DueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Delete(ctx context.Context, id uint) error
	ListForTask(ctx context.Context, taskID uint) ([]models.CommentView, error)
}

type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListForUser(ctx context.Context, userID uint, limit int) ([]models.NotificationView, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Exists(ctx context.Context, userID, taskID uint, typ models.NotificationType) (bool, error)
}

// Publisher pushes stored notifications to live subscribers
type Publisher interface {
	Publish(ctx context.Context, notification models.Notification) error
}

// Notifier stores and delivers a batch of notifications
type Notifier interface {
	Notify(ctx context.Context, notifications []models.Notification) error
}
