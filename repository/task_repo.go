package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"tasky/models"
)

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.Conn(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("failed to insert task: %w", translate(err))
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.Conn(ctx).First(&task, id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// GetDetail loads a task with the team, assignee and creator names
func (r *TaskRepository) GetDetail(ctx context.Context, id uint) (*models.TaskDetail, error) {
	var detail models.TaskDetail
	result := r.db.Conn(ctx).
		Table("tasks tk").
		Select(`tk.*, t.name AS team_name,
			a.name AS assignee_name, a.email AS assignee_email, a.avatar AS assignee_avatar,
			c.name AS creator_name, c.email AS creator_email, c.avatar AS creator_avatar`).
		Joins("LEFT JOIN teams t ON t.id = tk.team_id").
		Joins("LEFT JOIN users a ON a.id = tk.assigned_to").
		Joins("LEFT JOIN users c ON c.id = tk.created_by").
		Where("tk.id = ?", id).
		Limit(1).
		Scan(&detail)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &detail, nil
}

// ListForUser returns tasks assigned to the user or belonging to one of the user's teams
func (r *TaskRepository) ListForUser(ctx context.Context, userID uint) ([]models.TaskView, error) {
	var tasks []models.TaskView
	err := r.db.Conn(ctx).
		Table("tasks tk").
		Select("tk.*, t.name AS team_name, u.name AS assignee_name").
		Joins("LEFT JOIN teams t ON t.id = tk.team_id").
		Joins("LEFT JOIN users u ON u.id = tk.assigned_to").
		Where("tk.assigned_to = ? OR tk.team_id IN (?)", userID,
			r.db.Conn(ctx).Model(&models.TeamMember{}).Select("team_id").Where("user_id = ?", userID)).
		Order("tk.deadline ASC NULLS LAST, tk.created_at DESC").
		Scan(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListForTeam(ctx context.Context, teamID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Conn(ctx).
		Where("team_id = ?", teamID).
		Order("deadline ASC NULLS LAST, created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list team tasks: %w", err)
	}
	return tasks, nil
}

// Update writes all given columns in one statement
func (r *TaskRepository) Update(ctx context.Context, id uint, columns map[string]interface{}) error {
	result := r.db.Conn(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.Conn(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DueBetween returns open, assigned tasks whose deadline falls in [from, to]
func (r *TaskRepository) DueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Conn(ctx).
		Where("assigned_to IS NOT NULL AND status <> ? AND deadline BETWEEN ? AND ?", models.TaskStatusDone, from, to).
		Order("deadline ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}
	return tasks, nil
}
