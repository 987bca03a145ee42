package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"tasky/models"
)

type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.Conn(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to insert comment: %w", translate(err))
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Conn(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.Conn(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForTask returns a task's comments oldest first with author profiles
func (r *CommentRepository) ListForTask(ctx context.Context, taskID uint) ([]models.CommentView, error) {
	var comments []models.CommentView
	err := r.db.Conn(ctx).
		Table("comments c").
		Select("c.id, c.content, c.created_at, c.user_id, u.name, u.avatar").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.task_id = ?", taskID).
		Order("c.created_at ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
