package services

import (
	"context"

	"tasky/models"
	"tasky/utils"
)

type CommentInput struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type CommentService struct {
	comments CommentRepository
	tasks    TaskRepository
	users    UserRepository
}

func NewCommentService(comments CommentRepository, tasks TaskRepository, users UserRepository) *CommentService {
	return &CommentService{comments: comments, tasks: tasks, users: users}
}

// Add attaches a comment to an existing task
func (s *CommentService) Add(ctx context.Context, actorID, taskID uint, in CommentInput) (*models.CommentView, error) {
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, NewValidation("Validation failed", errs...)
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, storeError(err, "Task not found")
	}

	comment := &models.Comment{TaskID: taskID, UserID: actorID, Content: in.Content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, "Task not found")
	}

	author, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return &models.CommentView{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UserID:    author.ID,
		Name:      author.Name,
		Avatar:    author.Avatar,
	}, nil
}

// Delete removes a comment. Only its author may do this.
func (s *CommentService) Delete(ctx context.Context, actorID, taskID, commentID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return storeError(err, "Comment not found")
	}
	if comment.TaskID != taskID {
		return NewNotFound("Comment not found")
	}
	if comment.UserID != actorID {
		return NewForbidden("You can only delete your own comments")
	}
	return storeError(s.comments.Delete(ctx, commentID), "Comment not found")
}
