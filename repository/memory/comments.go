package memory

import (
	"context"
	"fmt"

	"tasky/models"
	"tasky/repository"
)

type CommentRepository struct {
	s *Store
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("comments.create"); err != nil {
		return err
	}
	if _, ok := r.s.d.tasks[comment.TaskID]; !ok {
		return fmt.Errorf("%w: comments.task_id", repository.ErrForeignKey)
	}
	if !r.s.userExists(comment.UserID) {
		return fmt.Errorf("%w: comments.user_id", repository.ErrForeignKey)
	}

	comment.ID = r.s.id()
	comment.CreatedAt = r.s.now()
	stored := *comment
	stored.Task, stored.User = models.Task{}, models.User{}
	r.s.d.comments[comment.ID] = stored
	return nil
}

func (r *CommentRepository) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.d.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.d.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.d.comments, id)
	return nil
}

func (r *CommentRepository) ListForTask(_ context.Context, taskID uint) ([]models.CommentView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comments := []models.CommentView{}
	for _, id := range sortedKeys(r.s.d.comments) {
		c := r.s.d.comments[id]
		if c.TaskID != taskID {
			continue
		}
		u := r.s.d.users[c.UserID]
		comments = append(comments, models.CommentView{
			ID:        c.ID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			UserID:    c.UserID,
			Name:      u.Name,
			Avatar:    u.Avatar,
		})
	}
	return comments, nil
}
