package repository

import (
	"context"
	"fmt"
	"strings"

	"tasky/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.Conn(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to insert user: %w", translate(err))
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.Conn(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.Conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByLogin finds a user by e-mail address or handle
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.db.Conn(ctx).
		Where("email = ? OR user_id = ?", login, login).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	var count int64
	err := r.db.Conn(ctx).Model(&models.User{}).Where("user_id = ?", handle).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check handle: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.Conn(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var users []models.User
	err := r.db.Conn(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(user_id) LIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id uint, columns map[string]interface{}) error {
	result := r.db.Conn(ctx).Model(&models.User{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
