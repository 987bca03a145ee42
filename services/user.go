package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/sirupsen/logrus"

	"tasky/models"
	"tasky/utils"
)

const searchLimit = 20

type ProfilePatch struct {
	Name   utils.Optional[string]  `json:"name"`
	Avatar utils.Optional[*string] `json:"avatar"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// AvatarStore persists uploaded avatar images and returns their public URL
type AvatarStore interface {
	Save(file *multipart.FileHeader) (string, error)
}

type UserService struct {
	users   UserRepository
	avatars AvatarStore
	log     logrus.FieldLogger
}

func NewUserService(users UserRepository, avatars AvatarStore, log logrus.FieldLogger) *UserService {
	return &UserService{
		users:   users,
		avatars: avatars,
		log:     log.WithField("component", "users"),
	}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, NewInternal(err)
	}
	return users, nil
}

// Search matches name, e-mail or handle. Queries shorter than two
// characters return nothing.
func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return []models.User{}, nil
	}
	users, err := s.users.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, NewInternal(err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

// UpdateProfile applies the present fields and returns the updated user
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*models.User, error) {
	columns := map[string]interface{}{}
	if patch.Name.Set {
		if errs := utils.ValidateVar("name", patch.Name.Value, "required,min=2,max=100"); len(errs) > 0 {
			return nil, NewValidation("Validation failed", errs...)
		}
		columns["name"] = patch.Name.Value
	}
	if patch.Avatar.Set {
		columns["avatar"] = patch.Avatar.Value
	}

	if len(columns) > 0 {
		if err := s.users.Update(ctx, userID, columns); err != nil {
			return nil, storeError(err, "User not found")
		}
	}
	return s.Get(ctx, userID)
}

// UploadAvatar stores the image and points the profile at it
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", NewValidation("No file uploaded", utils.FieldError{Field: "avatar", Message: "avatar is required"})
	}

	url, err := s.avatars.Save(file)
	var tooLarge *utils.FileTooLargeError
	switch {
	case errors.Is(err, utils.ErrUnsupportedImage), errors.As(err, &tooLarge):
		return "", NewValidation(err.Error(), utils.FieldError{Field: "avatar", Message: err.Error()})
	case err != nil:
		return "", NewInternal(err)
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{"avatar": &url}); err != nil {
		return "", storeError(err, "User not found")
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "avatar": url}).Info("Avatar uploaded")
	return url, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, in ChangePasswordInput) error {
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return NewValidation("Validation failed", errs...)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeError(err, "User not found")
	}
	if !utils.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return NewUnauthorized("Current password is incorrect")
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return NewInternal(err)
	}
	return storeError(s.users.Update(ctx, userID, map[string]interface{}{"password_hash": hash}), "User not found")
}
