package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"tasky/models"
	"tasky/repository"
	"tasky/utils"
)

const handleAttempts = 10

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,mailformat"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"omitempty,min=3,max=50,alphanum"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	users  UserRepository
	tokens *utils.TokenIssuer
	log    logrus.FieldLogger

	// suffix returns the digits appended to generated handles
	suffix func() string
}

func NewAuthService(users UserRepository, tokens *utils.TokenIssuer, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log.WithField("component", "auth"),
		suffix: func() string { return fmt.Sprintf("%04d", 1000+rand.Intn(9000)) },
	}
}

// Register creates an account and returns it with a fresh token
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, "", NewValidation("Validation failed", errs...)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", NewConflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", NewInternal(err)
	}

	handle, err := s.pickHandle(ctx, in.Name, in.Username)
	if err != nil {
		return nil, "", err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", NewInternal(err)
	}

	user := &models.User{
		Handle:       handle,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleMember,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", NewConflict("Email or username already registered")
		}
		return nil, "", NewInternal(err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", NewInternal(err)
	}

	utils.LogEvent(s.log, "user_registered", map[string]interface{}{
		"user_id": user.ID,
		"handle":  user.Handle,
	})
	return user, token, nil
}

func (s *AuthService) pickHandle(ctx context.Context, name, username string) (string, error) {
	if username != "" {
		handle := strings.ToLower(strings.TrimSpace(username))
		exists, err := s.users.HandleExists(ctx, handle)
		if err != nil {
			return "", NewInternal(err)
		}
		if exists {
			return "", NewConflict("Username already taken")
		}
		return handle, nil
	}

	base := nonAlnum.ReplaceAllString(strings.ToLower(name), "")
	if base == "" {
		base = "user"
	}
	for i := 0; i < handleAttempts; i++ {
		handle := base + s.suffix()
		exists, err := s.users.HandleExists(ctx, handle)
		if err != nil {
			return "", NewInternal(err)
		}
		if !exists {
			return handle, nil
		}
	}
	return "", NewConflict("Could not generate a unique username, please pick one")
}

// Login authenticates by e-mail or handle
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, "", NewValidation("Validation failed", errs...)
	}

	user, err := s.users.GetByLogin(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", NewUnauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, "", NewInternal(err)
	}
	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return nil, "", NewUnauthorized("Invalid credentials")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", NewInternal(err)
	}
	return user, token, nil
}

// Me returns the account behind the current token
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}
