package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tasky/models"
	"tasky/repository"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("users.create"); err != nil {
		return err
	}
	for _, u := range r.s.d.users {
		if strings.EqualFold(u.Email, user.Email) || u.Handle == user.Handle {
			return fmt.Errorf("%w: users", repository.ErrDuplicate)
		}
	}

	now := r.s.now()
	user.ID = r.s.id()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range sortedKeys(r.s.d.users) {
		if u := r.s.d.users[id]; u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByLogin(_ context.Context, login string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range sortedKeys(r.s.d.users) {
		if u := r.s.d.users[id]; u.Email == login || u.Handle == login {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) HandleExists(_ context.Context, handle string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.d.users {
		if u.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) List(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]models.User, 0, len(r.s.d.users))
	for _, id := range sortedKeys(r.s.d.users) {
		users = append(users, r.s.d.users[id])
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	all, _ := r.List(ctx)
	query = strings.ToLower(query)

	users := []models.User{}
	for _, u := range all {
		if len(users) == limit {
			break
		}
		if strings.Contains(strings.ToLower(u.Name), query) ||
			strings.Contains(strings.ToLower(u.Email), query) ||
			strings.Contains(strings.ToLower(u.Handle), query) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id uint, columns map[string]interface{}) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("users.update"); err != nil {
		return err
	}
	u, ok := r.s.d.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for col, v := range columns {
		switch col {
		case "name":
			u.Name = v.(string)
		case "avatar":
			u.Avatar = v.(*string)
		case "password_hash":
			u.PasswordHash = v.(string)
		default:
			return fmt.Errorf("unknown user column %q", col)
		}
	}
	u.UpdatedAt = r.s.now()
	r.s.d.users[id] = u
	return nil
}
