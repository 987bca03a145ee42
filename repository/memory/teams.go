package memory

import (
	"context"
	"fmt"
	"sort"

	"tasky/models"
	"tasky/repository"
)

type TeamRepository struct {
	s *Store
}

func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("teams.create"); err != nil {
		return err
	}
	if !r.s.userExists(team.OwnerID) {
		return fmt.Errorf("%w: teams.owner_id", repository.ErrForeignKey)
	}

	now := r.s.now()
	team.ID = r.s.id()
	team.CreatedAt, team.UpdatedAt = now, now
	stored := *team
	stored.Members, stored.Tasks = nil, nil
	r.s.d.teams[team.ID] = stored
	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, id uint) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.d.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TeamRepository) Update(ctx context.Context, id uint, columns map[string]interface{}) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("teams.update"); err != nil {
		return err
	}
	t, ok := r.s.d.teams[id]
	if !ok {
		return repository.ErrNotFound
	}
	for col, v := range columns {
		switch col {
		case "name":
			t.Name = v.(string)
		case "description":
			t.Description = v.(string)
		case "owner_id":
			t.OwnerID = v.(uint)
		default:
			return fmt.Errorf("unknown team column %q", col)
		}
	}
	t.UpdatedAt = r.s.now()
	r.s.d.teams[id] = t
	return nil
}

// Delete cascades to memberships, tasks and the tasks' comments
func (r *TeamRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("teams.delete"); err != nil {
		return err
	}
	if _, ok := r.s.d.teams[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.d.teams, id)
	for mid, m := range r.s.d.members {
		if m.TeamID == id {
			delete(r.s.d.members, mid)
		}
	}
	for tid, t := range r.s.d.tasks {
		if t.TeamID == id {
			r.s.deleteTaskLocked(tid)
		}
	}
	return nil
}

func (r *TeamRepository) ListForUser(_ context.Context, userID uint) ([]models.TeamSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	teams := []models.TeamSummary{}
	for _, mid := range sortedKeys(r.s.d.members) {
		m := r.s.d.members[mid]
		if m.UserID != userID {
			continue
		}
		t, ok := r.s.d.teams[m.TeamID]
		if !ok {
			continue
		}

		summary := models.TeamSummary{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Members:     r.s.membersLocked(t.ID),
		}
		for _, task := range r.s.d.tasks {
			if task.TeamID != t.ID {
				continue
			}
			summary.TotalTasks++
			if task.Status == models.TaskStatusDone {
				summary.CompletedTasks++
			}
		}
		summary.Progress = models.ComputeProgress(summary.CompletedTasks, summary.TotalTasks)
		teams = append(teams, summary)
	}

	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

type MemberRepository struct {
	s *Store
}

func (r *MemberRepository) Add(ctx context.Context, teamID, userID uint, role models.TeamRole) (bool, error) {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("members.add"); err != nil {
		return false, err
	}
	if _, ok := r.s.d.teams[teamID]; !ok || !r.s.userExists(userID) {
		return false, fmt.Errorf("%w: team_members", repository.ErrForeignKey)
	}
	if _, ok := r.s.findMemberLocked(teamID, userID); ok {
		return false, nil
	}

	m := models.TeamMember{
		ID:        r.s.id(),
		CreatedAt: r.s.now(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      role,
	}
	r.s.d.members[m.ID] = m
	return true, nil
}

func (r *MemberRepository) Role(_ context.Context, teamID, userID uint) (models.TeamRole, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.findMemberLocked(teamID, userID)
	if !ok {
		return "", repository.ErrNotFound
	}
	return m.Role, nil
}

func (r *MemberRepository) SetRole(ctx context.Context, teamID, userID uint, role models.TeamRole) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("members.set_role"); err != nil {
		return err
	}
	m, ok := r.s.findMemberLocked(teamID, userID)
	if !ok {
		return repository.ErrNotFound
	}
	m.Role = role
	r.s.d.members[m.ID] = m
	return nil
}

func (r *MemberRepository) Remove(ctx context.Context, teamID, userID uint) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("members.remove"); err != nil {
		return err
	}
	m, ok := r.s.findMemberLocked(teamID, userID)
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.d.members, m.ID)
	return nil
}

func (r *MemberRepository) List(_ context.Context, teamID uint) ([]models.MemberView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.membersLocked(teamID), nil
}

func (r *MemberRepository) Leaders(_ context.Context, teamID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []uint
	for _, mid := range sortedKeys(r.s.d.members) {
		m := r.s.d.members[mid]
		if m.TeamID == teamID && m.Role.IsLeader() {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

func (s *Store) findMemberLocked(teamID, userID uint) (models.TeamMember, bool) {
	for _, m := range s.d.members {
		if m.TeamID == teamID && m.UserID == userID {
			return m, true
		}
	}
	return models.TeamMember{}, false
}

func (s *Store) membersLocked(teamID uint) []models.MemberView {
	members := []models.MemberView{}
	for _, mid := range sortedKeys(s.d.members) {
		m := s.d.members[mid]
		if m.TeamID != teamID {
			continue
		}
		u := s.d.users[m.UserID]
		members = append(members, models.MemberView{
			ID:     u.ID,
			Handle: u.Handle,
			Name:   u.Name,
			Email:  u.Email,
			Avatar: u.Avatar,
			Role:   m.Role,
		})
	}
	return members
}
