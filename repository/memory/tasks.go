package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tasky/models"
	"tasky/repository"
)

type TaskRepository struct {
	s *Store
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("tasks.create"); err != nil {
		return err
	}
	if _, ok := r.s.d.teams[task.TeamID]; !ok {
		return fmt.Errorf("%w: tasks.team_id", repository.ErrForeignKey)
	}
	if task.AssignedTo != nil && !r.s.userExists(*task.AssignedTo) {
		return fmt.Errorf("%w: tasks.assigned_to", repository.ErrForeignKey)
	}

	now := r.s.now()
	task.ID = r.s.id()
	task.CreatedAt, task.UpdatedAt = now, now
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	stored := *task
	stored.Assignee = nil
	stored.Creator = models.User{}
	r.s.d.tasks[task.ID] = stored
	return nil
}

func (r *TaskRepository) GetByID(_ context.Context, id uint) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.d.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TaskRepository) GetDetail(_ context.Context, id uint) (*models.TaskDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.d.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	detail := &models.TaskDetail{Task: t}
	if team, ok := r.s.d.teams[t.TeamID]; ok {
		detail.TeamName = &team.Name
	}
	if t.AssignedTo != nil {
		if u, ok := r.s.d.users[*t.AssignedTo]; ok {
			detail.AssigneeName, detail.AssigneeEmail, detail.AssigneeAvatar = &u.Name, &u.Email, u.Avatar
		}
	}
	if u, ok := r.s.d.users[t.CreatedBy]; ok {
		detail.CreatorName, detail.CreatorEmail, detail.CreatorAvatar = &u.Name, &u.Email, u.Avatar
	}
	return detail, nil
}

func (r *TaskRepository) ListForUser(_ context.Context, userID uint) ([]models.TaskView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	teams := map[uint]bool{}
	for _, m := range r.s.d.members {
		if m.UserID == userID {
			teams[m.TeamID] = true
		}
	}

	tasks := []models.TaskView{}
	for _, id := range sortedKeys(r.s.d.tasks) {
		t := r.s.d.tasks[id]
		if !t.IsAssignee(userID) && !teams[t.TeamID] {
			continue
		}
		view := models.TaskView{Task: t}
		if team, ok := r.s.d.teams[t.TeamID]; ok {
			view.TeamName = &team.Name
		}
		if t.AssignedTo != nil {
			if u, ok := r.s.d.users[*t.AssignedTo]; ok {
				view.AssigneeName = &u.Name
			}
		}
		tasks = append(tasks, view)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return deadlineLess(tasks[i].Task, tasks[j].Task)
	})
	return tasks, nil
}

func (r *TaskRepository) ListForTeam(_ context.Context, teamID uint) ([]models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tasks := []models.Task{}
	for _, id := range sortedKeys(r.s.d.tasks) {
		if t := r.s.d.tasks[id]; t.TeamID == teamID {
			tasks = append(tasks, t)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool { return deadlineLess(tasks[i], tasks[j]) })
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id uint, columns map[string]interface{}) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("tasks.update"); err != nil {
		return err
	}
	t, ok := r.s.d.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	for col, v := range columns {
		switch col {
		case "title":
			t.Title = v.(string)
		case "description":
			t.Description = v.(string)
		case "deadline":
			t.Deadline = v.(*time.Time)
		case "status":
			t.Status = v.(models.TaskStatus)
		case "assigned_to":
			assignee := v.(*uint)
			if assignee != nil && !r.s.userExists(*assignee) {
				return fmt.Errorf("%w: tasks.assigned_to", repository.ErrForeignKey)
			}
			t.AssignedTo = assignee
		default:
			return fmt.Errorf("unknown task column %q", col)
		}
	}
	t.UpdatedAt = r.s.now()
	r.s.d.tasks[id] = t
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	defer r.s.writeLock(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("tasks.delete"); err != nil {
		return err
	}
	if _, ok := r.s.d.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteTaskLocked(id)
	return nil
}

func (r *TaskRepository) DueBetween(_ context.Context, from, to time.Time) ([]models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tasks := []models.Task{}
	for _, id := range sortedKeys(r.s.d.tasks) {
		t := r.s.d.tasks[id]
		if t.AssignedTo == nil || t.Status == models.TaskStatusDone || t.Deadline == nil {
			continue
		}
		if t.Deadline.Before(from) || t.Deadline.After(to) {
			continue
		}
		tasks = append(tasks, t)
	}
	sort.SliceStable(tasks, func(i, j int) bool { return deadlineLess(tasks[i], tasks[j]) })
	return tasks, nil
}

// deleteTaskLocked drops the task and its comments and detaches its notifications
func (s *Store) deleteTaskLocked(id uint) {
	delete(s.d.tasks, id)
	for cid, c := range s.d.comments {
		if c.TaskID == id {
			delete(s.d.comments, cid)
		}
	}
	for nid, n := range s.d.notifications {
		if n.TaskID != nil && *n.TaskID == id {
			n.TaskID = nil
			s.d.notifications[nid] = n
		}
	}
}

// deadlineLess orders by deadline ascending with missing deadlines last,
// then by newest first
func deadlineLess(a, b models.Task) bool {
	switch {
	case a.Deadline == nil && b.Deadline == nil:
		return a.CreatedAt.After(b.CreatedAt)
	case a.Deadline == nil:
		return false
	case b.Deadline == nil:
		return true
	case !a.Deadline.Equal(*b.Deadline):
		return a.Deadline.Before(*b.Deadline)
	}
	return a.CreatedAt.After(b.CreatedAt)
}
