package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tasky/models"
	"tasky/utils"
)

type CreateTaskInput struct {
	Title       string            `json:"title" validate:"required,min=2,max=255"`
	Description string            `json:"description"`
	Deadline    *time.Time        `json:"deadline"`
	Status      models.TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	AssignedTo  *uint             `json:"assigned_to" validate:"required"`
	TeamID      uint              `json:"team_id" validate:"required"`
}

type TaskService struct {
	tasks    TaskRepository
	users    UserRepository
	comments CommentRepository
	authz    *Authorizer
	members  MemberRepository
	notifier Notifier
	log      logrus.FieldLogger
}

func NewTaskService(
	tasks TaskRepository,
	users UserRepository,
	members MemberRepository,
	comments CommentRepository,
	notifier Notifier,
	log logrus.FieldLogger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		users:    users,
		comments: comments,
		authz:    NewAuthorizer(members),
		members:  members,
		notifier: notifier,
		log:      log.WithField("component", "tasks"),
	}
}

// Create adds a task to a team. Only the team leader may create tasks.
func (s *TaskService) Create(ctx context.Context, actorID uint, in CreateTaskInput) (*models.Task, error) {
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, NewValidation("Validation failed", errs...)
	}
	if err := s.authz.RequireLeader(ctx, in.TeamID, actorID, "Only team leader can create and assign tasks"); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		Status:      in.Status,
		AssignedTo:  in.AssignedTo,
		TeamID:      in.TeamID,
		CreatedBy:   actorID,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, storeError(err, "Team not found")
	}

	utils.LogEvent(s.log, "task_created", map[string]interface{}{
		"task_id": task.ID,
		"team_id": task.TeamID,
		"user_id": actorID,
	})
	return task, nil
}

// List returns the tasks assigned to the actor or owned by the actor's teams
func (s *TaskService) List(ctx context.Context, actorID uint) ([]models.TaskView, error) {
	tasks, err := s.tasks.ListForUser(ctx, actorID)
	if err != nil {
		return nil, NewInternal(err)
	}
	return tasks, nil
}

// Get returns a task with its comments. Team members, the assignee and
// the creator may read it.
func (s *TaskService) Get(ctx context.Context, actorID, taskID uint) (*models.TaskDetail, error) {
	detail, err := s.tasks.GetDetail(ctx, taskID)
	if err != nil {
		return nil, storeError(err, "Task not found")
	}

	access, err := s.authz.RoleIn(ctx, detail.TeamID, actorID)
	if err != nil {
		return nil, err
	}
	if access == AccessNone && !detail.IsAssignee(actorID) && detail.CreatedBy != actorID {
		return nil, NewForbidden("You do not have access to this task")
	}

	comments, err := s.comments.ListForTask(ctx, taskID)
	if err != nil {
		return nil, NewInternal(err)
	}
	detail.Comments = comments
	return detail, nil
}

// Update applies a partial update. It reports whether anything was written.
func (s *TaskService) Update(ctx context.Context, actorID, taskID uint, patch TaskPatch) (bool, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return false, storeError(err, "Task not found")
	}

	access, err := s.authz.RoleIn(ctx, task.TeamID, actorID)
	if err != nil {
		return false, err
	}
	isLeader := access == AccessLeader
	isAssignee := task.IsAssignee(actorID)
	isCreator := task.CreatedBy == actorID

	if !isLeader && !isAssignee && !isCreator {
		return false, NewForbidden("You do not have permission to update this task")
	}
	if patch.TouchesRestricted() && !isLeader && !isCreator {
		return false, NewForbidden("Members may only change status")
	}
	if patch.Empty() {
		return false, nil
	}
	if err := patch.Validate(); err != nil {
		return false, err
	}

	if err := s.tasks.Update(ctx, taskID, patch.Columns()); err != nil {
		return false, storeError(err, "Task not found")
	}

	if patch.CompletesTask() && !isLeader && isAssignee {
		s.notifyCompleted(ctx, actorID, taskID)
	}
	return true, nil
}

// notifyCompleted tells the team leaders and the creator that the assignee
// finished the task. Failures are logged and never undo the update.
func (s *TaskService) notifyCompleted(ctx context.Context, actorID, taskID uint) {
	log := s.log.WithFields(logrus.Fields{"task_id": taskID, "user_id": actorID})

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		utils.LogError(log, "completion_fanout", err, nil)
		return
	}
	leaders, err := s.members.Leaders(ctx, task.TeamID)
	if err != nil {
		utils.LogError(log, "completion_fanout", err, nil)
		return
	}

	seen := map[uint]bool{actorID: true}
	var recipients []uint
	for _, id := range append(leaders, task.CreatedBy) {
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	actorName := "A member"
	if actor, err := s.users.GetByID(ctx, actorID); err == nil {
		actorName = actor.Name
	}

	batch := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		batch = append(batch, models.Notification{
			UserID:  id,
			TaskID:  utils.Pointer(task.ID),
			Type:    models.NotificationTaskCompleted,
			Title:   "Task completed",
			Message: fmt.Sprintf("%s completed task %q", actorName, task.Title),
		})
	}

	if err := s.notifier.Notify(ctx, batch); err != nil {
		utils.LogError(log, "completion_fanout", err, map[string]interface{}{"recipients": len(batch)})
		return
	}
	log.WithField("recipients", len(batch)).Info("Created task completion notifications")
}

// Remind sends the assignee a reminder. Only the task creator may do this.
// It returns the reminded user.
func (s *TaskService) Remind(ctx context.Context, actorID, taskID uint) (*models.User, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, storeError(err, "Task not found")
	}
	if task.CreatedBy != actorID {
		return nil, NewForbidden("Only task creator can send reminders")
	}
	if task.AssignedTo == nil {
		return nil, NewNotFound("Task has no assignee")
	}

	assignee, err := s.users.GetByID(ctx, *task.AssignedTo)
	if err != nil {
		return nil, storeError(err, "Assignee not found")
	}

	reminder := models.Notification{
		UserID:  assignee.ID,
		TaskID:  utils.Pointer(task.ID),
		Type:    models.NotificationTaskReminder,
		Title:   "Reminder from your leader",
		Message: fmt.Sprintf("Your leader asked you to update the progress of task %q", task.Title),
	}
	if err := s.notifier.Notify(ctx, []models.Notification{reminder}); err != nil {
		return nil, storeError(err, "Assignee not found")
	}
	return assignee, nil
}

// Delete removes a task. The team leader and the task creator may do this.
func (s *TaskService) Delete(ctx context.Context, actorID, taskID uint) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return storeError(err, "Task not found")
	}

	access, err := s.authz.RoleIn(ctx, task.TeamID, actorID)
	if err != nil {
		return err
	}
	if access != AccessLeader && task.CreatedBy != actorID {
		return NewForbidden("Only team leader or task creator can delete this task")
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return storeError(err, "Task not found")
	}
	return nil
}
