package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is a unit of work inside a team
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Title       string     `gorm:"not null;size:255" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Deadline    *time.Time `gorm:"index" json:"deadline"`
	Status      TaskStatus `gorm:"not null;size:20;default:'todo'" json:"status"`
	AssignedTo  *uint      `gorm:"index" json:"assigned_to"`
	TeamID      uint       `gorm:"not null;index" json:"team_id"`
	CreatedBy   uint       `gorm:"not null" json:"created_by"`

	// Relations
	Assignee *User `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL" json:"-"`
	Creator  User  `gorm:"foreignKey:CreatedBy" json:"-"`
}

// IsAssignee reports whether the given user is the current assignee
func (t *Task) IsAssignee(userID uint) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// TaskView is a task as listed for a user
type TaskView struct {
	Task
	TeamName     *string `json:"team_name"`
	AssigneeName *string `json:"assignee_name"`
}

// TaskDetail is a task with the names of the people involved and its comments
type TaskDetail struct {
	Task
	TeamName       *string       `json:"team_name"`
	AssigneeName   *string       `json:"assignee_name"`
	AssigneeEmail  *string       `json:"assignee_email"`
	AssigneeAvatar *string       `json:"assignee_avatar"`
	CreatorName    *string       `json:"creator_name"`
	CreatorEmail   *string       `json:"creator_email"`
	CreatorAvatar  *string       `json:"creator_avatar"`
	Comments       []CommentView `gorm:"-" json:"comments"`
}

// Comment is a message attached to a task
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`

	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// CommentView is a comment with its author's profile
type CommentView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar"`
}
