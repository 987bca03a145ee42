package models

import "time"

// TeamRole is the role a user holds inside one team
type TeamRole string

const (
	TeamRoleLeader TeamRole = "leader"
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleMember TeamRole = "member"
)

// IsLeader reports whether the role carries full mutation rights over the team.
// "owner" is a legacy spelling of "leader".
func (r TeamRole) IsLeader() bool {
	return r == TeamRoleLeader || r == TeamRoleOwner
}

// Team represents a group of users collaborating on tasks
type Team struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`

	// Relations
	Owner   User         `gorm:"foreignKey:OwnerID" json:"-"`
	Members []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	Tasks   []Task       `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}

// TeamMember represents the membership of a user in a team
type TeamMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	TeamID    uint      `gorm:"not null;uniqueIndex:idx_team_member" json:"team_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_team_member" json:"user_id"`
	Role      TeamRole  `gorm:"not null;size:20;default:'member'" json:"role"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// MemberView is a team member joined with the user profile
type MemberView struct {
	ID     uint     `json:"id"`
	Handle string   `gorm:"column:user_id" json:"user_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Avatar *string  `json:"avatar"`
	Role   TeamRole `json:"role"`
}

// TeamSummary is a team as listed for one of its members
type TeamSummary struct {
	ID             uint         `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	CompletedTasks int64        `json:"completed_tasks"`
	TotalTasks     int64        `json:"total_tasks"`
	Progress       int          `gorm:"-" json:"progress"`
	Members        []MemberView `gorm:"-" json:"members"`
}

// TeamDetail is a team with its members and tasks
type TeamDetail struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	OwnerID     uint         `json:"owner_id"`
	Members     []MemberView `json:"members"`
	Tasks       []Task       `json:"tasks"`
}

// ComputeProgress returns the share of completed tasks as a rounded percentage
func ComputeProgress(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((completed*100 + total/2) / total)
}
