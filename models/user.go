package models

import "time"

// Role is the coarse global role of an account
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User represents a registered account
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Handle is the public unique username, stored in the user_id column
	Handle       string  `gorm:"column:user_id;uniqueIndex;not null;size:50" json:"user_id"`
	Name         string  `gorm:"not null;size:100" json:"name"`
	Email        string  `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Avatar       *string `gorm:"size:255" json:"avatar"`
	Role         Role    `gorm:"not null;size:20;default:'member'" json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Friendship links two users. Only the schema exists, no workflow uses it yet.
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"user_id"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"friend_id"`
	Status    string    `gorm:"not null;size:20;default:'accepted'" json:"status"` // pending, accepted, blocked

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Friend User `gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE" json:"-"`
}
