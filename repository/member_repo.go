package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"tasky/models"
)

type MemberRepository struct {
	db *DB
}

func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Add inserts a membership. An existing (team, user) pair is left untouched and
// reported with added=false.
func (r *MemberRepository) Add(ctx context.Context, teamID, userID uint, role models.TeamRole) (bool, error) {
	member := models.TeamMember{TeamID: teamID, UserID: userID, Role: role}
	result := r.db.Conn(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&member)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert member: %w", translate(result.Error))
	}
	return result.RowsAffected > 0, nil
}

func (r *MemberRepository) Role(ctx context.Context, teamID, userID uint) (models.TeamRole, error) {
	var member models.TeamMember
	err := r.db.Conn(ctx).
		Select("role").
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error
	if err != nil {
		return "", translate(err)
	}
	return member.Role, nil
}

func (r *MemberRepository) SetRole(ctx context.Context, teamID, userID uint, role models.TeamRole) error {
	result := r.db.Conn(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update member role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MemberRepository) Remove(ctx context.Context, teamID, userID uint) error {
	result := r.db.Conn(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MemberRepository) List(ctx context.Context, teamID uint) ([]models.MemberView, error) {
	var members []models.MemberView
	err := r.db.Conn(ctx).
		Table("team_members tm").
		Select("u.id, u.user_id, u.name, u.email, u.avatar, tm.role").
		Joins("JOIN users u ON u.id = tm.user_id").
		Where("tm.team_id = ?", teamID).
		Order("tm.created_at ASC").
		Scan(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Leaders returns the ids of members holding a leader-equivalent role
func (r *MemberRepository) Leaders(ctx context.Context, teamID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Conn(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ? AND role IN ?", teamID, []models.TeamRole{models.TeamRoleLeader, models.TeamRoleOwner}).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list leaders: %w", err)
	}
	return ids, nil
}
