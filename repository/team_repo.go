package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"tasky/models"
)

type TeamRepository struct {
	db *DB
}

func NewTeamRepository(db *DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	if err := r.db.Conn(ctx).Omit(clause.Associations).Create(team).Error; err != nil {
		return fmt.Errorf("failed to insert team: %w", translate(err))
	}
	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.Conn(ctx).First(&team, id).Error; err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

func (r *TeamRepository) Update(ctx context.Context, id uint, columns map[string]interface{}) error {
	result := r.db.Conn(ctx).Model(&models.Team{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update team: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the team. Memberships and tasks go with it through FK cascades.
func (r *TeamRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.Conn(ctx).Delete(&models.Team{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete team: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForUser returns the teams a user belongs to with task counters and members
func (r *TeamRepository) ListForUser(ctx context.Context, userID uint) ([]models.TeamSummary, error) {
	var teams []models.TeamSummary
	err := r.db.Conn(ctx).
		Table("teams t").
		Select(`t.id, t.name, t.description,
			COUNT(tk.id) AS total_tasks,
			COUNT(tk.id) FILTER (WHERE tk.status = ?) AS completed_tasks`, models.TaskStatusDone).
		Joins("JOIN team_members tm ON tm.team_id = t.id AND tm.user_id = ?", userID).
		Joins("LEFT JOIN tasks tk ON tk.team_id = t.id").
		Group("t.id").
		Order("t.name ASC").
		Scan(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if len(teams) == 0 {
		return teams, nil
	}

	ids := make([]uint, len(teams))
	for i := range teams {
		ids[i] = teams[i].ID
	}

	var rows []struct {
		TeamID uint
		models.MemberView
	}
	err = r.db.Conn(ctx).
		Table("team_members tm").
		Select("tm.team_id, u.id, u.user_id, u.name, u.email, u.avatar, tm.role").
		Joins("JOIN users u ON u.id = tm.user_id").
		Where("tm.team_id IN ?", ids).
		Order("tm.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	byTeam := make(map[uint][]models.MemberView, len(teams))
	for _, row := range rows {
		byTeam[row.TeamID] = append(byTeam[row.TeamID], row.MemberView)
	}
	for i := range teams {
		teams[i].Members = byTeam[teams[i].ID]
		if teams[i].Members == nil {
			teams[i].Members = []models.MemberView{}
		}
		teams[i].Progress = models.ComputeProgress(teams[i].CompletedTasks, teams[i].TotalTasks)
	}
	return teams, nil
}
