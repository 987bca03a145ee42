package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"tasky/models"
	"tasky/utils"
)

type TeamInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

type TeamService struct {
	tx      TxManager
	teams   TeamRepository
	members MemberRepository
	users   UserRepository
	tasks   TaskRepository
	authz   *Authorizer
	log     logrus.FieldLogger
}

func NewTeamService(
	tx TxManager,
	teams TeamRepository,
	members MemberRepository,
	users UserRepository,
	tasks TaskRepository,
	log logrus.FieldLogger,
) *TeamService {
	return &TeamService{
		tx:      tx,
		teams:   teams,
		members: members,
		users:   users,
		tasks:   tasks,
		authz:   NewAuthorizer(members),
		log:     log.WithField("component", "teams"),
	}
}

// Create makes a team led by the actor. The team row and the leader
// membership are written in one transaction.
func (s *TeamService) Create(ctx context.Context, actorID uint, in TeamInput) (*models.Team, error) {
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, NewValidation("Validation failed", errs...)
	}

	team := &models.Team{
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     actorID,
	}
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.teams.Create(ctx, team); err != nil {
			return err
		}
		_, err := s.members.Add(ctx, team.ID, actorID, models.TeamRoleLeader)
		return err
	})
	if err != nil {
		return nil, storeError(err, "User not found")
	}

	utils.LogEvent(s.log, "team_created", map[string]interface{}{
		"team_id": team.ID,
		"user_id": actorID,
	})
	return team, nil
}

// List returns the actor's teams with members and progress
func (s *TeamService) List(ctx context.Context, actorID uint) ([]models.TeamSummary, error) {
	teams, err := s.teams.ListForUser(ctx, actorID)
	if err != nil {
		return nil, NewInternal(err)
	}
	return teams, nil
}

// Detail returns a team with its members and tasks. Only members may read it.
func (s *TeamService) Detail(ctx context.Context, actorID, teamID uint) (*models.TeamDetail, error) {
	team, err := s.loadTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	access, err := s.authz.RoleIn(ctx, teamID, actorID)
	if err != nil {
		return nil, err
	}
	if access == AccessNone {
		return nil, NewForbidden("You are not a member of this team")
	}

	members, err := s.members.List(ctx, teamID)
	if err != nil {
		return nil, NewInternal(err)
	}
	tasks, err := s.tasks.ListForTeam(ctx, teamID)
	if err != nil {
		return nil, NewInternal(err)
	}

	return &models.TeamDetail{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		OwnerID:     team.OwnerID,
		Members:     members,
		Tasks:       tasks,
	}, nil
}

func (s *TeamService) Update(ctx context.Context, actorID, teamID uint, in TeamInput) error {
	if _, err := s.loadTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.authz.RequireLeader(ctx, teamID, actorID, "Only team leader can update team"); err != nil {
		return err
	}
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return NewValidation("Validation failed", errs...)
	}

	err := s.teams.Update(ctx, teamID, map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
	})
	return storeError(err, "Team not found")
}

// Delete removes the team together with its memberships and tasks
func (s *TeamService) Delete(ctx context.Context, actorID, teamID uint) error {
	if _, err := s.loadTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.authz.RequireLeader(ctx, teamID, actorID, "Only team leader can delete team"); err != nil {
		return err
	}
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return storeError(err, "Team not found")
	}

	utils.LogEvent(s.log, "team_deleted", map[string]interface{}{
		"team_id": teamID,
		"user_id": actorID,
	})
	return nil
}

// AddMember adds the user with the given e-mail as a plain member. Adding an
// existing member is a no-op; added reports whether a row was created.
func (s *TeamService) AddMember(ctx context.Context, actorID, teamID uint, email string) (bool, error) {
	if _, err := s.loadTeam(ctx, teamID); err != nil {
		return false, err
	}
	if err := s.authz.RequireLeader(ctx, teamID, actorID, "Only team leader can add members"); err != nil {
		return false, err
	}
	if errs := utils.ValidateVar("email", email, "required,mailformat"); len(errs) > 0 {
		return false, NewValidation("Validation failed", errs...)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, storeError(err, "User not found")
	}

	added, err := s.members.Add(ctx, teamID, user.ID, models.TeamRoleMember)
	if err != nil {
		return false, storeError(err, "User not found")
	}
	return added, nil
}

// RemoveMember removes a plain member. Leaders cannot be removed.
func (s *TeamService) RemoveMember(ctx context.Context, actorID, teamID, userID uint) error {
	if _, err := s.loadTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.authz.RequireLeader(ctx, teamID, actorID, "Only team leader can remove members"); err != nil {
		return err
	}

	target, err := s.authz.RoleIn(ctx, teamID, userID)
	if err != nil {
		return err
	}
	switch target {
	case AccessNone:
		return NewNotFound("User is not a member of this team")
	case AccessLeader:
		return NewForbidden("Cannot remove team leader")
	}

	return storeError(s.members.Remove(ctx, teamID, userID), "User is not a member of this team")
}

// Leave removes the actor from the team. A leader must transfer leadership first.
func (s *TeamService) Leave(ctx context.Context, actorID, teamID uint) error {
	access, err := s.authz.RoleIn(ctx, teamID, actorID)
	if err != nil {
		return err
	}
	switch access {
	case AccessNone:
		return NewNotFound("You are not a member of this team")
	case AccessLeader:
		return NewForbidden("Leader must transfer leadership before leaving")
	}

	return storeError(s.members.Remove(ctx, teamID, actorID), "You are not a member of this team")
}

// TransferLeadership hands the team over to another member. The demotion,
// promotion and owner change happen in one transaction.
func (s *TeamService) TransferLeadership(ctx context.Context, actorID, teamID, newLeaderID uint) error {
	if _, err := s.loadTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.authz.RequireLeader(ctx, teamID, actorID, "Only team leader can transfer leadership"); err != nil {
		return err
	}
	if newLeaderID == actorID {
		return NewValidation("Validation failed", utils.FieldError{
			Field:   "newLeaderId",
			Message: "new leader must be another member",
		})
	}

	target, err := s.authz.RoleIn(ctx, teamID, newLeaderID)
	if err != nil {
		return err
	}
	if target == AccessNone {
		return NewNotFound("New leader must be a member of the team")
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.members.SetRole(ctx, teamID, actorID, models.TeamRoleMember); err != nil {
			return err
		}
		if err := s.members.SetRole(ctx, teamID, newLeaderID, models.TeamRoleLeader); err != nil {
			return err
		}
		return s.teams.Update(ctx, teamID, map[string]interface{}{"owner_id": newLeaderID})
	})
	if err != nil {
		return storeError(err, "Team not found")
	}

	utils.LogEvent(s.log, "leadership_transferred", map[string]interface{}{
		"team_id": teamID,
		"from":    actorID,
		"to":      newLeaderID,
	})
	return nil
}

func (s *TeamService) loadTeam(ctx context.Context, teamID uint) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, storeError(err, "Team not found")
	}
	return team, nil
}
