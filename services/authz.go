package services

import (
	"context"
	"errors"

	"tasky/models"
	"tasky/repository"
)

// Access is the effective standing of a user inside a team
type Access int

const (
	AccessNone Access = iota
	AccessMember
	AccessLeader
)

// Authorizer answers role questions against current storage state.
// Nothing is cached between calls.
type Authorizer struct {
	members MemberRepository
}

func NewAuthorizer(members MemberRepository) *Authorizer {
	return &Authorizer{members: members}
}

func (a *Authorizer) RoleIn(ctx context.Context, teamID, userID uint) (Access, error) {
	role, err := a.members.Role(ctx, teamID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return AccessNone, nil
	}
	if err != nil {
		return AccessNone, NewInternal(err)
	}
	return accessFor(role), nil
}

// RequireLeader fails with Forbidden unless the user leads the team
func (a *Authorizer) RequireLeader(ctx context.Context, teamID, userID uint, message string) error {
	access, err := a.RoleIn(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if access != AccessLeader {
		return NewForbidden(message)
	}
	return nil
}

func accessFor(role models.TeamRole) Access {
	switch {
	case role.IsLeader():
		return AccessLeader
	case role == models.TeamRoleMember:
		return AccessMember
	}
	return AccessNone
}
