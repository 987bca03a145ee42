package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/models"
	"tasky/repository"
	"tasky/repository/memory"
)

func seedTeam(t *testing.T, s *memory.Store) (*models.User, *models.Team) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Handle: "ada", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, s.Users().Create(ctx, user))
	team := &models.Team{Name: "Core", OwnerID: user.ID}
	require.NoError(t, s.Teams().Create(ctx, team))
	_, err := s.Members().Add(ctx, team.ID, user.ID, models.TeamRoleLeader)
	require.NoError(t, err)
	return user, team
}

func TestDoRollsBack(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	user, team := seedTeam(t, s)

	boom := errors.New("boom")
	err := s.Do(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Teams().Update(ctx, team.ID, map[string]interface{}{"name": "Renamed"}))
		require.NoError(t, s.Members().SetRole(ctx, team.ID, user.ID, models.TeamRoleMember))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Teams().GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Core", got.Name)
	role, err := s.Members().Role(ctx, team.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleLeader, role)
}

func TestDoCommits(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_, team := seedTeam(t, s)

	require.NoError(t, s.Do(ctx, func(ctx context.Context) error {
		return s.Teams().Update(ctx, team.ID, map[string]interface{}{"name": "Renamed"})
	}))

	got, err := s.Teams().GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestConstraints(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	user, team := seedTeam(t, s)

	err := s.Users().Create(ctx, &models.User{Handle: "other", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = s.Users().Create(ctx, &models.User{Handle: "ada", Email: "new@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = s.Tasks().Create(ctx, &models.Task{Title: "x", TeamID: 999, CreatedBy: user.ID})
	assert.ErrorIs(t, err, repository.ErrForeignKey)

	added, err := s.Members().Add(ctx, team.ID, user.ID, models.TeamRoleMember)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = s.Members().Role(ctx, team.ID, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTeamDeleteCascades(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	user, team := seedTeam(t, s)

	task := &models.Task{Title: "Ship", TeamID: team.ID, CreatedBy: user.ID, AssignedTo: &user.ID}
	require.NoError(t, s.Tasks().Create(ctx, task))
	require.NoError(t, s.Comments().Create(ctx, &models.Comment{TaskID: task.ID, UserID: user.ID, Content: "hi"}))
	require.NoError(t, s.Notifications().CreateBatch(ctx, []models.Notification{
		{UserID: user.ID, TaskID: &task.ID, Type: models.NotificationTaskReminder, Title: "r"},
	}))

	require.NoError(t, s.Teams().Delete(ctx, team.ID))

	assert.Empty(t, s.AllTeams())
	assert.Empty(t, s.AllMembers(team.ID))
	assert.Empty(t, s.AllTasks())
	comments, err := s.Comments().ListForTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	notifications := s.AllNotifications()
	require.Len(t, notifications, 1)
	assert.Nil(t, notifications[0].TaskID)
}

func TestFailHook(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_, team := seedTeam(t, s)

	var ops []string
	s.Fail = func(op string) error {
		ops = append(ops, op)
		return errors.New("injected")
	}

	assert.Error(t, s.Teams().Update(ctx, team.ID, map[string]interface{}{"name": "x"}))
	assert.Error(t, s.Teams().Delete(ctx, team.ID))
	assert.Equal(t, []string{"teams.update", "teams.delete"}, ops)
	assert.Len(t, s.AllTeams(), 1)
}

func TestRollbackKeepsWritesOutsideTransaction(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	user, team := seedTeam(t, s)

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.Do(ctx, func(ctx context.Context) error {
			if err := s.Teams().Update(ctx, team.ID, map[string]interface{}{"name": "Renamed"}); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("boom")
		})
	}()
	<-entered

	written := make(chan error, 1)
	go func() {
		written <- s.Notifications().CreateBatch(ctx, []models.Notification{
			{UserID: user.ID, Type: models.NotificationTaskReminder, Title: "outside"},
		})
	}()

	select {
	case <-written:
		t.Fatal("write outside the transaction did not wait for it")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	require.Error(t, <-txDone)
	require.NoError(t, <-written)

	assert.Equal(t, "Core", s.AllTeams()[0].Name)
	notifications := s.AllNotifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, "outside", notifications[0].Title)
}

func TestNestedDoJoinsOuterTransaction(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_, team := seedTeam(t, s)

	err := s.Do(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Do(ctx, func(ctx context.Context) error {
			return s.Teams().Update(ctx, team.ID, map[string]interface{}{"name": "Inner"})
		}))
		return errors.New("outer failed")
	})
	require.Error(t, err)
	assert.Equal(t, "Core", s.AllTeams()[0].Name)
}
