package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"tasky/events"
	"tasky/models"
	"tasky/repository/memory"
	"tasky/services"
	"tasky/utils"
)

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	bus   *events.LocalBus
	mail  *recordingMailer
	hook  *test.Hook

	tokens        *utils.TokenIssuer
	auth          *services.AuthService
	users         *services.UserService
	teams         *services.TeamService
	tasks         *services.TaskService
	comments      *services.CommentService
	notifications *services.NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, hook := test.NewNullLogger()
	store := memory.New()
	bus := events.NewLocalBus()
	mail := &recordingMailer{}
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)

	notifications := services.NewNotificationService(store.Notifications(), store.Users(), bus, mail, log)
	return &fixture{
		ctx:           context.Background(),
		store:         store,
		bus:           bus,
		mail:          mail,
		hook:          hook,
		tokens:        tokens,
		auth:          services.NewAuthService(store.Users(), tokens, log),
		users:         services.NewUserService(store.Users(), nil, log),
		teams:         services.NewTeamService(store, store.Teams(), store.Members(), store.Users(), store.Tasks(), log),
		tasks:         services.NewTaskService(store.Tasks(), store.Users(), store.Members(), store.Comments(), notifications, log),
		comments:      services.NewCommentService(store.Comments(), store.Tasks(), store.Users()),
		notifications: notifications,
	}
}

// user stores an account directly, password "secret1"
func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)

	u := &models.User{
		Handle:       name,
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: hash,
	}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u
}

// team creates a team led by leader with the given plain members
func (f *fixture) team(t *testing.T, leader *models.User, members ...*models.User) *models.Team {
	t.Helper()
	team, err := f.teams.Create(f.ctx, leader.ID, services.TeamInput{Name: "Core team"})
	require.NoError(t, err)
	for _, m := range members {
		_, err := f.teams.AddMember(f.ctx, leader.ID, team.ID, m.Email)
		require.NoError(t, err)
	}
	return team
}

func (f *fixture) task(t *testing.T, creator *models.User, team *models.Team, assignee *models.User) *models.Task {
	t.Helper()
	task, err := f.tasks.Create(f.ctx, creator.ID, services.CreateTaskInput{
		Title:      "Write release notes",
		AssignedTo: utils.Pointer(assignee.ID),
		TeamID:     team.ID,
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) notificationsOf(typ models.NotificationType) []models.Notification {
	var out []models.Notification
	for _, n := range f.store.AllNotifications() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func kindOf(err error) services.Kind {
	return services.KindOf(err)
}
