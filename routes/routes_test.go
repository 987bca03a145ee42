package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	controller "tasky/controllers"
	"tasky/events"
	"tasky/middleware"
	"tasky/models"
	"tasky/repository/memory"
	"tasky/routes"
	"tasky/services"
	"tasky/utils"
)

type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Message string             `json:"message"`
	Errors  []utils.FieldError `json:"errors"`
	Token   string             `json:"token"`
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type harness struct {
	t     *testing.T
	app   *fiber.App
	store *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, _ := test.NewNullLogger()
	store := memory.New()
	bus := events.NewLocalBus()
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)

	notifications := services.NewNotificationService(store.Notifications(), store.Users(), bus, utils.NopMailer{}, log)
	deps := routes.Deps{
		Auth:          services.NewAuthService(store.Users(), tokens, log),
		Users:         services.NewUserService(store.Users(), utils.NewDiskAvatarStore(t.TempDir(), 1<<20), log),
		Teams:         services.NewTeamService(store, store.Teams(), store.Members(), store.Users(), store.Tasks(), log),
		Tasks:         services.NewTaskService(store.Tasks(), store.Users(), store.Members(), store.Comments(), notifications, log),
		Comments:      services.NewCommentService(store.Comments(), store.Tasks(), store.Users()),
		Notifications: notifications,
		Tokens:        tokens,
		Bus:           bus,
		Store:         store,
		Log:           log,
	}
	return &harness{t: t, app: routes.NewApp(deps, middleware.DefaultCORSConfig(), 4<<20), store: store}
}

func (h *harness) do(method, path, token string, body interface{}) (int, envelope) {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	if len(raw) > 0 {
		require.NoError(h.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (h *harness) register(name, email string) (models.User, string) {
	h.t.Helper()
	status, env := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(h.t, http.StatusCreated, status, env.Message)
	require.NotEmpty(h.t, env.Token)

	var user models.User
	require.NoError(h.t, json.Unmarshal(env.Data, &user))
	return user, env.Token
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func TestTaskWorkflowOverHTTP(t *testing.T) {
	h := newHarness(t)
	alice, aliceToken := h.register("Alice", "alice@example.com")
	bob, bobToken := h.register("Bob", "bob@example.com")

	status, env := h.do(http.MethodPost, "/api/teams", aliceToken, map[string]string{"name": "Core team"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var team models.Team
	require.NoError(t, json.Unmarshal(env.Data, &team))

	status, env = h.do(http.MethodPost, "/api/teams/"+id(team.ID)+"/members", aliceToken, map[string]string{"email": bob.Email})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Member invited", env.Message)

	status, env = h.do(http.MethodPost, "/api/teams/"+id(team.ID)+"/members", aliceToken, map[string]string{"email": bob.Email})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User is already a member", env.Message)

	status, env = h.do(http.MethodPost, "/api/tasks", aliceToken, map[string]interface{}{
		"title": "Write release notes", "assigned_to": bob.ID, "team_id": team.ID,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var task models.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))

	status, env = h.do(http.MethodPut, "/api/tasks/"+id(task.ID), bobToken, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Members may only change status", env.Message)

	status, env = h.do(http.MethodPut, "/api/tasks/"+id(task.ID), bobToken, map[string]string{})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "No changes to update", env.Message)

	status, env = h.do(http.MethodPut, "/api/tasks/"+id(task.ID), bobToken, map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.JSONEq(t, `{"updated":true}`, string(env.Data))

	status, env = h.do(http.MethodGet, "/api/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	var inbox []models.NotificationView
	require.NoError(t, json.Unmarshal(env.Data, &inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationTaskCompleted, inbox[0].Type)
	assert.Equal(t, alice.ID, inbox[0].UserID)

	status, _ = h.do(http.MethodPut, "/api/notifications/"+id(inbox[0].ID)+"/read", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.do(http.MethodPut, "/api/notifications/"+id(inbox[0].ID)+"/read", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodPost, "/api/tasks/"+id(task.ID)+"/remind", aliceToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Reminder sent to Bob", env.Message)
}

func TestAuthEndpoints(t *testing.T) {
	h := newHarness(t)
	_, token := h.register("Alice", "alice@example.com")

	status, env := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "A", "email": "bad", "password": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, env.Success)
	assert.Len(t, env.Errors, 3)

	status, env = h.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Email already registered", env.Message)

	status, env = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "nope12"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Message)

	status, env = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, env.Token)

	status, _ = h.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRequestEdges(t *testing.T) {
	h := newHarness(t)
	_, token := h.register("Alice", "alice@example.com")

	t.Run("missing token", func(t *testing.T) {
		status, env := h.do(http.MethodGet, "/api/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.False(t, env.Success)
	})

	t.Run("unknown route", func(t *testing.T) {
		status, env := h.do(http.MethodGet, "/api/nope", token, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Route not found", env.Message)
	})

	t.Run("bad id", func(t *testing.T) {
		status, _ := h.do(http.MethodGet, "/api/tasks/abc", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/teams", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := h.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing task", func(t *testing.T) {
		status, env := h.do(http.MethodGet, "/api/tasks/999", token, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Task not found", env.Message)
	})

	t.Run("public search", func(t *testing.T) {
		status, env := h.do(http.MethodGet, "/api/users/search?q=ali", "", nil)
		assert.Equal(t, http.StatusOK, status)
		var users []models.User
		require.NoError(t, json.Unmarshal(env.Data, &users))
		assert.Len(t, users, 1)
	})
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	resp, err := h.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestHealthReportsStoreFailure(t *testing.T) {
	app := fiber.New()
	app.Get("/health", controller.Health(failingPinger{}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","message":"connection refused"}`, string(body))
}

func TestStreamRequiresUpgrade(t *testing.T) {
	h := newHarness(t)
	_, token := h.register("Alice", "alice@example.com")

	status, _ := h.do(http.MethodGet, "/api/notifications/stream?token="+token, "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}

func TestInternalErrorsAreHidden(t *testing.T) {
	h := newHarness(t)
	_, token := h.register("Alice", "alice@example.com")

	h.store.Fail = func(op string) error {
		if op == "teams.create" {
			return errors.New("disk on fire")
		}
		return nil
	}

	status, env := h.do(http.MethodPost, "/api/teams", token, map[string]string{"name": "Core team"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", env.Message)
	assert.NotContains(t, env.Message, "disk")
}
