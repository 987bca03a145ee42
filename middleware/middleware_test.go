package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/middleware"
	"tasky/models"
	"tasky/utils"
)

func protectedApp(tokens *utils.TokenIssuer) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.Protected(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": middleware.UserID(c)})
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestProtected(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	token, err := tokens.Issue(&models.User{ID: 42, Email: "ada@example.com"})
	require.NoError(t, err)
	app := protectedApp(tokens)

	tests := []struct {
		name    string
		target  string
		header  string
		status  int
		message string
	}{
		{name: "bearer header", target: "/me", header: "Bearer " + token, status: fiber.StatusOK},
		{name: "query token", target: "/me?token=" + token, status: fiber.StatusOK},
		{name: "no token", target: "/me", status: fiber.StatusUnauthorized, message: "Authorization required"},
		{name: "wrong scheme", target: "/me", header: "Basic " + token, status: fiber.StatusUnauthorized, message: "Invalid authorization format"},
		{name: "bad token", target: "/me", header: "Bearer nope", status: fiber.StatusUnauthorized, message: "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			if tt.status == fiber.StatusOK {
				assert.Equal(t, float64(42), body["id"])
				return
			}
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestCORS(t *testing.T) {
	t.Run("echoes any origin without an allow list", func(t *testing.T) {
		app := fiber.New()
		app.Use(middleware.CORS())
		app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "Origin", resp.Header.Get("Vary"))
	})

	t.Run("allow list", func(t *testing.T) {
		cfg := middleware.DefaultCORSConfig()
		cfg.AllowedOrigins = []string{"https://app.example.com"}
		app := fiber.New()
		app.Use(middleware.CORS(cfg))
		app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		app := fiber.New()
		app.Use(middleware.CORS())

		req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "3600", resp.Header.Get("Access-Control-Max-Age"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
	})
}

func TestAuthRateLimiter(t *testing.T) {
	log, hook := test.NewNullLogger()
	app := fiber.New()
	app.Post("/login", middleware.AuthRateLimiter(2, nil, log), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp)["success"])
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "rate_limit_hit", hook.LastEntry().Data["event_type"])
}
