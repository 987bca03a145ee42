package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	controller "tasky/controllers"
	"tasky/events"
	"tasky/middleware"
	"tasky/repository"
	"tasky/services"
	"tasky/utils"
)

// Deps carries everything the HTTP surface needs
type Deps struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Teams         *services.TeamService
	Tasks         *services.TaskService
	Comments      *services.CommentService
	Notifications *services.NotificationService

	Tokens    *utils.TokenIssuer
	Bus       events.Bus
	Store     repository.Pinger
	Log       logrus.FieldLogger
	UploadDir string

	// AuthLimiter guards the auth endpoints. Nil disables rate limiting.
	AuthLimiter fiber.Handler
	// RequestLog enables the access log middleware
	RequestLog bool
}

func SetupRoutes(app *fiber.App, d Deps) {
	if d.RequestLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	app.Get("/health", controller.Health(d.Store))
	if d.UploadDir != "" {
		app.Static("/uploads", d.UploadDir)
	}

	protected := middleware.Protected(d.Tokens)
	api := app.Group("/api")

	SetupAuthRoutes(api, d, protected)
	SetupUserRoutes(api, d, protected)
	SetupTeamRoutes(api, d, protected)
	SetupTaskRoutes(api, d, protected)
	SetupNotificationRoutes(api, d, protected)

	app.Use(controller.NotFound)
}

func SetupAuthRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	authController := controller.NewAuthController(d.Auth)

	auth := api.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Post("/register", d.AuthLimiter, authController.Register)
		auth.Post("/login", d.AuthLimiter, authController.Login)
	} else {
		auth.Post("/register", authController.Register)
		auth.Post("/login", authController.Login)
	}
	auth.Get("/me", protected, authController.Me)
}

func SetupUserRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	userController := controller.NewUserController(d.Users)

	users := api.Group("/users")
	users.Get("/search", userController.Search)
	users.Get("/", protected, userController.List)
	users.Get("/me", protected, userController.Me)
	users.Put("/me", protected, userController.UpdateProfile)
	users.Post("/me/avatar", protected, userController.UploadAvatar)
	users.Put("/me/password", protected, userController.ChangePassword)
	users.Get("/:id", protected, userController.Get)
}

func SetupTeamRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	teamController := controller.NewTeamController(d.Teams)

	teams := api.Group("/teams", protected)
	teams.Get("/", teamController.List)
	teams.Post("/", teamController.Create)
	teams.Get("/:id", teamController.Get)
	teams.Put("/:id", teamController.Update)
	teams.Delete("/:id", teamController.Delete)
	teams.Post("/:id/members", teamController.AddMember)
	teams.Delete("/:id/members", teamController.RemoveMember)
	teams.Post("/:id/leave", teamController.Leave)
	teams.Post("/:id/transfer-leadership", teamController.TransferLeadership)
}

func SetupTaskRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	taskController := controller.NewTaskController(d.Tasks, d.Comments)

	tasks := api.Group("/tasks", protected)
	tasks.Get("/", taskController.List)
	tasks.Post("/", taskController.Create)
	tasks.Get("/:id", taskController.Get)
	tasks.Put("/:id", taskController.Update)
	tasks.Delete("/:id", taskController.Delete)
	tasks.Post("/:id/remind", taskController.Remind)
	tasks.Post("/:id/comments", taskController.AddComment)
	tasks.Delete("/:id/comments/:commentId", taskController.DeleteComment)
}

func SetupNotificationRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	notificationController := controller.NewNotificationController(d.Notifications, d.Bus, d.Log)

	notifications := api.Group("/notifications", protected)
	notifications.Get("/", notificationController.List)
	notifications.Get("/stream", controller.RequireUpgrade, notificationController.Stream())
	notifications.Put("/read-all", notificationController.MarkAllRead)
	notifications.Put("/:id/read", notificationController.MarkRead)
}
