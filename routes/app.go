package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	controller "tasky/controllers"
	"tasky/middleware"
)

// NewApp builds the fiber application with the full middleware stack and routes
func NewApp(d Deps, cors middleware.CORSConfig, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "tasky",
		ErrorHandler: controller.ErrorHandler(d.Log),
		BodyLimit:    bodyLimit,
	})

	app.Use(recover.New())
	app.Use(middleware.CORS(cors))

	SetupRoutes(app, d)
	return app
}
