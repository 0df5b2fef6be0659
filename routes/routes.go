package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "teamspace/controllers"
	"teamspace/middleware"
	"teamspace/realtime"
	"teamspace/storage"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Google OAuth routes
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, hub *realtime.Hub, store storage.Store) {
	// Initialize controllers with their respective loggers
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	messageController := controller.NewMessageController(db, log.New(os.Stdout, "MESSAGE: ", log.LstdFlags), hub, store)
	fileController := controller.NewFileController(db, log.New(os.Stdout, "FILE: ", log.LstdFlags))
	pushController := controller.NewPushController(db, log.New(os.Stdout, "PUSH: ", log.LstdFlags), hub)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Team routes
	team := api.Group("/teams")
	team.Get("/", teamController.ListTeams)
	team.Post("/", teamController.CreateTeam)
	team.Get("/:id", teamController.GetTeam)
	team.Put("/:id", teamController.UpdateTeam)
	team.Delete("/:id", teamController.DeleteTeam)

	// Membership routes
	team.Post("/:id/join-requests", teamController.RequestJoin)
	team.Get("/:id/join-requests", teamController.ListJoinRequests)
	team.Put("/:id/join-requests/:requestId", teamController.DecideJoinRequest)
	team.Delete("/:id/members/:userId", teamController.RemoveMember)

	// Feed routes. Uploads are rate limited per user per team.
	team.Get("/:id/messages", messageController.GetHistory)
	team.Post("/:id/messages", messageController.SendMessage)
	team.Post("/:id/messages/upload", middleware.UploadRateLimiter(), messageController.UploadMessage)

	message := api.Group("/messages")
	message.Put("/:id", messageController.EditMessage)
	message.Put("/:id/attachment", middleware.UploadRateLimiter(), messageController.ReplaceAttachment)
	message.Delete("/:id", messageController.DeleteMessage)

	// File routes
	team.Get("/:id/files", fileController.ListFiles)
	api.Get("/files/:id/download", fileController.DownloadFile)

	// WebSocket push channel
	app.Use("/ws", middleware.Protected(), pushController.UpgradeRequired)
	app.Get("/ws", pushController.Handler())

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, hub *realtime.Hub, store storage.Store) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db, hub, store)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
