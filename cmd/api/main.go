package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mintlite/internal/config"
	"mintlite/internal/handler"
	"mintlite/internal/middleware"
	"mintlite/internal/pkg/logger"
	"mintlite/internal/repository"
	"mintlite/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zlog := logger.New(cfg.Environment)
	defer zlog.Sync()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, cfg, zlog)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		zlog.Info("shutting down api server")
		_ = app.Shutdown()
	}()

	zlog.Info("api server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	webhooks := v1.Group("/webhooks", middleware.VerifyWebhookSignature(cfg.WebhookSecret))
	webhooks.Post("/delivery", h.Webhook.DeliveryFeedback)

	protected := v1.Group("", middleware.AuthRequired(cfg.JWTSecret))

	notifications := protected.Group("/notifications")
	notifications.Post("/", h.Notification.Create)
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Post("/mark-all-read", h.Notification.MarkAllRead)
	notifications.Get("/:id", h.Notification.GetByID)
	notifications.Post("/:id/read", h.Notification.MarkRead)

	devices := protected.Group("/devices")
	devices.Post("/", h.Notification.RegisterDevice)
	devices.Delete("/:token", h.Notification.RemoveDevice)

	budgets := protected.Group("/budgets")
	budgets.Post("/", h.Budget.Create)
	budgets.Get("/", h.Budget.List)
	budgets.Get("/:id", h.Budget.GetByID)
	budgets.Get("/:id/status", h.Budget.Status)
	budgets.Get("/:id/transactions", h.Transaction.ListByBudget)

	transactions := protected.Group("/transactions")
	transactions.Post("/", h.Transaction.Create)
}
