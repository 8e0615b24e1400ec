package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/caiotravain/consultorio/database"
	"github.com/caiotravain/consultorio/internal/config"
	"github.com/caiotravain/consultorio/internal/jobs"
	"github.com/caiotravain/consultorio/internal/routes"
	"github.com/caiotravain/consultorio/internal/services"
	"github.com/caiotravain/consultorio/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - using environment variables")
		}
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if !cfg.WhatsAppConfigured() {
		log.Println("⚠️  WhatsApp credentials not found - booking bot will not send messages")
	}

	// Initialize storage
	var store storage.Store
	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		if err := database.Connect(cfg.Database); err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		log.Println("🔄 Running database migrations...")
		if err := database.Migrate(); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Outbound channels
	whatsappClient := services.NewWhatsAppClient(cfg.WhatsApp)

	var twilioService *services.TwilioService
	if cfg.SMSConfigured() {
		var err error
		twilioService, err = services.NewTwilioService(cfg.Twilio)
		if err != nil {
			log.Fatal("Failed to initialize Twilio service:", err)
		}
		log.Println("✅ Twilio SMS fallback initialized")
	} else {
		log.Println("⚠️  Twilio not configured - reminders have no SMS fallback")
	}

	// Domain services
	scheduleService := services.NewScheduleService(store)
	bookingService := services.NewBookingService(store, cfg.NoShowKeyword)
	conversationService := services.NewConversationService(store, whatsappClient, scheduleService, bookingService)

	// Daily appointment reminders
	reminderJob := jobs.NewReminderJob(store, whatsappClient, twilioService)
	if err := reminderJob.Start(); err != nil {
		log.Fatal("Failed to start reminder job:", err)
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Consultorio Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, store, cfg, bookingService, scheduleService, conversationService)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping reminder job...")
		reminderJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 Consultorio backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("📱 WhatsApp: %s", whatsappStatus(cfg))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func storageType(cfg *config.Config) string {
	if cfg.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func whatsappStatus(cfg *config.Config) string {
	if !cfg.WhatsAppConfigured() {
		return "Not configured"
	}
	return "Configured"
}
