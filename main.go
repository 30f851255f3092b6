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

	"github.com/triple-g/buildhub-backend/database"
	"github.com/triple-g/buildhub-backend/internal/handlers"
	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/routes"
	"github.com/triple-g/buildhub-backend/internal/services"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.OneTimePassword{},
			&models.AdminProfile{},
			&models.PortfolioProject{},
			&models.BlogPost{},
			&models.SiteProject{},
			&models.DiaryEntry{},
			&models.LaborEntry{},
			&models.MaterialEntry{},
			&models.EquipmentEntry{},
			&models.DelayEntry{},
			&models.VisitorEntry{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Mail transport
	var mailer services.Mailer = services.NewSMTPMailerFromEnv()
	if os.Getenv("SMTP_HOST") == "" {
		log.Println("⚠️  SMTP not configured - verification emails will fail to send")
	}

	// Set global instances
	storage.SetStore(store)
	sessionManager := services.NewSessionManager()
	services.SetSessionManager(sessionManager)

	// Initialize all services
	otpService := services.NewOTPService(store, mailer)
	approvalService := services.NewApprovalService(store, mailer)
	authService := services.NewAuthService(store, approvalService)
	reportService := services.NewReportService(store)

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "BuildHub Backend v1.0.0",
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

	// Setup routes
	routes.SetupRoutes(app, store, authService, otpService, approvalService, sessionManager, reportService)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 BuildHub Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", handlers.StorageMode())
	log.Printf("📧 Mail: %s", handlers.MailStatus())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}
