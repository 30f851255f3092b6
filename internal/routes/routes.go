package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/triple-g/buildhub-backend/internal/handlers"
	"github.com/triple-g/buildhub-backend/internal/middleware"
	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/services"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, auth *services.AuthService,
	otp *services.OTPService, approvals *services.ApprovalService,
	sessions *services.SessionManager, reports *services.ReportService) {

	accountHandler := handlers.NewAccountHandler(store, auth, otp, approvals, sessions)
	adminHandler := handlers.NewAdminHandler(store, approvals)
	portfolioHandler := handlers.NewPortfolioHandler(store)
	blogHandler := handlers.NewBlogHandler(store)
	diaryHandler := handlers.NewDiaryHandler(store, reports)
	healthHandler := handlers.NewHealthHandler("1.0.0")

	// Every request resolves its identity and role first
	app.Use(middleware.Authenticate(store, auth))

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Triple G BuildHub!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":    "/health",
				"accounts":  "/accounts",
				"portfolio": "/portfolio",
				"blog":      "/blog",
				"diary":     "/diary",
				"admin":     "/adminside",
			},
		})
	})

	app.Get("/health", healthHandler.Check)

	// ========== ACCOUNT ROUTES ==========
	accounts := app.Group("/accounts")

	client := accounts.Group("/client")
	client.Post("/register", accountHandler.Register(""))
	client.Post("/login", accountHandler.Login)
	client.Post("/verify-otp", accountHandler.VerifyOTP)
	client.Post("/resend-otp", accountHandler.ResendOTP)
	client.Post("/logout", accountHandler.Logout)

	sitemanager := accounts.Group("/sitemanager")
	sitemanager.Post("/register", accountHandler.Register(models.AdminRoleSiteManager))
	sitemanager.Post("/login", accountHandler.Login)
	sitemanager.Post("/verify-otp", accountHandler.VerifyOTP)
	sitemanager.Get("/pending-approval", accountHandler.PendingApproval)
	sitemanager.Post("/logout", accountHandler.Logout)

	adminAuth := accounts.Group("/admin-auth")
	adminAuth.Post("/register", accountHandler.Register(models.AdminRoleAdmin))
	adminAuth.Post("/login", accountHandler.Login)
	adminAuth.Post("/verify-otp", accountHandler.VerifyOTP)
	adminAuth.Post("/resend-otp", accountHandler.ResendOTP)
	adminAuth.Post("/logout", accountHandler.Logout)

	// ========== PORTFOLIO ROUTES ==========
	portfolio := app.Group("/portfolio")

	management := portfolio.Group("/projectmanagement", middleware.RequireAccess())
	management.Get("/", portfolioHandler.ListAll)
	management.Post("/", portfolioHandler.Create)
	management.Put("/:id", portfolioHandler.Update)
	management.Delete("/:id", portfolioHandler.Delete)

	portfolio.Get("/", portfolioHandler.ListPublished)
	portfolio.Get("/:slug", portfolioHandler.GetBySlug)

	// ========== BLOG ROUTES ==========
	blog := app.Group("/blog")

	blogManagement := blog.Group("/blogmanagement", middleware.RequireAccess())
	blogManagement.Get("/", blogHandler.ListAll)
	blogManagement.Post("/", blogHandler.Create)
	blogManagement.Put("/:id", blogHandler.Update)
	blogManagement.Delete("/:id", blogHandler.Delete)

	blog.Get("/", blogHandler.ListPublished)
	blog.Get("/:slug", blogHandler.GetBySlug)

	// ========== SITE DIARY ROUTES ==========
	diary := app.Group("/diary", middleware.RequireAccess())

	diary.Post("/projects", diaryHandler.CreateProject)
	diary.Get("/projects", diaryHandler.ListProjects)
	diary.Get("/projects/:id", diaryHandler.GetProject)
	diary.Put("/projects/:id", diaryHandler.UpdateProject)

	diary.Post("/entries", diaryHandler.CreateEntry)
	diary.Get("/entries", diaryHandler.ListEntries)
	diary.Get("/entries/:id", diaryHandler.GetEntry)
	diary.Put("/entries/:id", diaryHandler.UpdateEntry)
	diary.Delete("/entries/:id", diaryHandler.DeleteEntry)

	diary.Get("/reports", diaryHandler.Report)
	diary.Get("/export/reports", diaryHandler.ExportReports)

	// ========== ADMIN SIDE ROUTES ==========
	adminSide := app.Group("/adminside", middleware.RequireAccess(),
		middleware.RequireRole(services.RoleAdmin))

	adminSide.Get("/dashboard", adminHandler.Dashboard)
	adminSide.Get("/approvals", adminHandler.GetPendingApprovals)
	adminSide.Put("/approvals/:userID", adminHandler.UpdateApproval)
	adminSide.Post("/approvals/:userID/lock", adminHandler.LockAccount)
	adminSide.Get("/diary", diaryHandler.ListPendingEntries)
	adminSide.Post("/diary/:id/approve", diaryHandler.ApproveEntry)
	adminSide.Get("/reports", diaryHandler.Report)
	adminSide.Get("/export/reports", diaryHandler.ExportReports)

	// ========== CLIENT SETTINGS ==========
	settings := app.Group("/usersettings", middleware.RequireAccess(), middleware.RequireUser())
	settings.Get("/", accountHandler.Settings)
	settings.Put("/", accountHandler.UpdateSettings)

	// Redirect for backward compatibility with the old dashboard URL
	app.Get("/user/", func(c *fiber.Ctx) error {
		return c.Redirect("/usersettings/", fiber.StatusMovedPermanently)
	})
}
