package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"updateserver/internal/metrics"
	"updateserver/internal/models"
	"updateserver/internal/server/handlers"
	"updateserver/internal/server/middleware"
)

func RegisterRoutes(app *fiber.App) {
	// Admin panel
	app.Get("/login", handlers.LoginPage)
	app.Post("/login", handlers.LoginSubmit)
	app.Get("/logout", handlers.Logout)
	app.Get("/admin", middleware.AuthRequired(models.RoleSuperAdmin, models.RoleAdmin), handlers.Dashboard)

	// Auth API
	auth := app.Group("/auth")
	auth.Post("/login", handlers.ApiLogin)
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/reset-password", handlers.ResetPassword)

	// Update API (public, consumed by the desktop add-in)
	updates := app.Group("/updates")
	updates.Post("/check", handlers.CheckUpdate)
	updates.Post("/download-stats", handlers.DownloadStats)
	updates.Post("/install-stats", handlers.InstallStats)
	updates.Get("/health", handlers.Health)

	// Update API (admin)
	adminAuth := middleware.APIAuthRequired(models.RoleSuperAdmin, models.RoleAdmin)
	updates.Get("/versions", adminAuth, handlers.ListVersions)
	updates.Post("/versions", adminAuth, handlers.CreateVersion)
	updates.Put("/versions/:id/deactivate", adminAuth, handlers.DeactivateVersion)
	updates.Delete("/versions/:id", adminAuth, handlers.DeleteVersion)
	updates.Get("/statistics", adminAuth, handlers.Statistics)
	updates.Post("/calculate-checksum", adminAuth, handlers.CalculateChecksum)

	// Operational
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "time": time.Now()})
	})
}
