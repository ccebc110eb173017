package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"

	"updateserver/internal/config"
	"updateserver/internal/database"
	"updateserver/internal/mailer"
	"updateserver/internal/server"
	"updateserver/internal/server/handlers"
)

func main() {
	// Load environment variables
	if err := config.Load(); err != nil {
		log.Fatalf("config load: %v", err)
	}

	// Init DB
	if err := database.Connect(config.Current.DatabaseURL); err != nil {
		log.Fatalf("database connect failed: %v", err)
	}

	// Auto-migrate models and seed admin
	if err := database.AutoMigrateAndSeed(); err != nil {
		log.Fatalf("migration/seed failed: %v", err)
	}

	// Template engine for the admin panel
	engine := html.New("web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ViewsLayout:  "layout",
		ServerHeader: "UpdateServer",
		AppName:      "SimpleBIM Update Service",
	})
	app.Use(logger.New())

	// Mailer gets its settings as an explicit struct, not ambient config
	handlers.Setup(database.DB, mailer.New(mailer.Config{
		APIKey:    config.Current.ResendAPIKey,
		From:      config.Current.EmailFrom,
		FromName:  config.Current.EmailFromName,
		OTPExpiry: config.Current.OTPExpiry,
	}))

	server.RegisterRoutes(app)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
