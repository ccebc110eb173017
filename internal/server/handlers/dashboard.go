package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// Dashboard renders the admin overview: published releases plus the
// usage summary.
func Dashboard(c *fiber.Ctx) error {
	releases, err := reg.ListAll()
	if err != nil {
		log.Printf("dashboard: %v", err)
		return fiber.ErrInternalServerError
	}
	sum, err := usage.Summarize()
	if err != nil {
		log.Printf("dashboard: %v", err)
		return fiber.ErrInternalServerError
	}
	active := 0
	for _, rel := range releases {
		if rel.IsActive {
			active++
		}
	}
	return c.Render("dashboard", fiber.Map{
		"title":    "Dashboard",
		"releases": releases,
		"active":   active,
		"stats":    sum,
	})
}
