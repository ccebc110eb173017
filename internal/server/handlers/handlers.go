package handlers

import (
	"gorm.io/gorm"

	"updateserver/internal/mailer"
	"updateserver/internal/registry"
	"updateserver/internal/stats"
)

var (
	reg   *registry.Store
	usage *stats.Store
	mail  *mailer.Mailer
)

// Setup wires the handler package to its collaborators. Called once at
// startup (and by tests with an in-memory database).
func Setup(db *gorm.DB, m *mailer.Mailer) {
	reg = registry.New(db)
	usage = stats.New(db)
	mail = m
}
