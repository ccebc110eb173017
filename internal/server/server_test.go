package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"updateserver/internal/config"
	"updateserver/internal/database"
	"updateserver/internal/mailer"
	"updateserver/internal/models"
	"updateserver/internal/server/handlers"
	"updateserver/internal/services"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	config.Current = config.Config{
		JWTSecret: "test-secret",
		OTPExpiry: 10 * time.Minute,
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.User{},
		&models.Release{},
		&models.UsageEvent{},
		&models.PasswordReset{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	database.DB = db
	handlers.Setup(db, mailer.New(mailer.Config{OTPExpiry: 10 * time.Minute}))

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ViewsLayout: "layout"})
	RegisterRoutes(app)
	return app
}

func dbOf(t *testing.T) *gorm.DB {
	t.Helper()
	if database.DB == nil {
		t.Fatal("test app not initialized")
	}
	return database.DB
}

func seedAdmin(t *testing.T, password string) *models.User {
	t.Helper()
	user := models.User{
		Email:    "admin@example.com",
		Username: "admin",
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}
	if err := user.SetPassword(password); err != nil {
		t.Fatal(err)
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return &user
}

func adminToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := services.GenerateUserToken(user.ID, user.Role, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func publishVersion(t *testing.T, app *fiber.App, token string, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/updates/versions", token, payload)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("publish %v: status %d", payload["version"], resp.StatusCode)
	}
	var out map[string]interface{}
	decode(t, resp, &out)
	return out
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, fiber.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestMetricsExposition(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, fiber.MethodGet, "/metrics", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAdminPanelRedirectsWhenAnonymous(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, fiber.MethodGet, "/admin", "", nil)
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want 302 redirect to login", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want /login", loc)
	}
}
