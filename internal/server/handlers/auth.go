package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"updateserver/internal/config"
	"updateserver/internal/database"
	"updateserver/internal/models"
	"updateserver/internal/services"
)

func LoginPage(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{"title": "Login"})
}

func LoginSubmit(c *fiber.Ctx) error {
	type form struct {
		Email    string `form:"email"`
		Password string `form:"password"`
	}
	var f form
	if err := c.BodyParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid form")
	}
	var user models.User
	if err := database.DB.Where("email = ?", f.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"error": "Invalid email or password"})
	}
	if !user.CheckPassword(f.Password) || !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"error": "Invalid email or password"})
	}
	token, err := services.GenerateUserToken(user.ID, user.Role, 12*time.Hour)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("token error")
	}
	now := time.Now()
	user.LastLoginAt = &now
	_ = database.DB.Save(&user).Error
	c.Cookie(&fiber.Cookie{
		Name:     "admin_token",
		Value:    token,
		Expires:  time.Now().Add(12 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	return c.Redirect("/admin")
}

func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{Name: "admin_token", Value: "", Expires: time.Now().Add(-1 * time.Hour), HTTPOnly: true, Path: "/"})
	return c.Redirect("/login")
}

// ApiLogin returns a bearer token for the admin JSON endpoints.
func ApiLogin(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	var user models.User
	if err := database.DB.Where("email = ?", in.Email).First(&user).Error; err != nil {
		return fiber.ErrUnauthorized
	}
	if !user.CheckPassword(in.Password) || !user.IsActive {
		return fiber.ErrUnauthorized
	}
	now := time.Now()
	user.LastLoginAt = &now
	_ = database.DB.Save(&user).Error
	token, err := services.GenerateUserToken(user.ID, user.Role, 24*time.Hour)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"token": token})
}

// ForgotPassword emails a one-time reset code. The response is the same
// whether or not the address exists, so accounts cannot be enumerated.
func ForgotPassword(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if in.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email required")
	}

	var user models.User
	if err := database.DB.Where("email = ? AND is_active = ?", in.Email, true).First(&user).Error; err == nil {
		code, err := services.IssueResetCode(user.Email, config.Current.OTPExpiry)
		if err != nil {
			log.Printf("issue reset code: %v", err)
			return fiber.ErrInternalServerError
		}
		if err := mail.SendOTP(user.Email, code); err != nil {
			log.Printf("send reset code: %v", err)
			return fiber.ErrInternalServerError
		}
	}
	return c.JSON(fiber.Map{"status": "sent"})
}

// ResetPassword verifies a one-time code and sets a new password.
func ResetPassword(c *fiber.Ctx) error {
	var in struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if in.Email == "" || in.Code == "" || len(in.NewPassword) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "email, code and a password of at least 8 characters are required")
	}
	if err := services.ConsumeResetCode(in.Email, in.Code); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid or expired code")
	}
	var user models.User
	if err := database.DB.Where("email = ?", in.Email).First(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid or expired code")
	}
	if err := user.SetPassword(in.NewPassword); err != nil {
		return fiber.ErrInternalServerError
	}
	if err := database.DB.Save(&user).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"status": "password_updated"})
}
