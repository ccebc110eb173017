package services

import (
	"errors"
	"time"

	"updateserver/internal/database"
	"updateserver/internal/mailer"
	"updateserver/internal/models"
)

var ErrInvalidResetCode = errors.New("invalid or expired reset code")

// IssueResetCode stores a fresh one-time code for the given email and
// returns it. Earlier unused codes for the same address are invalidated.
func IssueResetCode(email string, ttl time.Duration) (string, error) {
	code, err := mailer.GenerateOTP()
	if err != nil {
		return "", err
	}
	if err := database.DB.Model(&models.PasswordReset{}).
		Where("email = ? AND used = ?", email, false).
		Update("used", true).Error; err != nil {
		return "", err
	}
	reset := models.PasswordReset{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := database.DB.Create(&reset).Error; err != nil {
		return "", err
	}
	return code, nil
}

// ConsumeResetCode validates a code and marks it used. A code works
// exactly once and only before its expiry.
func ConsumeResetCode(email, code string) error {
	var reset models.PasswordReset
	err := database.DB.
		Where("email = ? AND code = ? AND used = ?", email, code, false).
		First(&reset).Error
	if err != nil {
		return ErrInvalidResetCode
	}
	if time.Now().After(reset.ExpiresAt) {
		return ErrInvalidResetCode
	}
	reset.Used = true
	return database.DB.Save(&reset).Error
}
