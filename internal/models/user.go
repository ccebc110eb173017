package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
)

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:120;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	Role         string `gorm:"size:32;index;not null"`
	IsActive     bool   `gorm:"default:true"`
	LastLoginAt  *time.Time
}

func (u *User) SetPassword(plain string) error {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(h)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// PasswordReset holds a pending one-time code for the forgot-password flow.
type PasswordReset struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Email     string    `gorm:"size:120;index;not null"`
	Code      string    `gorm:"size:8;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"default:false"`
}
