package models

import (
	"strings"

	"gorm.io/gorm"
)

// User represents an account identity (client, site manager or admin)
type User struct {
	gorm.Model
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Active       bool   `json:"active" gorm:"default:false"` // set true after OTP verification
	IsStaff      bool   `json:"is_staff" gorm:"default:false"`
	IsSuperuser  bool   `json:"is_superuser" gorm:"default:false"`
}

// BeforeCreate normalizes the email handle
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// FullName returns the display name, falling back to the email handle
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// UserRegistration is used for new account registration
type UserRegistration struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
