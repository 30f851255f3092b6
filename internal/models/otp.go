package models

import (
	"time"

	"gorm.io/gorm"
)

// OneTimePassword is the email verification code bound to a pending account.
// At most one row exists per user: issuing a new code replaces the old row.
type OneTimePassword struct {
	gorm.Model
	UserID   uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Code     string    `json:"-" gorm:"not null"` // exactly 6 ASCII digits
	IssuedAt time.Time `json:"issued_at" gorm:"not null"`
}

const (
	// OTPValidity is how long a code stays verifiable after issuance
	OTPValidity = 10 * time.Minute
	// OTPResendInterval is the minimum gap between issuances for one user
	OTPResendInterval = 60 * time.Second
)

// Expired reports whether the code is past its validity window at now
func (o *OneTimePassword) Expired(now time.Time) bool {
	return now.Sub(o.IssuedAt) > OTPValidity
}
