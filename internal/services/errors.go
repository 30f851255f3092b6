package services

import "errors"

// Error taxonomy shared by the account services. Handlers translate these
// into HTTP statuses; ErrMailDelivery is a warning, never a rollback.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidCode  = errors.New("invalid code")
	ErrExpired      = errors.New("code expired")
	ErrRateLimited  = errors.New("resend requested too soon")
	ErrMailDelivery = errors.New("mail delivery failed")
	ErrUnauthorized = errors.New("unauthorized")
)
