package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/storage"
	"github.com/triple-g/buildhub-backend/internal/utils"
)

// OTPService runs the email verification lifecycle: issue a code, mail it,
// validate it exactly once, activate the account.
type OTPService struct {
	store  storage.Store
	mailer Mailer
	now    func() time.Time
}

func NewOTPService(store storage.Store, mailer Mailer) *OTPService {
	return &OTPService{
		store:  store,
		mailer: mailer,
		now:    time.Now,
	}
}

// Issue generates a fresh 6-digit code for the user, replacing any
// outstanding one and resetting the issuance timer. The code is persisted
// before the email goes out; a failed send returns ErrMailDelivery but the
// code stays valid.
func (s *OTPService) Issue(user *models.User) (string, error) {
	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	otp := &models.OneTimePassword{
		UserID:   user.ID,
		Code:     code,
		IssuedAt: s.now(),
	}
	if err := s.store.UpsertOTP(otp); err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	subject, body := otpEmail(user.FullName(), code)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		return code, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return code, nil
}

// Verify validates the submitted code for the user. On success the OTP row
// is deleted and the account activated in one transaction; a failed attempt
// leaves the row in place. Codes are compared by exact string equality.
func (s *OTPService) Verify(userID uint, submitted string) error {
	err := s.store.ConsumeOTP(userID, func(otp *models.OneTimePassword, user *models.User) error {
		if otp == nil {
			return ErrNotFound
		}
		if otp.Code != submitted {
			return ErrInvalidCode
		}
		if otp.Expired(s.now()) {
			return ErrExpired
		}
		return nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// CanResend reports whether enough time has passed since the last issuance.
// A user with no outstanding code may always request one.
func (s *OTPService) CanResend(userID uint) (bool, error) {
	otp, err := s.store.GetOTPByUser(userID)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return s.now().Sub(otp.IssuedAt) > models.OTPResendInterval, nil
}

// Resend issues a new code unless the previous one is too fresh
func (s *OTPService) Resend(user *models.User) (string, error) {
	ok, err := s.CanResend(user.ID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrRateLimited
	}
	return s.Issue(user)
}
