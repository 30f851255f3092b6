package services

import (
	"fmt"
	"log"
	"time"

	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

const (
	maxFailedLogins = 5
	loginLockout    = 30 * time.Minute
)

// ApprovalService drives the admin approval state machine:
// pending -> approved | denied | suspended, approved -> suspended.
// Denial and suspension are terminal here; only a superuser edit outside
// this machine can revive a profile.
type ApprovalService struct {
	store  storage.Store
	mailer Mailer
	now    func() time.Time
}

func NewApprovalService(store storage.Store, mailer Mailer) *ApprovalService {
	return &ApprovalService{
		store:  store,
		mailer: mailer,
		now:    time.Now,
	}
}

// EnsureProfile is the idempotent profile-creation hook called by the
// registration flow. An existing profile is returned untouched.
func (s *ApprovalService) EnsureProfile(userID uint, adminRole string) (*models.AdminProfile, error) {
	if !models.ValidAdminRole(adminRole) {
		return nil, fmt.Errorf("unknown admin role %q", adminRole)
	}

	profile, err := s.store.GetAdminProfileByUser(userID)
	if err == nil {
		return profile, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	return s.store.CreateAdminProfile(&models.AdminProfile{
		UserID:         userID,
		AdminRole:      adminRole,
		ApprovalStatus: models.ApprovalPending,
	})
}

// elevated reports whether the acting operator may move profiles out of pending
func (s *ApprovalService) elevated(actor *models.User) bool {
	if actor == nil {
		return false
	}
	if actor.IsSuperuser {
		return true
	}
	profile, err := s.store.GetAdminProfileByUser(actor.ID)
	if err != nil {
		return false
	}
	return ResolveRole(actor, profile, s.now()) == RoleAdmin
}

func (s *ApprovalService) transition(profile *models.AdminProfile, actor *models.User, target string, from ...string) error {
	if !s.elevated(actor) {
		return ErrUnauthorized
	}

	allowed := false
	for _, f := range from {
		if profile.ApprovalStatus == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("cannot move profile from %s to %s", profile.ApprovalStatus, target)
	}

	profile.ApprovalStatus = target
	if target == models.ApprovalApproved {
		now := s.now()
		profile.ApprovedByID = &actor.ID
		profile.ApprovedAt = &now
	}
	if err := s.store.UpdateAdminProfile(profile); err != nil {
		return err
	}

	s.notify(profile, target)
	return nil
}

// Approve moves a pending profile to approved, stamping the acting operator
func (s *ApprovalService) Approve(profile *models.AdminProfile, actor *models.User) error {
	return s.transition(profile, actor, models.ApprovalApproved, models.ApprovalPending)
}

// Deny rejects a pending profile
func (s *ApprovalService) Deny(profile *models.AdminProfile, actor *models.User) error {
	return s.transition(profile, actor, models.ApprovalDenied, models.ApprovalPending)
}

// Suspend takes a pending or approved profile out of service
func (s *ApprovalService) Suspend(profile *models.AdminProfile, actor *models.User) error {
	return s.transition(profile, actor, models.ApprovalSuspended, models.ApprovalPending, models.ApprovalApproved)
}

// notify sends the status change email best-effort; failures are logged only
func (s *ApprovalService) notify(profile *models.AdminProfile, status string) {
	user, err := s.store.GetUser(profile.UserID)
	if err != nil {
		log.Printf("Cannot notify user %d of %s status: %v", profile.UserID, status, err)
		return
	}
	subject, body := approvalEmail(user.FullName(), status)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		log.Printf("Failed to send %s notification to %s: %v", status, user.Email, err)
	}
}

// LockAccount locks the profile for the given duration. Locking is an
// orthogonal axis, not an approval state.
func (s *ApprovalService) LockAccount(profile *models.AdminProfile, d time.Duration) error {
	until := s.now().Add(d)
	profile.AccountLockedUntil = &until
	return s.store.UpdateAdminProfile(profile)
}

// RecordFailedLogin bumps the failure counter and locks the account once
// the threshold is reached
func (s *ApprovalService) RecordFailedLogin(profile *models.AdminProfile) error {
	profile.FailedLoginAttempts++
	if profile.FailedLoginAttempts >= maxFailedLogins {
		until := s.now().Add(loginLockout)
		profile.AccountLockedUntil = &until
		profile.FailedLoginAttempts = 0
		log.Printf("Account for user %d locked until %s after repeated login failures", profile.UserID, until.Format(time.RFC3339))
	}
	return s.store.UpdateAdminProfile(profile)
}

// ResetFailedLogins clears the failure counter after a successful login
func (s *ApprovalService) ResetFailedLogins(profile *models.AdminProfile) error {
	if profile.FailedLoginAttempts == 0 {
		return nil
	}
	profile.FailedLoginAttempts = 0
	return s.store.UpdateAdminProfile(profile)
}
