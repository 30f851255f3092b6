package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

func newTestApprovalService(t *testing.T) (*ApprovalService, *storage.MemoryStore, *mailerStub) {
	t.Helper()
	store := storage.NewMemoryStore()
	mailer := &mailerStub{}
	return NewApprovalService(store, mailer), store, mailer
}

func createAdmin(t *testing.T, store *storage.MemoryStore, svc *ApprovalService, email, role string) (*models.User, *models.AdminProfile) {
	t.Helper()
	user, err := store.CreateUser(&models.User{Email: email, PasswordHash: "x", Active: true, IsStaff: true})
	require.NoError(t, err)
	profile, err := svc.EnsureProfile(user.ID, role)
	require.NoError(t, err)
	return user, profile
}

func createSuperuser(t *testing.T, store *storage.MemoryStore) *models.User {
	t.Helper()
	user, err := store.CreateUser(&models.User{Email: "root@example.com", PasswordHash: "x", Active: true, IsSuperuser: true})
	require.NoError(t, err)
	return user
}

func TestEnsureProfile_Idempotent(t *testing.T) {
	svc, store, _ := newTestApprovalService(t)
	user, err := store.CreateUser(&models.User{Email: "sm@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	first, err := svc.EnsureProfile(user.ID, models.AdminRoleSiteManager)
	require.NoError(t, err)
	require.Equal(t, models.ApprovalPending, first.ApprovalStatus)

	// A second call must not create or reset anything
	first.ApprovalStatus = models.ApprovalApproved
	require.NoError(t, store.UpdateAdminProfile(first))

	second, err := svc.EnsureProfile(user.ID, models.AdminRoleSiteManager)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, models.ApprovalApproved, second.ApprovalStatus)
}

func TestEnsureProfile_RejectsUnknownRole(t *testing.T) {
	svc, store, _ := newTestApprovalService(t)
	user, err := store.CreateUser(&models.User{Email: "sm@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = svc.EnsureProfile(user.ID, "janitor")
	require.Error(t, err)
}

func TestApprove_StampsOperatorAndNotifies(t *testing.T) {
	svc, store, mailer := newTestApprovalService(t)
	root := createSuperuser(t, store)
	_, profile := createAdmin(t, store, svc, "sm@example.com", models.AdminRoleSiteManager)

	base := time.Now()
	svc.now = func() time.Time { return base }
	require.NoError(t, svc.Approve(profile, root))

	require.Equal(t, models.ApprovalApproved, profile.ApprovalStatus)
	require.NotNil(t, profile.ApprovedByID)
	require.Equal(t, root.ID, *profile.ApprovedByID)
	require.NotNil(t, profile.ApprovedAt)
	require.Equal(t, base, *profile.ApprovedAt)
	require.Contains(t, mailer.sent, "sm@example.com")
}

func TestApprove_MailFailureDoesNotRollBack(t *testing.T) {
	svc, store, mailer := newTestApprovalService(t)
	root := createSuperuser(t, store)
	_, profile := createAdmin(t, store, svc, "sm@example.com", models.AdminRoleSiteManager)
	mailer.fail = true

	require.NoError(t, svc.Approve(profile, root))

	stored, err := store.GetAdminProfileByUser(profile.UserID)
	require.NoError(t, err)
	require.Equal(t, models.ApprovalApproved, stored.ApprovalStatus)
}

func TestTransitions(t *testing.T) {
	svc, store, _ := newTestApprovalService(t)
	root := createSuperuser(t, store)

	t.Run("deny from pending", func(t *testing.T) {
		_, p := createAdmin(t, store, svc, "a@example.com", models.AdminRoleAdmin)
		require.NoError(t, svc.Deny(p, root))
		require.Equal(t, models.ApprovalDenied, p.ApprovalStatus)
	})

	t.Run("suspend from approved", func(t *testing.T) {
		_, p := createAdmin(t, store, svc, "b@example.com", models.AdminRoleAdmin)
		require.NoError(t, svc.Approve(p, root))
		require.NoError(t, svc.Suspend(p, root))
		require.Equal(t, models.ApprovalSuspended, p.ApprovalStatus)
	})

	t.Run("no way back from denied", func(t *testing.T) {
		_, p := createAdmin(t, store, svc, "c@example.com", models.AdminRoleAdmin)
		require.NoError(t, svc.Deny(p, root))
		require.Error(t, svc.Approve(p, root))
		require.Error(t, svc.Suspend(p, root))
	})

	t.Run("cannot approve twice", func(t *testing.T) {
		_, p := createAdmin(t, store, svc, "d@example.com", models.AdminRoleAdmin)
		require.NoError(t, svc.Approve(p, root))
		require.Error(t, svc.Approve(p, root))
	})
}

func TestTransition_RequiresElevatedOperator(t *testing.T) {
	svc, store, _ := newTestApprovalService(t)
	_, profile := createAdmin(t, store, svc, "sm@example.com", models.AdminRoleSiteManager)

	// A plain user may not touch the state machine
	plain, err := store.CreateUser(&models.User{Email: "client@example.com", PasswordHash: "x", Active: true})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Approve(profile, plain), ErrUnauthorized)

	// Neither may a still-pending admin
	pendingAdmin, _ := createAdmin(t, store, svc, "pending@example.com", models.AdminRoleAdmin)
	require.ErrorIs(t, svc.Approve(profile, pendingAdmin), ErrUnauthorized)

	// An approved admin may
	root := createSuperuser(t, store)
	approver, approverProfile := createAdmin(t, store, svc, "boss@example.com", models.AdminRoleAdmin)
	require.NoError(t, svc.Approve(approverProfile, root))
	require.NoError(t, svc.Approve(profile, approver))
}

func TestLockAccount_OrthogonalToApproval(t *testing.T) {
	svc, store, _ := newTestApprovalService(t)
	root := createSuperuser(t, store)
	user, profile := createAdmin(t, store, svc, "sm@example.com", models.AdminRoleAdmin)
	require.NoError(t, svc.Approve(profile, root))

	base := time.Now()
	svc.now = func() time.Time { return base }
	require.NoError(t, svc.LockAccount(profile, 30*time.Minute))

	// Still approved, but login is blocked for the lock window
	require.Equal(t, models.ApprovalApproved, profile.ApprovalStatus)
	require.False(t, CanLogin(user, profile, base.Add(10*time.Minute)))
	require.True(t, CanLogin(user, profile, base.Add(31*time.Minute)))
}

func TestRecordFailedLogin_LocksAfterThreshold(t *testing.T) {
	svc, store, _ := newTestApprovalService(t)
	_, profile := createAdmin(t, store, svc, "sm@example.com", models.AdminRoleAdmin)

	base := time.Now()
	svc.now = func() time.Time { return base }

	for i := 0; i < maxFailedLogins-1; i++ {
		require.NoError(t, svc.RecordFailedLogin(profile))
		require.Nil(t, profile.AccountLockedUntil)
	}

	require.NoError(t, svc.RecordFailedLogin(profile))
	require.NotNil(t, profile.AccountLockedUntil)
	require.Equal(t, base.Add(loginLockout), *profile.AccountLockedUntil)
	require.Zero(t, profile.FailedLoginAttempts)
}

func TestResetFailedLogins(t *testing.T) {
	svc, store, _ := newTestApprovalService(t)
	_, profile := createAdmin(t, store, svc, "sm@example.com", models.AdminRoleAdmin)

	require.NoError(t, svc.RecordFailedLogin(profile))
	require.Equal(t, 1, profile.FailedLoginAttempts)
	require.NoError(t, svc.ResetFailedLogins(profile))
	require.Zero(t, profile.FailedLoginAttempts)
}
