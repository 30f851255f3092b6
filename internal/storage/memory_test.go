package storage

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/triple-g/buildhub-backend/internal/models"
)

func seedPendingUser(t *testing.T, store *MemoryStore) *models.User {
	t.Helper()
	user, err := store.CreateUser(&models.User{
		Email:        "Pending@Example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return user
}

func TestCreateUser_DuplicateEmailRejected(t *testing.T) {
	store := NewMemoryStore()
	seedPendingUser(t, store)

	// Same handle modulo case and whitespace
	_, err := store.CreateUser(&models.User{Email: " pending@EXAMPLE.com ", PasswordHash: "y"})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateUser_NormalizesEmail(t *testing.T) {
	store := NewMemoryStore()
	user := seedPendingUser(t, store)
	require.Equal(t, "pending@example.com", user.Email)

	found, err := store.GetUserByEmail("  PENDING@example.COM ")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)
}

func TestUpsertOTP_ReplacesExistingRow(t *testing.T) {
	store := NewMemoryStore()
	user := seedPendingUser(t, store)

	first := time.Now()
	require.NoError(t, store.UpsertOTP(&models.OneTimePassword{
		UserID: user.ID, Code: "111111", IssuedAt: first,
	}))
	require.NoError(t, store.UpsertOTP(&models.OneTimePassword{
		UserID: user.ID, Code: "222222", IssuedAt: first.Add(time.Minute),
	}))

	otp, err := store.GetOTPByUser(user.ID)
	require.NoError(t, err)
	require.Equal(t, "222222", otp.Code)
	require.Equal(t, first.Add(time.Minute), otp.IssuedAt)
}

func TestConsumeOTP_SuccessDeletesAndActivates(t *testing.T) {
	store := NewMemoryStore()
	user := seedPendingUser(t, store)
	require.NoError(t, store.UpsertOTP(&models.OneTimePassword{
		UserID: user.ID, Code: "482913", IssuedAt: time.Now(),
	}))

	err := store.ConsumeOTP(user.ID, func(otp *models.OneTimePassword, u *models.User) error {
		require.Equal(t, "482913", otp.Code)
		return nil
	})
	require.NoError(t, err)

	activated, err := store.GetUser(user.ID)
	require.NoError(t, err)
	require.True(t, activated.Active)

	_, err = store.GetOTPByUser(user.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeOTP_CheckFailureKeepsRow(t *testing.T) {
	store := NewMemoryStore()
	user := seedPendingUser(t, store)
	require.NoError(t, store.UpsertOTP(&models.OneTimePassword{
		UserID: user.ID, Code: "482913", IssuedAt: time.Now(),
	}))

	rejected := errors.New("code mismatch")
	err := store.ConsumeOTP(user.ID, func(otp *models.OneTimePassword, u *models.User) error {
		return rejected
	})
	require.ErrorIs(t, err, rejected)

	_, err = store.GetOTPByUser(user.ID)
	require.NoError(t, err)
	u, err := store.GetUser(user.ID)
	require.NoError(t, err)
	require.False(t, u.Active)
}

func TestConsumeOTP_MissingRow(t *testing.T) {
	store := NewMemoryStore()
	user := seedPendingUser(t, store)

	called := false
	err := store.ConsumeOTP(user.ID, func(otp *models.OneTimePassword, u *models.User) error {
		called = true
		require.Nil(t, otp)
		return nil
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.True(t, called)
}

func TestConsumeOTP_UnknownUser(t *testing.T) {
	store := NewMemoryStore()
	err := store.ConsumeOTP(42, func(otp *models.OneTimePassword, u *models.User) error {
		t.Fatal("check must not run for an unknown user")
		return nil
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeOTP_ConcurrentAttemptsConsumeOnce(t *testing.T) {
	store := NewMemoryStore()
	user := seedPendingUser(t, store)
	require.NoError(t, store.UpsertOTP(&models.OneTimePassword{
		UserID: user.ID, Code: "482913", IssuedAt: time.Now(),
	}))

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.ConsumeOTP(user.ID, func(otp *models.OneTimePassword, u *models.User) error {
				if otp == nil || otp.Code != "482913" {
					return errors.New("no live code")
				}
				return nil
			})
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		}
	}
	require.Equal(t, 1, wins)
}

func TestDiaryEntryChildrenGetIDs(t *testing.T) {
	store := NewMemoryStore()
	project, err := store.CreateSiteProject(&models.SiteProject{Name: "Riverside Tower"})
	require.NoError(t, err)

	entry, err := store.CreateDiaryEntry(&models.DiaryEntry{
		SiteProjectID: project.ID,
		EntryDate:     time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		LaborEntries:  []models.LaborEntry{{LaborType: "skilled", WorkersCount: 3}},
		DelayEntries:  []models.DelayEntry{{Category: "weather", DurationHours: 2}},
	})
	require.NoError(t, err)

	require.NotZero(t, entry.LaborEntries[0].ID)
	require.Equal(t, entry.ID, entry.LaborEntries[0].DiaryEntryID)
	require.NotZero(t, entry.DelayEntries[0].ID)
	require.Equal(t, entry.ID, entry.DelayEntries[0].DiaryEntryID)
}

func TestCreateDiaryEntry_OnePerProjectPerDay(t *testing.T) {
	store := NewMemoryStore()
	project, err := store.CreateSiteProject(&models.SiteProject{Name: "Riverside Tower"})
	require.NoError(t, err)

	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	_, err = store.CreateDiaryEntry(&models.DiaryEntry{SiteProjectID: project.ID, EntryDate: day})
	require.NoError(t, err)

	// Second entry for the same project and date violates the composite key
	_, err = store.CreateDiaryEntry(&models.DiaryEntry{SiteProjectID: project.ID, EntryDate: day})
	require.ErrorIs(t, err, ErrDuplicate)

	// A different project on the same date is fine
	other, err := store.CreateSiteProject(&models.SiteProject{Name: "Hillside Annex"})
	require.NoError(t, err)
	_, err = store.CreateDiaryEntry(&models.DiaryEntry{SiteProjectID: other.ID, EntryDate: day})
	require.NoError(t, err)

	// So is the next day on the original project
	_, err = store.CreateDiaryEntry(&models.DiaryEntry{SiteProjectID: project.ID, EntryDate: day.AddDate(0, 0, 1)})
	require.NoError(t, err)
}

func TestGetDiaryEntriesInDateRange_InclusiveAndOrdered(t *testing.T) {
	store := NewMemoryStore()
	project, err := store.CreateSiteProject(&models.SiteProject{Name: "Riverside Tower"})
	require.NoError(t, err)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{2, 0, 4, 1} {
		_, err := store.CreateDiaryEntry(&models.DiaryEntry{
			SiteProjectID: project.ID,
			EntryDate:     base.AddDate(0, 0, offset),
		})
		require.NoError(t, err)
	}

	entries, err := store.GetDiaryEntriesInDateRange(project.ID, base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		require.True(t, entries[i-1].EntryDate.Before(entries[i].EntryDate))
	}
}
