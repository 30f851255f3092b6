package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Riverside Tower":            "riverside-tower",
		"  Modern Villa, Phase II  ": "modern-villa-phase-ii",
		"100% Concrete!":             "100-concrete",
		"already-slugged":            "already-slugged",
		"Trailing punctuation...":    "trailing-punctuation",
	}
	for title, want := range cases {
		require.Equal(t, want, Slugify(title), "title %q", title)
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{
		"riverside-tower":   true,
		"riverside-tower-2": true,
	}
	exists := func(s string) bool { return taken[s] }

	require.Equal(t, "riverside-tower-3", UniqueSlug("riverside-tower", exists))
	require.Equal(t, "modern-villa", UniqueSlug("modern-villa", exists))
}

func TestLaborEntryTotalCost(t *testing.T) {
	l := &LaborEntry{WorkersCount: 4, HoursWorked: 8, HourlyRate: 25, OvertimeHours: 2}
	// 4*8*25 regular plus 4*2*25*1.5 overtime
	require.InDelta(t, 1100.0, l.TotalCost(), 0.001)

	none := &LaborEntry{WorkersCount: 0, HoursWorked: 8, HourlyRate: 25}
	require.Zero(t, none.TotalCost())
}

func TestOneTimePasswordExpired(t *testing.T) {
	issued := time.Now()
	otp := &OneTimePassword{Code: "482913", IssuedAt: issued}

	require.False(t, otp.Expired(issued.Add(5*time.Minute)))
	// The boundary instant is still valid
	require.False(t, otp.Expired(issued.Add(OTPValidity)))
	require.True(t, otp.Expired(issued.Add(OTPValidity+time.Second)))
}

func TestBlogPostPublish_StampsOnce(t *testing.T) {
	post := &BlogPost{Title: "Groundbreaking at Riverside"}

	first := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	post.Publish(first)
	require.True(t, post.Published)
	require.Equal(t, first, *post.PublishedAt)

	// Re-publishing never moves the original timestamp
	post.Publish(first.Add(48 * time.Hour))
	require.Equal(t, first, *post.PublishedAt)
}

func TestUserFullName(t *testing.T) {
	u := &User{FirstName: "Grace", LastName: "Gonzales"}
	require.Equal(t, "Grace Gonzales", u.FullName())

	require.Equal(t, "Grace", (&User{FirstName: "Grace"}).FullName())
	require.Equal(t, "", (&User{}).FullName())
}
