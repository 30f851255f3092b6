package storage

import (
	"errors"
	"time"

	"github.com/triple-g/buildhub-backend/internal/models"
)

// ErrNotFound is returned when a lookup matches no record
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a create violates a uniqueness constraint
var ErrDuplicate = errors.New("duplicate record")

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUser(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	CountUsers() (int64, error)

	// OTP operations
	UpsertOTP(otp *models.OneTimePassword) error
	GetOTPByUser(userID uint) (*models.OneTimePassword, error)
	// ConsumeOTP runs check inside a transaction holding an exclusive lock
	// on the user row. When check returns nil the OTP row is deleted and
	// the user activated as one atomic unit; any error aborts untouched.
	ConsumeOTP(userID uint, check func(otp *models.OneTimePassword, user *models.User) error) error

	// Admin profile operations
	CreateAdminProfile(profile *models.AdminProfile) (*models.AdminProfile, error)
	GetAdminProfileByUser(userID uint) (*models.AdminProfile, error)
	UpdateAdminProfile(profile *models.AdminProfile) error
	GetAdminProfilesByStatus(status string) ([]*models.AdminProfile, error)
	CountAdminProfilesByStatus(status string) (int64, error)

	// Portfolio operations
	CreatePortfolioProject(project *models.PortfolioProject) (*models.PortfolioProject, error)
	GetPortfolioProject(id uint) (*models.PortfolioProject, error)
	GetPortfolioProjectBySlug(slug string) (*models.PortfolioProject, error)
	GetPublishedPortfolioProjects() ([]*models.PortfolioProject, error)
	GetAllPortfolioProjects() ([]*models.PortfolioProject, error)
	UpdatePortfolioProject(project *models.PortfolioProject) error
	DeletePortfolioProject(id uint) error

	// Blog operations
	CreateBlogPost(post *models.BlogPost) (*models.BlogPost, error)
	GetBlogPost(id uint) (*models.BlogPost, error)
	GetBlogPostBySlug(slug string) (*models.BlogPost, error)
	GetPublishedBlogPosts() ([]*models.BlogPost, error)
	GetAllBlogPosts() ([]*models.BlogPost, error)
	UpdateBlogPost(post *models.BlogPost) error
	DeleteBlogPost(id uint) error

	// Site project operations
	CreateSiteProject(project *models.SiteProject) (*models.SiteProject, error)
	GetSiteProject(id uint) (*models.SiteProject, error)
	GetSiteProjectsByManager(managerID uint) ([]*models.SiteProject, error)
	GetAllSiteProjects() ([]*models.SiteProject, error)
	UpdateSiteProject(project *models.SiteProject) error

	// Diary operations
	// CreateDiaryEntry rejects a second entry for the same project and
	// date with ErrDuplicate.
	CreateDiaryEntry(entry *models.DiaryEntry) (*models.DiaryEntry, error)
	GetDiaryEntry(id uint) (*models.DiaryEntry, error)
	GetDiaryEntriesByProject(projectID uint) ([]*models.DiaryEntry, error)
	GetDiaryEntriesInDateRange(projectID uint, start, end time.Time) ([]*models.DiaryEntry, error)
	GetPendingDiaryEntries() ([]*models.DiaryEntry, error)
	UpdateDiaryEntry(entry *models.DiaryEntry) error
	DeleteDiaryEntry(id uint) error
}
