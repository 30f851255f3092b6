package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/triple-g/buildhub-backend/internal/models"
)

// DatabaseStore implements Store backed by GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store on top of an open GORM connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func asStoreErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// ===== User operations =====

func (s *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := s.db.Create(user).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return user, nil
}

func (s *DatabaseStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &user, nil
}

func (s *DatabaseStore) UpdateUser(user *models.User) error {
	return s.db.Save(user).Error
}

func (s *DatabaseStore) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// ===== OTP operations =====

// UpsertOTP replaces any outstanding code for the user in one statement, so
// concurrent issuances converge on a single surviving row.
func (s *DatabaseStore) UpsertOTP(otp *models.OneTimePassword) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "issued_at", "updated_at"}),
	}).Create(otp).Error
}

func (s *DatabaseStore) GetOTPByUser(userID uint) (*models.OneTimePassword, error) {
	var otp models.OneTimePassword
	if err := s.db.Where("user_id = ?", userID).First(&otp).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &otp, nil
}

func (s *DatabaseStore) ConsumeOTP(userID uint, check func(otp *models.OneTimePassword, user *models.User) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// Exclusive lock on the user row serializes concurrent verify
		// attempts for the same identity.
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return asStoreErr(err)
		}

		var otp models.OneTimePassword
		err := tx.Where("user_id = ?", userID).First(&otp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Let the caller classify a missing row
				if cerr := check(nil, &user); cerr != nil {
					return cerr
				}
				return ErrNotFound
			}
			return err
		}

		if err := check(&otp, &user); err != nil {
			return err
		}

		if err := tx.Unscoped().Delete(&otp).Error; err != nil {
			return err
		}
		user.Active = true
		return tx.Save(&user).Error
	})
}

// ===== Admin profile operations =====

func (s *DatabaseStore) CreateAdminProfile(profile *models.AdminProfile) (*models.AdminProfile, error) {
	if err := s.db.Create(profile).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return profile, nil
}

func (s *DatabaseStore) GetAdminProfileByUser(userID uint) (*models.AdminProfile, error) {
	var profile models.AdminProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &profile, nil
}

func (s *DatabaseStore) UpdateAdminProfile(profile *models.AdminProfile) error {
	return s.db.Save(profile).Error
}

func (s *DatabaseStore) GetAdminProfilesByStatus(status string) ([]*models.AdminProfile, error) {
	var profiles []*models.AdminProfile
	err := s.db.Where("approval_status = ?", status).Order("created_at asc").Find(&profiles).Error
	return profiles, err
}

func (s *DatabaseStore) CountAdminProfilesByStatus(status string) (int64, error) {
	var count int64
	err := s.db.Model(&models.AdminProfile{}).Where("approval_status = ?", status).Count(&count).Error
	return count, err
}

// ===== Portfolio operations =====

func (s *DatabaseStore) CreatePortfolioProject(project *models.PortfolioProject) (*models.PortfolioProject, error) {
	if err := s.db.Create(project).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return project, nil
}

func (s *DatabaseStore) GetPortfolioProject(id uint) (*models.PortfolioProject, error) {
	var project models.PortfolioProject
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &project, nil
}

func (s *DatabaseStore) GetPortfolioProjectBySlug(slug string) (*models.PortfolioProject, error) {
	var project models.PortfolioProject
	if err := s.db.Where("slug = ?", slug).First(&project).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &project, nil
}

func (s *DatabaseStore) GetPublishedPortfolioProjects() ([]*models.PortfolioProject, error) {
	var projects []*models.PortfolioProject
	err := s.db.Where("published = ?", true).Order("featured desc, completed_at desc").Find(&projects).Error
	return projects, err
}

func (s *DatabaseStore) GetAllPortfolioProjects() ([]*models.PortfolioProject, error) {
	var projects []*models.PortfolioProject
	err := s.db.Order("created_at desc").Find(&projects).Error
	return projects, err
}

func (s *DatabaseStore) UpdatePortfolioProject(project *models.PortfolioProject) error {
	return s.db.Save(project).Error
}

func (s *DatabaseStore) DeletePortfolioProject(id uint) error {
	res := s.db.Delete(&models.PortfolioProject{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ===== Blog operations =====

func (s *DatabaseStore) CreateBlogPost(post *models.BlogPost) (*models.BlogPost, error) {
	if err := s.db.Create(post).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return post, nil
}

func (s *DatabaseStore) GetBlogPost(id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := s.db.First(&post, id).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &post, nil
}

func (s *DatabaseStore) GetBlogPostBySlug(slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := s.db.Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &post, nil
}

func (s *DatabaseStore) GetPublishedBlogPosts() ([]*models.BlogPost, error) {
	var posts []*models.BlogPost
	err := s.db.Where("published = ?", true).Order("published_at desc").Find(&posts).Error
	return posts, err
}

func (s *DatabaseStore) GetAllBlogPosts() ([]*models.BlogPost, error) {
	var posts []*models.BlogPost
	err := s.db.Order("created_at desc").Find(&posts).Error
	return posts, err
}

func (s *DatabaseStore) UpdateBlogPost(post *models.BlogPost) error {
	return s.db.Save(post).Error
}

func (s *DatabaseStore) DeleteBlogPost(id uint) error {
	res := s.db.Delete(&models.BlogPost{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ===== Site project operations =====

func (s *DatabaseStore) CreateSiteProject(project *models.SiteProject) (*models.SiteProject, error) {
	if err := s.db.Create(project).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return project, nil
}

func (s *DatabaseStore) GetSiteProject(id uint) (*models.SiteProject, error) {
	var project models.SiteProject
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &project, nil
}

func (s *DatabaseStore) GetSiteProjectsByManager(managerID uint) ([]*models.SiteProject, error) {
	var projects []*models.SiteProject
	err := s.db.Where("manager_id = ?", managerID).Order("created_at desc").Find(&projects).Error
	return projects, err
}

func (s *DatabaseStore) GetAllSiteProjects() ([]*models.SiteProject, error) {
	var projects []*models.SiteProject
	err := s.db.Order("created_at desc").Find(&projects).Error
	return projects, err
}

func (s *DatabaseStore) UpdateSiteProject(project *models.SiteProject) error {
	return s.db.Save(project).Error
}

// ===== Diary operations =====

func (s *DatabaseStore) CreateDiaryEntry(entry *models.DiaryEntry) (*models.DiaryEntry, error) {
	// Nested labor/material/equipment/delay/visitor entries are created
	// through GORM associations in the same transaction. The composite
	// (site_project_id, entry_date) index rejects a second entry per day.
	if err := s.db.Create(entry).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return entry, nil
}

func (s *DatabaseStore) diaryPreload() *gorm.DB {
	return s.db.
		Preload("LaborEntries").
		Preload("MaterialEntries").
		Preload("EquipmentEntries").
		Preload("DelayEntries").
		Preload("VisitorEntries")
}

func (s *DatabaseStore) GetDiaryEntry(id uint) (*models.DiaryEntry, error) {
	var entry models.DiaryEntry
	if err := s.diaryPreload().First(&entry, id).Error; err != nil {
		return nil, asStoreErr(err)
	}
	return &entry, nil
}

func (s *DatabaseStore) GetDiaryEntriesByProject(projectID uint) ([]*models.DiaryEntry, error) {
	var entries []*models.DiaryEntry
	err := s.diaryPreload().Where("site_project_id = ?", projectID).Order("entry_date desc").Find(&entries).Error
	return entries, err
}

func (s *DatabaseStore) GetDiaryEntriesInDateRange(projectID uint, start, end time.Time) ([]*models.DiaryEntry, error) {
	var entries []*models.DiaryEntry
	err := s.diaryPreload().
		Where("site_project_id = ? AND entry_date >= ? AND entry_date <= ?", projectID, start, end).
		Order("entry_date asc").Find(&entries).Error
	return entries, err
}

func (s *DatabaseStore) GetPendingDiaryEntries() ([]*models.DiaryEntry, error) {
	var entries []*models.DiaryEntry
	err := s.diaryPreload().Where("approved = ?", false).Order("entry_date asc").Find(&entries).Error
	return entries, err
}

func (s *DatabaseStore) UpdateDiaryEntry(entry *models.DiaryEntry) error {
	return s.db.Omit(clause.Associations).Save(entry).Error
}

// DeleteDiaryEntry removes the entry and all nested rows in one transaction
func (s *DatabaseStore) DeleteDiaryEntry(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry models.DiaryEntry
		if err := tx.First(&entry, id).Error; err != nil {
			return asStoreErr(err)
		}
		for _, child := range []interface{}{
			&models.LaborEntry{}, &models.MaterialEntry{}, &models.EquipmentEntry{},
			&models.DelayEntry{}, &models.VisitorEntry{},
		} {
			if err := tx.Where("diary_entry_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&entry).Error
	})
}
