package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/triple-g/buildhub-backend/internal/models"
)

// MemoryStore holds all data in memory; used for tests and local runs
// without a database.
type MemoryStore struct {
	mu sync.Mutex

	users     map[uint]*models.User
	otps      map[uint]*models.OneTimePassword // keyed by user ID
	profiles  map[uint]*models.AdminProfile    // keyed by user ID
	portfolio map[uint]*models.PortfolioProject
	posts     map[uint]*models.BlogPost
	projects  map[uint]*models.SiteProject
	entries   map[uint]*models.DiaryEntry

	nextID uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uint]*models.User),
		otps:      make(map[uint]*models.OneTimePassword),
		profiles:  make(map[uint]*models.AdminProfile),
		portfolio: make(map[uint]*models.PortfolioProject),
		posts:     make(map[uint]*models.BlogPost),
		projects:  make(map[uint]*models.SiteProject),
		entries:   make(map[uint]*models.DiaryEntry),
	}
}

func (m *MemoryStore) nextIDLocked() uint {
	m.nextID++
	return m.nextID
}

// ===== User operations =====

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return nil, ErrDuplicate
		}
	}
	user.ID = m.nextIDLocked()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) CountUsers() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// ===== OTP operations =====

func (m *MemoryStore) UpsertOTP(otp *models.OneTimePassword) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, exists := m.otps[otp.UserID]; exists {
		otp.ID = old.ID
		otp.CreatedAt = old.CreatedAt
	} else {
		otp.ID = m.nextIDLocked()
		otp.CreatedAt = time.Now()
	}
	otp.UpdatedAt = time.Now()
	m.otps[otp.UserID] = otp
	return nil
}

func (m *MemoryStore) GetOTPByUser(userID uint) (*models.OneTimePassword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	otp, exists := m.otps[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return otp, nil
}

func (m *MemoryStore) ConsumeOTP(userID uint, check func(otp *models.OneTimePassword, user *models.User) error) error {
	// The single mutex serializes concurrent verify attempts the way the
	// database store's row lock does.
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[userID]
	if !exists {
		return ErrNotFound
	}

	otp, exists := m.otps[userID]
	if !exists {
		if err := check(nil, user); err != nil {
			return err
		}
		return ErrNotFound
	}

	if err := check(otp, user); err != nil {
		return err
	}

	delete(m.otps, userID)
	user.Active = true
	user.UpdatedAt = time.Now()
	return nil
}

// ===== Admin profile operations =====

func (m *MemoryStore) CreateAdminProfile(profile *models.AdminProfile) (*models.AdminProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile.ID = m.nextIDLocked()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()
	if profile.ApprovalStatus == "" {
		profile.ApprovalStatus = models.ApprovalPending
	}
	m.profiles[profile.UserID] = profile
	return profile, nil
}

func (m *MemoryStore) GetAdminProfileByUser(userID uint) (*models.AdminProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, exists := m.profiles[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return profile, nil
}

func (m *MemoryStore) UpdateAdminProfile(profile *models.AdminProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[profile.UserID]; !exists {
		return ErrNotFound
	}
	profile.UpdatedAt = time.Now()
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *MemoryStore) GetAdminProfilesByStatus(status string) ([]*models.AdminProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var profiles []*models.AdminProfile
	for _, p := range m.profiles {
		if p.ApprovalStatus == status {
			profiles = append(profiles, p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (m *MemoryStore) CountAdminProfilesByStatus(status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, p := range m.profiles {
		if p.ApprovalStatus == status {
			count++
		}
	}
	return count, nil
}

// ===== Portfolio operations =====

func (m *MemoryStore) CreatePortfolioProject(project *models.PortfolioProject) (*models.PortfolioProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if project.Slug == "" {
		project.Slug = models.Slugify(project.Title)
	}
	project.ID = m.nextIDLocked()
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()
	m.portfolio[project.ID] = project
	return project, nil
}

func (m *MemoryStore) GetPortfolioProject(id uint) (*models.PortfolioProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, exists := m.portfolio[id]
	if !exists {
		return nil, ErrNotFound
	}
	return project, nil
}

func (m *MemoryStore) GetPortfolioProjectBySlug(slug string) (*models.PortfolioProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.portfolio {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetPublishedPortfolioProjects() ([]*models.PortfolioProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var projects []*models.PortfolioProject
	for _, p := range m.portfolio {
		if p.Published {
			projects = append(projects, p)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Featured != projects[j].Featured {
			return projects[i].Featured
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (m *MemoryStore) GetAllPortfolioProjects() ([]*models.PortfolioProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var projects []*models.PortfolioProject
	for _, p := range m.portfolio {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (m *MemoryStore) UpdatePortfolioProject(project *models.PortfolioProject) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.portfolio[project.ID]; !exists {
		return ErrNotFound
	}
	project.UpdatedAt = time.Now()
	m.portfolio[project.ID] = project
	return nil
}

func (m *MemoryStore) DeletePortfolioProject(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.portfolio[id]; !exists {
		return ErrNotFound
	}
	delete(m.portfolio, id)
	return nil
}

// ===== Blog operations =====

func (m *MemoryStore) CreateBlogPost(post *models.BlogPost) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if post.Slug == "" {
		post.Slug = models.Slugify(post.Title)
	}
	post.ID = m.nextIDLocked()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	m.posts[post.ID] = post
	return post, nil
}

func (m *MemoryStore) GetBlogPost(id uint) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, ErrNotFound
	}
	return post, nil
}

func (m *MemoryStore) GetBlogPostBySlug(slug string) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetPublishedBlogPosts() ([]*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var posts []*models.BlogPost
	for _, p := range m.posts {
		if p.Published {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *MemoryStore) GetAllBlogPosts() ([]*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var posts []*models.BlogPost
	for _, p := range m.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *MemoryStore) UpdateBlogPost(post *models.BlogPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return ErrNotFound
	}
	post.UpdatedAt = time.Now()
	m.posts[post.ID] = post
	return nil
}

func (m *MemoryStore) DeleteBlogPost(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.posts[id]; !exists {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// ===== Site project operations =====

func (m *MemoryStore) CreateSiteProject(project *models.SiteProject) (*models.SiteProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project.ID = m.nextIDLocked()
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()
	if project.Status == "" {
		project.Status = models.ProjectPlanning
	}
	m.projects[project.ID] = project
	return project, nil
}

func (m *MemoryStore) GetSiteProject(id uint) (*models.SiteProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, exists := m.projects[id]
	if !exists {
		return nil, ErrNotFound
	}
	return project, nil
}

func (m *MemoryStore) GetSiteProjectsByManager(managerID uint) ([]*models.SiteProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var projects []*models.SiteProject
	for _, p := range m.projects {
		if p.ManagerID == managerID {
			projects = append(projects, p)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (m *MemoryStore) GetAllSiteProjects() ([]*models.SiteProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var projects []*models.SiteProject
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (m *MemoryStore) UpdateSiteProject(project *models.SiteProject) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[project.ID]; !exists {
		return ErrNotFound
	}
	project.UpdatedAt = time.Now()
	m.projects[project.ID] = project
	return nil
}

// ===== Diary operations =====

func (m *MemoryStore) CreateDiaryEntry(entry *models.DiaryEntry) (*models.DiaryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// One entry per project per calendar date
	for _, existing := range m.entries {
		if existing.SiteProjectID == entry.SiteProjectID && existing.EntryDate.Equal(entry.EntryDate) {
			return nil, ErrDuplicate
		}
	}
	entry.ID = m.nextIDLocked()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	for i := range entry.LaborEntries {
		entry.LaborEntries[i].ID = m.nextIDLocked()
		entry.LaborEntries[i].DiaryEntryID = entry.ID
	}
	for i := range entry.MaterialEntries {
		entry.MaterialEntries[i].ID = m.nextIDLocked()
		entry.MaterialEntries[i].DiaryEntryID = entry.ID
	}
	for i := range entry.EquipmentEntries {
		entry.EquipmentEntries[i].ID = m.nextIDLocked()
		entry.EquipmentEntries[i].DiaryEntryID = entry.ID
	}
	for i := range entry.DelayEntries {
		entry.DelayEntries[i].ID = m.nextIDLocked()
		entry.DelayEntries[i].DiaryEntryID = entry.ID
	}
	for i := range entry.VisitorEntries {
		entry.VisitorEntries[i].ID = m.nextIDLocked()
		entry.VisitorEntries[i].DiaryEntryID = entry.ID
	}
	m.entries[entry.ID] = entry
	return entry, nil
}

func (m *MemoryStore) GetDiaryEntry(id uint) (*models.DiaryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[id]
	if !exists {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (m *MemoryStore) GetDiaryEntriesByProject(projectID uint) ([]*models.DiaryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []*models.DiaryEntry
	for _, e := range m.entries {
		if e.SiteProjectID == projectID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EntryDate.After(entries[j].EntryDate)
	})
	return entries, nil
}

func (m *MemoryStore) GetDiaryEntriesInDateRange(projectID uint, start, end time.Time) ([]*models.DiaryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []*models.DiaryEntry
	for _, e := range m.entries {
		if e.SiteProjectID != projectID {
			continue
		}
		if e.EntryDate.Before(start) || e.EntryDate.After(end) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EntryDate.Before(entries[j].EntryDate)
	})
	return entries, nil
}

func (m *MemoryStore) GetPendingDiaryEntries() ([]*models.DiaryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []*models.DiaryEntry
	for _, e := range m.entries {
		if !e.Approved {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EntryDate.Before(entries[j].EntryDate)
	})
	return entries, nil
}

func (m *MemoryStore) UpdateDiaryEntry(entry *models.DiaryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[entry.ID]; !exists {
		return ErrNotFound
	}
	entry.UpdatedAt = time.Now()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MemoryStore) DeleteDiaryEntry(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[id]; !exists {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}
