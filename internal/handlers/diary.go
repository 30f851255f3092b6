package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/triple-g/buildhub-backend/internal/middleware"
	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/services"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

// DiaryHandler handles site projects, daily diary entries, reports and export
type DiaryHandler struct {
	store   storage.Store
	reports *services.ReportService
}

// NewDiaryHandler creates a new diary handler
func NewDiaryHandler(store storage.Store, reports *services.ReportService) *DiaryHandler {
	return &DiaryHandler{
		store:   store,
		reports: reports,
	}
}

// ===== Site projects =====

// CreateProject registers a new construction project
func (h *DiaryHandler) CreateProject(c *fiber.Ctx) error {
	var project models.SiteProject
	if err := c.BodyParser(&project); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if project.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Project name is required",
		})
	}
	if user := middleware.CurrentUser(c); user != nil && project.ManagerID == 0 {
		project.ManagerID = user.ID
	}
	if project.Status == "" {
		project.Status = models.ProjectPlanning
	}

	created, err := h.store.CreateSiteProject(&project)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create project",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListProjects returns the caller's projects; admins see everything
func (h *DiaryHandler) ListProjects(c *fiber.Ctx) error {
	var projects []*models.SiteProject
	var err error

	role := middleware.CurrentRole(c)
	if role == services.RoleAdmin || role == services.RoleSuperadmin {
		projects, err = h.store.GetAllSiteProjects()
	} else if user := middleware.CurrentUser(c); user != nil {
		projects, err = h.store.GetSiteProjectsByManager(user.ID)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch projects",
		})
	}
	return c.JSON(fiber.Map{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProject returns one project with its diary summary
func (h *DiaryHandler) GetProject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project ID",
		})
	}
	project, err := h.store.GetSiteProject(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	entries, _ := h.store.GetDiaryEntriesByProject(project.ID)
	return c.JSON(fiber.Map{
		"project":     project,
		"entry_count": len(entries),
	})
}

// UpdateProject edits project details or status
func (h *DiaryHandler) UpdateProject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project ID",
		})
	}
	project, err := h.store.GetSiteProject(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	if err := c.BodyParser(project); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.store.UpdateSiteProject(project); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update project",
		})
	}
	return c.JSON(project)
}

// ===== Diary entries =====

// CreateEntry records one day of site activity, nested entries included
func (h *DiaryHandler) CreateEntry(c *fiber.Ctx) error {
	var entry models.DiaryEntry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if entry.SiteProjectID == 0 || entry.EntryDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Project and entry date are required",
		})
	}
	if _, err := h.store.GetSiteProject(entry.SiteProjectID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	if user := middleware.CurrentUser(c); user != nil {
		entry.CreatedByID = user.ID
	}
	// New entries always start unapproved
	entry.Approved = false
	entry.ApprovedByID = nil
	entry.ApprovedAt = nil

	created, err := h.store.CreateDiaryEntry(&entry)
	if errors.Is(err, storage.ErrDuplicate) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "An entry already exists for this project and date",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create diary entry",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetEntry returns one diary entry with all nested records
func (h *DiaryHandler) GetEntry(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}
	entry, err := h.store.GetDiaryEntry(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Diary entry not found",
		})
	}
	return c.JSON(entry)
}

// ListEntries returns a project's diary history
func (h *DiaryHandler) ListEntries(c *fiber.Ctx) error {
	projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "project_id query parameter is required",
		})
	}
	entries, err := h.store.GetDiaryEntriesByProject(uint(projectID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch diary entries",
		})
	}
	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// UpdateEntry edits an entry; approved entries are read-only
func (h *DiaryHandler) UpdateEntry(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}
	entry, err := h.store.GetDiaryEntry(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Diary entry not found",
		})
	}
	if entry.Approved {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Approved entries cannot be edited",
		})
	}
	if err := c.BodyParser(entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	entry.Approved = false
	if err := h.store.UpdateDiaryEntry(entry); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update diary entry",
		})
	}
	return c.JSON(entry)
}

// DeleteEntry removes an entry and its nested records
func (h *DiaryHandler) DeleteEntry(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}
	if err := h.store.DeleteDiaryEntry(uint(id)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Diary entry not found",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// ===== Review and reporting =====

// ListPendingEntries returns entries awaiting admin review
func (h *DiaryHandler) ListPendingEntries(c *fiber.Ctx) error {
	entries, err := h.store.GetPendingDiaryEntries()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch pending entries",
		})
	}
	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// ApproveEntry marks a diary entry as reviewed and approved
func (h *DiaryHandler) ApproveEntry(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}
	entry, err := h.store.GetDiaryEntry(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Diary entry not found",
		})
	}

	now := time.Now()
	entry.Approved = true
	entry.ApprovedAt = &now
	if user := middleware.CurrentUser(c); user != nil {
		entry.ApprovedByID = &user.ID
	}
	if err := h.store.UpdateDiaryEntry(entry); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to approve entry",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"entry":   entry,
	})
}

func (h *DiaryHandler) reportRange(c *fiber.Ctx) (uint, time.Time, time.Time, error) {
	projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 64)
	if err != nil {
		return 0, time.Time{}, time.Time{}, fmt.Errorf("project_id query parameter is required")
	}

	end := time.Now()
	start := end.AddDate(0, -1, 0)
	if v := c.Query("from"); v != "" {
		if start, err = time.Parse("2006-01-02", v); err != nil {
			return 0, time.Time{}, time.Time{}, fmt.Errorf("from must be YYYY-MM-DD")
		}
	}
	if v := c.Query("to"); v != "" {
		if end, err = time.Parse("2006-01-02", v); err != nil {
			return 0, time.Time{}, time.Time{}, fmt.Errorf("to must be YYYY-MM-DD")
		}
		end = end.Add(24*time.Hour - time.Second)
	}
	return uint(projectID), start, end, nil
}

// Report aggregates labor, material, equipment, delay and visitor activity
func (h *DiaryHandler) Report(c *fiber.Ctx) error {
	projectID, start, end, err := h.reportRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	report, err := h.reports.BuildProjectReport(projectID, start, end)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	return c.JSON(report)
}

// ExportReports streams the project's diary entries as CSV
func (h *DiaryHandler) ExportReports(c *fiber.Ctx) error {
	projectID, start, end, err := h.reportRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	entries, err := h.store.GetDiaryEntriesInDateRange(projectID, start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch diary entries",
		})
	}

	var buf bytes.Buffer
	if err := h.reports.WriteEntriesCSV(&buf, entries); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build CSV export",
		})
	}

	filename := fmt.Sprintf("site-diary-%d-%s.csv", projectID, time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
