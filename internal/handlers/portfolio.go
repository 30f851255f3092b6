package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

// PortfolioHandler handles the public showcase and its admin management
type PortfolioHandler struct {
	store storage.Store
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(store storage.Store) *PortfolioHandler {
	return &PortfolioHandler{store: store}
}

// ListPublished returns the public project showcase
func (h *PortfolioHandler) ListPublished(c *fiber.Ctx) error {
	projects, err := h.store.GetPublishedPortfolioProjects()
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

// GetBySlug returns one showcase project
func (h *PortfolioHandler) GetBySlug(c *fiber.Ctx) error {
	project, err := h.store.GetPortfolioProjectBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	if !project.Published {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	return c.JSON(project)
}

// ListAll returns every project for the management screen
func (h *PortfolioHandler) ListAll(c *fiber.Ctx) error {
	projects, err := h.store.GetAllPortfolioProjects()
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

// Create adds a new showcase project
func (h *PortfolioHandler) Create(c *fiber.Ctx) error {
	var project models.PortfolioProject
	if err := c.BodyParser(&project); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if project.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	if project.Slug == "" {
		base := models.Slugify(project.Title)
		project.Slug = models.UniqueSlug(base, func(s string) bool {
			_, err := h.store.GetPortfolioProjectBySlug(s)
			return err == nil
		})
	}

	created, err := h.store.CreatePortfolioProject(&project)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create project",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update edits an existing project
func (h *PortfolioHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project ID",
		})
	}

	project, err := h.store.GetPortfolioProject(uint(id))
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
	if err := h.store.UpdatePortfolioProject(project); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update project",
		})
	}
	return c.JSON(project)
}

// Delete removes a project from the showcase
func (h *PortfolioHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project ID",
		})
	}
	if err := h.store.DeletePortfolioProject(uint(id)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}
