package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/triple-g/buildhub-backend/internal/middleware"
	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

// BlogHandler handles the public blog and its management endpoints
type BlogHandler struct {
	store storage.Store
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(store storage.Store) *BlogHandler {
	return &BlogHandler{store: store}
}

// ListPublished returns the public blog index
func (h *BlogHandler) ListPublished(c *fiber.Ctx) error {
	posts, err := h.store.GetPublishedBlogPosts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch posts",
		})
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// GetBySlug returns a single published post and counts the view
func (h *BlogHandler) GetBySlug(c *fiber.Ctx) error {
	post, err := h.store.GetBlogPostBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}
	if !post.Published {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}

	post.Views++
	if err := h.store.UpdateBlogPost(post); err != nil {
		// A lost view count is not worth failing the read
		post.Views--
	}
	return c.JSON(post)
}

// ListAll returns every post, drafts included, for blog management
func (h *BlogHandler) ListAll(c *fiber.Ctx) error {
	posts, err := h.store.GetAllBlogPosts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch posts",
		})
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// Create adds a post, as draft unless published is set
func (h *BlogHandler) Create(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := c.BodyParser(&post); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if post.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	if user := middleware.CurrentUser(c); user != nil {
		post.AuthorID = user.ID
	}
	if post.Slug == "" {
		base := models.Slugify(post.Title)
		post.Slug = models.UniqueSlug(base, func(s string) bool {
			_, err := h.store.GetBlogPostBySlug(s)
			return err == nil
		})
	}
	if post.Published {
		post.Publish(time.Now())
	}

	created, err := h.store.CreateBlogPost(&post)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create post",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update edits a post; publishing stamps PublishedAt once
func (h *BlogHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post ID",
		})
	}

	post, err := h.store.GetBlogPost(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}

	if err := c.BodyParser(post); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if post.Published && post.PublishedAt == nil {
		post.Publish(time.Now())
	}
	if err := h.store.UpdateBlogPost(post); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update post",
		})
	}
	return c.JSON(post)
}

// Delete removes a post
func (h *BlogHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post ID",
		})
	}
	if err := h.store.DeleteBlogPost(uint(id)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}
