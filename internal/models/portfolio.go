package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// PortfolioProject is a completed work shown on the public showcase
type PortfolioProject struct {
	gorm.Model
	Title       string     `json:"title" gorm:"not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex"`
	Description string     `json:"description"`
	Category    string     `json:"category"` // residential, commercial, industrial, renovation
	Location    string     `json:"location"`
	ImageURL    string     `json:"image_url"`
	CompletedAt *time.Time `json:"completed_at"`
	Featured    bool       `json:"featured" gorm:"default:false"`
	Published   bool       `json:"published" gorm:"default:false"`
}

// BeforeCreate derives a slug from the title when none is given
func (p *PortfolioProject) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	return nil
}

// Slugify turns a title into a URL-safe slug
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// UniqueSlug appends a numeric suffix until the slug is unused
func UniqueSlug(base string, exists func(string) bool) string {
	slug := base
	for i := 2; exists(slug); i++ {
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return slug
}
