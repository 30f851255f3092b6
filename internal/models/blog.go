package models

import (
	"time"

	"gorm.io/gorm"
)

// BlogPost is a news/update article written by an admin
type BlogPost struct {
	gorm.Model
	Title         string     `json:"title" gorm:"not null"`
	Slug          string     `json:"slug" gorm:"uniqueIndex"`
	Body          string     `json:"body"`
	Excerpt       string     `json:"excerpt"`
	CoverImageURL string     `json:"cover_image_url"`
	AuthorID      uint       `json:"author_id" gorm:"index"`
	Published     bool       `json:"published" gorm:"default:false"`
	PublishedAt   *time.Time `json:"published_at"`
	Views         int        `json:"views" gorm:"default:0"`
}

func (b *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if b.Slug == "" {
		b.Slug = Slugify(b.Title)
	}
	return nil
}

// Publish marks the post live, stamping PublishedAt once
func (b *BlogPost) Publish(now time.Time) {
	b.Published = true
	if b.PublishedAt == nil {
		b.PublishedAt = &now
	}
}
