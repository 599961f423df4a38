package models

import (
	"fmt"
	"strings"
	"time"

	"portfolio/internal/content"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	maxExcerpt         = 500
	maxMetaDescription = 160
	maxMetaTitle       = 60
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) URL() string { return "/blog/category/" + c.Slug + "/" }

type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Tag) URL() string { return "/blog/tag/" + t.Slug + "/" }

type Post struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Slug                string     `json:"slug"`
	ContentMarkdown     string     `json:"content_markdown"`
	Content             string     `json:"content"`
	Excerpt             string     `json:"excerpt"`
	Status              string     `json:"status"`
	AuthorID            int64      `json:"author_id"`
	Author              string     `json:"author,omitempty"`
	CategoryID          *int64     `json:"category_id,omitempty"`
	Category            *Category  `json:"category,omitempty"`
	Tags                []Tag      `json:"tags"`
	FeaturedImage       string     `json:"featured_image"`
	FeaturedImageFocusX int        `json:"featured_image_focus_x"`
	FeaturedImageFocusY int        `json:"featured_image_focus_y"`
	MetaTitle           string     `json:"meta_title"`
	MetaDescription     string     `json:"meta_description"`
	MetaKeywords        string     `json:"meta_keywords"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
}

func (p *Post) URL() string { return "/blog/" + p.Slug + "/" }

func (p *Post) IsPublished() bool { return p.Status == StatusPublished }

// Prepare derives the stored fields before a save: slug, rendered
// content, excerpt, meta fields and the first-publish timestamp.
func (p *Post) Prepare(now time.Time) error {
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Status != StatusDraft && p.Status != StatusPublished {
		return fmt.Errorf("%w: status %q", ErrInvalid, p.Status)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if p.Slug == "" {
		p.Slug = content.Slugify(p.Title)
	}
	if p.Slug == "" {
		return fmt.Errorf("%w: title %q yields an empty slug", ErrInvalid, p.Title)
	}

	if md := strings.TrimSpace(p.ContentMarkdown); md != "" {
		rendered, err := content.Markdown(md)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.Content = rendered
	}

	plain := content.StripTags(p.Content)
	if p.Excerpt == "" && plain != "" {
		p.Excerpt = content.Truncate(plain, maxExcerpt)
	}
	if p.MetaDescription == "" && p.Excerpt != "" {
		p.MetaDescription = content.Truncate(content.StripTags(p.Excerpt), maxMetaDescription)
	}
	if p.MetaTitle == "" {
		p.MetaTitle = content.Truncate(p.Title, maxMetaTitle)
	}

	p.FeaturedImageFocusX = clampFocus(p.FeaturedImageFocusX)
	p.FeaturedImageFocusY = clampFocus(p.FeaturedImageFocusY)

	if p.Status == StatusPublished && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
	return nil
}

func clampFocus(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

type Comment struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	AuthorURL   string    `json:"author_url"`
	Content     string    `json:"content"`
	IsApproved  bool      `json:"is_approved"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Comment) Validate() error {
	if strings.TrimSpace(c.AuthorName) == "" || strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: name and comment are required", ErrInvalid)
	}
	if !strings.Contains(c.AuthorEmail, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalid)
	}
	if len([]rune(c.AuthorName)) > 100 {
		return fmt.Errorf("%w: name too long", ErrInvalid)
	}
	return nil
}

// Preview is the first 100 runes of the comment.
func (c *Comment) Preview() string {
	return content.Truncate(c.Content, 103)
}
