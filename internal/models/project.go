package models

import (
	"fmt"
	"strings"
	"time"

	"portfolio/internal/content"
)

type ProjectTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Project struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Description   string       `json:"description"`
	Image         string       `json:"image"`
	ExternalLink  string       `json:"external_link"`
	CaseStudyLink string       `json:"case_study_link"`
	Tags          []ProjectTag `json:"tags"`
	IsFeatured    bool         `json:"is_featured"`
	Order         int          `json:"order"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (p *Project) URL() string { return "/projects/" + p.Slug + "/" }

func (p *Project) Prepare() error {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: title and description are required", ErrInvalid)
	}
	if p.Slug == "" {
		p.Slug = content.Slugify(p.Title)
	}
	return nil
}
