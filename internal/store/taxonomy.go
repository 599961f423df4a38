package store

import (
	"context"
	"fmt"
	"strings"

	"portfolio/internal/content"
	"portfolio/internal/models"
)

type Taxonomy struct{ *base }

func (s *Taxonomy) CreateCategory(ctx context.Context, c *models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	if c.Slug == "" {
		c.Slug = content.Slugify(c.Name)
	}
	now := s.clock()
	err := s.db.QueryRowContext(ctx, `INSERT INTO categories(name,slug,description,created_at,updated_at)
		VALUES(?,?,?,?,?) RETURNING id`, c.Name, c.Slug, c.Description, now, now).Scan(&c.ID)
	if err != nil {
		return classify(err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (s *Taxonomy) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, description, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Taxonomy) CreateTag(ctx context.Context, t *models.Tag) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: tag name is required", ErrInvalid)
	}
	if t.Slug == "" {
		t.Slug = content.Slugify(t.Name)
	}
	now := s.clock()
	err := s.db.QueryRowContext(ctx, `INSERT INTO tags(name,slug,created_at) VALUES(?,?,?) RETURNING id`,
		t.Name, t.Slug, now).Scan(&t.ID)
	if err != nil {
		return classify(err)
	}
	t.CreatedAt = now
	return nil
}

func (s *Taxonomy) Tags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
