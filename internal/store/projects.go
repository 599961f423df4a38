package store

import (
	"context"
	"strings"

	"portfolio/internal/content"
	"portfolio/internal/db"
	"portfolio/internal/models"
)

type Projects struct{ *base }

const projectColumns = `id, title, slug, description, image, external_link, case_study_link, is_featured, sort_order, created_at, updated_at`

// Save inserts or updates a project; tags are matched by name and created
// when missing.
func (s *Projects) Save(ctx context.Context, p *models.Project) error {
	if err := p.Prepare(); err != nil {
		return err
	}
	now := s.clock()
	return s.db.WithTx(ctx, func(tx *db.Tx) error {
		if p.ID == 0 {
			err := tx.QueryRowContext(ctx, `INSERT INTO projects(title,slug,description,image,external_link,case_study_link,is_featured,sort_order,created_at,updated_at)
				VALUES(?,?,?,?,?,?,?,?,?,?) RETURNING id`,
				p.Title, p.Slug, p.Description, p.Image, p.ExternalLink, p.CaseStudyLink, p.IsFeatured, p.Order, now, now).Scan(&p.ID)
			if err != nil {
				return classify(err)
			}
			p.CreatedAt = now
		} else {
			err := execOne(ctx, tx, `UPDATE projects SET title=?, slug=?, description=?, image=?, external_link=?,
				case_study_link=?, is_featured=?, sort_order=?, updated_at=? WHERE id=?`,
				p.Title, p.Slug, p.Description, p.Image, p.ExternalLink, p.CaseStudyLink, p.IsFeatured, p.Order, now, p.ID)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM project_tag_links WHERE project_id=?`, p.ID); err != nil {
				return err
			}
		}
		p.UpdatedAt = now
		for i := range p.Tags {
			t := &p.Tags[i]
			t.Name = strings.TrimSpace(t.Name)
			if t.Slug == "" {
				t.Slug = content.Slugify(t.Name)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO project_tags(name,slug) VALUES(?,?) ON CONFLICT(name) DO NOTHING`,
				t.Name, t.Slug); err != nil {
				return classify(err)
			}
			if err := tx.QueryRowContext(ctx, `SELECT id, slug FROM project_tags WHERE name=?`, t.Name).Scan(&t.ID, &t.Slug); err != nil {
				return classify(err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO project_tag_links(project_id,tag_id) VALUES(?,?) ON CONFLICT DO NOTHING`,
				p.ID, t.ID); err != nil {
				return classify(err)
			}
		}
		return nil
	})
}

func (s *Projects) query(ctx context.Context, q string, args ...any) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.Image, &p.ExternalLink, &p.CaseStudyLink,
			&p.IsFeatured, &p.Order, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		tags, err := s.tags(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
	}
	return out, nil
}

func (s *Projects) tags(ctx context.Context, projectID int64) ([]models.ProjectTag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.name, t.slug FROM project_tags t
		JOIN project_tag_links l ON l.tag_id = t.id WHERE l.project_id=? ORDER BY t.name`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.ProjectTag
	for rows.Next() {
		var t models.ProjectTag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Projects) List(ctx context.Context) ([]models.Project, error) {
	return s.query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY sort_order, created_at DESC`)
}

func (s *Projects) Featured(ctx context.Context) ([]models.Project, error) {
	return s.query(ctx, `SELECT `+projectColumns+` FROM projects WHERE is_featured=? ORDER BY sort_order, created_at DESC`, true)
}

func (s *Projects) BySlug(ctx context.Context, slug string) (*models.Project, error) {
	out, err := s.query(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug=?`, slug)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (s *Projects) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, s.db, `DELETE FROM projects WHERE id=?`, id)
}
