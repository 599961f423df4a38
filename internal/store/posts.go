package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"portfolio/internal/db"
	"portfolio/internal/models"
)

type Posts struct{ *base }

const postSelect = `SELECT p.id, p.title, p.slug, p.content_markdown, p.content, p.excerpt, p.status,
	p.author_id, u.username, p.category_id, c.name, c.slug,
	p.featured_image, p.featured_image_focus_x, p.featured_image_focus_y,
	p.meta_title, p.meta_description, p.meta_keywords,
	p.created_at, p.updated_at, p.published_at
	FROM posts p JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

func scanPost(row scanner) (*models.Post, error) {
	var (
		p                models.Post
		catID            sql.NullInt64
		catName, catSlug sql.NullString
		published        sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.ContentMarkdown, &p.Content, &p.Excerpt, &p.Status,
		&p.AuthorID, &p.Author, &catID, &catName, &catSlug,
		&p.FeaturedImage, &p.FeaturedImageFocusX, &p.FeaturedImageFocusY,
		&p.MetaTitle, &p.MetaDescription, &p.MetaKeywords,
		&p.CreatedAt, &p.UpdatedAt, &published)
	if err != nil {
		return nil, classify(err)
	}
	if catID.Valid {
		id := catID.Int64
		p.CategoryID = &id
		p.Category = &models.Category{ID: id, Name: catName.String, Slug: catSlug.String}
	}
	p.PublishedAt = timePtr(published)
	return &p, nil
}

func (s *Posts) queryPosts(ctx context.Context, q string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Posts) one(ctx context.Context, q string, args ...any) (*models.Post, error) {
	posts, err := s.queryPosts(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}

// attachTags loads tags for all posts in one query.
func (s *Posts) attachTags(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]any, len(posts))
	byID := make(map[int64]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = i
	}
	q := `SELECT pt.post_id, t.id, t.name, t.slug, t.created_at FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id IN (` + placeholders(len(ids)) + `) ORDER BY t.name`
	rows, err := s.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID int64
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return err
		}
		i := byID[postID]
		posts[i].Tags = append(posts[i].Tags, t)
	}
	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Save prepares and stores the post. The first-publish timestamp of an
// existing post is kept whatever the caller sends.
func (s *Posts) Save(ctx context.Context, p *models.Post) error {
	now := s.clock()
	if p.ID != 0 {
		var published sql.NullTime
		err := s.db.QueryRowContext(ctx, `SELECT published_at FROM posts WHERE id=?`, p.ID).Scan(&published)
		if err != nil {
			return classify(err)
		}
		if published.Valid {
			p.PublishedAt = timePtr(published)
		}
	}
	if err := p.Prepare(now); err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *db.Tx) error {
		if p.ID == 0 {
			err := tx.QueryRowContext(ctx, `INSERT INTO posts(title,slug,content_markdown,content,excerpt,status,author_id,category_id,
				featured_image,featured_image_focus_x,featured_image_focus_y,meta_title,meta_description,meta_keywords,
				created_at,updated_at,published_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?) RETURNING id`,
				p.Title, p.Slug, p.ContentMarkdown, p.Content, p.Excerpt, p.Status, p.AuthorID, nullInt(p.CategoryID),
				p.FeaturedImage, p.FeaturedImageFocusX, p.FeaturedImageFocusY, p.MetaTitle, p.MetaDescription, p.MetaKeywords,
				now, now, nullTime(p.PublishedAt)).Scan(&p.ID)
			if err != nil {
				return classify(err)
			}
			p.CreatedAt = now
		} else {
			err := execOne(ctx, tx, `UPDATE posts SET title=?, slug=?, content_markdown=?, content=?, excerpt=?, status=?,
				author_id=?, category_id=?, featured_image=?, featured_image_focus_x=?, featured_image_focus_y=?,
				meta_title=?, meta_description=?, meta_keywords=?, updated_at=?, published_at=? WHERE id=?`,
				p.Title, p.Slug, p.ContentMarkdown, p.Content, p.Excerpt, p.Status, p.AuthorID, nullInt(p.CategoryID),
				p.FeaturedImage, p.FeaturedImageFocusX, p.FeaturedImageFocusY, p.MetaTitle, p.MetaDescription, p.MetaKeywords,
				now, nullTime(p.PublishedAt), p.ID)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id=?`, p.ID); err != nil {
				return err
			}
		}
		p.UpdatedAt = now
		for _, t := range p.Tags {
			if _, err := tx.ExecContext(ctx, `INSERT INTO post_tags(post_id,tag_id) VALUES(?,?) ON CONFLICT DO NOTHING`,
				p.ID, t.ID); err != nil {
				return classify(err)
			}
		}
		return nil
	})
}

func (s *Posts) Get(ctx context.Context, id int64) (*models.Post, error) {
	return s.one(ctx, postSelect+` WHERE p.id=?`, id)
}

// List returns every post regardless of status, newest first.
func (s *Posts) List(ctx context.Context) ([]models.Post, error) {
	return s.queryPosts(ctx, postSelect+` ORDER BY p.created_at DESC`)
}

// Published returns one page of published posts, newest first, and the
// total number of published posts.
func (s *Posts) Published(ctx context.Context, page, size int) ([]models.Post, int, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE status=?`, models.StatusPublished).
		Scan(&total); err != nil {
		return nil, 0, err
	}
	posts, err := s.queryPosts(ctx, postSelect+` WHERE p.status=? ORDER BY p.published_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		models.StatusPublished, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Recent returns the n most recently published posts.
func (s *Posts) Recent(ctx context.Context, n int) ([]models.Post, error) {
	return s.queryPosts(ctx, postSelect+` WHERE p.status=? ORDER BY p.published_at DESC, p.id DESC LIMIT ?`,
		models.StatusPublished, n)
}

// PublishedBySlug hides drafts behind ErrNotFound.
func (s *Posts) PublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.one(ctx, postSelect+` WHERE p.slug=? AND p.status=?`, slug, models.StatusPublished)
}

// Neighbours returns the next newer and next older published posts.
func (s *Posts) Neighbours(ctx context.Context, p *models.Post) (next, prev *models.Post, err error) {
	if p.PublishedAt == nil {
		return nil, nil, nil
	}
	next, err = s.one(ctx, postSelect+` WHERE p.status=? AND p.published_at > ? ORDER BY p.published_at ASC LIMIT 1`,
		models.StatusPublished, *p.PublishedAt)
	if err != nil && err != ErrNotFound {
		return nil, nil, fmt.Errorf("next post: %w", err)
	}
	prev, err = s.one(ctx, postSelect+` WHERE p.status=? AND p.published_at < ? ORDER BY p.published_at DESC LIMIT 1`,
		models.StatusPublished, *p.PublishedAt)
	if err != nil && err != ErrNotFound {
		return nil, nil, fmt.Errorf("previous post: %w", err)
	}
	return next, prev, nil
}

func (s *Posts) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, s.db, `DELETE FROM posts WHERE id=?`, id)
}
