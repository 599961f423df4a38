package store

import (
	"context"

	"portfolio/internal/models"
)

type Comments struct{ *base }

const commentColumns = `id, post_id, author_name, author_email, author_url, content, is_approved, ip_address, created_at, updated_at`

// Create stores a comment awaiting moderation.
func (s *Comments) Create(ctx context.Context, c *models.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}
	now := s.clock()
	c.IsApproved = false
	err := s.db.QueryRowContext(ctx, `INSERT INTO comments(post_id,author_name,author_email,author_url,content,is_approved,ip_address,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?,?,?) RETURNING id`,
		c.PostID, c.AuthorName, c.AuthorEmail, c.AuthorURL, c.Content, false, c.IPAddress, now, now).Scan(&c.ID)
	if err != nil {
		return classify(err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (s *Comments) list(ctx context.Context, q string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.AuthorEmail, &c.AuthorURL, &c.Content,
			&c.IsApproved, &c.IPAddress, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Approved lists the post's approved comments, newest first.
func (s *Comments) Approved(ctx context.Context, postID int64) ([]models.Comment, error) {
	return s.list(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id=? AND is_approved=? ORDER BY created_at DESC, id DESC`,
		postID, true)
}

// Pending lists comments waiting for moderation across all posts.
func (s *Comments) Pending(ctx context.Context) ([]models.Comment, error) {
	return s.list(ctx, `SELECT `+commentColumns+` FROM comments WHERE is_approved=? ORDER BY created_at DESC, id DESC`, false)
}

func (s *Comments) SetApproved(ctx context.Context, id int64, approved bool) error {
	return execOne(ctx, s.db, `UPDATE comments SET is_approved=?, updated_at=? WHERE id=?`, approved, s.clock(), id)
}

func (s *Comments) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, s.db, `DELETE FROM comments WHERE id=?`, id)
}
