package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio/internal/auth"
	"portfolio/internal/models"
)

var ErrBadCredentials = errors.New("wrong email or password")

type Users struct{ *base }

func (s *Users) Create(ctx context.Context, email, username, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields required", ErrInvalid)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Email: email, Username: username, PasswordHash: hash, CreatedAt: s.clock()}
	err = s.db.QueryRowContext(ctx, `INSERT INTO users(email,username,password_hash,created_at) VALUES(?,?,?,?) RETURNING id`,
		u.Email, u.Username, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return nil, classify(err)
	}
	return u, nil
}

// Authenticate checks the password and returns the user.
func (s *Users) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, email, username, password_hash, created_at FROM users WHERE email=?`,
		strings.TrimSpace(email)).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(classify(err), ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrBadCredentials
	}
	return &u, nil
}

func (s *Users) Get(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, email, username, password_hash, created_at FROM users WHERE id=?`, id).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}
