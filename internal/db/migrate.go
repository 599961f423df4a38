package db

import (
	"context"
	"fmt"
	"strings"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users(
		id {{id}},
		email TEXT UNIQUE NOT NULL,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions(
		id TEXT PRIMARY KEY,
		user_id {{ref}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS profiles(
		id {{id}},
		full_name TEXT NOT NULL,
		title TEXT NOT NULL,
		email TEXT NOT NULL,
		linkedin_url TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		photo TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS profiles_is_active ON profiles(is_active);`,
	`CREATE TABLE IF NOT EXISTS experiences(
		id {{id}},
		profile_id {{ref}} NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		position TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		start_date {{date}} NOT NULL,
		end_date {{date}},
		description TEXT NOT NULL DEFAULT '',
		company_description TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0 CHECK(sort_order >= 0),
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS experiences_profile_order ON experiences(profile_id, sort_order);`,
	`CREATE TABLE IF NOT EXISTS skills(
		id {{id}},
		profile_id {{ref}} NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0 CHECK(sort_order >= 0),
		created_at {{ts}} NOT NULL,
		CONSTRAINT unique_skill_per_profile UNIQUE(profile_id, name)
	);`,
	`CREATE INDEX IF NOT EXISTS skills_profile_category ON skills(profile_id, category);`,
	`CREATE TABLE IF NOT EXISTS certifications(
		id {{id}},
		profile_id {{ref}} NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		provider TEXT NOT NULL,
		date_obtained {{date}},
		credential_url TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0 CHECK(sort_order >= 0),
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS achievements(
		id {{id}},
		profile_id {{ref}} NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0 CHECK(sort_order >= 0),
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories(
		id {{id}},
		name TEXT UNIQUE NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS tags(
		id {{id}},
		name TEXT UNIQUE NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS posts(
		id {{id}},
		title TEXT NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		content_markdown TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		author_id {{ref}} NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		category_id {{ref}} REFERENCES categories(id) ON DELETE SET NULL,
		featured_image TEXT NOT NULL DEFAULT '',
		featured_image_focus_x INTEGER NOT NULL DEFAULT 50 CHECK(featured_image_focus_x BETWEEN 0 AND 100),
		featured_image_focus_y INTEGER NOT NULL DEFAULT 50 CHECK(featured_image_focus_y BETWEEN 0 AND 100),
		meta_title TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		meta_keywords TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL,
		published_at {{ts}},
		CONSTRAINT valid_post_status CHECK(status IN ('draft','published'))
	);`,
	`CREATE INDEX IF NOT EXISTS posts_status_published ON posts(status, published_at);`,
	`CREATE TABLE IF NOT EXISTS post_tags(
		post_id {{ref}} NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		tag_id {{ref}} NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY(post_id, tag_id)
	);`,
	`CREATE TABLE IF NOT EXISTS comments(
		id {{id}},
		post_id {{ref}} NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_name TEXT NOT NULL,
		author_email TEXT NOT NULL,
		author_url TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		is_approved BOOLEAN NOT NULL DEFAULT FALSE,
		ip_address TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS comments_post_approved ON comments(post_id, is_approved, created_at);`,
	`CREATE TABLE IF NOT EXISTS projects(
		id {{id}},
		title TEXT NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		external_link TEXT NOT NULL DEFAULT '',
		case_study_link TEXT NOT NULL DEFAULT '',
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS project_tags(
		id {{id}},
		name TEXT UNIQUE NOT NULL,
		slug TEXT UNIQUE NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS project_tag_links(
		project_id {{ref}} NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		tag_id {{ref}} NOT NULL REFERENCES project_tags(id) ON DELETE CASCADE,
		PRIMARY KEY(project_id, tag_id)
	);`,
}

func columnTypes(d Dialect) *strings.Replacer {
	if d == Postgres {
		return strings.NewReplacer(
			"{{id}}", "BIGSERIAL PRIMARY KEY",
			"{{ref}}", "BIGINT",
			"{{ts}}", "TIMESTAMPTZ",
			"{{date}}", "DATE",
		)
	}
	return strings.NewReplacer(
		"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{ref}}", "INTEGER",
		"{{ts}}", "DATETIME",
		"{{date}}", "DATE",
	)
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(d *DB) error {
	r := columnTypes(d.Dialect)
	ctx := context.Background()
	for _, s := range schema {
		if _, err := d.DB.ExecContext(ctx, r.Replace(s)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
