package store

import (
	"context"
	"database/sql"
	"fmt"

	"portfolio/internal/db"
	"portfolio/internal/models"
)

type Profiles struct{ *base }

const profileColumns = `id, full_name, title, email, linkedin_url, location, summary, photo,
	is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.FullName, &p.Title, &p.Email, &p.LinkedInURL, &p.Location,
		&p.Summary, &p.Photo, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// deactivateOthers enforces the single-active-profile invariant.
func deactivateOthers(ctx context.Context, tx *db.Tx, keep int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = ? WHERE is_active = ? AND id <> ?`,
		false, true, keep)
	return err
}

func (s *Profiles) Create(ctx context.Context, p *models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := s.clock()
	return s.db.WithTx(ctx, func(tx *db.Tx) error {
		if p.IsActive {
			if err := deactivateOthers(ctx, tx, 0); err != nil {
				return err
			}
		}
		err := tx.QueryRowContext(ctx, `INSERT INTO profiles(full_name,title,email,linkedin_url,location,summary,photo,is_active,created_at,updated_at)
			VALUES(?,?,?,?,?,?,?,?,?,?) RETURNING id`,
			p.FullName, p.Title, p.Email, p.LinkedInURL, p.Location, p.Summary, p.Photo, p.IsActive, now, now).
			Scan(&p.ID)
		if err != nil {
			return classify(err)
		}
		p.CreatedAt, p.UpdatedAt = now, now
		return nil
	})
}

func (s *Profiles) Update(ctx context.Context, p *models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := s.clock()
	return s.db.WithTx(ctx, func(tx *db.Tx) error {
		if p.IsActive {
			if err := deactivateOthers(ctx, tx, p.ID); err != nil {
				return err
			}
		}
		err := execOne(ctx, tx, `UPDATE profiles SET full_name=?, title=?, email=?, linkedin_url=?, location=?,
			summary=?, photo=?, is_active=?, updated_at=? WHERE id=?`,
			p.FullName, p.Title, p.Email, p.LinkedInURL, p.Location, p.Summary, p.Photo, p.IsActive, now, p.ID)
		if err != nil {
			return err
		}
		p.UpdatedAt = now
		return nil
	})
}

// SetActive flips is_active on one profile. Activating deactivates every
// other profile in the same transaction.
func (s *Profiles) SetActive(ctx context.Context, id int64, active bool) error {
	now := s.clock()
	return s.db.WithTx(ctx, func(tx *db.Tx) error {
		if active {
			if err := deactivateOthers(ctx, tx, id); err != nil {
				return err
			}
		}
		return execOne(ctx, tx, `UPDATE profiles SET is_active=?, updated_at=? WHERE id=?`, active, now, id)
	})
}

func (s *Profiles) Get(ctx context.Context, id int64) (*models.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=?`, id))
}

// Active returns the active profile or ErrNotFound.
func (s *Profiles) Active(ctx context.Context) (*models.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles
		WHERE is_active=? ORDER BY updated_at DESC LIMIT 1`, true))
}

func (s *Profiles) List(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY is_active DESC, updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Profiles) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, s.db, `DELETE FROM profiles WHERE id=?`, id)
}

// Resume loads the profile and its children in display order.
func (s *Profiles) Resume(ctx context.Context, id int64) (*models.Resume, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, p)
}

// ActiveResume is Resume for the active profile.
func (s *Profiles) ActiveResume(ctx context.Context) (*models.Resume, error) {
	p, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, p)
}

func (s *Profiles) load(ctx context.Context, p *models.Profile) (*models.Resume, error) {
	r := &models.Resume{Profile: *p}
	var err error
	if r.Experiences, err = s.Experiences(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("experiences: %w", err)
	}
	if r.Skills, err = s.Skills(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("skills: %w", err)
	}
	if r.Certifications, err = s.Certifications(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("certifications: %w", err)
	}
	if r.Achievements, err = s.Achievements(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("achievements: %w", err)
	}
	return r, nil
}

func (s *Profiles) Experiences(ctx context.Context, profileID int64) ([]models.Experience, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, profile_id, position, company, location, start_date, end_date,
		description, company_description, sort_order, created_at, updated_at
		FROM experiences WHERE profile_id=? ORDER BY sort_order, start_date DESC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Experience
	for rows.Next() {
		var e models.Experience
		var end sql.NullTime
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Position, &e.Company, &e.Location, &e.StartDate, &end,
			&e.Description, &e.CompanyDescription, &e.Order, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.EndDate = timePtr(end)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Profiles) Skills(ctx context.Context, profileID int64) ([]models.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, profile_id, name, category, sort_order, created_at
		FROM skills WHERE profile_id=? ORDER BY sort_order, category, name`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Skill
	for rows.Next() {
		var sk models.Skill
		if err := rows.Scan(&sk.ID, &sk.ProfileID, &sk.Name, &sk.Category, &sk.Order, &sk.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *Profiles) Certifications(ctx context.Context, profileID int64) ([]models.Certification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, profile_id, name, provider, date_obtained, credential_url, sort_order, created_at
		FROM certifications WHERE profile_id=? ORDER BY sort_order, date_obtained DESC NULLS LAST`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Certification
	for rows.Next() {
		var c models.Certification
		var obtained sql.NullTime
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.Name, &c.Provider, &obtained, &c.CredentialURL, &c.Order, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.DateObtained = timePtr(obtained)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Profiles) Achievements(ctx context.Context, profileID int64) ([]models.Achievement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, profile_id, title, description, icon, sort_order, created_at
		FROM achievements WHERE profile_id=? ORDER BY sort_order, title`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.Title, &a.Description, &a.Icon, &a.Order, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Profiles) AddExperience(ctx context.Context, e *models.Experience) error {
	if err := e.Validate(); err != nil {
		return err
	}
	now := s.clock()
	err := s.db.QueryRowContext(ctx, `INSERT INTO experiences(profile_id,position,company,location,start_date,end_date,
		description,company_description,sort_order,created_at,updated_at) VALUES(?,?,?,?,?,?,?,?,?,?,?) RETURNING id`,
		e.ProfileID, e.Position, e.Company, e.Location, e.StartDate, nullTime(e.EndDate),
		e.Description, e.CompanyDescription, e.Order, now, now).Scan(&e.ID)
	if err != nil {
		return classify(err)
	}
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

// AddSkill returns ErrConflict when the profile already has a skill with
// the same name.
func (s *Profiles) AddSkill(ctx context.Context, sk *models.Skill) error {
	if sk.Name == "" {
		return fmt.Errorf("%w: skill name is required", ErrInvalid)
	}
	now := s.clock()
	err := s.db.QueryRowContext(ctx, `INSERT INTO skills(profile_id,name,category,sort_order,created_at)
		VALUES(?,?,?,?,?) RETURNING id`, sk.ProfileID, sk.Name, sk.Category, sk.Order, now).Scan(&sk.ID)
	if err != nil {
		return classify(err)
	}
	sk.CreatedAt = now
	return nil
}

func (s *Profiles) AddCertification(ctx context.Context, c *models.Certification) error {
	if c.Name == "" || c.Provider == "" {
		return fmt.Errorf("%w: certification name and provider are required", ErrInvalid)
	}
	now := s.clock()
	err := s.db.QueryRowContext(ctx, `INSERT INTO certifications(profile_id,name,provider,date_obtained,credential_url,sort_order,created_at)
		VALUES(?,?,?,?,?,?,?) RETURNING id`, c.ProfileID, c.Name, c.Provider, nullTime(c.DateObtained),
		c.CredentialURL, c.Order, now).Scan(&c.ID)
	if err != nil {
		return classify(err)
	}
	c.CreatedAt = now
	return nil
}

func (s *Profiles) AddAchievement(ctx context.Context, a *models.Achievement) error {
	if a.Title == "" || a.Description == "" {
		return fmt.Errorf("%w: achievement title and description are required", ErrInvalid)
	}
	now := s.clock()
	err := s.db.QueryRowContext(ctx, `INSERT INTO achievements(profile_id,title,description,icon,sort_order,created_at)
		VALUES(?,?,?,?,?,?) RETURNING id`, a.ProfileID, a.Title, a.Description, a.Icon, a.Order, now).Scan(&a.ID)
	if err != nil {
		return classify(err)
	}
	a.CreatedAt = now
	return nil
}

var childTables = map[string]string{
	"experiences":    "experiences",
	"skills":         "skills",
	"certifications": "certifications",
	"achievements":   "achievements",
}

// DeleteChild removes one experience, skill, certification or achievement.
func (s *Profiles) DeleteChild(ctx context.Context, kind string, id int64) error {
	table, ok := childTables[kind]
	if !ok {
		return fmt.Errorf("%w: unknown resume section %q", ErrInvalid, kind)
	}
	return execOne(ctx, s.db, `DELETE FROM `+table+` WHERE id=?`, id)
}
