package models

import (
	"fmt"
	"strings"
	"time"
)

type Profile struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	Title       string    `json:"title"`
	Email       string    `json:"email"`
	LinkedInURL string    `json:"linkedin_url"`
	Location    string    `json:"location"`
	Summary     string    `json:"summary"`
	Photo       string    `json:"photo"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Profile) DisplayName() string {
	return p.FullName + " - " + p.Title
}

// PDFFilename is the attachment name used for the exported resume.
func (p *Profile) PDFFilename() string {
	return strings.ReplaceAll(p.FullName, " ", "_") + "_Resume.pdf"
}

func (p *Profile) Validate() error {
	if strings.TrimSpace(p.FullName) == "" || strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: full_name, title and email are required", ErrInvalid)
	}
	if len([]rune(p.FullName)) > 200 || len([]rune(p.Title)) > 300 {
		return fmt.Errorf("%w: full_name or title too long", ErrInvalid)
	}
	return nil
}

type Experience struct {
	ID                 int64      `json:"id"`
	ProfileID          int64      `json:"profile_id"`
	Position           string     `json:"position"`
	Company            string     `json:"company"`
	Location           string     `json:"location"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Description        string     `json:"description"`
	CompanyDescription string     `json:"company_description"`
	Order              int        `json:"order"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsCurrent reports an open-ended role.
func (e *Experience) IsCurrent() bool {
	return e.EndDate == nil
}

// Duration formats the span between start and end (or now) in whole
// years and months.
func (e *Experience) Duration(now time.Time) string {
	end := now
	if e.EndDate != nil {
		end = *e.EndDate
	}
	years := end.Year() - e.StartDate.Year()
	months := int(end.Month()) - int(e.StartDate.Month())
	if months < 0 {
		years--
		months += 12
	}

	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if len(parts) == 0 {
		return "Less than a month"
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

// DateRange renders "January 2020 - Present" style ranges.
func (e *Experience) DateRange() string {
	start := e.StartDate.Format("January 2006")
	if e.IsCurrent() {
		return start + " - Present"
	}
	return start + " - " + e.EndDate.Format("January 2006")
}

func (e *Experience) Validate() error {
	if strings.TrimSpace(e.Position) == "" || strings.TrimSpace(e.Company) == "" {
		return fmt.Errorf("%w: position and company are required", ErrInvalid)
	}
	if e.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", ErrInvalid)
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("%w: end_date before start_date", ErrInvalid)
	}
	if e.Order < 0 {
		return fmt.Errorf("%w: order must not be negative", ErrInvalid)
	}
	return nil
}

type Skill struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Skill) String() string {
	if s.Category != "" {
		return fmt.Sprintf("%s (%s)", s.Name, s.Category)
	}
	return s.Name
}

type Certification struct {
	ID            int64      `json:"id"`
	ProfileID     int64      `json:"profile_id"`
	Name          string     `json:"name"`
	Provider      string     `json:"provider"`
	DateObtained  *time.Time `json:"date_obtained,omitempty"`
	CredentialURL string     `json:"credential_url"`
	Order         int        `json:"order"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Achievement struct {
	ID          int64     `json:"id"`
	ProfileID   int64     `json:"profile_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

// Resume is a profile with its children, each slice already in display order.
type Resume struct {
	Profile        Profile         `json:"profile"`
	Experiences    []Experience    `json:"experiences"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Achievements   []Achievement   `json:"achievements"`
}

// SkillGroup is one category of skills in first-seen order.
type SkillGroup struct {
	Category string
	Names    []string
}

// OtherCategory collects skills with no category.
const OtherCategory = "Other"

// GroupSkills buckets skills by category, keeping the order in which
// categories first appear.
func GroupSkills(skills []Skill) []SkillGroup {
	var groups []SkillGroup
	index := map[string]int{}
	for _, s := range skills {
		cat := s.Category
		if cat == "" {
			cat = OtherCategory
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, SkillGroup{Category: cat})
		}
		groups[i].Names = append(groups[i].Names, s.Name)
	}
	return groups
}
