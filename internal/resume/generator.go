// Package resume renders the active resume profile as a two-column PDF.
package resume

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

var (
	ErrNoActiveProfile = errors.New("no active resume profile")
	ErrGeneration      = errors.New("resume pdf generation failed")
)

// Generator lays out and writes resume PDFs. Photos are read from the
// media filesystem by their stored relative path; a nil Photos disables
// them.
type Generator struct {
	Photos fs.FS
	Styles *Styles
	Frames []Frame
}

func NewGenerator(photos fs.FS) *Generator {
	return &Generator{Photos: photos, Styles: DefaultStyles(), Frames: TwoColumn()}
}

// Generate returns the PDF bytes for r. Any failure, including a panic in
// the writer, is reported as ErrGeneration.
func (g *Generator) Generate(r *models.Resume) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrGeneration, rec)
		}
	}()
	if r == nil {
		return nil, fmt.Errorf("%w: nil resume", ErrGeneration)
	}

	pdf, m := newDocument(r.Profile.DisplayName(), r.Profile.FullName)
	flow := document(r, g.Styles, g.photo(r.Profile.Photo))
	eng := &Engine{Frames: g.Frames, Measure: m}
	l := eng.Lay(flow)
	for _, c := range l.Continuations {
		log.Printf("WARN: [Resume] %s column of %q overflowed, continued on page %d", c.Frame, r.Profile.FullName, c.Page)
	}

	out, err = render(pdf, m, l)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return out, nil
}

// photo loads and crops the profile photo. Failures are logged and the
// resume is rendered without one.
func (g *Generator) photo(name string) []byte {
	if name == "" || g.Photos == nil {
		return nil
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(name) {
		log.Printf("WARN: [Resume] invalid photo path %q", name)
		return nil
	}
	f, err := g.Photos.Open(name)
	if err != nil {
		log.Printf("WARN: [Resume] open photo %q: %v", name, err)
		return nil
	}
	defer f.Close()
	data, err := CircularPhoto(f, photoPixels)
	if err != nil {
		log.Printf("WARN: [Resume] process photo %q: %v", name, err)
		return nil
	}
	return data
}

type ResumeSource interface {
	ActiveResume(ctx context.Context) (*models.Resume, error)
}

// Exporter produces the downloadable PDF for the active profile.
type Exporter struct {
	Source    ResumeSource
	Generator *Generator
}

// Export returns the PDF and its attachment filename.
func (e *Exporter) Export(ctx context.Context) ([]byte, string, error) {
	r, err := e.Source.ActiveResume(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrNoActiveProfile
	}
	if err != nil {
		return nil, "", fmt.Errorf("load active resume: %w", err)
	}
	data, err := e.Generator.Generate(r)
	if err != nil {
		return nil, "", err
	}
	log.Printf("INFO: [Resume] generated %d bytes for %s", len(data), r.Profile.FullName)
	return data, r.Profile.PDFFilename(), nil
}
