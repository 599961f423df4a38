package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

func date(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func sampleResume() *models.Resume {
	end := date(2021, time.June)
	obtained := date(2022, time.March)
	return &models.Resume{
		Profile: models.Profile{
			ID: 1, FullName: "Ada Lovelace", Title: "Staff Engineer",
			Email: "ada@example.com", LinkedInURL: "https://linkedin.com/in/ada",
			Location: "London", Summary: "<p>Builds <b>engines</b>.</p>",
			IsActive: true,
		},
		Experiences: []models.Experience{
			{Position: "Lead", Company: "Analytical Co", Location: "London", StartDate: date(2021, time.July),
				Description: "<p>Led the <strong>platform</strong> team.</p><ul><li>Cut costs by <em>40%</em></li><li>Shipped v2</li></ul>"},
			{Position: "Engineer", Company: "Difference Ltd", StartDate: date(2018, time.January), EndDate: &end,
				CompanyDescription: "A calculating company.", Description: "Plain text only"},
		},
		Skills: []models.Skill{
			{Name: "Go", Category: "Languages"},
			{Name: "Docker"},
			{Name: "Python", Category: "Languages"},
		},
		Certifications: []models.Certification{
			{Name: "CKA", Provider: "CNCF", DateObtained: &obtained},
			{Name: "Scrum", Provider: "Scrum.org"},
		},
		Achievements: []models.Achievement{
			{Title: "Patent", Description: "Granted in 2020"},
		},
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func paragraphTexts(flow []Flowable) []string {
	var out []string
	for _, f := range flow {
		p, ok := f.(*Paragraph)
		if !ok {
			continue
		}
		var sb strings.Builder
		for _, s := range p.Spans {
			sb.WriteString(s.Text)
		}
		out = append(out, sb.String())
	}
	return out
}

func TestDocumentSections(t *testing.T) {
	flow := document(sampleResume(), DefaultStyles(), nil)
	texts := paragraphTexts(flow)

	assert.Equal(t, []string{
		"Ada Lovelace", "Staff Engineer", "ada@example.com | LinkedIn | London",
		"EXPERIENCE",
		"Lead", "Analytical Co, London", "July 2021 - Present",
		"Led the platform team.", "• Cut costs by 40%", "• Shipped v2",
		"Engineer", "Difference Ltd", "January 2018 - June 2021", "A calculating company.", "Plain text only",
		"SUMMARY", "Builds engines .",
		"KEY ACHIEVEMENTS", "u Patent", "Granted in 2020",
		"CERTIFICATIONS", "CKA", "CNCF - 2022", "Scrum", "Scrum.org",
		"SKILLS", "Languages", "Go, Python", "Docker",
	}, texts)

	breaks := 0
	for _, f := range flow {
		if _, ok := f.(FrameBreak); ok {
			breaks++
		}
		_, isPic := f.(*Picture)
		assert.False(t, isPic)
	}
	assert.Equal(t, 1, breaks)
}

func TestDocumentContactLink(t *testing.T) {
	flow := document(sampleResume(), DefaultStyles(), nil)
	contact := flow[2].(*Paragraph)
	require.Len(t, contact.Spans, 5)
	assert.Equal(t, "https://linkedin.com/in/ada", contact.Spans[2].Link)

	r := sampleResume()
	r.Profile.Email, r.Profile.LinkedInURL = "", ""
	flow = document(r, DefaultStyles(), nil)
	assert.Equal(t, "London", paragraphTexts(flow)[2])
}

func TestDocumentOmitsEmptySections(t *testing.T) {
	r := &models.Resume{Profile: models.Profile{FullName: "Solo", Title: "Dev", Email: "s@example.com"}}
	texts := paragraphTexts(document(r, DefaultStyles(), nil))
	assert.Equal(t, []string{"Solo", "Dev", "s@example.com"}, texts)
}

func TestGenerateProducesPDF(t *testing.T) {
	g := NewGenerator(fstest.MapFS{"photos/ada.png": {Data: pngBytes(t)}})
	r := sampleResume()
	r.Profile.Photo = "photos/ada.png"

	out, err := g.Generate(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out[len(out)-16:]), "%%EOF")
}

func TestGenerateOutsideCodePage(t *testing.T) {
	_, m := newDocument("t", "a")
	assert.Equal(t, "Ren\xe9 ...", m.tr("René 王小明"))

	r := sampleResume()
	r.Profile.FullName = "Łukasz Żółć 王小明"
	out, err := NewGenerator(fstest.MapFS{}).Generate(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestGenerateWithoutUsablePhoto(t *testing.T) {
	photos := fstest.MapFS{"photos/broken.jpg": {Data: []byte("not an image")}}
	g := NewGenerator(photos)
	for _, name := range []string{"photos/broken.jpg", "photos/missing.jpg", "../etc/passwd"} {
		t.Run(name, func(t *testing.T) {
			r := sampleResume()
			r.Profile.Photo = name
			assert.Nil(t, g.photo(name))
			out, err := g.Generate(r)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}

func TestGenerateLongResumeSpillsOntoSecondPage(t *testing.T) {
	r := sampleResume()
	for i := 0; i < 40; i++ {
		r.Experiences = append(r.Experiences, models.Experience{
			Position: fmt.Sprintf("Role %d", i), Company: "Co", StartDate: date(2000, time.January),
			Description: "<ul><li>Did a great many things that take up a full line of text</li><li>And more</li></ul>",
		})
	}
	g := NewGenerator(nil)

	_, m := newDocument("t", "t")
	l := (&Engine{Frames: g.Frames, Measure: m}).Lay(document(r, g.Styles, nil))
	assert.GreaterOrEqual(t, l.Pages, 2)
	require.NotEmpty(t, l.Continuations)
	assert.Equal(t, "main", l.Continuations[0].Frame)

	out, err := g.Generate(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestGenerateNilResume(t *testing.T) {
	_, err := NewGenerator(nil).Generate(nil)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateRecoversPanics(t *testing.T) {
	g := NewGenerator(nil)
	g.Styles = &Styles{} // nil styles make layout dereference nil
	_, err := g.Generate(sampleResume())
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestCircularPhoto(t *testing.T) {
	data, err := CircularPhoto(bytes.NewReader(pngBytes(t)), photoPixels)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
	r, _, _, a := img.At(50, 50).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Greater(t, r, uint32(0x8000))

	_, err = CircularPhoto(strings.NewReader("junk"), photoPixels)
	assert.Error(t, err)
}

type fakeSource struct {
	r   *models.Resume
	err error
}

func (f fakeSource) ActiveResume(context.Context) (*models.Resume, error) { return f.r, f.err }

func TestExporter(t *testing.T) {
	ctx := context.Background()

	e := &Exporter{Source: fakeSource{err: store.ErrNotFound}, Generator: NewGenerator(nil)}
	_, _, err := e.Export(ctx)
	assert.ErrorIs(t, err, ErrNoActiveProfile)

	e.Source = fakeSource{err: errors.New("db down")}
	_, _, err = e.Export(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoActiveProfile)

	e.Source = fakeSource{r: sampleResume()}
	data, name, err := e.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada_Lovelace_Resume.pdf", name)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
