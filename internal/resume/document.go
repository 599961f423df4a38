package resume

import (
	"strings"

	"portfolio/internal/content"
	"portfolio/internal/markup"
	"portfolio/internal/models"
)

const sectionGap = 12

// document builds the flowables for a resume. The main frame holds the
// header and experience, the sidebar everything else. photo may be nil.
func document(r *models.Resume, st *Styles, photo []byte) []Flowable {
	var flow []Flowable
	add := func(f ...Flowable) { flow = append(flow, f...) }
	p := r.Profile

	add(para(st.Name, p.FullName), para(st.ProfessionalTitle, p.Title))
	if c := contactLine(&p, st.Contact); c != nil {
		add(c)
	}
	add(&Spacer{Height: sectionGap})

	if photo != nil {
		add(&Picture{Name: "photo", Data: photo, W: 1.2 * inch, H: 1.2 * inch}, &Spacer{Height: sectionGap})
	}

	if len(r.Experiences) > 0 {
		add(para(st.SectionHeading, "EXPERIENCE"))
		for _, e := range r.Experiences {
			add(para(st.JobTitle, e.Position))
			company := e.Company
			if e.Location != "" {
				company += ", " + e.Location
			}
			add(para(st.Company, company), para(st.Date, e.DateRange()))
			if strings.TrimSpace(e.CompanyDescription) != "" {
				add(para(st.Body, e.CompanyDescription))
			}
			add(descriptionBlocks(e.Description, st)...)
			add(&Spacer{Height: sectionGap})
		}
	}

	add(FrameBreak{})

	if summary := content.StripTags(p.Summary); summary != "" {
		add(para(st.SectionHeading, "SUMMARY"), para(st.Body, summary), &Spacer{Height: sectionGap})
	}

	if len(r.Achievements) > 0 {
		add(para(st.SectionHeading, "KEY ACHIEVEMENTS"))
		for _, a := range r.Achievements {
			add(&Paragraph{Style: st.Achievement, Spans: []Span{
				{Text: diamondGlyph, Symbol: true},
				{Text: " " + a.Title},
			}})
			if a.Description != "" {
				add(para(st.AchievementDesc, a.Description))
			}
		}
		add(&Spacer{Height: sectionGap})
	}

	if len(r.Certifications) > 0 {
		add(para(st.SectionHeading, "CERTIFICATIONS"))
		for _, c := range r.Certifications {
			add(boldPara(st.ListItem, c.Name))
			line := c.Provider
			if c.DateObtained != nil {
				line += " - " + c.DateObtained.Format("2006")
			}
			add(para(st.Body, line), &Spacer{Height: 4})
		}
		add(&Spacer{Height: sectionGap})
	}

	if len(r.Skills) > 0 {
		add(para(st.SectionHeading, "SKILLS"))
		for _, g := range models.GroupSkills(r.Skills) {
			if g.Category != models.OtherCategory {
				add(boldPara(st.ListItem, g.Category))
			}
			add(para(st.Body, strings.Join(g.Names, ", ")), &Spacer{Height: 6})
		}
	}
	return flow
}

func contactLine(p *models.Profile, style *Style) *Paragraph {
	var spans []Span
	sep := func() {
		if len(spans) > 0 {
			spans = append(spans, Span{Text: " | "})
		}
	}
	if p.Email != "" {
		spans = append(spans, Span{Text: p.Email})
	}
	if p.LinkedInURL != "" {
		sep()
		spans = append(spans, Span{Text: "LinkedIn", Link: p.LinkedInURL})
	}
	if p.Location != "" {
		sep()
		spans = append(spans, Span{Text: p.Location})
	}
	if len(spans) == 0 {
		return nil
	}
	return &Paragraph{Style: style, Spans: spans}
}

// descriptionBlocks turns admin-authored description markup into body
// paragraphs and bulleted list items.
func descriptionBlocks(src string, st *Styles) []Flowable {
	var out []Flowable
	for _, b := range markup.Blocks(src) {
		spans := make([]Span, 0, len(b.Inlines)+1)
		style := st.Body
		if b.Kind == markup.ListItem {
			style = st.Bullet
			spans = append(spans, Span{Text: bulletGlyph + " "})
		}
		for _, in := range b.Inlines {
			spans = append(spans, Span{Text: in.Text, Bold: in.Bold, Italic: in.Italic, Break: in.Break})
		}
		out = append(out, &Paragraph{Style: style, Spans: spans})
	}
	return out
}
