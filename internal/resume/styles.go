package resume

const inch = 72.0

type RGB struct{ R, G, B int }

var (
	colorPrimary   = RGB{0x25, 0x63, 0xeb}
	colorTextDark  = RGB{0x1f, 0x29, 0x37}
	colorTextLight = RGB{0x6b, 0x72, 0x80}
	colorAccent    = RGB{0x3b, 0x82, 0xf6}
)

const (
	fontFamily   = "Helvetica"
	symbolFamily = "ZapfDingbats"

	// diamondGlyph is the black diamond in ZapfDingbats.
	diamondGlyph = "u"
	bulletGlyph  = "•"
)

const (
	fontSizeName       = 24
	fontSizeTitle      = 11
	fontSizeHeading    = 14
	fontSizeSubheading = 12
	fontSizeBody       = 10
	fontSizeSmall      = 8
)

// Style is a paragraph style; sizes are in points.
type Style struct {
	Name        string
	Bold        bool
	Size        float64
	Leading     float64
	Color       RGB
	SpaceBefore float64
	SpaceAfter  float64
	LeftIndent  float64
}

type Styles struct {
	Name, ProfessionalTitle, Contact, SectionHeading *Style
	JobTitle, Company, Date, Body, Bullet            *Style
	Achievement, AchievementDesc, ListItem           *Style
}

func DefaultStyles() *Styles {
	return &Styles{
		Name:              &Style{Name: "name", Bold: true, Size: fontSizeName, Leading: 28, Color: colorPrimary, SpaceAfter: 6},
		ProfessionalTitle: &Style{Name: "professional_title", Size: fontSizeTitle, Leading: 14, Color: colorPrimary, SpaceAfter: 12},
		Contact:           &Style{Name: "contact", Size: fontSizeSmall, Leading: 10, Color: colorTextLight, SpaceAfter: 8},
		SectionHeading:    &Style{Name: "section_heading", Bold: true, Size: fontSizeHeading, Leading: 16, Color: colorTextDark, SpaceBefore: 12, SpaceAfter: 8},
		JobTitle:          &Style{Name: "job_title", Bold: true, Size: fontSizeSubheading, Leading: 14, Color: colorTextDark, SpaceAfter: 2},
		Company:           &Style{Name: "company", Size: fontSizeBody, Leading: 12, Color: colorTextLight, SpaceAfter: 2},
		Date:              &Style{Name: "date", Size: fontSizeSmall, Leading: 10, Color: colorTextLight, SpaceAfter: 4},
		Body:              &Style{Name: "body", Size: fontSizeBody, Leading: 13, Color: colorTextDark, SpaceAfter: 6},
		Bullet:            &Style{Name: "bullet", Size: fontSizeBody, Leading: 13, Color: colorTextDark, SpaceAfter: 4, LeftIndent: 12},
		Achievement:       &Style{Name: "achievement", Bold: true, Size: fontSizeBody, Leading: 12, Color: colorAccent, SpaceAfter: 2},
		AchievementDesc:   &Style{Name: "achievement_desc", Size: fontSizeSmall, Leading: 10, Color: colorTextDark, SpaceAfter: 8},
		ListItem:          &Style{Name: "list_item", Size: fontSizeBody, Leading: 12, Color: colorTextDark, SpaceAfter: 4},
	}
}

// Frame is a fixed region of the page. Y is measured from the top edge.
type Frame struct {
	ID         string
	X, Y, W, H float64
}

// TwoColumn is the US Letter resume template: a wide main column and a
// narrow sidebar, both ten inches tall.
func TwoColumn() []Frame {
	return []Frame{
		{ID: "main", X: 0.75 * inch, Y: 0.5 * inch, W: 4.5 * inch, H: 10 * inch},
		{ID: "sidebar", X: 5.55 * inch, Y: 0.5 * inch, W: 2.5 * inch, H: 10 * inch},
	}
}
