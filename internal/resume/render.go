package resume

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

type pdfMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (m *pdfMeasurer) Width(f Font, size float64, text string) float64 {
	m.pdf.SetFont(f.Family, f.style(), size)
	if f.Family != symbolFamily {
		text = m.tr(text)
	}
	return m.pdf.GetStringWidth(text)
}

// newDocument returns a Letter page document using points, with automatic
// page breaks off since the layout engine places every line itself.
// Text uses the core Helvetica fonts through a cp1252 translator, so runes
// outside Windows-1252 (Ł, Ż, CJK, ...) are printed as ".".
func newDocument(title, author string) (*fpdf.Fpdf, *pdfMeasurer) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(author, true)
	pdf.SetCreator("portfolio", true)
	return pdf, &pdfMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func render(pdf *fpdf.Fpdf, m *pdfMeasurer, l *Layout) ([]byte, error) {
	byPage := make([][]Item, l.Pages)
	for _, it := range l.Items {
		byPage[it.Page] = append(byPage[it.Page], it)
	}
	for _, items := range byPage {
		pdf.AddPage()
		for _, it := range items {
			if it.Picture != nil {
				drawPicture(pdf, it)
				continue
			}
			drawLine(pdf, m, it)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawLine(pdf *fpdf.Fpdf, m *pdfMeasurer, it Item) {
	st := it.Style
	baseline := it.Y + st.Leading/2 + 0.35*st.Size
	pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
	for _, f := range it.Line.Frags {
		text := f.Text
		if f.Font.Family != symbolFamily {
			text = m.tr(text)
		}
		pdf.SetFont(f.Font.Family, f.Font.style(), f.Size)
		pdf.Text(it.X+f.X, baseline, text)
		if f.Link != "" {
			pdf.LinkString(it.X+f.X, it.Y, f.Width, it.Height, f.Link)
		}
	}
}

func drawPicture(pdf *fpdf.Fpdf, it Item) {
	p := it.Picture
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	if info := pdf.GetImageInfo(p.Name); info == nil {
		pdf.RegisterImageOptionsReader(p.Name, opt, bytes.NewReader(p.Data))
	}
	pdf.ImageOptions(p.Name, it.X, it.Y, p.W, p.H, false, opt, 0, "")
}
