package resume

import (
	"strings"
	"unicode"
)

// Font selects a core PDF font.
type Font struct {
	Family string
	Bold   bool
	Italic bool
}

func (f Font) style() string {
	if f.Family == symbolFamily {
		return ""
	}
	s := ""
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	return s
}

// Measurer reports the advance width of text in points.
type Measurer interface {
	Width(f Font, size float64, text string) float64
}

type Frag struct {
	X     float64
	Text  string
	Font  Font
	Size  float64
	Width float64
	Link  string
}

type Line struct {
	Width float64
	Frags []Frag
}

// Item is something placed on a page. X and Y are the top-left corner in
// page coordinates.
type Item struct {
	Page    int
	Frame   string
	X, Y    float64
	Height  float64
	Style   *Style
	Line    *Line
	Picture *Picture
}

// Continuation records a frame that ran out of room and resumed on a new page.
type Continuation struct {
	Frame string
	Page  int
}

type Layout struct {
	Pages         int
	Items         []Item
	Continuations []Continuation
}

type word struct {
	frags []Frag
	width float64
	space bool
	brk   bool
}

type Engine struct {
	Frames  []Frame
	Measure Measurer
}

type flowState struct {
	frame int
	page  int
	y     float64
	fresh bool
	first int
	out   *Layout
}

// Lay places the flowables into the engine's frames. Each frame flows
// downward; when it is full the same frame continues on the next page.
func (e *Engine) Lay(flow []Flowable) *Layout {
	st := &flowState{fresh: true, out: &Layout{Pages: 1}}
	for _, f := range flow {
		switch v := f.(type) {
		case FrameBreak:
			e.nextFrame(st)
		case *Spacer:
			if v.Height <= 0 {
				continue
			}
			st.y += v.Height
			if h := e.Frames[st.frame].H; st.y > h {
				st.y = h
			}
			st.fresh = false
		case *Picture:
			e.placePicture(st, v)
		case *Paragraph:
			e.placeParagraph(st, v)
		}
	}
	return st.out
}

func (e *Engine) nextFrame(st *flowState) {
	st.frame++
	if st.frame >= len(e.Frames) {
		st.frame = 0
		st.first = st.out.Pages
		st.out.Pages++
	}
	st.page = st.first
	st.y = 0
	st.fresh = true
}

func (e *Engine) continueFrame(st *flowState) {
	st.page++
	if st.page >= st.out.Pages {
		st.out.Pages = st.page + 1
	}
	st.y = 0
	st.fresh = true
	st.out.Continuations = append(st.out.Continuations, Continuation{Frame: e.Frames[st.frame].ID, Page: st.page + 1})
}

func (e *Engine) placePicture(st *flowState, p *Picture) {
	fr := e.Frames[st.frame]
	if st.y+p.H > fr.H && !st.fresh {
		e.continueFrame(st)
	}
	st.out.Items = append(st.out.Items, Item{
		Page: st.page, Frame: fr.ID,
		X: fr.X, Y: fr.Y + st.y, Height: p.H,
		Picture: p,
	})
	st.y += p.H
	st.fresh = false
}

func (e *Engine) placeParagraph(st *flowState, p *Paragraph) {
	s := p.Style
	fr := e.Frames[st.frame]
	lines := e.Wrap(p, fr.W-s.LeftIndent)
	if len(lines) == 0 {
		return
	}
	if !st.fresh {
		st.y += s.SpaceBefore
	}
	for i := range lines {
		if st.y+s.Leading > fr.H && !st.fresh {
			e.continueFrame(st)
		}
		st.out.Items = append(st.out.Items, Item{
			Page: st.page, Frame: fr.ID,
			X: fr.X + s.LeftIndent, Y: fr.Y + st.y, Height: s.Leading,
			Style: s, Line: &lines[i],
		})
		st.y += s.Leading
		st.fresh = false
	}
	st.y += s.SpaceAfter
	if st.y > fr.H {
		st.y = fr.H
	}
}

// Wrap breaks a paragraph into lines no wider than avail. Words that are
// wider than a whole line are split between characters.
func (e *Engine) Wrap(p *Paragraph, avail float64) []Line {
	var (
		lines []Line
		cur   Line
	)
	push := func() {
		lines = append(lines, cur)
		cur = Line{}
	}
	spaceW := e.Measure.Width(Font{Family: fontFamily}, p.Style.Size, " ")
	for _, w := range e.words(p) {
		if w.brk {
			push()
			continue
		}
		gap := 0.0
		if len(cur.Frags) > 0 && w.space {
			gap = spaceW
		}
		if len(cur.Frags) > 0 && cur.Width+gap+w.width > avail {
			push()
			gap = 0
		}
		if len(cur.Frags) == 0 && w.width > avail {
			chunks := e.split(w, avail, p.Style.Size)
			for _, c := range chunks[:len(chunks)-1] {
				cur = c
				push()
			}
			cur = chunks[len(chunks)-1]
			continue
		}
		x := cur.Width + gap
		for _, f := range w.frags {
			f.X = x
			x += f.Width
			cur.Frags = append(cur.Frags, f)
		}
		cur.Width = x
	}
	if len(cur.Frags) > 0 {
		push()
	}
	return lines
}

func (e *Engine) words(p *Paragraph) []word {
	var (
		out     []word
		cur     *word
		pending bool
	)
	for _, sp := range p.Spans {
		if sp.Break {
			out = append(out, word{brk: true})
			cur = nil
			pending = false
			continue
		}
		font := Font{Family: fontFamily, Bold: p.Style.Bold || sp.Bold, Italic: sp.Italic}
		if sp.Symbol {
			font = Font{Family: symbolFamily}
		}
		text := sp.Text
		for len(text) > 0 {
			i := strings.IndexFunc(text, unicode.IsSpace)
			if i == 0 {
				text = strings.TrimLeftFunc(text, unicode.IsSpace)
				cur = nil
				pending = true
				continue
			}
			piece := text
			if i > 0 {
				piece, text = text[:i], text[i:]
			} else {
				text = ""
			}
			f := Frag{Text: piece, Font: font, Size: p.Style.Size, Link: sp.Link}
			f.Width = e.Measure.Width(font, f.Size, piece)
			if cur == nil {
				out = append(out, word{space: pending})
				cur = &out[len(out)-1]
				pending = false
			}
			cur.frags = append(cur.frags, f)
			cur.width += f.Width
		}
	}
	return out
}

func (e *Engine) split(w word, avail, size float64) []Line {
	var (
		lines []Line
		cur   Line
	)
	for _, f := range w.frags {
		var b strings.Builder
		start := cur.Width
		flush := func() {
			if b.Len() == 0 {
				return
			}
			t := b.String()
			cur.Frags = append(cur.Frags, Frag{X: start, Text: t, Font: f.Font, Size: f.Size, Link: f.Link, Width: cur.Width - start})
			b.Reset()
		}
		for _, r := range f.Text {
			rw := e.Measure.Width(f.Font, size, string(r))
			if cur.Width+rw > avail && (len(cur.Frags) > 0 || b.Len() > 0) {
				flush()
				lines = append(lines, cur)
				cur = Line{}
				start = 0
			}
			b.WriteRune(r)
			cur.Width += rw
		}
		flush()
	}
	return append(lines, cur)
}
