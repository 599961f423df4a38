package resume

// Flowable is one unit placed into a frame in sequence.
type Flowable interface {
	flowable()
}

// Span is a run of text inside a paragraph.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Break  bool
	Symbol bool
	Link   string
}

type Paragraph struct {
	Style *Style
	Spans []Span
}

type Spacer struct {
	Height float64
}

type Picture struct {
	Name string
	Data []byte
	W, H float64
}

// FrameBreak moves the flow to the next frame.
type FrameBreak struct{}

func (*Paragraph) flowable() {}
func (*Spacer) flowable()    {}
func (*Picture) flowable()   {}
func (FrameBreak) flowable() {}

func para(st *Style, text string) *Paragraph {
	return &Paragraph{Style: st, Spans: []Span{{Text: text}}}
}

func boldPara(st *Style, text string) *Paragraph {
	return &Paragraph{Style: st, Spans: []Span{{Text: text, Bold: true}}}
}
