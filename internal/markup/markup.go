// Package markup reads the small HTML subset admins use in resume text
// (p, ul/ol, li, b/strong, i/em, br) into a flat list of blocks.
package markup

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/net/html"

	"portfolio/internal/content"
)

var ErrMalformed = errors.New("markup: malformed input")

type BlockKind int

const (
	Paragraph BlockKind = iota
	ListItem
)

func (k BlockKind) String() string {
	if k == ListItem {
		return "list-item"
	}
	return "paragraph"
}

// Inline is a run of text with emphasis, or a line break.
type Inline struct {
	Text   string
	Bold   bool
	Italic bool
	Break  bool
}

type Block struct {
	Kind    BlockKind
	Inlines []Inline
}

// Text concatenates the block's text, rendering breaks as newlines.
func (b Block) Text() string {
	var sb strings.Builder
	for _, in := range b.Inlines {
		if in.Break {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(in.Text)
	}
	return sb.String()
}

type parser struct {
	blocks  []Block
	pending []Inline
	bold    int
	italic  int
}

// Parse converts src into blocks. Unsupported tags are dropped and their
// text kept. A closing emphasis tag with no opener, or a tokenizer error,
// yields ErrMalformed.
func Parse(src string) ([]Block, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	p := &parser{}
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				p.flush(Paragraph)
				return p.blocks, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformed, z.Err())
		case html.TextToken:
			p.text(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			p.start(string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			if err := p.end(string(name)); err != nil {
				return nil, err
			}
		}
	}
}

func (p *parser) start(tag string) {
	switch tag {
	case "ul", "ol":
		p.flush(Paragraph)
	case "br":
		p.pending = append(p.pending, Inline{Break: true})
	case "strong", "b":
		p.bold++
	case "em", "i":
		p.italic++
	}
}

func (p *parser) end(tag string) error {
	switch tag {
	case "li":
		p.flush(ListItem)
	case "p":
		p.flush(Paragraph)
	case "strong", "b":
		if p.bold == 0 {
			return fmt.Errorf("%w: unexpected </%s>", ErrMalformed, tag)
		}
		p.bold--
	case "em", "i":
		if p.italic == 0 {
			return fmt.Errorf("%w: unexpected </%s>", ErrMalformed, tag)
		}
		p.italic--
	}
	return nil
}

func (p *parser) text(s string) {
	if s == "" {
		return
	}
	in := Inline{Text: s, Bold: p.bold > 0, Italic: p.italic > 0}
	if n := len(p.pending); n > 0 {
		last := &p.pending[n-1]
		if !last.Break && last.Bold == in.Bold && last.Italic == in.Italic {
			last.Text += s
			return
		}
	}
	p.pending = append(p.pending, in)
}

// flush emits the pending inlines as one block, trimming its edges and
// dropping it when nothing but whitespace remains.
func (p *parser) flush(kind BlockKind) {
	inlines := p.pending
	p.pending = nil

	for len(inlines) > 0 && !inlines[0].Break && strings.TrimSpace(inlines[0].Text) == "" {
		inlines = inlines[1:]
	}
	for len(inlines) > 0 && !inlines[len(inlines)-1].Break && strings.TrimSpace(inlines[len(inlines)-1].Text) == "" {
		inlines = inlines[:len(inlines)-1]
	}
	hasText := false
	for _, in := range inlines {
		if !in.Break && strings.TrimSpace(in.Text) != "" {
			hasText = true
			break
		}
	}
	if !hasText {
		return
	}
	inlines[0].Text = strings.TrimLeft(inlines[0].Text, " \t\r\n")
	last := len(inlines) - 1
	inlines[last].Text = strings.TrimRight(inlines[last].Text, " \t\r\n")
	p.blocks = append(p.blocks, Block{Kind: kind, Inlines: inlines})
}

// Blocks is Parse that never fails: malformed input degrades to a single
// plain paragraph of the stripped text.
func Blocks(src string) []Block {
	blocks, err := Parse(src)
	if err == nil {
		return blocks
	}
	log.Printf("WARN: [Markup] falling back to plain text: %v", err)
	plain := content.StripTags(src)
	if plain == "" {
		return nil
	}
	return []Block{{Kind: Paragraph, Inlines: []Inline{{Text: plain}}}}
}
