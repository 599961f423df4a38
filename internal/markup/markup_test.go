package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParagraphsAndLists(t *testing.T) {
	blocks, err := Parse(`<p>Led the <strong>platform</strong> team.</p>
<ul>
  <li>Cut costs by <em>40%</em></li>
  <li>Shipped &amp; supported v2</li>
</ul>`)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, Paragraph, blocks[0].Kind)
	assert.Equal(t, []Inline{
		{Text: "Led the "},
		{Text: "platform", Bold: true},
		{Text: " team."},
	}, blocks[0].Inlines)

	assert.Equal(t, ListItem, blocks[1].Kind)
	assert.Equal(t, []Inline{{Text: "Cut costs by "}, {Text: "40%", Italic: true}}, blocks[1].Inlines)
	assert.Equal(t, ListItem, blocks[2].Kind)
	assert.Equal(t, "Shipped & supported v2", blocks[2].Text())
}

func TestParseLineBreaks(t *testing.T) {
	blocks, err := Parse("<p>one<br>two<br/>three</p>")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "one\ntwo\nthree", blocks[0].Text())
}

func TestParseDropsUnsupportedTagsKeepsText(t *testing.T) {
	blocks, err := Parse(`<p>See <a href="https://x.test">the <span class="k">site</span></a> <u>now</u></p><h2>Heading</h2>`)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "See the site now", blocks[0].Text())
	assert.Equal(t, Paragraph, blocks[1].Kind)
	assert.Equal(t, "Heading", blocks[1].Text())
}

func TestParseFlushesBeforeListAndAtEnd(t *testing.T) {
	blocks, err := Parse("Intro text<ul><li>a</li><li>  </li></ul>trailing")
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Intro text", blocks[0].Text())
	assert.Equal(t, ListItem, blocks[1].Kind)
	assert.Equal(t, "trailing", blocks[2].Text())
}

func TestParseEmpty(t *testing.T) {
	blocks, err := Parse("   ")
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestParseRejectsStrayClosingEmphasis(t *testing.T) {
	_, err := Parse("<p>oops</b> text</p>")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestBlocksFallsBackToPlainText(t *testing.T) {
	blocks := Blocks("<p>oops</b> <i>text</i></p>")
	require.Len(t, blocks, 1)
	assert.Equal(t, Paragraph, blocks[0].Kind)
	assert.Equal(t, "oops text", blocks[0].Text())
}

func TestBlockKindString(t *testing.T) {
	assert.Equal(t, "paragraph", Paragraph.String())
	assert.Equal(t, "list-item", ListItem.String())
}
