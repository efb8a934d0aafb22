package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokeniseSplitsOnWhitespace(t *testing.T) {
	frags := []Fragment{
		New("Opening Balance", 10, 100, 80, 110, 0),
		New("1,234.56", 90, 100, 130, 110, 0),
	}
	tokens := Tokenise(frags)
	assert.Len(t, tokens, 3)
	assert.Equal(t, "Opening", tokens[0].Text)
	assert.Equal(t, "Balance", tokens[1].Text)
	assert.Equal(t, "1,234.56", tokens[2].Text)
	// Words of the same fragment carry the fragment's position.
	assert.Equal(t, tokens[0].X1, tokens[1].X1)
	assert.Equal(t, 0, tokens[0].Page)
}

func TestMergeJoinsTextAndExtendsBox(t *testing.T) {
	a := New("24", 10, 100, 22, 110, 0)
	b := New("Mar", 26, 100, 44, 110, 0)
	merged := a.Merge(b)
	assert.Equal(t, "24 Mar", merged.Text)
	assert.Equal(t, 10, merged.X1)
	assert.Equal(t, 44, merged.X2)
}

func TestBuffer(t *testing.T) {
	frags := Tokenise([]Fragment{New("a b c d", 0, 0, 40, 10, 0)})

	assert.Len(t, Buffer(frags, 0, 2), 2)
	assert.Len(t, Buffer(frags, 3, 5), 1)
	assert.Nil(t, Buffer(frags, 4, 1))
}

func TestPhrase(t *testing.T) {
	frags := []Fragment{
		New("Metro", 0, 0, 30, 10, 0),
		New("Bank", 35, 0, 60, 10, 0),
	}
	assert.Equal(t, "Metro Bank", Phrase(frags))
	assert.Equal(t, "", Phrase(nil))
}

func TestLayoutBlock(t *testing.T) {
	f := New(`say "hi"`, 1, 2, 3, 4, 0)
	assert.Equal(t, `["say \"hi\"",1,3,2,4]`, f.LayoutBlock())
}

func TestAverageCharWidth(t *testing.T) {
	f := New("abcd", 0, 0, 20, 10, 0)
	assert.InDelta(t, 5.0, f.AverageCharWidth(), 1e-9)
	assert.Zero(t, New("", 0, 0, 20, 10, 0).AverageCharWidth())
}
