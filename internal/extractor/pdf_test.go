package extractor

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/transtractor/internal/fragment"
)

func TestSplitRunApportionsWordPositions(t *testing.T) {
	run := pdf.Text{S: "Opening balance", X: 100, Y: 700, W: 150, FontSize: 10}
	frags := splitRun(run, 0)
	require.Len(t, frags, 2)

	assert.Equal(t, "Opening", frags[0].Text)
	assert.Equal(t, 100, frags[0].X1)
	assert.Equal(t, 170, frags[0].X2) // 7 chars at 10 units each
	assert.Equal(t, 700, frags[0].Y1)
	assert.Equal(t, 710, frags[0].Y2)

	assert.Equal(t, "balance", frags[1].Text)
	assert.Equal(t, 180, frags[1].X1)
	assert.Equal(t, 250, frags[1].X2)
	assert.Equal(t, 0, frags[1].Page)
}

func TestSplitRunSingleWord(t *testing.T) {
	run := pdf.Text{S: "123.45", X: 10, Y: 20, W: 30, FontSize: 8}
	frags := splitRun(run, 3)
	require.Len(t, frags, 1)
	assert.Equal(t, "123.45", frags[0].Text)
	assert.Equal(t, 3, frags[0].Page)
}

func words(texts ...string) []fragment.Fragment {
	frags := make([]fragment.Fragment, len(texts))
	for i, s := range texts {
		frags[i] = fragment.New(s, i*10, 0, i*10+8, 10, 0)
	}
	return frags
}

func TestReadableAcceptsStatementText(t *testing.T) {
	frags := words("Metro", "Bank", "statement", "Opening", "balance",
		"1,234.56", "Account", "number", "12345678", "transaction", "history")
	_, ok := readable(frags)
	assert.True(t, ok)
}

func TestReadableRejectsTooLittleText(t *testing.T) {
	reason, ok := readable(words("bank"))
	assert.False(t, ok)
	assert.Contains(t, reason, "too little")
}

func TestReadableRejectsGarbage(t *testing.T) {
	garbage := strings.Repeat("�☃", 20)
	reason, ok := readable(words(garbage, garbage, garbage))
	assert.False(t, ok)
	assert.Contains(t, reason, "undecodable")
}

func TestReadableRejectsUnrecognisableVocabulary(t *testing.T) {
	frags := words("lorem", "ipsum", "dolor", "sit", "amet", "consectetur",
		"adipiscing", "elit", "sed", "eiusmod", "tempor")
	reason, ok := readable(frags)
	assert.False(t, ok)
	assert.Contains(t, reason, "vocabulary")
}
