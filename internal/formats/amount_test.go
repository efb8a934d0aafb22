package formats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountFormats(t *testing.T) {
	tests := []struct {
		format string
		input  string
		want   string
		ok     bool
	}{
		{AmountPlain, "1,234.56", "1234.56", true},
		{AmountPlain, "-1,234.56", "-1234.56", true},
		{AmountPlain, "1,234.56-", "-1234.56", true},
		{AmountPlain, "0.01", "0.01", true},
		{AmountPlain, "£1.00", "", false},
		{AmountPlain, "1234.56", "", false}, // thousands need grouping commas
		{AmountPlain, "1,234.5", "", false},
		{AmountCurrency, "£1,234.56", "1234.56", true},
		{AmountCurrency, "-$500.00", "-500.00", true},
		{AmountCurrency, "€99.99-", "-99.99", true},
		{AmountCurrency, "1,234.56", "", false},
		{AmountCreditDebit, "123.45 CR", "123.45", true},
		{AmountCreditDebit, "123.45 DR", "-123.45", true},
		{AmountCreditDebit, "£1,000.00 dr", "-1000.00", true},
		{AmountCreditDebit, "123.45", "", false},
		{AmountNil, "Nil", "0", true},
		{AmountNil, "nil", "0", true},
		{AmountNil, "0.00", "", false},
	}
	for _, tt := range tests {
		f, found := AmountFormatByName(tt.format)
		require.True(t, found, tt.format)
		got, ok := f.Parse(tt.input)
		assert.Equal(t, tt.ok, ok, "%s %q", tt.format, tt.input)
		if tt.ok {
			want := decimal.RequireFromString(tt.want)
			assert.True(t, got.Equal(want), "%s %q: got %s", tt.format, tt.input, got)
		}
	}
}

func TestNewMultiAmountRejectsUnknownName(t *testing.T) {
	_, err := NewMultiAmount([]string{"sheep"})
	var unknown *UnknownFormatError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "amount", unknown.Kind)
}

func TestMultiAmountDispatch(t *testing.T) {
	m, err := NewMultiAmount([]string{AmountPlain, AmountCreditDebit, AmountNil})
	require.NoError(t, err)
	assert.Equal(t, 2, m.MaxTokens())

	got, ok := m.Parse("2,000.00 DR")
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("-2000.00")))

	got, ok = m.Parse("Nil")
	require.True(t, ok)
	assert.True(t, got.IsZero())

	_, ok = m.Parse("not money")
	assert.False(t, ok)
}
