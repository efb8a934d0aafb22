package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/transtractor/internal/config"
	"github.com/insightdelivered/transtractor/internal/fragment"
)

const testDoc = `{
  "key": "gb__testbank__current__1",
  "bank_name": "Test Bank",
  "account_type": "current",
  "account_terms": ["Test Bank"],
  "y_bin": 6,
  "account_number": {
    "terms": ["Account number"],
    "pattern": "^\\d{8}$"
  },
  "opening_balance": {
    "terms": ["Opening balance"],
    "formats": ["plain"]
  },
  "closing_balance": {
    "terms": ["Closing balance"],
    "formats": ["plain"]
  },
  "start_date": {
    "terms": ["Statement from"],
    "formats": ["day-month-year"]
  },
  "transactions": {
    "start_terms": ["Money out"],
    "stop_terms": ["Totals"],
    "implicit_date": true,
    "date": {
      "kind": "column",
      "x1": [10, 90],
      "formats": ["day-month"]
    },
    "description": {
      "kind": "column",
      "x1": [90, 300]
    },
    "amount": {
      "kind": "column",
      "x1": [300, 460],
      "formats": ["plain"]
    },
    "balance": {
      "kind": "column",
      "x1": [460, 600],
      "formats": ["plain"]
    }
  }
}`

// frag places a token in a top-down coordinate space.
func frag(text string, x1, x2, y int) fragment.Fragment {
	return fragment.New(text, x1, y, x2, y-10, 0)
}

// statementFragments is a small statement that exercises implicit dates,
// multi-line descriptions, unsigned debits and a year crossover.
func statementFragments() []fragment.Fragment {
	return []fragment.Fragment{
		frag("Test", 10, 40, 20), frag("Bank", 45, 80, 20),
		frag("Account", 10, 60, 40), frag("number", 65, 100, 40), frag("12345678", 110, 170, 40),
		frag("Statement", 10, 70, 60), frag("from", 75, 100, 60),
		frag("1", 110, 115, 60), frag("December", 120, 180, 60), frag("2020", 185, 215, 60),
		frag("Opening", 10, 60, 80), frag("balance", 65, 100, 80), frag("100.00", 460, 520, 80),
		frag("Money", 10, 50, 100), frag("out", 55, 75, 100),
		frag("2", 20, 25, 120), frag("Dec", 30, 50, 120),
		frag("COFFEE", 100, 160, 120), frag("10.00", 320, 360, 120), frag("90.00", 470, 520, 120),
		frag("LATTE", 100, 140, 140), frag("EXTRA", 150, 190, 140),
		frag("TEA", 100, 130, 160), frag("5.00", 320, 350, 160), frag("85.00", 470, 520, 160),
		frag("3", 20, 25, 180), frag("Jan", 30, 50, 180),
		frag("BOOK", 100, 140, 180), frag("20.00", 320, 360, 180), frag("65.00", 470, 520, 180),
		frag("Totals", 10, 60, 200),
		frag("Closing", 10, 60, 220), frag("balance", 65, 100, 220), frag("65.00", 460, 520, 220),
	}
}

func testDescriptor(t *testing.T) *config.Descriptor {
	t.Helper()
	d, err := config.FromJSON([]byte(testDoc))
	require.NoError(t, err)
	return d
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestExtractFullStatement(t *testing.T) {
	ex, err := Extract(statementFragments(), testDescriptor(t))
	require.NoError(t, err)

	assert.Equal(t, "gb__testbank__current__1", ex.Key)
	assert.Equal(t, "12345678", ex.AccountNumber)
	assert.True(t, ex.StartDate.Equal(time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, ex.OpeningBalance)
	assert.True(t, ex.OpeningBalance.Equal(money("100.00")))
	require.NotNil(t, ex.ClosingBalance)
	assert.True(t, ex.ClosingBalance.Equal(money("65.00")))

	require.Len(t, ex.Transactions, 3)
	first := ex.Transactions[0]
	assert.True(t, first.Date.Equal(time.Date(2020, time.December, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "COFFEE LATTE EXTRA", first.Description)
	assert.True(t, first.Amount.Equal(money("-10.00")), "debit sign recovered from balance walk, got %s", first.Amount)
	assert.True(t, first.Balance.Equal(money("90.00")))
}

func TestExtractImplicitDateInheritsPrevious(t *testing.T) {
	ex, err := Extract(statementFragments(), testDescriptor(t))
	require.NoError(t, err)
	require.Len(t, ex.Transactions, 3)
	second := ex.Transactions[1]
	assert.True(t, second.Date.Equal(ex.Transactions[0].Date))
	assert.Equal(t, "TEA", second.Description)
	assert.True(t, second.Amount.Equal(money("-5.00")))
}

func TestExtractYearCrossover(t *testing.T) {
	ex, err := Extract(statementFragments(), testDescriptor(t))
	require.NoError(t, err)
	require.Len(t, ex.Transactions, 3)
	// "3 Jan" on a December statement belongs to the following year.
	third := ex.Transactions[2]
	assert.True(t, third.Date.Equal(time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC)))
}

func TestExtractDateIndices(t *testing.T) {
	ex, err := Extract(statementFragments(), testDescriptor(t))
	require.NoError(t, err)
	require.Len(t, ex.Transactions, 3)
	assert.Equal(t, 0, ex.Transactions[0].DateIndex)
	assert.Equal(t, 1, ex.Transactions[1].DateIndex) // same day as the first
	assert.Equal(t, 0, ex.Transactions[2].DateIndex)
}

func TestExtractFieldMatchesForDebug(t *testing.T) {
	ex, err := Extract(statementFragments(), testDescriptor(t))
	require.NoError(t, err)
	require.Len(t, ex.FieldMatches, 4)
	byField := map[string]FieldMatch{}
	for _, m := range ex.FieldMatches {
		byField[m.Field] = m
	}
	assert.True(t, byField["account_number"].Found)
	assert.Equal(t, "12345678", byField["account_number"].Value)
	assert.True(t, byField["start_date"].Found)
	assert.Equal(t, "2020-12-01", byField["start_date"].Value)
	assert.Equal(t, "100.00", byField["opening_balance"].Value)
}

func TestExtractStructuralErrorOnMissingRequiredField(t *testing.T) {
	frags := []fragment.Fragment{
		frag("Money", 10, 50, 20), frag("out", 55, 75, 20),
		// Balance resolves but the amount column is empty.
		frag("2", 20, 25, 40), frag("Dec", 30, 50, 40),
		frag("GHOST", 100, 140, 40), frag("90.00", 470, 520, 40),
	}
	_, err := Extract(frags, testDescriptor(t))
	require.Error(t, err)
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, []string{"amount"}, structural.Missing)
	assert.Contains(t, structural.Line, "GHOST")
}

func TestExtractTermsOnlyDescriptor(t *testing.T) {
	doc := `{
	  "key": "gb__minimal__current__1",
	  "bank_name": "Minimal",
	  "account_type": "current",
	  "account_terms": ["Minimal Bank"]
	}`
	d, err := config.FromJSON([]byte(doc))
	require.NoError(t, err)
	ex, err := Extract(statementFragments(), d)
	require.NoError(t, err)
	assert.Empty(t, ex.Transactions)
	assert.Empty(t, ex.FieldMatches)
}

func TestExtractFillsBalancesWhenStatementPrintsNone(t *testing.T) {
	d := testDescriptor(t)
	d.Transactions.Balance = nil
	d.Transactions.Required = []string{"date", "amount"}
	ex, err := Extract(statementFragments(), d)
	require.NoError(t, err)
	require.Len(t, ex.Transactions, 3)
	// Running balance from the opening balance, never a made-up zero.
	assert.Equal(t, "110.00", ex.Transactions[0].Balance.StringFixed(2))
	assert.Equal(t, "115.00", ex.Transactions[1].Balance.StringFixed(2))
	assert.Equal(t, "135.00", ex.Transactions[2].Balance.StringFixed(2))
}

func TestExtractMissingBalancesWithoutOpeningAnchorFails(t *testing.T) {
	d := testDescriptor(t)
	d.Transactions.Balance = nil
	d.Transactions.Required = []string{"date", "amount"}
	d.OpeningBalance = nil
	_, err := Extract(statementFragments(), d)
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, []string{"balance"}, structural.Missing)
	assert.Contains(t, structural.Line, "COFFEE")
}

func TestExtractWithoutSectionBoundsTripsOnHeaderRows(t *testing.T) {
	d := testDescriptor(t)
	d.Transactions.StartTerms = nil
	d.Transactions.StopTerms = nil
	// The opening balance row now matches the record shape (its balance
	// column resolves) but has no amount, so the candidate fails instead
	// of silently swallowing a header row.
	_, err := Extract(statementFragments(), d)
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, []string{"amount"}, structural.Missing)
}
