package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/transtractor/internal/fragment"
	"github.com/insightdelivered/transtractor/internal/quality"
)

const customDoc = `{
  "key": "gb__custom__current__1",
  "bank_name": "Custom Bank",
  "account_type": "current",
  "account_terms": ["Custom Bank"],
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
    "date": {"kind": "column", "x1": [10, 90], "formats": ["day-month"]},
    "description": {"kind": "column", "x1": [90, 300]},
    "amount": {"kind": "column", "x1": [300, 460], "formats": ["plain"]},
    "balance": {"kind": "column", "x1": [460, 600], "formats": ["plain"]}
  }
}`

func frag(text string, x1, x2, y int) fragment.Fragment {
	return fragment.New(text, x1, y, x2, y-10, 0)
}

func customStatement() []fragment.Fragment {
	return []fragment.Fragment{
		frag("Custom", 10, 50, 10), frag("Bank", 55, 80, 10),
		frag("Account", 10, 60, 20), frag("number", 65, 100, 20), frag("12345678", 110, 170, 20),
		frag("Statement", 10, 70, 40), frag("from", 75, 100, 40),
		frag("1", 110, 115, 40), frag("December", 120, 180, 40), frag("2020", 185, 215, 40),
		frag("Opening", 10, 60, 60), frag("balance", 65, 100, 60), frag("100.00", 460, 520, 60),
		frag("Money", 10, 50, 80), frag("out", 55, 75, 80),
		frag("2", 20, 25, 100), frag("Dec", 30, 50, 100),
		frag("COFFEE", 100, 160, 100), frag("10.00", 320, 360, 100), frag("90.00", 470, 520, 100),
		frag("3", 20, 25, 120), frag("Dec", 30, 50, 120),
		frag("TEA", 100, 130, 120), frag("5.00", 320, 350, 120), frag("85.00", 470, 520, 120),
		frag("Totals", 10, 60, 140),
		frag("Closing", 10, 60, 160), frag("balance", 65, 100, 160), frag("85.00", 460, 520, 160),
	}
}

func TestNewSeedsBuiltinKeys(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	keys := p.Keys()
	assert.Contains(t, keys, "gb__metro__current__1")
	assert.Contains(t, keys, "gb__hsbc__current__1")
	assert.Contains(t, keys, "gb__barclays__business__1")
}

func TestIdentifyBuiltinFormat(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	frags := []fragment.Fragment{
		frag("Metro", 10, 50, 10), frag("Bank", 55, 80, 10),
		frag("Account", 10, 60, 20), frag("number", 65, 100, 20),
	}
	assert.Equal(t, []string{"gb__metro__current__1"}, p.Identify(frags))
}

func TestLoadJSONAndParse(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, p.LoadJSON([]byte(customDoc)))
	assert.Contains(t, p.Keys(), "gb__custom__current__1")

	data, err := p.Parse(customStatement())
	require.NoError(t, err)
	assert.Equal(t, "gb__custom__current__1", data.Key)
	assert.Equal(t, "12345678", data.AccountNumber)
	require.Len(t, data.Transactions, 2)
	assert.Equal(t, "COFFEE", data.Transactions[0].Description)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(customDoc), 0o644))

	p, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, p.Load(path))
	assert.Contains(t, p.Keys(), "gb__custom__current__1")
}

func TestParseUnknownFormat(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	frags := []fragment.Fragment{
		frag("Utility", 10, 60, 10), frag("invoice", 65, 120, 10),
	}
	_, err = p.Parse(frags)
	var notSupported *quality.NotSupportedError
	assert.ErrorAs(t, err, &notSupported)
}

func TestDebugReportsCandidates(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, p.LoadJSON([]byte(customDoc)))

	report, err := p.Debug(customStatement())
	require.NoError(t, err)
	assert.Contains(t, report, "gb__custom__current__1")
	assert.Contains(t, report, "result: clean")
}

func TestLayoutRendersBlocks(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	text := p.Layout(customStatement(), 6, 0)
	assert.Contains(t, text, `["Custom",10,50,10,0]`)
}
