package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDoc = `{
  "key": "gb__testbank__current__1",
  "bank_name": "Test Bank",
  "account_type": "current",
  "account_terms": ["Test Bank"]
}`

const fullDoc = `{
  "key": "gb__testbank__current__2",
  "bank_name": "Test Bank",
  "account_type": "current",
  "account_terms": ["Test Bank", "Account number"],
  "account_terms_match": "any",
  "y_bin": 6,
  "x_gap": 1.5,
  "account_number": {
    "terms": ["Account number"],
    "pattern": "^\\d{8}$"
  },
  "opening_balance": {
    "terms": ["Opening balance"],
    "formats": ["plain"]
  },
  "transactions": {
    "start_terms": ["Money out"],
    "stop_terms": ["Closing balance"],
    "implicit_date": true,
    "date": {
      "kind": "column",
      "x1": [10, 90],
      "formats": ["day-month"]
    },
    "description": {
      "kind": "column",
      "x1": [90, 300],
      "exclude": ["^Continued$"]
    },
    "amount": {
      "kind": "column",
      "x1": [300, 460],
      "formats": ["plain"],
      "invert": true
    },
    "balance": {
      "kind": "column",
      "x1": [460, 600],
      "formats": ["plain"]
    }
  }
}`

func TestFromJSONDefaults(t *testing.T) {
	d, err := FromJSON([]byte(minimalDoc))
	require.NoError(t, err)
	assert.Equal(t, MatchAll, d.TermsMatch)
	assert.True(t, d.CheckBalances)
	assert.Nil(t, d.AccountNumber)
	assert.Empty(t, d.Transactions.Required)
}

func TestFromJSONFullDocument(t *testing.T) {
	d, err := FromJSON([]byte(fullDoc))
	require.NoError(t, err)
	assert.Equal(t, MatchAny, d.TermsMatch)
	assert.Equal(t, 6.0, d.YBin)
	require.NotNil(t, d.AccountNumber)
	assert.Equal(t, 8, d.AccountNumber.Window) // default window
	require.NotNil(t, d.Transactions.Amount)
	assert.True(t, d.Transactions.Amount.Invert)
	assert.Equal(t, RuleColumn, d.Transactions.Amount.Kind)
	assert.True(t, d.Transactions.Amount.X1.Contains(350))
	assert.False(t, d.Transactions.Amount.X1.Contains(299))
	assert.True(t, d.Transactions.ImplicitDate)
	assert.Equal(t, "derived", d.Transactions.DateIndex)
	// Required defaults when transaction rules exist.
	assert.Equal(t, []string{"date", "amount", "balance"}, d.Transactions.Required)
	require.Len(t, d.Transactions.Description.Exclude, 1)
}

func TestFromJSONRejectsUnknownFields(t *testing.T) {
	doc := `{"key": "gb__x__y__1", "bank_name": "X", "account_terms": ["X"], "colour": "red"}`
	_, err := FromJSON([]byte(doc))
	require.Error(t, err)
	var le *LoadError
	assert.ErrorAs(t, err, &le)
}

func TestFromJSONKeyValidation(t *testing.T) {
	bad := []string{
		"",
		"gb__bank__current",          // missing version
		"GB__bank__current__1",       // uppercase
		"zz__bank__current__1",       // bad country code
		"gb__bank__current__0",       // version must be positive
		"gb__bank__current__one",     // version must be numeric
		"gb__bank__current current__1", // whitespace is illegal anywhere
		"gb____current__1",           // empty bank component
	}
	for _, key := range bad {
		doc := `{"key": ` + quote(key) + `, "bank_name": "X", "account_terms": ["X"]}`
		_, err := FromJSON([]byte(doc))
		assert.Error(t, err, "key %q should be rejected", key)
	}

	good := `{"key": "fr__banque__compte__12", "bank_name": "Banque", "account_terms": ["Banque"]}`
	_, err := FromJSON([]byte(good))
	assert.NoError(t, err)
}

func quote(s string) string {
	return `"` + s + `"`
}

func TestFromJSONRuleValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no account terms", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": []}`},
		{"blank account term", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": [" "]}`},
		{"bad terms match", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"], "account_terms_match": "most"}`},
		{"negative y_bin", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"], "y_bin": -1}`},
		{"account number without pattern", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"],
			"account_number": {"terms": ["No"]}}`},
		{"balance rule without formats", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"],
			"opening_balance": {"terms": ["Opening"]}}`},
		{"unknown amount format", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"],
			"opening_balance": {"terms": ["Opening"], "formats": ["roman"]}}`},
		{"unknown date_index source", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"],
			"transactions": {"date_index": "printed"}}`},
		{"unknown required field", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"],
			"transactions": {"required": ["description"], "amount": {"kind": "column", "formats": ["plain"]}}}`},
		{"bad range", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"],
			"transactions": {"amount": {"kind": "column", "x1": [100, 50], "formats": ["plain"]}}}`},
		{"bad rule kind", `{"key": "gb__b__c__1", "bank_name": "B", "account_terms": ["B"],
			"transactions": {"amount": {"kind": "row", "formats": ["plain"]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.doc))
			require.Error(t, err)
			var le *LoadError
			assert.ErrorAs(t, err, &le)
		})
	}
}

func TestFieldRuleSelectVariants(t *testing.T) {
	d, err := FromJSON([]byte(fullDoc))
	require.NoError(t, err)

	tokens := tokensAt(t, []tok{
		{"24 Mar", 20, 80},
		{"COFFEE SHOP", 95, 250},
		{"4.50", 320, 360},
		{"995.50", 470, 520},
	})
	assert.Equal(t, "24 Mar", selectedText(d.Transactions.Date, tokens))
	assert.Equal(t, "COFFEE SHOP", selectedText(d.Transactions.Description, tokens))
	assert.Equal(t, "4.50", selectedText(d.Transactions.Amount, tokens))
	assert.Equal(t, "995.50", selectedText(d.Transactions.Balance, tokens))

	// Excluded description noise is dropped.
	noisy := tokensAt(t, []tok{{"Continued", 95, 150}})
	assert.Equal(t, "", selectedText(d.Transactions.Description, noisy))
}
