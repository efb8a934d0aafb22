package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// LoadError reports a malformed descriptor document. Field names the
// offending part of the document.
type LoadError struct {
	Field  string
	Reason string
}

func (e *LoadError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("descriptor load error: %s", e.Reason)
	}
	return fmt.Sprintf("descriptor load error in %q: %s", e.Field, e.Reason)
}

func loadErrorf(field, format string, args ...any) error {
	return &LoadError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// fieldRuleDoc is the wire form of a FieldRule.
type fieldRuleDoc struct {
	Kind    string    `json:"kind"`
	X1      []float64 `json:"x1,omitempty"`
	X2      []float64 `json:"x2,omitempty"`
	Pattern string    `json:"pattern,omitempty"`
	Offset  *int      `json:"offset,omitempty"`
	Formats []string  `json:"formats,omitempty"`
	Invert  bool      `json:"invert,omitempty"`
	Exclude []string  `json:"exclude,omitempty"`
}

type valueRuleDoc struct {
	Terms   []string `json:"terms"`
	Pattern string   `json:"pattern,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Window  int      `json:"window,omitempty"`
	Invert  bool     `json:"invert,omitempty"`
}

type transactionsDoc struct {
	StartTerms   []string      `json:"start_terms,omitempty"`
	StopTerms    []string      `json:"stop_terms,omitempty"`
	Required     []string      `json:"required,omitempty"`
	Date         *fieldRuleDoc `json:"date,omitempty"`
	Description  *fieldRuleDoc `json:"description,omitempty"`
	Amount       *fieldRuleDoc `json:"amount,omitempty"`
	Balance      *fieldRuleDoc `json:"balance,omitempty"`
	ImplicitDate bool          `json:"implicit_date,omitempty"`
	DateIndex    string        `json:"date_index,omitempty"`
}

// descriptorDoc is the wire form of a Descriptor document.
type descriptorDoc struct {
	Key               string           `json:"key"`
	BankName          string           `json:"bank_name"`
	AccountType       string           `json:"account_type"`
	AccountTerms      []string         `json:"account_terms"`
	AccountTermsMatch string           `json:"account_terms_match,omitempty"`
	YBin              float64          `json:"y_bin,omitempty"`
	XGap              float64          `json:"x_gap,omitempty"`
	AccountNumber     *valueRuleDoc    `json:"account_number,omitempty"`
	OpeningBalance    *valueRuleDoc    `json:"opening_balance,omitempty"`
	ClosingBalance    *valueRuleDoc    `json:"closing_balance,omitempty"`
	StartDate         *valueRuleDoc    `json:"start_date,omitempty"`
	Transactions      *transactionsDoc `json:"transactions,omitempty"`
	CheckBalances     *bool            `json:"check_balances,omitempty"`
}

// FromJSON parses and validates a descriptor document. Any malformation
// returns a LoadError naming the offending field; no partially-valid
// descriptor is ever produced.
func FromJSON(data []byte) (*Descriptor, error) {
	var doc descriptorDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	d := &Descriptor{
		Key:           doc.Key,
		BankName:      doc.BankName,
		AccountType:   doc.AccountType,
		AccountTerms:  doc.AccountTerms,
		TermsMatch:    MatchAll,
		YBin:          doc.YBin,
		XGap:          doc.XGap,
		CheckBalances: true,
	}
	if doc.AccountTermsMatch != "" {
		d.TermsMatch = TermsMatch(doc.AccountTermsMatch)
	}
	if doc.CheckBalances != nil {
		d.CheckBalances = *doc.CheckBalances
	}

	var err error
	if d.AccountNumber, err = buildValueRule("account_number", doc.AccountNumber); err != nil {
		return nil, err
	}
	if d.OpeningBalance, err = buildValueRule("opening_balance", doc.OpeningBalance); err != nil {
		return nil, err
	}
	if d.ClosingBalance, err = buildValueRule("closing_balance", doc.ClosingBalance); err != nil {
		return nil, err
	}
	if d.StartDate, err = buildValueRule("start_date", doc.StartDate); err != nil {
		return nil, err
	}

	if doc.Transactions != nil {
		t := doc.Transactions
		d.Transactions = TransactionRules{
			StartTerms:   t.StartTerms,
			StopTerms:    t.StopTerms,
			Required:     t.Required,
			ImplicitDate: t.ImplicitDate,
			DateIndex:    t.DateIndex,
		}
		if d.Transactions.DateIndex == "" {
			d.Transactions.DateIndex = "derived"
		}
		if len(d.Transactions.Required) == 0 {
			d.Transactions.Required = []string{"date", "amount", "balance"}
		}
		if d.Transactions.Date, err = buildFieldRule("transactions.date", t.Date); err != nil {
			return nil, err
		}
		if d.Transactions.Description, err = buildFieldRule("transactions.description", t.Description); err != nil {
			return nil, err
		}
		if d.Transactions.Amount, err = buildFieldRule("transactions.amount", t.Amount); err != nil {
			return nil, err
		}
		if d.Transactions.Balance, err = buildFieldRule("transactions.balance", t.Balance); err != nil {
			return nil, err
		}
	}

	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// FromFile reads and parses a descriptor document from disk.
func FromFile(path string) (*Descriptor, error) {
	data, err := readDescriptorFile(path)
	if err != nil {
		return nil, err
	}
	d, err := FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func readDescriptorFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Reason: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return data, nil
}

func buildValueRule(field string, doc *valueRuleDoc) (*ValueRule, error) {
	if doc == nil {
		return nil, nil
	}
	rule := &ValueRule{
		Terms:   doc.Terms,
		Formats: doc.Formats,
		Window:  doc.Window,
		Invert:  doc.Invert,
	}
	if rule.Window == 0 {
		rule.Window = 8
	}
	if doc.Pattern != "" {
		re, err := regexp.Compile(doc.Pattern)
		if err != nil {
			return nil, loadErrorf(field+".pattern", "invalid regexp %q: %v", doc.Pattern, err)
		}
		rule.Pattern = re
	}
	return rule, nil
}

func buildFieldRule(field string, doc *fieldRuleDoc) (*FieldRule, error) {
	if doc == nil {
		return nil, nil
	}
	rule := &FieldRule{
		Kind:    RuleKind(doc.Kind),
		X1:      unbounded,
		X2:      unbounded,
		Formats: doc.Formats,
		Invert:  doc.Invert,
	}
	var err error
	if rule.X1, err = buildRange(field+".x1", doc.X1); err != nil {
		return nil, err
	}
	if rule.X2, err = buildRange(field+".x2", doc.X2); err != nil {
		return nil, err
	}
	if doc.Pattern != "" {
		re, compileErr := regexp.Compile(doc.Pattern)
		if compileErr != nil {
			return nil, loadErrorf(field+".pattern", "invalid regexp %q: %v", doc.Pattern, compileErr)
		}
		rule.Pattern = re
	}
	if doc.Offset != nil {
		rule.Offset = *doc.Offset
	}
	for _, ex := range doc.Exclude {
		re, compileErr := regexp.Compile(ex)
		if compileErr != nil {
			return nil, loadErrorf(field+".exclude", "invalid regexp %q: %v", ex, compileErr)
		}
		rule.Exclude = append(rule.Exclude, re)
	}
	return rule, nil
}

func buildRange(field string, bounds []float64) (Range, error) {
	switch len(bounds) {
	case 0:
		return unbounded, nil
	case 2:
		if bounds[0] > bounds[1] {
			return Range{}, loadErrorf(field, "range minimum %v exceeds maximum %v", bounds[0], bounds[1])
		}
		return Range{Min: bounds[0], Max: bounds[1]}, nil
	default:
		return Range{}, loadErrorf(field, "range needs exactly two values, got %d", len(bounds))
	}
}
