// Package config models statement format descriptors: the declarative
// definition of how to recognise one statement layout and where its fields
// live. Descriptors are immutable once registered; re-registration under
// the same key replaces the previous value.
package config

import (
	"regexp"

	"github.com/insightdelivered/transtractor/internal/fragment"
)

// TermsMatch selects the recognition-term predicate for a descriptor.
type TermsMatch string

const (
	// MatchAll requires every account term to appear in the document.
	MatchAll TermsMatch = "all"
	// MatchAny requires at least one account term to appear.
	MatchAny TermsMatch = "any"
)

// RuleKind tags the variant of a transaction field rule.
type RuleKind string

const (
	// RuleColumn locates a field by horizontal position range.
	RuleColumn RuleKind = "column"
	// RulePattern locates a field by matching token text.
	RulePattern RuleKind = "pattern"
	// RuleOffset locates a field at a fixed token offset within the line.
	RuleOffset RuleKind = "offset"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// unbounded spans any coordinate a page can produce.
var unbounded = Range{Min: -1e6, Max: 1e6}

// FieldRule is one tagged-variant rule locating a transaction field on a
// reconstructed line. Exactly one variant is active, per Kind; the engine
// dispatches through Select without caring which.
type FieldRule struct {
	Kind RuleKind

	// Column variant
	X1 Range
	X2 Range

	// Pattern variant
	Pattern *regexp.Regexp

	// Offset variant
	Offset int

	// Formats names the date/amount notations the field value may use.
	Formats []string
	// Invert negates parsed amounts (separate debit columns).
	Invert bool
	// Exclude drops matching tokens (description noise such as page
	// footers).
	Exclude []*regexp.Regexp
}

// Select returns the tokens of a line that belong to this field, in line
// order. All three variants answer through this one method.
func (r *FieldRule) Select(tokens []fragment.Fragment) []fragment.Fragment {
	if r == nil {
		return nil
	}
	var picked []fragment.Fragment
	for i, tok := range tokens {
		if r.excluded(tok.Text) {
			continue
		}
		switch r.Kind {
		case RuleColumn:
			if r.X1.Contains(float64(tok.X1)) && r.X2.Contains(float64(tok.X2)) {
				picked = append(picked, tok)
			}
		case RulePattern:
			if r.Pattern != nil && r.Pattern.MatchString(tok.Text) {
				picked = append(picked, tok)
			}
		case RuleOffset:
			if i == r.Offset {
				picked = append(picked, tok)
			}
		}
	}
	return picked
}

func (r *FieldRule) excluded(text string) bool {
	for _, ex := range r.Exclude {
		if ex.MatchString(text) {
			return true
		}
	}
	return false
}

// ValueRule locates a single statement-level value (account number,
// opening/closing balance, start date) by priming on a term and reading
// the value that follows it.
type ValueRule struct {
	// Terms prime the rule; the first occurrence of any term starts the
	// value search.
	Terms []string
	// Pattern matches the raw value tokens (account numbers).
	Pattern *regexp.Regexp
	// Formats names the notations for parsed values (balances, dates).
	Formats []string
	// Window bounds how many tokens after the term are searched.
	Window int
	// Invert negates a parsed balance.
	Invert bool
}

// Configured reports whether the rule is present in the descriptor.
func (r *ValueRule) Configured() bool {
	return r != nil && len(r.Terms) > 0
}

// TransactionRules describes how transaction records appear in a
// reconstructed document.
type TransactionRules struct {
	// StartTerms open the transaction section; nothing before them is
	// scanned. Empty means the whole document is in scope.
	StartTerms []string
	// StopTerms close the transaction section.
	StopTerms []string
	// Required lists fields that every matched record must resolve
	// (date, amount, balance; description is never required).
	Required []string

	Date        *FieldRule
	Description *FieldRule
	Amount      *FieldRule
	Balance     *FieldRule

	// ImplicitDate lets a record without its own date inherit the
	// previous record's date.
	ImplicitDate bool
	// DateIndex names the same-day ordinal source; only "derived" is
	// supported.
	DateIndex string
}

// Descriptor is one statement format: recognition terms plus extraction
// rules. Loaded from a JSON document and validated before registration.
type Descriptor struct {
	Key          string
	BankName     string
	AccountType  string
	AccountTerms []string
	TermsMatch   TermsMatch

	// Layout reconstruction thresholds. Zero means natural order.
	YBin float64
	XGap float64

	AccountNumber  *ValueRule
	OpeningBalance *ValueRule
	ClosingBalance *ValueRule
	StartDate      *ValueRule

	Transactions TransactionRules

	// CheckBalances enables the balance-continuity quality check.
	CheckBalances bool
}

// RequiresField reports whether the descriptor's quality policy marks the
// named transaction field compulsory.
func (d *Descriptor) RequiresField(name string) bool {
	for _, f := range d.Transactions.Required {
		if f == name {
			return true
		}
	}
	return false
}
