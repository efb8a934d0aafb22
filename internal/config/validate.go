package config

import (
	"strconv"
	"strings"

	"github.com/insightdelivered/transtractor/internal/formats"
)

// Validate checks a descriptor for structural soundness. Every failure is
// a LoadError naming the offending field; validation never mutates the
// descriptor or a registry.
func Validate(d *Descriptor) error {
	if err := validateKey(d.Key); err != nil {
		return err
	}
	if d.BankName == "" {
		return loadErrorf("bank_name", "must not be empty")
	}
	if len(d.AccountTerms) == 0 {
		return loadErrorf("account_terms", "at least one recognition term is required")
	}
	for i, term := range d.AccountTerms {
		if strings.TrimSpace(term) == "" {
			return loadErrorf("account_terms", "term %d is blank", i)
		}
	}
	switch d.TermsMatch {
	case MatchAll, MatchAny:
	default:
		return loadErrorf("account_terms_match", "must be %q or %q, got %q", MatchAll, MatchAny, d.TermsMatch)
	}
	if d.YBin < 0 {
		return loadErrorf("y_bin", "must not be negative, got %v", d.YBin)
	}
	if d.XGap < 0 {
		return loadErrorf("x_gap", "must not be negative, got %v", d.XGap)
	}

	if err := validateValueRule("account_number", d.AccountNumber, false); err != nil {
		return err
	}
	if err := validateValueRule("opening_balance", d.OpeningBalance, true); err != nil {
		return err
	}
	if err := validateValueRule("closing_balance", d.ClosingBalance, true); err != nil {
		return err
	}
	if err := validateStartDateRule(d.StartDate); err != nil {
		return err
	}
	return validateTransactions(&d.Transactions)
}

// validateKey enforces the descriptor key format:
// <country>__<bank>__<account>__<version>, lowercase, no whitespace, with
// an ISO 3166-1 alpha-2 country code and a positive integer version.
func validateKey(key string) error {
	if key == "" {
		return loadErrorf("key", "must not be empty")
	}
	if strings.ContainsFunc(key, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }) {
		return loadErrorf("key", "must not contain whitespace: %q", key)
	}
	if key != strings.ToLower(key) {
		return loadErrorf("key", "must be all lowercase: %q", key)
	}
	parts := strings.Split(key, "__")
	if len(parts) != 4 {
		return loadErrorf("key", "must have 4 components separated by '__', got %d in %q", len(parts), key)
	}
	if !validCountryCode(parts[0]) {
		return loadErrorf("key", "unrecognised ISO 3166-1 alpha-2 country code %q", parts[0])
	}
	if parts[1] == "" || parts[2] == "" {
		return loadErrorf("key", "bank and account components must not be empty: %q", key)
	}
	version, err := strconv.Atoi(parts[3])
	if err != nil || version < 1 {
		return loadErrorf("key", "version component must be a positive integer, got %q", parts[3])
	}
	return nil
}

func validateValueRule(field string, rule *ValueRule, amounts bool) error {
	if rule == nil {
		return nil
	}
	if len(rule.Terms) == 0 {
		return loadErrorf(field+".terms", "at least one term is required")
	}
	if amounts {
		if len(rule.Formats) == 0 {
			return loadErrorf(field+".formats", "at least one amount format is required")
		}
		if _, err := formats.NewMultiAmount(rule.Formats); err != nil {
			return loadErrorf(field+".formats", "%v (valid: %s)", err, strings.Join(formats.ValidAmountFormats(), ", "))
		}
	} else if rule.Pattern == nil {
		return loadErrorf(field+".pattern", "a value pattern is required")
	}
	if rule.Window < 1 {
		return loadErrorf(field+".window", "must be at least 1, got %d", rule.Window)
	}
	return nil
}

func validateStartDateRule(rule *ValueRule) error {
	if rule == nil {
		return nil
	}
	if len(rule.Terms) == 0 {
		return loadErrorf("start_date.terms", "at least one term is required")
	}
	if len(rule.Formats) == 0 {
		return loadErrorf("start_date.formats", "at least one date format is required")
	}
	if _, err := formats.NewMultiDate(rule.Formats); err != nil {
		return loadErrorf("start_date.formats", "%v (valid: %s)", err, strings.Join(formats.ValidDateFormats(), ", "))
	}
	return nil
}

func validateTransactions(t *TransactionRules) error {
	if t.DateIndex != "" && t.DateIndex != "derived" {
		return loadErrorf("transactions.date_index", "unsupported source %q (valid: derived)", t.DateIndex)
	}
	if t.Date == nil && t.Amount == nil && t.Balance == nil {
		// Descriptor extracts no transactions: legal for terms-only
		// registrations.
		return nil
	}
	for _, name := range t.Required {
		switch name {
		case "date", "amount", "balance":
		default:
			return loadErrorf("transactions.required", "unknown field %q (valid: date, amount, balance)", name)
		}
	}
	if err := validateFieldRule("transactions.date", t.Date, ruleFormatsDate); err != nil {
		return err
	}
	if err := validateFieldRule("transactions.description", t.Description, ruleFormatsNone); err != nil {
		return err
	}
	if err := validateFieldRule("transactions.amount", t.Amount, ruleFormatsAmount); err != nil {
		return err
	}
	return validateFieldRule("transactions.balance", t.Balance, ruleFormatsAmount)
}

type ruleFormatKind int

const (
	ruleFormatsNone ruleFormatKind = iota
	ruleFormatsDate
	ruleFormatsAmount
)

func validateFieldRule(field string, rule *FieldRule, kind ruleFormatKind) error {
	if rule == nil {
		return nil
	}
	switch rule.Kind {
	case RuleColumn:
	case RulePattern:
		if rule.Pattern == nil {
			return loadErrorf(field+".pattern", "pattern rule requires a pattern")
		}
	case RuleOffset:
		if rule.Offset < 0 {
			return loadErrorf(field+".offset", "must not be negative, got %d", rule.Offset)
		}
	default:
		return loadErrorf(field+".kind", "unknown rule kind %q (valid: column, pattern, offset)", rule.Kind)
	}
	switch kind {
	case ruleFormatsDate:
		if len(rule.Formats) == 0 {
			return loadErrorf(field+".formats", "at least one date format is required")
		}
		if _, err := formats.NewMultiDate(rule.Formats); err != nil {
			return loadErrorf(field+".formats", "%v (valid: %s)", err, strings.Join(formats.ValidDateFormats(), ", "))
		}
	case ruleFormatsAmount:
		if len(rule.Formats) == 0 {
			return loadErrorf(field+".formats", "at least one amount format is required")
		}
		if _, err := formats.NewMultiAmount(rule.Formats); err != nil {
			return loadErrorf(field+".formats", "%v (valid: %s)", err, strings.Join(formats.ValidAmountFormats(), ", "))
		}
	case ruleFormatsNone:
		if len(rule.Formats) > 0 {
			return loadErrorf(field+".formats", "description rules take no formats")
		}
	}
	return nil
}
