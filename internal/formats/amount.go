package formats

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownFormatError reports a descriptor referencing a format name that
// does not exist.
type UnknownFormatError struct {
	Kind string
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown %s format %q", e.Kind, e.Name)
}

// AmountFormat parses one monetary notation into a canonical decimal.
type AmountFormat interface {
	Tokens() int
	Parse(input string) (decimal.Decimal, bool)
}

// Amount format names accepted in descriptor documents.
const (
	AmountPlain       = "plain"        // 1,234.56 / -1,234.56 / 1,234.56-
	AmountCurrency    = "currency"     // £1,234.56 / -$1,234.56 / €1,234.56-
	AmountCreditDebit = "credit-debit" // 1,234.56 CR / £1,234.56 DR
	AmountNil         = "nil"          // Nil -> 0.00
)

// ValidAmountFormats lists every recognised amount format name.
func ValidAmountFormats() []string {
	return []string{AmountPlain, AmountCurrency, AmountCreditDebit, AmountNil}
}

var amountFormats = map[string]AmountFormat{
	AmountPlain:       plainAmountFormat{},
	AmountCurrency:    currencyAmountFormat{},
	AmountCreditDebit: creditDebitAmountFormat{},
	AmountNil:         nilAmountFormat{},
}

// AmountFormatByName returns the format registered under name.
func AmountFormatByName(name string) (AmountFormat, bool) {
	f, ok := amountFormats[name]
	return f, ok
}

var (
	plainAmountPattern       = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*\.\d{2}-?$`)
	currencyAmountPattern    = regexp.MustCompile(`^-?[£$€]\d{1,3}(,\d{3})*\.\d{2}-?$`)
	creditDebitAmountPattern = regexp.MustCompile(`^-?[£$€]?\d{1,3}(,\d{3})*\.\d{2} (cr|dr)$`)
)

// parseMagnitude strips grouping commas and currency symbols, applies the
// sign (leading or trailing minus) and parses the remainder. All amounts
// are exactly two fraction digits by pattern, so no rounding is needed at
// this point; construction-time rounding still runs in the engine.
func parseMagnitude(s string, negative bool) (decimal.Decimal, bool) {
	s = strings.NewReplacer(",", "", "£", "", "$", "", "€", "").Replace(s)
	if strings.Contains(s, "-") {
		negative = !negative
		s = strings.ReplaceAll(s, "-", "")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

type plainAmountFormat struct{}

func (plainAmountFormat) Tokens() int { return 1 }

func (plainAmountFormat) Parse(input string) (decimal.Decimal, bool) {
	if !plainAmountPattern.MatchString(input) {
		return decimal.Decimal{}, false
	}
	return parseMagnitude(input, false)
}

type currencyAmountFormat struct{}

func (currencyAmountFormat) Tokens() int { return 1 }

func (currencyAmountFormat) Parse(input string) (decimal.Decimal, bool) {
	if !currencyAmountPattern.MatchString(input) {
		return decimal.Decimal{}, false
	}
	return parseMagnitude(input, false)
}

type creditDebitAmountFormat struct{}

func (creditDebitAmountFormat) Tokens() int { return 2 }

func (creditDebitAmountFormat) Parse(input string) (decimal.Decimal, bool) {
	lower := strings.ToLower(input)
	if !creditDebitAmountPattern.MatchString(lower) {
		return decimal.Decimal{}, false
	}
	negative := strings.HasSuffix(lower, "dr")
	lower = strings.TrimSuffix(strings.TrimSuffix(lower, "dr"), "cr")
	return parseMagnitude(strings.TrimSpace(lower), negative)
}

type nilAmountFormat struct{}

func (nilAmountFormat) Tokens() int { return 1 }

func (nilAmountFormat) Parse(input string) (decimal.Decimal, bool) {
	if strings.EqualFold(strings.TrimSpace(input), "nil") {
		return decimal.Zero, true
	}
	return decimal.Decimal{}, false
}

// MultiAmount dispatches across several named amount formats, widest
// notations first.
type MultiAmount struct {
	formats []AmountFormat
}

// NewMultiAmount builds a dispatcher from format names.
func NewMultiAmount(names []string) (*MultiAmount, error) {
	parsed := make([]AmountFormat, 0, len(names))
	for _, name := range names {
		f, ok := AmountFormatByName(name)
		if !ok {
			return nil, &UnknownFormatError{Kind: "amount", Name: name}
		}
		parsed = append(parsed, f)
	}
	for i := 1; i < len(parsed); i++ {
		for j := i; j > 0 && parsed[j].Tokens() > parsed[j-1].Tokens(); j-- {
			parsed[j], parsed[j-1] = parsed[j-1], parsed[j]
		}
	}
	return &MultiAmount{formats: parsed}, nil
}

// Parse returns the first successful parse across the configured formats.
func (m *MultiAmount) Parse(input string) (decimal.Decimal, bool) {
	for _, f := range m.formats {
		if d, ok := f.Parse(input); ok {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

// MaxTokens is the widest lookahead any configured format needs.
func (m *MultiAmount) MaxTokens() int {
	max := 0
	for _, f := range m.formats {
		if f.Tokens() > max {
			max = f.Tokens()
		}
	}
	return max
}

// Empty reports whether no formats are configured.
func (m *MultiAmount) Empty() bool { return len(m.formats) == 0 }
