// Package extract runs a format descriptor against a reconstructed
// document and produces candidate statement data. Extraction is
// per-descriptor and structural only; whether the result is trustworthy
// is the quality package's call.
package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/transtractor/internal/config"
	"github.com/insightdelivered/transtractor/internal/formats"
	"github.com/insightdelivered/transtractor/internal/fragment"
	"github.com/insightdelivered/transtractor/internal/layout"
	"github.com/insightdelivered/transtractor/internal/models"
)

// StructuralError reports a transaction record that matched the
// descriptor's record shape but failed to resolve a required field. The
// record is never silently skipped; the whole candidate fails instead.
type StructuralError struct {
	Key     string
	Page    int
	Line    string
	Missing []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: page %d line %q missing required fields: %s",
		e.Key, e.Page, e.Line, strings.Join(e.Missing, ", "))
}

// FieldMatch records how one statement-level value resolved, for the
// debug report.
type FieldMatch struct {
	Field string
	Rule  string
	Value string
	Found bool
}

// Extraction is one descriptor's read of a document.
type Extraction struct {
	Key           string
	BankName      string
	AccountNumber string
	// OpeningBalance and ClosingBalance are nil when the descriptor has
	// no rule for them or the rule found nothing.
	OpeningBalance *decimal.Decimal
	ClosingBalance *decimal.Decimal
	// StartDate is the zero time when unresolved.
	StartDate    time.Time
	Transactions []models.Transaction
	Lines        []layout.Line
	FieldMatches []FieldMatch
}

type engine struct {
	d     *config.Descriptor
	lines []layout.Line
	// stream is every merged token of the document in reading order,
	// used for statement-level value priming.
	stream []fragment.Fragment

	txDate    *formats.MultiDate
	txAmount  *formats.MultiAmount
	txBalance *formats.MultiAmount

	yearHint string
	// balanceGaps are the records scan emitted without a stated balance,
	// for fixImplicitBalances to fill or reject.
	balanceGaps []balanceGap
}

// Extract reads the fragment set through the descriptor's rules. The
// returned error is a *StructuralError when a matched record is missing
// required fields; any other error is a descriptor defect that
// validation should have caught.
func Extract(fragments []fragment.Fragment, d *config.Descriptor) (*Extraction, error) {
	lines := layout.Reconstruct(fragments, d.YBin)
	e := &engine{d: d, lines: lines}
	for _, l := range lines {
		// Word-level tokens: value priming must not depend on how the
		// column merge happened to group a label with its value.
		e.stream = append(e.stream, fragment.Tokenise(l.Fragments)...)
	}
	if err := e.compile(); err != nil {
		return nil, fmt.Errorf("%s: %w", d.Key, err)
	}

	ex := &Extraction{Key: d.Key, BankName: d.BankName, Lines: lines}
	e.statementValues(ex)
	if err := e.scan(ex); err != nil {
		return nil, err
	}
	fixYearCrossover(ex)
	fixTransactionOrder(ex, e.balanceGaps)
	if err := fixImplicitBalances(ex, e.balanceGaps); err != nil {
		return nil, err
	}
	fixAmountSigns(ex)
	assignDateIndices(ex)
	return ex, nil
}

func (e *engine) compile() error {
	var err error
	if r := e.d.Transactions.Date; r != nil && len(r.Formats) > 0 {
		if e.txDate, err = formats.NewMultiDate(r.Formats); err != nil {
			return err
		}
	}
	if r := e.d.Transactions.Amount; r != nil && len(r.Formats) > 0 {
		if e.txAmount, err = formats.NewMultiAmount(r.Formats); err != nil {
			return err
		}
	}
	if r := e.d.Transactions.Balance; r != nil && len(r.Formats) > 0 {
		if e.txBalance, err = formats.NewMultiAmount(r.Formats); err != nil {
			return err
		}
	}
	return nil
}

// statementValues resolves the descriptor's account number, balances and
// start date rules. Start date runs first since it supplies the year
// hint for everything else.
func (e *engine) statementValues(ex *Extraction) {
	if r := e.d.StartDate; r.Configured() {
		md, err := formats.NewMultiDate(r.Formats)
		if err == nil {
			if t, ok := e.findDate(r, md); ok {
				ex.StartDate = t
				e.yearHint = strconv.Itoa(t.Year())
			}
		}
		ex.FieldMatches = append(ex.FieldMatches, FieldMatch{
			Field: "start_date", Rule: r.String(),
			Value: dateString(ex.StartDate), Found: !ex.StartDate.IsZero(),
		})
	}
	if r := e.d.AccountNumber; r.Configured() {
		if v, ok := e.findPattern(r); ok {
			ex.AccountNumber = v
		}
		ex.FieldMatches = append(ex.FieldMatches, FieldMatch{
			Field: "account_number", Rule: r.String(),
			Value: ex.AccountNumber, Found: ex.AccountNumber != "",
		})
	}
	if r := e.d.OpeningBalance; r.Configured() {
		ex.OpeningBalance = e.findAmountMatch(ex, "opening_balance", r)
	}
	if r := e.d.ClosingBalance; r.Configured() {
		ex.ClosingBalance = e.findAmountMatch(ex, "closing_balance", r)
	}
}

func (e *engine) findAmountMatch(ex *Extraction, field string, r *config.ValueRule) *decimal.Decimal {
	var found *decimal.Decimal
	ma, err := formats.NewMultiAmount(r.Formats)
	if err == nil {
		if d, ok := e.findAmount(r, ma); ok {
			if r.Invert {
				d = d.Neg()
			}
			d = d.Round(2)
			found = &d
		}
	}
	value := ""
	if found != nil {
		value = found.StringFixed(2)
	}
	ex.FieldMatches = append(ex.FieldMatches, FieldMatch{
		Field: field, Rule: r.String(), Value: value, Found: found != nil,
	})
	return found
}

// primeWindows yields the token windows following each occurrence of any
// of the rule's terms. Matching is case-sensitive prefix matching over
// the merged token stream, the same discipline identification uses.
func (e *engine) primeWindows(r *config.ValueRule) [][]fragment.Fragment {
	var windows [][]fragment.Fragment
	for i := range e.stream {
		for _, term := range r.Terms {
			span := len(strings.Fields(term))
			phrase := fragment.Phrase(fragment.Buffer(e.stream, i, span))
			if !strings.HasPrefix(phrase, term) {
				continue
			}
			// The term may share its final token with the value, so the
			// window starts at the term itself.
			windows = append(windows, fragment.Buffer(e.stream, i, span+r.Window))
			break
		}
	}
	return windows
}

func (e *engine) findPattern(r *config.ValueRule) (string, bool) {
	for _, window := range e.primeWindows(r) {
		for i, tok := range window {
			if r.Pattern.MatchString(tok.Text) {
				return tok.Text, true
			}
			// Account numbers are printed both solid and space-grouped
			// ("1234 5678"), so adjacent tokens get one joined attempt.
			if i+1 < len(window) {
				joined := tok.Text + window[i+1].Text
				if r.Pattern.MatchString(joined) {
					return joined, true
				}
			}
		}
	}
	return "", false
}

func (e *engine) findAmount(r *config.ValueRule, ma *formats.MultiAmount) (decimal.Decimal, bool) {
	for _, window := range e.primeWindows(r) {
		if d, ok := parseAmountTokens(window, ma); ok {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

func (e *engine) findDate(r *config.ValueRule, md *formats.MultiDate) (time.Time, bool) {
	for _, window := range e.primeWindows(r) {
		if t, ok := parseDateTokens(window, md, e.yearHint); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// proto is a transaction record mid-assembly, before the fixers run.
type proto struct {
	date       time.Time
	hasDate    bool
	descParts  []string
	amount     decimal.Decimal
	hasAmount  bool
	balance    decimal.Decimal
	hasBalance bool
}

// scan walks the reconstructed lines and assembles transaction records.
// A line is a record when its amount or balance rule resolves; other
// lines inside the section contribute description continuations to the
// preceding record.
func (e *engine) scan(ex *Extraction) error {
	tr := e.d.Transactions
	if tr.Date == nil && tr.Amount == nil && tr.Balance == nil {
		return nil
	}
	started := len(tr.StartTerms) == 0
	var protos []proto
	var prevDate time.Time
	havePrev := false

	for _, line := range e.lines {
		text := line.Text()
		if !started {
			if containsAny(text, tr.StartTerms) {
				started = true
			}
			continue
		}
		if containsAny(text, tr.StopTerms) {
			break
		}
		tokens := line.Tokens(e.d.XGap)

		amount, hasAmount := parseAmountTokens(tr.Amount.Select(tokens), e.txAmount)
		if hasAmount && tr.Amount.Invert {
			amount = amount.Neg()
		}
		balance, hasBalance := parseAmountTokens(tr.Balance.Select(tokens), e.txBalance)
		if hasBalance && tr.Balance.Invert {
			balance = balance.Neg()
		}
		desc := fragment.Phrase(tr.Description.Select(tokens))

		if !hasAmount && !hasBalance {
			// Continuation: multi-line descriptions carry no figures.
			if desc != "" && len(protos) > 0 {
				last := &protos[len(protos)-1]
				last.descParts = append(last.descParts, desc)
			}
			continue
		}

		date, hasDate := parseDateTokens(tr.Date.Select(tokens), e.txDate, e.yearHint)
		if !hasDate && tr.ImplicitDate {
			switch {
			case havePrev:
				date, hasDate = prevDate, true
			case !ex.StartDate.IsZero():
				date, hasDate = ex.StartDate, true
			}
		}
		if hasDate {
			prevDate, havePrev = date, true
		}

		var missing []string
		if e.d.RequiresField("date") && !hasDate {
			missing = append(missing, "date")
		}
		if e.d.RequiresField("amount") && !hasAmount {
			missing = append(missing, "amount")
		}
		if e.d.RequiresField("balance") && !hasBalance {
			missing = append(missing, "balance")
		}
		if len(missing) > 0 {
			return &StructuralError{Key: e.d.Key, Page: line.Page, Line: text, Missing: missing}
		}
		if !hasBalance {
			e.balanceGaps = append(e.balanceGaps, balanceGap{index: len(protos), page: line.Page, line: text})
		}

		p := proto{
			date: date, hasDate: hasDate,
			amount: amount, hasAmount: hasAmount,
			balance: balance, hasBalance: hasBalance,
		}
		if desc != "" {
			p.descParts = append(p.descParts, desc)
		}
		protos = append(protos, p)
	}

	for _, p := range protos {
		ex.Transactions = append(ex.Transactions, models.NewTransaction(
			p.date, 0, strings.Join(p.descParts, " "), p.amount, p.balance))
	}
	return nil
}

// parseAmountTokens tries the dispatcher over every contiguous token
// phrase of the selection, widest first so two-token notations such as
// "1,234.56 CR" are not half-consumed.
func parseAmountTokens(tokens []fragment.Fragment, ma *formats.MultiAmount) (decimal.Decimal, bool) {
	if ma == nil || len(tokens) == 0 {
		return decimal.Decimal{}, false
	}
	for s := range tokens {
		max := ma.MaxTokens()
		if rest := len(tokens) - s; rest < max {
			max = rest
		}
		for w := max; w >= 1; w-- {
			if d, ok := ma.Parse(fragment.Phrase(tokens[s : s+w])); ok {
				return d, true
			}
		}
	}
	return decimal.Decimal{}, false
}

func parseDateTokens(tokens []fragment.Fragment, md *formats.MultiDate, yearHint string) (time.Time, bool) {
	if md == nil || len(tokens) == 0 {
		return time.Time{}, false
	}
	for s := range tokens {
		max := md.MaxTokens()
		if rest := len(tokens) - s; rest < max {
			max = rest
		}
		for w := max; w >= 1; w-- {
			if t, ok := md.Parse(fragment.Phrase(tokens[s:s+w]), yearHint); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
