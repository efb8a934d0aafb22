// Package quality decides whether an extraction can be trusted. Every
// candidate descriptor's output runs through the same checks; the first
// candidate with a clean sheet wins, and a document where no candidate
// comes through clean is rejected outright rather than served with the
// least-bad guess.
package quality

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/transtractor/internal/config"
	"github.com/insightdelivered/transtractor/internal/extract"
)

// Issue is one failed quality check. A candidate with any issue is
// disqualified; issues exist to explain the rejection, not to rank it.
type Issue struct {
	Check  string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Check, i.Detail)
}

// tolerance matches the extraction fixers: statement figures carry two
// places, so a penny is the largest acceptable rounding drift.
var tolerance = decimal.New(1, -2)

// Check runs every quality check against one extraction and returns the
// issues found. An empty result means the candidate is acceptable.
func Check(ex *extract.Extraction, d *config.Descriptor) []Issue {
	var issues []Issue

	tr := d.Transactions
	hasRules := tr.Date != nil || tr.Amount != nil || tr.Balance != nil
	if hasRules && len(ex.Transactions) == 0 {
		issues = append(issues, Issue{
			Check:  "transactions",
			Detail: "no transaction records matched",
		})
	}
	if d.AccountNumber.Configured() && ex.AccountNumber == "" {
		issues = append(issues, Issue{
			Check:  "account-number",
			Detail: "rule configured but no value found",
		})
	}
	if d.CheckBalances {
		issues = append(issues, checkContinuity(ex)...)
		issues = append(issues, checkClosing(ex)...)
	}
	return issues
}

// checkContinuity verifies each stated balance against the previous
// balance plus the transaction amount. With an opening balance the first
// transaction is anchored too; without one the walk starts pairwise.
// The running balance resets to the stated value after a mismatch so a
// single bad row produces a single issue.
func checkContinuity(ex *extract.Extraction) []Issue {
	if len(ex.Transactions) == 0 {
		return nil
	}
	var issues []Issue
	var running decimal.Decimal
	start := 0
	if ex.OpeningBalance != nil {
		running = *ex.OpeningBalance
	} else {
		running = ex.Transactions[0].Balance
		start = 1
	}
	for i := start; i < len(ex.Transactions); i++ {
		tx := ex.Transactions[i]
		expected := running.Add(tx.Amount).Round(2)
		if tx.Balance.Sub(expected).Abs().GreaterThan(tolerance) {
			issues = append(issues, Issue{
				Check: "balance-continuity",
				Detail: fmt.Sprintf("transaction %d (%s): stated balance %s, expected %s",
					i, tx.Date.Format("2006-01-02"), tx.Balance.StringFixed(2), expected.StringFixed(2)),
			})
		}
		running = tx.Balance
	}
	return issues
}

// checkClosing verifies the final stated balance against the statement's
// declared closing balance, when the descriptor extracts one.
func checkClosing(ex *extract.Extraction) []Issue {
	if ex.ClosingBalance == nil || len(ex.Transactions) == 0 {
		return nil
	}
	last := ex.Transactions[len(ex.Transactions)-1].Balance
	if last.Sub(*ex.ClosingBalance).Abs().GreaterThan(tolerance) {
		return []Issue{{
			Check: "closing-balance",
			Detail: fmt.Sprintf("final balance %s does not match closing balance %s",
				last.StringFixed(2), ex.ClosingBalance.StringFixed(2)),
		}}
	}
	return nil
}
