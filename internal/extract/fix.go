package extract

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// tolerance is how far a recomputed running balance may drift from the
// stated one before a correction is rejected. Statement figures are
// printed to two places, so anything beyond a penny is a real mismatch.
var tolerance = decimal.New(1, -2)

// fixYearCrossover repairs yearless dates on statements that span a year
// boundary. Yearless parsing hints with the start date's year, so a
// January transaction on a December statement lands a year early; any
// transaction dated before the start date moves forward one year.
func fixYearCrossover(ex *Extraction) {
	if ex.StartDate.IsZero() {
		return
	}
	for i, tx := range ex.Transactions {
		if tx.Date.IsZero() || !tx.Date.Before(ex.StartDate) {
			continue
		}
		ex.Transactions[i].Date = time.Date(
			ex.StartDate.Year()+1, tx.Date.Month(), tx.Date.Day(),
			0, 0, 0, 0, time.UTC)
	}
}

// balanceGap marks a record the statement printed without a balance.
type balanceGap struct {
	index int
	page  int
	line  string
}

// fixTransactionOrder restores chronological order on statements that
// print no balances at all. When any record carries a stated balance the
// printed order anchors the continuity walk and must not change; a
// record with an unresolved date leaves the set untouched too.
func fixTransactionOrder(ex *Extraction, gaps []balanceGap) {
	if len(ex.Transactions) == 0 || len(gaps) != len(ex.Transactions) {
		return
	}
	for _, tx := range ex.Transactions {
		if tx.Date.IsZero() {
			return
		}
	}
	sort.SliceStable(ex.Transactions, func(i, j int) bool {
		return ex.Transactions[i].Date.Before(ex.Transactions[j].Date)
	})
}

// fixImplicitBalances fills balances the statement never printed, the
// usual shape of credit card statements. A running balance walks from
// the opening balance; stated balances reset the walk. Without an
// opening balance there is nothing to anchor the fill, so the candidate
// fails rather than serve invented figures.
func fixImplicitBalances(ex *Extraction, gaps []balanceGap) error {
	if len(gaps) == 0 {
		return nil
	}
	if ex.OpeningBalance == nil {
		g := gaps[0]
		return &StructuralError{Key: ex.Key, Page: g.page, Line: g.line, Missing: []string{"balance"}}
	}
	missing := make(map[int]bool, len(gaps))
	for _, g := range gaps {
		missing[g.index] = true
	}
	running := *ex.OpeningBalance
	for i := range ex.Transactions {
		if missing[i] {
			ex.Transactions[i].Balance = running.Add(ex.Transactions[i].Amount).Round(2)
		}
		running = ex.Transactions[i].Balance
	}
	return nil
}

// fixAmountSigns recovers amount signs on statements that print debits
// unsigned. Walking from the opening balance, an amount is negated when
// the stated balance agrees with subtraction but not with addition. The
// running balance resets to the stated balance each step so one odd row
// cannot cascade.
func fixAmountSigns(ex *Extraction) {
	if ex.OpeningBalance == nil {
		return
	}
	running := *ex.OpeningBalance
	for i, tx := range ex.Transactions {
		added := running.Add(tx.Amount).Round(2)
		subtracted := running.Sub(tx.Amount).Round(2)
		addDiff := tx.Balance.Sub(added).Abs()
		subDiff := tx.Balance.Sub(subtracted).Abs()
		if subDiff.LessThan(addDiff) && subDiff.LessThanOrEqual(tolerance) {
			ex.Transactions[i].Amount = tx.Amount.Neg()
		}
		running = tx.Balance
	}
}

// assignDateIndices derives the same-day ordinal: the first transaction
// of each date run is 0, each subsequent same-day transaction counts up.
// Extraction preserves statement order, so a run is always contiguous.
func assignDateIndices(ex *Extraction) {
	idx := 0
	for i, tx := range ex.Transactions {
		if i == 0 || !tx.Date.Equal(ex.Transactions[i-1].Date) {
			idx = 0
		} else {
			idx++
		}
		ex.Transactions[i].DateIndex = idx
	}
}
