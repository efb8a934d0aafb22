// Package models holds the caller-facing data produced by an extraction:
// transactions and the statement that owns them.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one fully-resolved statement entry. Amount and Balance
// are rounded to two decimal places at construction so every downstream
// comparison works on canonical values.
type Transaction struct {
	Date        time.Time       `json:"date"`
	DateIndex   int             `json:"dateIndex"` // ordinal among same-day transactions, 0-based
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
}

// NewTransaction builds a Transaction with amount and balance rounded to
// two decimal places. Rounding is idempotent, so callers holding
// already-canonical decimals lose nothing.
func NewTransaction(date time.Time, dateIndex int, description string, amount, balance decimal.Decimal) Transaction {
	return Transaction{
		Date:        date,
		DateIndex:   dateIndex,
		Description: description,
		Amount:      amount.Round(2),
		Balance:     balance.Round(2),
	}
}

// SameDay reports whether the transaction falls on the same calendar date
// as other.
func (t Transaction) SameDay(other Transaction) bool {
	return t.Date.Equal(other.Date)
}
