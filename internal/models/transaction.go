// Package models provides the data structures shared by budgetwiz
// components.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one row of a bank export.
type Transaction struct {
	Line         int             // 1-based line in the source CSV
	Date         time.Time       // booking date
	Description  string          // merchant or memo text as exported
	Amount       decimal.Decimal // signed amount
	Category     string          // assigned by the categorizer
	BankCategory string          // category column supplied by the bank, if any
}

// IsCategorized reports whether a category has been assigned.
func (t Transaction) IsCategorized() bool {
	return t.Category != ""
}

// WithCategory returns a copy of t with the category set.
func (t Transaction) WithCategory(category string) Transaction {
	t.Category = category
	return t
}

// FormattedDate returns the date in ISO layout, or "" for a zero date.
func (t Transaction) FormattedDate() string {
	if t.Date.IsZero() {
		return ""
	}
	return t.Date.Format(DateLayoutISO)
}
