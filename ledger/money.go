package ledger

import (
	"github.com/shopspring/decimal"
)

// SplitTolerance is the largest gap allowed between an expense's amount and
// the sum of its splits.
var SplitTolerance = decimal.New(1, -2)

const displayPlaces = 2

// Display rounds an amount to two places for presentation. It must only be
// applied to final results, never to values that are accumulated further.
func Display(amount decimal.Decimal) float64 {
	return amount.Round(displayPlaces).InexactFloat64()
}

// Amount parses a decimal string. It panics on malformed input and is meant
// for fixtures and constants.
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
