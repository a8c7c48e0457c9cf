package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyTotal struct {
	Month time.Month
	Total decimal.Decimal
}

// shareTotal sums every split userID holds on e. Paid flags are ignored:
// spending is what the user consumed, not what is still outstanding.
func shareTotal(userID string, e Expense) decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Splits {
		if s.UserID == userID {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// TotalSpent sums userID's shares of expenses dated in [from, to). A zero
// from or to leaves that side of the range open.
func TotalSpent(userID string, expenses []Expense, from, to time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !e.Date.Before(to) {
			continue
		}
		total = total.Add(shareTotal(userID, e))
	}
	return total
}

// MonthlySpending returns twelve totals, January first, of userID's shares
// of expenses dated in year. Dates are bucketed in loc.
func MonthlySpending(userID string, expenses []Expense, year int, loc *time.Location) []MonthlyTotal {
	if loc == nil {
		loc = time.UTC
	}
	months := make([]MonthlyTotal, 12)
	for i := range months {
		months[i] = MonthlyTotal{Month: time.Month(i + 1), Total: decimal.Zero}
	}
	for _, e := range expenses {
		date := e.Date.In(loc)
		if date.Year() != year {
			continue
		}
		m := &months[date.Month()-1]
		m.Total = m.Total.Add(shareTotal(userID, e))
	}
	return months
}
