package ledger

import (
	"slices"

	"github.com/shopspring/decimal"
)

// CounterpartBalance is one relationship in a dashboard. Amount is always a
// positive magnitude; the list it sits in gives the direction.
type CounterpartBalance struct {
	UserID string
	Amount decimal.Decimal
}

// CounterpartNet is the signed net with one counterpart, zero included.
type CounterpartNet struct {
	UserID string
	Owed   decimal.Decimal
	Owing  decimal.Decimal
	Net    decimal.Decimal
}

func (c CounterpartNet) Settled() bool {
	return c.Net.IsZero()
}

type Dashboard struct {
	Subject         string
	TotalBalance    decimal.Decimal
	TotalYouOwe     decimal.Decimal
	TotalYouAreOwed decimal.Decimal

	// YouOwe and YouAreOwedBy are sorted by amount, largest first. Ties keep
	// the order in which counterparts were first encountered.
	YouOwe       []CounterpartBalance
	YouAreOwedBy []CounterpartBalance

	// Counterparts holds every counterpart encountered, settled ones included,
	// in first-encounter order.
	Counterparts []CounterpartNet
}

// Net returns the signed net with userID, or zero when the two never shared
// a record in scope.
func (d Dashboard) Net(userID string) decimal.Decimal {
	for _, c := range d.Counterparts {
		if c.UserID == userID {
			return c.Net
		}
	}
	return decimal.Zero
}

// ComputeDashboardBalances folds every record in scope into the subject's
// balance against each counterpart.
func ComputeDashboardBalances(subject string, scope Scope, expenses []Expense, settlements []Settlement) Dashboard {
	t := newTally(subject, "", scope).fold(expenses, settlements)

	d := Dashboard{
		Subject:         subject,
		TotalYouOwe:     t.youOwe,
		TotalYouAreOwed: t.youAreOwed,
		TotalBalance:    t.youAreOwed.Sub(t.youOwe),
		YouOwe:          []CounterpartBalance{},
		YouAreOwedBy:    []CounterpartBalance{},
		Counterparts:    make([]CounterpartNet, 0, len(t.order)),
	}

	for _, userID := range t.order {
		c := t.byUser[userID]
		net := c.net()
		d.Counterparts = append(d.Counterparts, CounterpartNet{
			UserID: userID,
			Owed:   c.owed,
			Owing:  c.owing,
			Net:    net,
		})

		switch {
		case net.IsPositive():
			d.YouAreOwedBy = append(d.YouAreOwedBy, CounterpartBalance{UserID: userID, Amount: net})
		case net.IsNegative():
			d.YouOwe = append(d.YouOwe, CounterpartBalance{UserID: userID, Amount: net.Neg()})
		}
	}

	sortByAmountDesc(d.YouOwe)
	sortByAmountDesc(d.YouAreOwedBy)
	return d
}

func sortByAmountDesc(balances []CounterpartBalance) {
	slices.SortStableFunc(balances, func(a, b CounterpartBalance) int {
		return b.Amount.Cmp(a.Amount)
	})
}
