package ledger

import (
	"github.com/shopspring/decimal"
)

// NetGroupLedger collapses each member pair of l into a single direction:
// whoever owes more on balance owes the difference and the opposite cell
// becomes zero. Member totals are unchanged. l itself is not modified.
func NetGroupLedger(l *GroupLedger) *GroupLedger {
	ids := make([]string, len(l.Members))
	for i, m := range l.Members {
		ids[i] = m.UserID
	}

	// ids come from an existing ledger, so they are unique and non-empty.
	a, _ := newArena(ids)
	for i, m := range l.Members {
		a.totals[i] = m.TotalBalance
	}

	for i := 0; i < a.size(); i++ {
		for j := i + 1; j < a.size(); j++ {
			net := l.Debt(ids[i], ids[j]).Sub(l.Debt(ids[j], ids[i]))
			switch {
			case net.IsPositive():
				a.set(i, j, net)
			case net.IsNegative():
				a.set(j, i, net.Neg())
			}
		}
	}
	return a.ledger()
}

// PairNet returns the signed amount from owes to after netting both
// directions. It equals NetGroupLedger(l).Debt(from, to) when positive.
func (l *GroupLedger) PairNet(from, to string) decimal.Decimal {
	return l.Debt(from, to).Sub(l.Debt(to, from))
}
