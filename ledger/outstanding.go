package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutstandingDebt is a direct debt the debtor has not cleared. Since is the
// date of the oldest unpaid expense behind it.
type OutstandingDebt struct {
	CreditorID string
	Amount     decimal.Decimal
	Since      time.Time
}

type DebtorDigest struct {
	DebtorID string
	Total    decimal.Decimal
	Debts    []OutstandingDebt
}

// OutstandingDebts lists, for each of users, the direct counterparts they
// owe money to. Users without outstanding debts are left out. The result
// follows the order of users; each digest's debts are sorted largest first.
func OutstandingDebts(users []string, expenses []Expense, settlements []Settlement) []DebtorDigest {
	direct := Direct.FilterExpenses(expenses)
	directSettlements := Direct.FilterSettlements(settlements)

	digests := make([]DebtorDigest, 0)
	for _, userID := range users {
		d := ComputeDashboardBalances(userID, Direct, direct, directSettlements)
		if len(d.YouOwe) == 0 {
			continue
		}

		since := oldestUnpaid(userID, direct)
		digest := DebtorDigest{DebtorID: userID, Total: decimal.Zero}
		for _, owed := range d.YouOwe {
			digest.Debts = append(digest.Debts, OutstandingDebt{
				CreditorID: owed.UserID,
				Amount:     owed.Amount,
				Since:      since[owed.UserID],
			})
			digest.Total = digest.Total.Add(owed.Amount)
		}
		digests = append(digests, digest)
	}
	return digests
}

// oldestUnpaid maps each payer to the earliest expense in which userID still
// holds an unpaid split.
func oldestUnpaid(userID string, expenses []Expense) map[string]time.Time {
	since := make(map[string]time.Time)
	for _, e := range expenses {
		if e.PayerID == userID {
			continue
		}
		amount, paid, ok := e.ShareOf(userID)
		if !ok || paid || !amount.IsPositive() {
			continue
		}
		if cur, seen := since[e.PayerID]; !seen || e.Date.Before(cur) {
			since[e.PayerID] = e.Date
		}
	}
	return since
}
