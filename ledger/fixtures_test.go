package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var day0 = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func split(user, amount string, paid bool) Split {
	return Split{UserID: user, Amount: d(amount), Paid: paid}
}

func expense(id, group, payer, amount string, splits ...Split) Expense {
	return Expense{ID: id, GroupID: group, PayerID: payer, Amount: d(amount), Splits: splits, Date: day0}
}

func settlement(id, group, payer, receiver, amount string) Settlement {
	return Settlement{ID: id, GroupID: group, PayerID: payer, ReceiverID: receiver, Amount: d(amount), Date: day0}
}

func assertAmount(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s: got %s, want %s", label, got, want)
	}
}
