package ledger

import (
	"testing"

	apperrors "splitledger-backend/errors"
)

func TestComputeGroupLedgerEvenSplit(t *testing.T) {
	members := []string{"A", "B", "C"}
	expenses := []Expense{
		expense("e1", "g1", "A", "90", split("A", "30", false), split("B", "30", false), split("C", "30", false)),
	}

	l, err := ComputeGroupLedger(members, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, "debt[B][A]", l.Debt("B", "A"), "30")
	assertAmount(t, "debt[C][A]", l.Debt("C", "A"), "30")
	assertAmount(t, "debt[A][B]", l.Debt("A", "B"), "0")

	totals := l.Totals()
	assertAmount(t, "totals[A]", totals["A"], "60")
	assertAmount(t, "totals[B]", totals["B"], "-30")
	assertAmount(t, "totals[C]", totals["C"], "-30")
	if !l.Imbalance().IsZero() {
		t.Errorf("expected totals to sum to zero, got %s", l.Imbalance())
	}

	a, _ := l.Member("A")
	if len(a.Owes) != 0 || len(a.OwedBy) != 2 || a.OwedBy[0].UserID != "B" || a.OwedBy[1].UserID != "C" {
		t.Errorf("unexpected lists for A: %+v", a)
	}
	b, _ := l.Member("B")
	if len(b.Owes) != 1 || b.Owes[0].UserID != "A" || len(b.OwedBy) != 0 {
		t.Errorf("unexpected lists for B: %+v", b)
	}

	for i, m := range l.Members {
		if m.UserID != members[i] {
			t.Errorf("member %d: got %s, want %s", i, m.UserID, members[i])
		}
	}
}

func TestComputeGroupLedgerRawDirections(t *testing.T) {
	members := []string{"A", "B"}
	expenses := []Expense{
		expense("e1", "g1", "A", "20", split("A", "10", false), split("B", "10", false)),
		expense("e2", "g1", "B", "6", split("A", "3", false), split("B", "3", false)),
	}

	l, err := ComputeGroupLedger(members, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, "debt[B][A]", l.Debt("B", "A"), "10")
	assertAmount(t, "debt[A][B]", l.Debt("A", "B"), "3")

	a, _ := l.Member("A")
	if len(a.Owes) != 1 || len(a.OwedBy) != 1 {
		t.Fatalf("expected A to appear on both sides of the pair, got %+v", a)
	}
	assertAmount(t, "A owes B", a.Owes[0].Amount, "3")
	assertAmount(t, "A owed by B", a.OwedBy[0].Amount, "10")
	assertAmount(t, "A total", a.TotalBalance, "7")
}

func TestComputeGroupLedgerSettlements(t *testing.T) {
	members := []string{"A", "B", "C"}
	expenses := []Expense{
		expense("e1", "g1", "A", "90", split("A", "30", false), split("B", "30", false), split("C", "30", false)),
		expense("e2", "g1", "C", "40", split("A", "20", true), split("C", "20", false)),
	}
	settlements := []Settlement{
		settlement("s1", "g1", "B", "A", "30"),
		settlement("s2", "g1", "C", "A", "45"),
	}

	l, err := ComputeGroupLedger(members, expenses, settlements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, "debt[B][A]", l.Debt("B", "A"), "0")
	assertAmount(t, "debt[C][A]", l.Debt("C", "A"), "-15")

	totals := l.Totals()
	assertAmount(t, "totals[A]", totals["A"], "-15")
	assertAmount(t, "totals[B]", totals["B"], "0")
	assertAmount(t, "totals[C]", totals["C"], "15")

	c, _ := l.Member("C")
	if len(c.Owes) != 0 || len(c.OwedBy) != 0 {
		t.Errorf("negative cells must not be listed, got %+v", c)
	}
}

func TestComputeGroupLedgerConservation(t *testing.T) {
	members := []string{"A", "B", "C", "D"}
	expenses := []Expense{
		expense("e1", "g1", "A", "100", split("A", "33.33", false), split("B", "33.33", false), split("C", "33.34", false)),
		expense("e2", "g1", "B", "17.89", split("A", "5.963", false), split("C", "5.963", true), split("D", "5.964", false)),
		expense("e3", "g1", "D", "250", split("A", "100", false), split("B", "50", false), split("C", "50", false), split("D", "50", false)),
		expense("e4", "g1", "C", "12", split("C", "12", false)),
		expense("e5", "g1", "A", "1000.01", split("D", "1000.01", false)),
	}
	settlements := []Settlement{
		settlement("s1", "g1", "B", "A", "10"),
		settlement("s2", "g1", "D", "A", "2000"),
		settlement("s3", "g1", "C", "B", "0.01"),
	}

	l, err := ComputeGroupLedger(members, expenses, settlements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Imbalance().IsZero() {
		t.Errorf("expected totals to sum to exactly zero, got %s", l.Imbalance())
	}

	for _, m := range l.Members {
		credit := d("0")
		debit := d("0")
		for _, other := range members {
			if other == m.UserID {
				continue
			}
			credit = credit.Add(l.Debt(other, m.UserID))
			debit = debit.Add(l.Debt(m.UserID, other))
		}
		if !m.TotalBalance.Equal(credit.Sub(debit)) {
			t.Errorf("%s: total %s does not match matrix %s", m.UserID, m.TotalBalance, credit.Sub(debit))
		}
	}
}

func TestComputeGroupLedgerPaidSplitsExcluded(t *testing.T) {
	members := []string{"A", "B", "C"}
	expenses := []Expense{
		expense("e1", "g1", "A", "90", split("A", "30", true), split("B", "30", true), split("C", "30", true)),
	}

	l, err := ComputeGroupLedger(members, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range l.Members {
		if !m.TotalBalance.IsZero() || len(m.Owes) != 0 || len(m.OwedBy) != 0 {
			t.Errorf("expected %s untouched, got %+v", m.UserID, m)
		}
	}
}

func TestComputeGroupLedgerErrors(t *testing.T) {
	tests := []struct {
		name        string
		members     []string
		expenses    []Expense
		settlements []Settlement
		wantCode    apperrors.ErrorCode
	}{
		{
			name:     "Split User Outside Group",
			members:  []string{"A", "B"},
			expenses: []Expense{expense("e1", "g1", "A", "90", split("A", "30", false), split("B", "30", false), split("X", "30", false))},
			wantCode: apperrors.CodeDataIntegrity,
		},
		{
			name:     "Paid Split User Outside Group",
			members:  []string{"A", "B"},
			expenses: []Expense{expense("e1", "g1", "A", "20", split("A", "10", false), split("X", "10", true))},
			wantCode: apperrors.CodeDataIntegrity,
		},
		{
			name:     "Payer Outside Group",
			members:  []string{"A", "B"},
			expenses: []Expense{expense("e1", "g1", "X", "20", split("A", "10", false), split("B", "10", false))},
			wantCode: apperrors.CodeDataIntegrity,
		},
		{
			name:        "Settlement Receiver Outside Group",
			members:     []string{"A", "B"},
			settlements: []Settlement{settlement("s1", "g1", "A", "X", "5")},
			wantCode:    apperrors.CodeDataIntegrity,
		},
		{
			name:     "Duplicate Member",
			members:  []string{"A", "B", "A"},
			wantCode: apperrors.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ComputeGroupLedger(tt.members, tt.expenses, tt.settlements)
			if l != nil {
				t.Error("expected no ledger on failure")
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestComputeGroupLedgerEmpty(t *testing.T) {
	l, err := ComputeGroupLedger(nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.Members) != 0 || !l.Imbalance().IsZero() {
		t.Errorf("expected an empty ledger, got %+v", l)
	}
}

func TestGroupLedgerMatrixIsCopy(t *testing.T) {
	l, err := ComputeGroupLedger([]string{"A", "B"}, []Expense{expense("e1", "g1", "A", "10", split("B", "10", false))}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := l.Matrix()
	m["B"]["A"] = d("999")
	assertAmount(t, "debt[B][A]", l.Debt("B", "A"), "10")
}
