package ledger

import (
	"testing"

	apperrors "splitledger-backend/errors"
)

func TestComputePairwiseBalance(t *testing.T) {
	tests := []struct {
		name        string
		subject     string
		counterpart string
		scope       Scope
		expenses    []Expense
		settlements []Settlement
		wantNet     string
		wantOwed    string
		wantOwing   string
	}{
		{
			name:        "Payer Is Owed Other Share",
			subject:     "A",
			counterpart: "B",
			expenses:    []Expense{expense("e1", "", "A", "100", split("A", "50", false), split("B", "50", false))},
			wantNet:     "50",
			wantOwed:    "50",
			wantOwing:   "0",
		},
		{
			name:        "Reverse View",
			subject:     "B",
			counterpart: "A",
			expenses:    []Expense{expense("e1", "", "A", "100", split("A", "50", false), split("B", "50", false))},
			wantNet:     "-50",
			wantOwed:    "0",
			wantOwing:   "50",
		},
		{
			name:        "Settlement Clears Debt",
			subject:     "A",
			counterpart: "B",
			expenses:    []Expense{expense("e1", "", "A", "100", split("A", "50", false), split("B", "50", false))},
			settlements: []Settlement{settlement("s1", "", "B", "A", "50")},
			wantNet:     "0",
			wantOwed:    "0",
			wantOwing:   "0",
		},
		{
			name:        "Overpayment Flips Direction",
			subject:     "A",
			counterpart: "B",
			expenses:    []Expense{expense("e1", "", "A", "100", split("A", "50", false), split("B", "50", false))},
			settlements: []Settlement{settlement("s1", "", "B", "A", "70")},
			wantNet:     "-20",
			wantOwed:    "-20",
			wantOwing:   "0",
		},
		{
			name:        "Paid Splits Are Ignored",
			subject:     "A",
			counterpart: "B",
			expenses:    []Expense{expense("e1", "", "A", "100", split("A", "50", true), split("B", "50", true))},
			wantNet:     "0",
			wantOwed:    "0",
			wantOwing:   "0",
		},
		{
			name:        "Both Directions Accumulate",
			subject:     "A",
			counterpart: "B",
			expenses: []Expense{
				expense("e1", "", "A", "30", split("A", "10", false), split("B", "20", false)),
				expense("e2", "", "B", "12", split("A", "7.5", false), split("B", "4.5", false)),
			},
			wantNet:   "12.5",
			wantOwed:  "20",
			wantOwing: "7.5",
		},
		{
			name:        "Third Party Payer Creates No Pairwise Debt",
			subject:     "A",
			counterpart: "B",
			expenses:    []Expense{expense("e1", "", "C", "90", split("A", "30", false), split("B", "30", false), split("C", "30", false))},
			wantNet:     "0",
			wantOwed:    "0",
			wantOwing:   "0",
		},
		{
			name:        "Group Records Outside Direct Scope",
			subject:     "A",
			counterpart: "B",
			expenses: []Expense{
				expense("e1", "", "A", "20", split("A", "10", false), split("B", "10", false)),
				expense("e2", "g1", "A", "100", split("A", "50", false), split("B", "50", false)),
			},
			settlements: []Settlement{settlement("s1", "g1", "B", "A", "50")},
			wantNet:     "10",
			wantOwed:    "10",
			wantOwing:   "0",
		},
		{
			name:        "Group Scope",
			subject:     "A",
			counterpart: "B",
			scope:       Group("g1"),
			expenses: []Expense{
				expense("e1", "", "A", "20", split("A", "10", false), split("B", "10", false)),
				expense("e2", "g1", "A", "100", split("A", "50", false), split("B", "50", false)),
			},
			settlements: []Settlement{settlement("s1", "g1", "B", "A", "20")},
			wantNet:     "30",
			wantOwed:    "30",
			wantOwing:   "0",
		},
		{
			name:        "Full Precision Accumulation",
			subject:     "A",
			counterpart: "B",
			expenses: []Expense{
				expense("e1", "", "A", "10", split("A", "6.665", false), split("B", "3.335", false)),
				expense("e2", "", "A", "10", split("A", "6.665", false), split("B", "3.335", false)),
			},
			wantNet:   "6.67",
			wantOwed:  "6.67",
			wantOwing: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePairwiseBalance(tt.subject, tt.counterpart, tt.scope, tt.expenses, tt.settlements)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertAmount(t, "net", got.NetAmount, tt.wantNet)
			assertAmount(t, "owed", got.TotalOwed, tt.wantOwed)
			assertAmount(t, "owing", got.TotalOwing, tt.wantOwing)
		})
	}
}

func TestComputePairwiseBalanceSelf(t *testing.T) {
	_, err := ComputePairwiseBalance("A", "A", Direct, nil, nil)
	if !apperrors.HasCode(err, apperrors.CodeCannotSelfAction) {
		t.Fatalf("expected self comparison to fail, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if apperrors.GetHTTPStatus(appErr.Type) != 400 {
		t.Errorf("expected a bad request class error, got type %d", appErr.Type)
	}
}

func TestPairwiseSymmetry(t *testing.T) {
	expenses := []Expense{
		expense("e1", "", "A", "100", split("A", "50", false), split("B", "50", false)),
		expense("e2", "", "B", "45.30", split("A", "15.10", false), split("B", "15.10", true), split("C", "15.10", false)),
		expense("e3", "", "C", "9", split("A", "3", false), split("B", "3", false), split("C", "3", false)),
		expense("e4", "", "A", "12.01", split("B", "6", false), split("C", "6.01", true)),
	}
	settlements := []Settlement{
		settlement("s1", "", "B", "A", "20"),
		settlement("s2", "", "A", "C", "1.5"),
		settlement("s3", "", "C", "B", "4"),
	}

	users := []string{"A", "B", "C"}
	for _, u := range users {
		for _, v := range users {
			if u == v {
				continue
			}
			uv, err := ComputePairwiseBalance(u, v, Direct, expenses, settlements)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			vu, err := ComputePairwiseBalance(v, u, Direct, expenses, settlements)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !uv.NetAmount.Equal(vu.NetAmount.Neg()) {
				t.Errorf("%s->%s = %s but %s->%s = %s", u, v, uv.NetAmount, v, u, vu.NetAmount)
			}
		}
	}
}

func TestSettlementCancelsExpense(t *testing.T) {
	expenses := []Expense{expense("e1", "", "A", "42.42", split("B", "42.42", false))}
	settlements := []Settlement{settlement("s1", "", "B", "A", "42.42")}

	got, err := ComputePairwiseBalance("A", "B", Direct, expenses, settlements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.NetAmount.IsZero() {
		t.Errorf("expected a zero balance, got %s", got.NetAmount)
	}
}
