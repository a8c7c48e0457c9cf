package ledger

import (
	apperrors "splitledger-backend/errors"

	"github.com/shopspring/decimal"
)

// PairwiseBalance is the balance between a subject and one counterpart, seen
// from the subject's side. A positive NetAmount means the counterpart owes
// the subject.
type PairwiseBalance struct {
	NetAmount  decimal.Decimal
	TotalOwed  decimal.Decimal
	TotalOwing decimal.Decimal
}

// counterpartTally accumulates the two directions of one relationship.
type counterpartTally struct {
	owed  decimal.Decimal
	owing decimal.Decimal
}

func (c *counterpartTally) net() decimal.Decimal {
	return c.owed.Sub(c.owing)
}

// tally folds records from the subject's point of view. When only is set,
// every record that does not pass between subject and only is ignored.
type tally struct {
	subject string
	only    string
	scope   Scope

	order      []string
	byUser     map[string]*counterpartTally
	youOwe     decimal.Decimal
	youAreOwed decimal.Decimal
}

func newTally(subject, only string, scope Scope) *tally {
	return &tally{
		subject: subject,
		only:    only,
		scope:   scope,
		byUser:  make(map[string]*counterpartTally),
	}
}

func (t *tally) accepts(counterpart string) bool {
	if counterpart == t.subject {
		return false
	}
	return t.only == "" || counterpart == t.only
}

func (t *tally) entry(counterpart string) *counterpartTally {
	c, ok := t.byUser[counterpart]
	if !ok {
		c = &counterpartTally{}
		t.byUser[counterpart] = c
		t.order = append(t.order, counterpart)
	}
	return c
}

func (t *tally) addExpense(e Expense) {
	if !t.scope.includes(e.GroupID) {
		return
	}

	if e.PayerID == t.subject {
		for _, s := range e.Splits {
			if s.Paid || !t.accepts(s.UserID) {
				continue
			}
			c := t.entry(s.UserID)
			c.owed = c.owed.Add(s.Amount)
			t.youAreOwed = t.youAreOwed.Add(s.Amount)
		}
		return
	}

	if !t.accepts(e.PayerID) {
		return
	}
	for _, s := range e.Splits {
		if s.UserID != t.subject || s.Paid {
			continue
		}
		c := t.entry(e.PayerID)
		c.owing = c.owing.Add(s.Amount)
		t.youOwe = t.youOwe.Add(s.Amount)
	}
}

func (t *tally) addSettlement(s Settlement) {
	if !t.scope.includes(s.GroupID) || s.PayerID == s.ReceiverID {
		return
	}

	switch t.subject {
	case s.PayerID:
		if !t.accepts(s.ReceiverID) {
			return
		}
		c := t.entry(s.ReceiverID)
		c.owing = c.owing.Sub(s.Amount)
		t.youOwe = t.youOwe.Sub(s.Amount)
	case s.ReceiverID:
		if !t.accepts(s.PayerID) {
			return
		}
		c := t.entry(s.PayerID)
		c.owed = c.owed.Sub(s.Amount)
		t.youAreOwed = t.youAreOwed.Sub(s.Amount)
	}
}

func (t *tally) fold(expenses []Expense, settlements []Settlement) *tally {
	for _, e := range expenses {
		t.addExpense(e)
	}
	for _, s := range settlements {
		t.addSettlement(s)
	}
	return t
}

// ComputePairwiseBalance folds the records that pass between subject and
// counterpart inside scope. Expenses paid by a third party never create a
// debt between the two.
func ComputePairwiseBalance(subject, counterpart string, scope Scope, expenses []Expense, settlements []Settlement) (PairwiseBalance, error) {
	if subject == "" || counterpart == "" {
		return PairwiseBalance{}, apperrors.MissingRequiredField("User")
	}
	if subject == counterpart {
		return PairwiseBalance{}, apperrors.CannotSelfAction("compute a balance against")
	}

	t := newTally(subject, counterpart, scope).fold(expenses, settlements)
	c, ok := t.byUser[counterpart]
	if !ok {
		return PairwiseBalance{NetAmount: decimal.Zero, TotalOwed: decimal.Zero, TotalOwing: decimal.Zero}, nil
	}
	return PairwiseBalance{
		NetAmount:  c.net(),
		TotalOwed:  c.owed,
		TotalOwing: c.owing,
	}, nil
}
