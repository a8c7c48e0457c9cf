package ledger

import (
	"fmt"

	apperrors "splitledger-backend/errors"

	"github.com/shopspring/decimal"
)

// Debt is one directed amount in a group ledger. UserID is the other party:
// the creditor in an Owes list, the debtor in an OwedBy list.
type Debt struct {
	UserID string
	Amount decimal.Decimal
}

type MemberLedger struct {
	UserID       string
	TotalBalance decimal.Decimal
	Owes         []Debt
	OwedBy       []Debt
}

// GroupLedger is the full debt picture of a closed member set. Members keeps
// the order the members were given in.
type GroupLedger struct {
	Members []MemberLedger

	matrix map[string]map[string]decimal.Decimal
}

// Debt returns what from owes to as recorded in the matrix. The value can be
// negative when settlements exceed the expenses between the pair.
func (l *GroupLedger) Debt(from, to string) decimal.Decimal {
	return l.matrix[from][to]
}

// Matrix returns a copy of the directed debt matrix keyed by member id.
func (l *GroupLedger) Matrix() map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal, len(l.matrix))
	for from, row := range l.matrix {
		copied := make(map[string]decimal.Decimal, len(row))
		for to, amount := range row {
			copied[to] = amount
		}
		out[from] = copied
	}
	return out
}

// Totals returns each member's signed balance keyed by member id.
func (l *GroupLedger) Totals() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(l.Members))
	for _, m := range l.Members {
		out[m.UserID] = m.TotalBalance
	}
	return out
}

func (l *GroupLedger) Member(userID string) (MemberLedger, bool) {
	for _, m := range l.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return MemberLedger{}, false
}

// Imbalance is the sum of all member totals. It is zero for every ledger
// produced by ComputeGroupLedger.
func (l *GroupLedger) Imbalance() decimal.Decimal {
	total := decimal.Zero
	for _, m := range l.Members {
		total = total.Add(m.TotalBalance)
	}
	return total
}

// arena holds the matrix as a flat n*n slice addressed by dense member
// indexes assigned in input order.
type arena struct {
	ids    []string
	index  map[string]int
	debt   []decimal.Decimal
	totals []decimal.Decimal
}

func newArena(members []string) (*arena, error) {
	n := len(members)
	a := &arena{
		ids:    make([]string, n),
		index:  make(map[string]int, n),
		debt:   make([]decimal.Decimal, n*n),
		totals: make([]decimal.Decimal, n),
	}
	for i, id := range members {
		if id == "" {
			return nil, apperrors.InvalidRequest("Group member ids cannot be empty.")
		}
		if _, dup := a.index[id]; dup {
			return nil, apperrors.InvalidRequest(fmt.Sprintf("Member %s is listed more than once.", id))
		}
		a.index[id] = i
		a.ids[i] = id
	}
	for i := range a.debt {
		a.debt[i] = decimal.Zero
	}
	for i := range a.totals {
		a.totals[i] = decimal.Zero
	}
	return a, nil
}

func (a *arena) size() int {
	return len(a.ids)
}

func (a *arena) at(from, to int) decimal.Decimal {
	return a.debt[from*a.size()+to]
}

func (a *arena) set(from, to int, amount decimal.Decimal) {
	a.debt[from*a.size()+to] = amount
}

// move records that from now owes to amount more (negative to reduce it).
func (a *arena) move(from, to int, amount decimal.Decimal) {
	a.set(from, to, a.at(from, to).Add(amount))
	a.totals[to] = a.totals[to].Add(amount)
	a.totals[from] = a.totals[from].Sub(amount)
}

func (a *arena) lookup(userID, record, recordID, role string) (int, error) {
	i, ok := a.index[userID]
	if !ok {
		return 0, apperrors.DataIntegrity(fmt.Sprintf("%s %s: %s %q is not a group member", record, recordID, role, userID))
	}
	return i, nil
}

func (a *arena) addExpense(e Expense) error {
	p, err := a.lookup(e.PayerID, "expense", e.ID, "payer")
	if err != nil {
		return err
	}
	for _, s := range e.Splits {
		d, err := a.lookup(s.UserID, "expense", e.ID, "split user")
		if err != nil {
			return err
		}
		if d == p || s.Paid {
			continue
		}
		a.move(d, p, s.Amount)
	}
	return nil
}

func (a *arena) addSettlement(s Settlement) error {
	payer, err := a.lookup(s.PayerID, "settlement", s.ID, "payer")
	if err != nil {
		return err
	}
	receiver, err := a.lookup(s.ReceiverID, "settlement", s.ID, "receiver")
	if err != nil {
		return err
	}
	if payer == receiver {
		return nil
	}
	a.move(payer, receiver, s.Amount.Neg())
	return nil
}

// ledger builds the member-keyed output. Only strictly positive matrix cells
// appear in the Owes and OwedBy lists.
func (a *arena) ledger() *GroupLedger {
	n := a.size()
	l := &GroupLedger{
		Members: make([]MemberLedger, n),
		matrix:  make(map[string]map[string]decimal.Decimal, n),
	}

	for i, id := range a.ids {
		row := make(map[string]decimal.Decimal, n)
		m := MemberLedger{
			UserID:       id,
			TotalBalance: a.totals[i],
			Owes:         []Debt{},
			OwedBy:       []Debt{},
		}
		for j, other := range a.ids {
			if i == j {
				continue
			}
			row[other] = a.at(i, j)
			if owes := a.at(i, j); owes.IsPositive() {
				m.Owes = append(m.Owes, Debt{UserID: other, Amount: owes})
			}
			if owed := a.at(j, i); owed.IsPositive() {
				m.OwedBy = append(m.OwedBy, Debt{UserID: other, Amount: owed})
			}
		}
		l.Members[i] = m
		l.matrix[id] = row
	}
	return l
}

// ComputeGroupLedger builds the directed debt matrix for members from the
// group's full history. The matrix is not netted: A owing B and B owing A
// are kept as two separate amounts (see NetGroupLedger).
//
// Every payer, split user and settlement party must be in members; a record
// naming anyone else fails the whole computation with a data integrity
// error rather than being dropped.
func ComputeGroupLedger(members []string, expenses []Expense, settlements []Settlement) (*GroupLedger, error) {
	a, err := newArena(members)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		if err := a.addExpense(e); err != nil {
			return nil, err
		}
	}
	for _, s := range settlements {
		if err := a.addSettlement(s); err != nil {
			return nil, err
		}
	}
	return a.ledger(), nil
}
