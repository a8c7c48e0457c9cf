package ledger

// Scope selects which records a pairwise fold considers: direct records (no
// group) or the records of exactly one group.
type Scope struct {
	GroupID string
}

// Direct is the scope of records that belong to no group.
var Direct = Scope{}

func Group(groupID string) Scope {
	return Scope{GroupID: groupID}
}

func (s Scope) includes(groupID string) bool {
	return groupID == s.GroupID
}

// FilterExpenses returns the expenses that fall inside the scope.
func (s Scope) FilterExpenses(expenses []Expense) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if s.includes(e.GroupID) {
			out = append(out, e)
		}
	}
	return out
}

// FilterSettlements returns the settlements that fall inside the scope.
func (s Scope) FilterSettlements(settlements []Settlement) []Settlement {
	out := make([]Settlement, 0, len(settlements))
	for _, st := range settlements {
		if s.includes(st.GroupID) {
			out = append(out, st)
		}
	}
	return out
}
