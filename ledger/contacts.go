package ledger

// Counterparts returns everyone userID shares a direct expense with, in the
// order they are first encountered.
func Counterparts(userID string, expenses []Expense) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	add := func(id string) {
		if id == "" || id == userID {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, e := range expenses {
		if e.GroupID != "" || !e.Involves(userID) {
			continue
		}
		add(e.PayerID)
		for _, s := range e.Splits {
			add(s.UserID)
		}
	}
	return out
}
