package handlers

import (
	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/services"
)

// Amounts leave the service as exact decimals and are rounded to two
// places only here.

func userInfo(users map[string]models.User, id string) models.UserInfo {
	if u, ok := users[id]; ok {
		return u.Info()
	}
	return models.UserInfo{ID: id}
}

func counterpartAmounts(entries []ledger.CounterpartBalance, users map[string]models.User) []models.CounterpartAmount {
	out := make([]models.CounterpartAmount, len(entries))
	for i, e := range entries {
		out[i] = models.CounterpartAmount{User: userInfo(users, e.UserID), Amount: ledger.Display(e.Amount)}
	}
	return out
}

func toDashboardResponse(res *services.DashboardResult) models.DashboardResponse {
	b := res.Balances
	groups := make([]models.DashboardGroup, len(res.Groups))
	for i, g := range res.Groups {
		groups[i] = models.DashboardGroup{
			ID:               g.Group.ID,
			Name:             g.Group.Name,
			Type:             g.Group.Type,
			MemberCount:      g.Group.MemberCount,
			MyBalanceInGroup: ledger.Display(g.Balance),
			State:            models.StateOf(g.Balance),
		}
	}
	return models.DashboardResponse{
		User: res.User.Info(),
		Metrics: models.DashboardMetrics{
			TotalNetBalance: ledger.Display(b.TotalBalance),
			TotalYouOwe:     ledger.Display(b.TotalYouOwe),
			TotalYouAreOwed: ledger.Display(b.TotalYouAreOwed),
		},
		YouOwe:       counterpartAmounts(b.YouOwe, res.Users),
		YouAreOwedBy: counterpartAmounts(b.YouAreOwedBy, res.Users),
		Groups:       groups,
	}
}

func toPairwiseResponse(res *services.PairwiseResult) models.PairwiseBalanceResponse {
	expenses := res.Expenses
	if expenses == nil {
		expenses = []models.Expense{}
	}
	settlements := res.Settlements
	if settlements == nil {
		settlements = []models.Settlement{}
	}
	return models.PairwiseBalanceResponse{
		Counterpart: res.Counterpart.Info(),
		NetAmount:   ledger.Display(res.Balance.NetAmount),
		TotalOwed:   ledger.Display(res.Balance.TotalOwed),
		TotalOwing:  ledger.Display(res.Balance.TotalOwing),
		State:       models.StateOf(res.Balance.NetAmount),
		Expenses:    expenses,
		Settlements: settlements,
	}
}

func debtEntries(debts []ledger.Debt, users map[string]models.User) []models.DebtEntry {
	out := make([]models.DebtEntry, len(debts))
	for i, d := range debts {
		out[i] = models.DebtEntry{User: userInfo(users, d.UserID), Amount: ledger.Display(d.Amount)}
	}
	return out
}

func toGroupBalancesResponse(res *services.GroupBalancesResult) models.GroupBalancesResponse {
	users := make(map[string]models.User, len(res.Group.Members))
	for _, m := range res.Group.Members {
		users[m.ID] = m
	}
	members := make([]models.GroupMemberBalance, len(res.Ledger.Members))
	for i, m := range res.Ledger.Members {
		members[i] = models.GroupMemberBalance{
			User:         userInfo(users, m.UserID),
			TotalBalance: ledger.Display(m.TotalBalance),
			State:        models.StateOf(m.TotalBalance),
			Owes:         debtEntries(m.Owes, users),
			OwedBy:       debtEntries(m.OwedBy, users),
		}
	}
	return models.GroupBalancesResponse{GroupID: res.Group.ID, Netted: res.Netted, Members: members}
}

func toContactsResponse(res *services.ContactsResult) models.ContactsResponse {
	users := make([]models.Contact, len(res.Users))
	for i, u := range res.Users {
		users[i] = models.Contact{UserInfo: u.Info(), Email: u.Email}
	}
	groups := make([]models.ContactGroup, len(res.Groups))
	for i, g := range res.Groups {
		groups[i] = models.ContactGroup{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Type:        g.Type,
			MemberCount: g.MemberCount,
		}
	}
	return models.ContactsResponse{Users: users, Groups: groups}
}

func toGroupResponse(g *models.Group) models.GroupResponse {
	members := make([]models.GroupMember, len(g.Members))
	for i, m := range g.Members {
		members[i] = models.GroupMember{UserInfo: m.Info(), Role: m.Role}
	}
	createdBy := ""
	if g.CreatedBy != nil {
		createdBy = *g.CreatedBy
	}
	return models.GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Type:        g.Type,
		CreatedBy:   createdBy,
		Members:     members,
	}
}

func toSpendingResponse(res *services.SpendingResult) models.SpendingResponse {
	monthly := make([]models.MonthlySpend, len(res.Monthly))
	for i, m := range res.Monthly {
		monthly[i] = models.MonthlySpend{Month: int(m.Month), Name: m.Month.String(), Total: ledger.Display(m.Total)}
	}
	return models.SpendingResponse{Year: res.Year, TotalSpent: ledger.Display(res.Total), Monthly: monthly}
}
