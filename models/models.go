package models

import (
	"time"

	"splitledger-backend/ledger"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	// Role is set only when the user is loaded as a group member.
	Role GroupRole `json:"role,omitempty" db:"role"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

type GroupType string

const (
	GroupTypeTrip   GroupType = "TRIP"
	GroupTypeHome   GroupType = "HOME"
	GroupTypeCouple GroupType = "COUPLE"
	GroupTypeOther  GroupType = "OTHER"
)

func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeTrip, GroupTypeHome, GroupTypeCouple, GroupTypeOther:
		return true
	}
	return false
}

type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "ADMIN"
	GroupRoleMember GroupRole = "MEMBER"
)

type Group struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Type        GroupType `json:"type" db:"type"`
	CreatedBy   *string   `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	MemberCount int       `json:"member_count,omitempty" db:"member_count"`
	Members     []User    `json:"members,omitempty"`
}

// MemberIDs returns the ids of the loaded members in load order.
func (g Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

type Expense struct {
	ID           string          `json:"id" db:"id"`
	GroupID      *string         `json:"group_id,omitempty" db:"group_id"`
	PaidByUserID string          `json:"paid_by_user_id" db:"paid_by_user_id"`
	CreatedBy    string          `json:"created_by" db:"created_by"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	Description  string          `json:"description" db:"description"`
	Date         time.Time       `json:"date" db:"expense_date"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	Splits       []ExpenseSplit  `json:"splits,omitempty"`
}

type ExpenseSplit struct {
	ID        string          `json:"id" db:"id"`
	ExpenseID string          `json:"expense_id" db:"expense_id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Paid      bool            `json:"paid" db:"paid"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UserName  string          `json:"user_name,omitempty"`
}

// Involves reports whether userID paid for, created or holds a split in the expense.
func (e Expense) Involves(userID string) bool {
	if e.PaidByUserID == userID || e.CreatedBy == userID {
		return true
	}
	for _, s := range e.Splits {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

func (e Expense) ToLedger() ledger.Expense {
	splits := make([]ledger.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = ledger.Split{UserID: s.UserID, Amount: s.Amount, Paid: s.Paid}
	}
	return ledger.Expense{
		ID:      e.ID,
		GroupID: deref(e.GroupID),
		PayerID: e.PaidByUserID,
		Amount:  e.TotalAmount,
		Splits:  splits,
		Date:    e.Date,
	}
}

type Settlement struct {
	ID         string          `json:"id" db:"id"`
	GroupID    *string         `json:"group_id,omitempty" db:"group_id"`
	PayerID    string          `json:"payer_id" db:"payer_id"`
	ReceiverID string          `json:"receiver_id" db:"receiver_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Note       *string         `json:"note,omitempty" db:"note"`
	Date       time.Time       `json:"date" db:"settled_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

func (s Settlement) ToLedger() ledger.Settlement {
	return ledger.Settlement{
		ID:         s.ID,
		GroupID:    deref(s.GroupID),
		PayerID:    s.PayerID,
		ReceiverID: s.ReceiverID,
		Amount:     s.Amount,
		Date:       s.Date,
	}
}

func ExpensesToLedger(expenses []Expense) []ledger.Expense {
	out := make([]ledger.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.ToLedger()
	}
	return out
}

func SettlementsToLedger(settlements []Settlement) []ledger.Settlement {
	out := make([]ledger.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = s.ToLedger()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type CreateExpenseRequest struct {
	GroupID      *string         `json:"group_id,omitempty"`
	PaidByUserID string          `json:"paid_by_user_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Description  string          `json:"description"`
	Date         *time.Time      `json:"date,omitempty"`
	Splits       []SplitRequest  `json:"splits"`
}

type SplitRequest struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Paid   bool            `json:"paid,omitempty"`
}

type CreateGroupRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        GroupType `json:"type,omitempty"`
	MemberIDs   []string  `json:"member_ids"`
}

type CreateSettlementRequest struct {
	GroupID    *string         `json:"group_id,omitempty"`
	PayerID    string          `json:"payer_id,omitempty"`
	ReceiverID string          `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note,omitempty"`
	Date       *time.Time      `json:"date,omitempty"`
}

type BalanceState string

const (
	BalanceStateOwed    BalanceState = "OWED"
	BalanceStateOwes    BalanceState = "OWES"
	BalanceStateSettled BalanceState = "SETTLED"
)

// StateOf classifies a signed net seen from its owner: positive means others owe them.
func StateOf(net decimal.Decimal) BalanceState {
	switch {
	case net.IsPositive():
		return BalanceStateOwed
	case net.IsNegative():
		return BalanceStateOwes
	default:
		return BalanceStateSettled
	}
}

type UserInfo struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type DashboardResponse struct {
	User         UserInfo            `json:"user"`
	Metrics      DashboardMetrics    `json:"metrics"`
	YouOwe       []CounterpartAmount `json:"you_owe"`
	YouAreOwedBy []CounterpartAmount `json:"you_are_owed_by"`
	Groups       []DashboardGroup    `json:"groups"`
}

type DashboardMetrics struct {
	TotalNetBalance float64 `json:"total_net_balance"`
	TotalYouOwe     float64 `json:"total_you_owe"`
	TotalYouAreOwed float64 `json:"total_you_are_owed"`
}

type CounterpartAmount struct {
	User   UserInfo `json:"user"`
	Amount float64  `json:"amount"`
}

type DashboardGroup struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Type             GroupType    `json:"type,omitempty"`
	MemberCount      int          `json:"member_count"`
	MyBalanceInGroup float64      `json:"my_balance_in_group"`
	State            BalanceState `json:"state"`
}

type PairwiseBalanceResponse struct {
	Counterpart UserInfo     `json:"counterpart"`
	NetAmount   float64      `json:"net_amount"`
	TotalOwed   float64      `json:"total_owed"`
	TotalOwing  float64      `json:"total_owing"`
	State       BalanceState `json:"state"`
	Expenses    []Expense    `json:"expenses"`
	Settlements []Settlement `json:"settlements"`
}

type GroupBalancesResponse struct {
	GroupID string               `json:"group_id"`
	Netted  bool                 `json:"netted"`
	Members []GroupMemberBalance `json:"members"`
}

type GroupMemberBalance struct {
	User         UserInfo     `json:"user"`
	TotalBalance float64      `json:"total_balance"`
	State        BalanceState `json:"state"`
	Owes         []DebtEntry  `json:"owes"`
	OwedBy       []DebtEntry  `json:"owed_by"`
}

type DebtEntry struct {
	User   UserInfo `json:"user"`
	Amount float64  `json:"amount"`
}

type Contact struct {
	UserInfo
	Email string `json:"email"`
}

type ContactGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        GroupType `json:"type"`
	MemberCount int       `json:"member_count"`
}

type ContactsResponse struct {
	Users  []Contact      `json:"users"`
	Groups []ContactGroup `json:"groups"`
}

type GroupResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        GroupType     `json:"type"`
	CreatedBy   string        `json:"created_by"`
	Members     []GroupMember `json:"members"`
}

type GroupMember struct {
	UserInfo
	Role GroupRole `json:"role"`
}

type SpendingResponse struct {
	Year       int            `json:"year"`
	TotalSpent float64        `json:"total_spent"`
	Monthly    []MonthlySpend `json:"monthly"`
}

type MonthlySpend struct {
	Month int     `json:"month"`
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

type DebtExplanation struct {
	CounterpartID string `json:"counterpart_id"`
	Explanation   string `json:"explanation"`
}
