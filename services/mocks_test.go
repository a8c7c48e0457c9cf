package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"splitledger-backend/database"
	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/notify"
	"splitledger-backend/repository"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var errDB = errors.New("connection reset by peer")

type mockUserRepo struct {
	users  map[string]models.User
	active []string
	err    error
}

func newMockUserRepo(users ...models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}
func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]models.User)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
func (m *mockUserRepo) ListWithDirectActivity(ctx context.Context) ([]string, error) {
	return m.active, m.err
}
func (m *mockUserRepo) WithTx(tx database.Querier) repository.UserRepository { return m }

type mockGroupRepo struct {
	groups    map[string]models.Group
	created   []models.Group
	added     map[string]models.GroupRole
	createErr error
}

func newMockGroupRepo(groups ...models.Group) *mockGroupRepo {
	m := &mockGroupRepo{groups: make(map[string]models.Group)}
	for _, g := range groups {
		g.MemberCount = len(g.Members)
		m.groups[g.ID] = g
	}
	return m
}

func (m *mockGroupRepo) GetByID(ctx context.Context, id string) (*models.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &g, nil
}
func (m *mockGroupRepo) GetByUserID(ctx context.Context, userID string) ([]models.Group, error) {
	var out []models.Group
	for _, g := range m.groups {
		for _, id := range g.MemberIDs() {
			if id == userID {
				out = append(out, g)
			}
		}
	}
	return out, nil
}
func (m *mockGroupRepo) GetMembers(ctx context.Context, groupID string) ([]models.User, error) {
	return m.groups[groupID].Members, nil
}
func (m *mockGroupRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	for _, id := range m.groups[groupID].MemberIDs() {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
func (m *mockGroupRepo) Create(ctx context.Context, group *models.Group) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, *group)
	return nil
}
func (m *mockGroupRepo) AddMember(ctx context.Context, groupID, userID string, role models.GroupRole) error {
	if m.added == nil {
		m.added = make(map[string]models.GroupRole)
	}
	m.added[userID] = role
	return nil
}
func (m *mockGroupRepo) WithTx(tx database.Querier) repository.GroupRepository { return m }

// mockExpenseRepo filters an in-memory slice the way the SQL queries do.
type mockExpenseRepo struct {
	mu       sync.Mutex
	expenses []models.Expense
	err      error
	created  []models.Expense
	deleted  []string
	// afterDirectLoad runs once a direct snapshot has been read.
	afterDirectLoad func()
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, e := range m.expenses {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}
func (m *mockExpenseRepo) GetDirectByUserID(ctx context.Context, userID string) ([]models.Expense, error) {
	out, err := m.filter(func(e models.Expense) bool { return e.GroupID == nil && e.Involves(userID) })
	if m.afterDirectLoad != nil {
		hook := m.afterDirectLoad
		m.afterDirectLoad = nil
		hook()
	}
	return out, err
}
func (m *mockExpenseRepo) GetDirectWithUnpaidSplits(ctx context.Context) ([]models.Expense, error) {
	return m.filter(func(e models.Expense) bool {
		if e.GroupID != nil {
			return false
		}
		for _, s := range e.Splits {
			if !s.Paid {
				return true
			}
		}
		return false
	})
}
func (m *mockExpenseRepo) GetByGroupID(ctx context.Context, groupID string) ([]models.Expense, error) {
	return m.filter(func(e models.Expense) bool { return e.GroupID != nil && *e.GroupID == groupID })
}
func (m *mockExpenseRepo) GetByParticipant(ctx context.Context, userID string, from, to time.Time) ([]models.Expense, error) {
	return m.filter(func(e models.Expense) bool {
		return e.Involves(userID) && !e.Date.Before(from) && e.Date.Before(to)
	})
}
func (m *mockExpenseRepo) filter(keep func(models.Expense) bool) ([]models.Expense, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Expense, 0)
	for _, e := range m.expenses {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}
func (m *mockExpenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *expense)
	return nil
}
func (m *mockExpenseRepo) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}
func (m *mockExpenseRepo) WithTx(tx database.Querier) repository.ExpenseRepository { return m }

type mockSettlementRepo struct {
	settlements []models.Settlement
	err         error
	created     []models.Settlement
}

func (m *mockSettlementRepo) GetDirect(ctx context.Context, userID, counterpartID string) ([]models.Settlement, error) {
	return m.filter(func(s models.Settlement) bool {
		if s.GroupID != nil || (s.PayerID != userID && s.ReceiverID != userID) {
			return false
		}
		return counterpartID == "" || s.PayerID == counterpartID || s.ReceiverID == counterpartID
	})
}
func (m *mockSettlementRepo) GetAllDirect(ctx context.Context) ([]models.Settlement, error) {
	return m.filter(func(s models.Settlement) bool { return s.GroupID == nil })
}
func (m *mockSettlementRepo) GetByGroupID(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return m.filter(func(s models.Settlement) bool { return s.GroupID != nil && *s.GroupID == groupID })
}
func (m *mockSettlementRepo) filter(keep func(models.Settlement) bool) ([]models.Settlement, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Settlement, 0)
	for _, s := range m.settlements {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m *mockSettlementRepo) Create(ctx context.Context, settlement *models.Settlement) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, *settlement)
	return nil
}
func (m *mockSettlementRepo) WithTx(tx database.Querier) repository.SettlementRepository { return m }

// fakeTx runs fn without a database and records whether it committed.
type fakeTx struct {
	commits   int
	rollbacks int
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(database.Querier) error) error {
	if err := fn(nil); err != nil {
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type mockCache struct {
	entries     map[string]ledger.Dashboard
	generations map[string]uint64
	invalidated []string
	getErr      error
	sets        int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]ledger.Dashboard), generations: make(map[string]uint64)}
}

func (m *mockCache) Get(ctx context.Context, userID string) (ledger.Dashboard, bool, error) {
	if m.getErr != nil {
		return ledger.Dashboard{}, false, m.getErr
	}
	d, ok := m.entries[userID]
	return d, ok, nil
}
func (m *mockCache) Generation(ctx context.Context, userID string) (uint64, error) {
	return m.generations[userID], nil
}
func (m *mockCache) Set(ctx context.Context, userID string, generation uint64, dashboard ledger.Dashboard) (bool, error) {
	if m.generations[userID] != generation {
		return false, nil
	}
	m.sets++
	m.entries[userID] = dashboard
	return true, nil
}
func (m *mockCache) Invalidate(ctx context.Context, userIDs ...string) error {
	for _, id := range userIDs {
		m.generations[id]++
		delete(m.entries, id)
	}
	m.invalidated = append(m.invalidated, userIDs...)
	return nil
}

type mockNotifier struct {
	sent    []notify.ReminderMessage
	failFor string
}

func (m *mockNotifier) NotifyDebtor(ctx context.Context, msg notify.ReminderMessage) error {
	if msg.DebtorID == m.failFor {
		return errors.New("channel closed")
	}
	m.sent = append(m.sent, msg)
	return nil
}
func (m *mockNotifier) Close() error { return nil }

type mockGenerator struct {
	prompt string
	reply  string
	err    error
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.reply, m.err
}
func (m *mockGenerator) Close() error { return nil }

func user(id, name string) models.User {
	return models.User{ID: id, Name: name, Email: id + "@example.com"}
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

var testDay = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// directExpense builds a group-less expense; splits alternate user id and amount.
func directExpense(id, payer, total string, splits ...string) models.Expense {
	e := models.Expense{ID: id, PaidByUserID: payer, CreatedBy: payer, TotalAmount: amt(total), Description: id, Date: testDay}
	for i := 0; i+1 < len(splits); i += 2 {
		e.Splits = append(e.Splits, models.ExpenseSplit{ExpenseID: id, UserID: splits[i], Amount: amt(splits[i+1])})
	}
	return e
}

func groupExpense(id, groupID, payer, total string, splits ...string) models.Expense {
	e := directExpense(id, payer, total, splits...)
	e.GroupID = strPtr(groupID)
	return e
}

func directSettlement(id, payer, receiver, amount string) models.Settlement {
	return models.Settlement{ID: id, PayerID: payer, ReceiverID: receiver, Amount: amt(amount), Date: testDay}
}
