package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"splitledger-backend/middleware"
	"splitledger-backend/models"
	"splitledger-backend/services"

	"github.com/go-chi/chi/v5"
)

const (
	aliceID = "0b9b6a3e-58a4-4f5e-9d83-5a4f0e3f1a01"
	bobID   = "6c1d1c8e-2f3b-4f7a-a0de-8d22f58b9c02"
	groupID = "9f0f3f55-7c7b-4b47-9a3e-1f1b5a6f6c03"
)

var errTest = errors.New("boom")

type mockDashboardService struct {
	res *services.DashboardResult
	err error
}

func (m *mockDashboardService) GetDashboard(ctx context.Context, userID string) (*services.DashboardResult, error) {
	return m.res, m.err
}

type mockBalanceService struct {
	pairwise *services.PairwiseResult
	group    *services.GroupBalancesResult
	contacts *services.ContactsResult
	spending *services.SpendingResult
	err      error

	gotNet  bool
	gotYear int
}

func (m *mockBalanceService) GetPairwise(ctx context.Context, userID, counterpartID string) (*services.PairwiseResult, error) {
	return m.pairwise, m.err
}
func (m *mockBalanceService) GetGroupBalances(ctx context.Context, groupID, userID string, net bool) (*services.GroupBalancesResult, error) {
	m.gotNet = net
	return m.group, m.err
}
func (m *mockBalanceService) GetContacts(ctx context.Context, userID string) (*services.ContactsResult, error) {
	return m.contacts, m.err
}
func (m *mockBalanceService) GetSpending(ctx context.Context, userID string, year int) (*services.SpendingResult, error) {
	m.gotYear = year
	return m.spending, m.err
}

type mockExpenseService struct {
	got *models.CreateExpenseRequest
	err error
}

func (m *mockExpenseService) Create(ctx context.Context, userID string, req *models.CreateExpenseRequest) (*models.Expense, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Expense{ID: "new", PaidByUserID: userID, TotalAmount: req.TotalAmount, Description: req.Description}, nil
}
func (m *mockExpenseService) Delete(ctx context.Context, expenseID, userID string) error {
	return m.err
}

type mockSettlementService struct {
	got *models.CreateSettlementRequest
	err error
}

func (m *mockSettlementService) Record(ctx context.Context, userID string, req *models.CreateSettlementRequest) (*models.Settlement, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Settlement{ID: "s", PayerID: userID, ReceiverID: req.ReceiverID, Amount: req.Amount}, nil
}

type mockGroupService struct {
	got *models.CreateGroupRequest
	err error
}

func (m *mockGroupService) Create(ctx context.Context, userID string, req *models.CreateGroupRequest) (*models.Group, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	creator := userID
	members := []models.User{{ID: userID, Name: "Alice", Role: models.GroupRoleAdmin}}
	for _, id := range req.MemberIDs {
		members = append(members, models.User{ID: id, Role: models.GroupRoleMember})
	}
	return &models.Group{ID: groupID, Name: req.Name, Type: models.GroupTypeOther, CreatedBy: &creator, Members: members}, nil
}

type mockExplanationService struct {
	err error
}

func (m *mockExplanationService) ExplainPairwise(ctx context.Context, userID, counterpartID string) (*models.DebtExplanation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.DebtExplanation{CounterpartID: counterpartID, Explanation: "Bob owes you for dinner."}, nil
}
func (m *mockExplanationService) Close() error { return nil }

type testServices struct {
	dashboard   *mockDashboardService
	balance     *mockBalanceService
	expense     *mockExpenseService
	settlement  *mockSettlementService
	group       *mockGroupService
	explanation *mockExplanationService
}

func newTestServices() *testServices {
	return &testServices{
		dashboard:   &mockDashboardService{},
		balance:     &mockBalanceService{},
		expense:     &mockExpenseService{},
		settlement:  &mockSettlementService{},
		group:       &mockGroupService{},
		explanation: &mockExplanationService{},
	}
}

func (s *testServices) router() http.Handler {
	h := NewHandlers(s.dashboard, s.balance, s.expense, s.settlement, s.group, s.explanation)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id := r.Header.Get("X-Test-User"); id != "" {
					r = r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, id))
				}
				next.ServeHTTP(w, r)
			})
		})
		r.Get("/balances/{userID}/explain", h.ExplainBalance)
		h.RegisterRoutes(r)
	})
	return r
}

func (s *testServices) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", aliceID)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)
	return rec
}
