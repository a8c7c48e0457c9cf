package services

import (
	"context"
	"slices"
	"strings"
	"time"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/ledger"
	"splitledger-backend/metrics"
	"splitledger-backend/models"
	"splitledger-backend/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PairwiseResult struct {
	User        models.User
	Counterpart models.User
	Balance     ledger.PairwiseBalance
	// Expenses and Settlements are the direct records the two users share,
	// newest first.
	Expenses    []models.Expense
	Settlements []models.Settlement
}

type GroupBalancesResult struct {
	Group  models.Group
	Ledger *ledger.GroupLedger
	Netted bool
}

// ContactsResult lists the people and groups a user shares expenses with.
type ContactsResult struct {
	Users  []models.User
	Groups []models.Group
}

type SpendingResult struct {
	Year    int
	Total   decimal.Decimal
	Monthly []ledger.MonthlyTotal
}

type BalanceService interface {
	GetPairwise(ctx context.Context, userID, counterpartID string) (*PairwiseResult, error)
	GetGroupBalances(ctx context.Context, groupID, userID string, net bool) (*GroupBalancesResult, error)
	GetContacts(ctx context.Context, userID string) (*ContactsResult, error)
	GetSpending(ctx context.Context, userID string, year int) (*SpendingResult, error)
}

type balanceService struct {
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	expenseRepo    repository.ExpenseRepository
	settlementRepo repository.SettlementRepository
}

func NewBalanceService(userRepo repository.UserRepository, groupRepo repository.GroupRepository, expenseRepo repository.ExpenseRepository, settlementRepo repository.SettlementRepository) BalanceService {
	return &balanceService{
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		expenseRepo:    expenseRepo,
		settlementRepo: settlementRepo,
	}
}

func (s *balanceService) GetPairwise(ctx context.Context, userID, counterpartID string) (*PairwiseResult, error) {
	zap.L().Debug("Computing pairwise balance", zap.String("user_id", userID), zap.String("counterpart_id", counterpartID))
	user, err := resolveUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	counterpart, err := resolveUser(ctx, s.userRepo, counterpartID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	expenses, settlements, err := loadDirect(ctx, s.expenseRepo, s.settlementRepo, userID, counterpartID)
	if err != nil {
		metrics.ObserveLedger(metrics.KindPairwise, start, err)
		return nil, err
	}

	balance, err := ledger.ComputePairwiseBalance(userID, counterpartID, ledger.Direct, models.ExpensesToLedger(expenses), models.SettlementsToLedger(settlements))
	metrics.ObserveLedger(metrics.KindPairwise, start, err)
	if err != nil {
		return nil, err
	}

	shared := make([]models.Expense, 0)
	for _, e := range expenses {
		le := e.ToLedger()
		if le.Involves(userID) && le.Involves(counterpartID) {
			shared = append(shared, e)
		}
	}
	slices.SortStableFunc(shared, func(a, b models.Expense) int {
		return newestFirst(a.Date, a.CreatedAt, b.Date, b.CreatedAt)
	})
	slices.SortStableFunc(settlements, func(a, b models.Settlement) int {
		return newestFirst(a.Date, a.CreatedAt, b.Date, b.CreatedAt)
	})

	return &PairwiseResult{
		User:        *user,
		Counterpart: *counterpart,
		Balance:     balance,
		Expenses:    shared,
		Settlements: settlements,
	}, nil
}

// newestFirst orders history by date, then by insertion time, latest first.
func newestFirst(aDate, aCreated, bDate, bCreated time.Time) int {
	if c := bDate.Compare(aDate); c != 0 {
		return c
	}
	return bCreated.Compare(aCreated)
}

func (s *balanceService) GetGroupBalances(ctx context.Context, groupID, userID string, net bool) (*GroupBalancesResult, error) {
	zap.L().Debug("Computing group ledger", zap.String("group_id", groupID), zap.Bool("net", net))
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.GroupNotFound()
		}
		zap.L().Error("Failed to get group", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.DatabaseError("getting group", err)
	}

	start := time.Now()
	expenses, settlements, err := loadGroup(ctx, s.expenseRepo, s.settlementRepo, groupID)
	if err != nil {
		metrics.ObserveLedger(metrics.KindGroup, start, err)
		return nil, err
	}

	l, err := ledger.ComputeGroupLedger(group.MemberIDs(), models.ExpensesToLedger(expenses), models.SettlementsToLedger(settlements))
	metrics.ObserveLedger(metrics.KindGroup, start, err)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeDataIntegrity) {
			zap.L().Error("Group records reference a non-member", zap.String("group_id", groupID), zap.Error(err))
		}
		return nil, err
	}

	if net {
		l = ledger.NetGroupLedger(l)
	}
	return &GroupBalancesResult{Group: *group, Ledger: l, Netted: net}, nil
}

// GetContacts returns everyone the user shares a direct expense with and the
// groups they belong to, both sorted by name.
func (s *balanceService) GetContacts(ctx context.Context, userID string) (*ContactsResult, error) {
	expenses, err := s.expenseRepo.GetDirectByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("Failed to get direct expenses", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.DatabaseError("getting direct expenses", err)
	}

	ids := ledger.Counterparts(userID, models.ExpensesToLedger(expenses))
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		zap.L().Error("Failed to resolve contacts", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.DatabaseError("getting contacts", err)
	}

	contacts := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			contacts = append(contacts, u)
		}
	}
	slices.SortStableFunc(contacts, func(a, b models.User) int {
		return compareNames(a.Name, b.Name)
	})

	groups, err := s.groupRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("Failed to get user groups", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.DatabaseError("getting groups", err)
	}
	if groups == nil {
		groups = []models.Group{}
	}
	slices.SortStableFunc(groups, func(a, b models.Group) int {
		return compareNames(a.Name, b.Name)
	})

	return &ContactsResult{Users: contacts, Groups: groups}, nil
}

func compareNames(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func (s *balanceService) GetSpending(ctx context.Context, userID string, year int) (*SpendingResult, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	expenses, err := s.expenseRepo.GetByParticipant(ctx, userID, from, to)
	if err != nil {
		zap.L().Error("Failed to get expenses for spending", zap.String("user_id", userID), zap.Int("year", year), zap.Error(err))
		return nil, apperrors.DatabaseError("getting expenses", err)
	}

	le := models.ExpensesToLedger(expenses)
	return &SpendingResult{
		Year:    year,
		Total:   ledger.TotalSpent(userID, le, from, to),
		Monthly: ledger.MonthlySpending(userID, le, year, time.UTC),
	}, nil
}
