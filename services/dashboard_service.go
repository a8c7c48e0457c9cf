package services

import (
	"context"
	"time"

	"splitledger-backend/cache"
	apperrors "splitledger-backend/errors"
	"splitledger-backend/ledger"
	"splitledger-backend/metrics"
	"splitledger-backend/models"
	"splitledger-backend/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type GroupBalance struct {
	Group   models.Group
	Balance decimal.Decimal
}

type DashboardResult struct {
	User     models.User
	Balances ledger.Dashboard
	// Users resolves every counterpart listed in Balances.
	Users  map[string]models.User
	Groups []GroupBalance
}

type DashboardService interface {
	GetDashboard(ctx context.Context, userID string) (*DashboardResult, error)
}

type dashboardService struct {
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	expenseRepo    repository.ExpenseRepository
	settlementRepo repository.SettlementRepository
	cache          cache.DashboardCache
	fanoutLimit    int
}

func NewDashboardService(userRepo repository.UserRepository, groupRepo repository.GroupRepository, expenseRepo repository.ExpenseRepository, settlementRepo repository.SettlementRepository, c cache.DashboardCache, fanoutLimit int) DashboardService {
	if fanoutLimit < 1 {
		fanoutLimit = 1
	}
	return &dashboardService{
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		expenseRepo:    expenseRepo,
		settlementRepo: settlementRepo,
		cache:          c,
		fanoutLimit:    fanoutLimit,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID string) (*DashboardResult, error) {
	zap.L().Debug("Fetching dashboard", zap.String("user_id", userID))
	user, err := resolveUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	balances, err := s.directBalances(ctx, userID)
	if err != nil {
		return nil, err
	}

	groups, err := s.groupBalances(ctx, userID)
	if err != nil {
		return nil, err
	}

	counterpartIDs := make([]string, 0, len(balances.YouOwe)+len(balances.YouAreOwedBy))
	for _, c := range balances.YouOwe {
		counterpartIDs = append(counterpartIDs, c.UserID)
	}
	for _, c := range balances.YouAreOwedBy {
		counterpartIDs = append(counterpartIDs, c.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, counterpartIDs)
	if err != nil {
		zap.L().Error("Failed to resolve dashboard counterparts", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.DatabaseError("getting counterparts", err)
	}

	return &DashboardResult{
		User:     *user,
		Balances: balances,
		Users:    users,
		Groups:   groups,
	}, nil
}

// directBalances serves the cached dashboard when present. On a miss it takes
// the user's cache generation before loading, so a dashboard folded from
// records that a concurrent write has since replaced is never stored.
func (s *dashboardService) directBalances(ctx context.Context, userID string) (ledger.Dashboard, error) {
	cached, ok, err := s.cache.Get(ctx, userID)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		zap.L().Warn("Dashboard cache read failed", zap.String("user_id", userID), zap.Error(err))
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	generation, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		zap.L().Warn("Dashboard cache generation read failed", zap.String("user_id", userID), zap.Error(genErr))
	}

	start := time.Now()
	expenses, settlements, err := loadDirect(ctx, s.expenseRepo, s.settlementRepo, userID, "")
	if err != nil {
		metrics.ObserveLedger(metrics.KindDashboard, start, err)
		return ledger.Dashboard{}, err
	}
	dashboard := ledger.ComputeDashboardBalances(userID, ledger.Direct, models.ExpensesToLedger(expenses), models.SettlementsToLedger(settlements))
	metrics.ObserveLedger(metrics.KindDashboard, start, nil)

	if genErr != nil {
		return dashboard, nil
	}
	stored, err := s.cache.Set(ctx, userID, generation, dashboard)
	switch {
	case err != nil:
		zap.L().Warn("Dashboard cache write failed", zap.String("user_id", userID), zap.Error(err))
	case !stored:
		zap.L().Debug("Discarded dashboard superseded by a write", zap.String("user_id", userID))
	}
	return dashboard, nil
}

// groupBalances computes the user's balance in each of their groups, one
// group per worker.
func (s *dashboardService) groupBalances(ctx context.Context, userID string) ([]GroupBalance, error) {
	groups, err := s.groupRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("Failed to get user groups", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.DatabaseError("getting groups", err)
	}

	results := make([]GroupBalance, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanoutLimit)
	for i, group := range groups {
		g.Go(func() error {
			expenses, settlements, err := loadGroup(gctx, s.expenseRepo, s.settlementRepo, group.ID)
			if err != nil {
				return err
			}
			d := ledger.ComputeDashboardBalances(userID, ledger.Group(group.ID), models.ExpensesToLedger(expenses), models.SettlementsToLedger(settlements))
			results[i] = GroupBalance{Group: group, Balance: d.TotalBalance}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
