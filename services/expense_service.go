package services

import (
	"context"
	"strings"
	"time"

	"splitledger-backend/cache"
	"splitledger-backend/database"
	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"
	"splitledger-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExpenseService interface {
	Create(ctx context.Context, userID string, req *models.CreateExpenseRequest) (*models.Expense, error)
	Delete(ctx context.Context, expenseID, userID string) error
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	cache       cache.DashboardCache
	db          database.TxRunner
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, groupRepo repository.GroupRepository, userRepo repository.UserRepository, c cache.DashboardCache, db database.TxRunner) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		cache:       c,
		db:          db,
	}
}

func (s *expenseService) Create(ctx context.Context, userID string, req *models.CreateExpenseRequest) (*models.Expense, error) {
	description := strings.TrimSpace(req.Description)
	if len(description) < MinDescriptionLength {
		return nil, apperrors.MissingRequiredField("Description")
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperrors.InvalidRequest("Description is too long.")
	}

	expense := &models.Expense{
		ID:           uuid.New().String(),
		GroupID:      req.GroupID,
		PaidByUserID: req.PaidByUserID,
		CreatedBy:    userID,
		TotalAmount:  req.TotalAmount,
		Description:  description,
		Date:         time.Now().UTC(),
	}
	if expense.PaidByUserID == "" {
		expense.PaidByUserID = userID
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}
	expense.Splits = make([]models.ExpenseSplit, len(req.Splits))
	for i, sr := range req.Splits {
		expense.Splits[i] = models.ExpenseSplit{
			ID:        uuid.New().String(),
			ExpenseID: expense.ID,
			UserID:    sr.UserID,
			Amount:    sr.Amount,
			Paid:      sr.Paid,
		}
	}

	le := expense.ToLedger()
	if err := le.Validate(); err != nil {
		return nil, err
	}

	participants := uniqueIDs(append([]string{userID, expense.PaidByUserID}, splitUserIDs(expense.Splits)...)...)
	if expense.GroupID != nil {
		if err := s.requireGroupParticipants(ctx, *expense.GroupID, userID, participants); err != nil {
			return nil, err
		}
	} else if !le.Involves(userID) {
		return nil, apperrors.PermissionDenied("record an expense you are not part of")
	}

	if _, err := requireUsers(ctx, s.userRepo, participants); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(q database.Querier) error {
		if err := s.expenseRepo.WithTx(q).Create(ctx, expense); err != nil {
			return apperrors.DatabaseError("creating expense", err)
		}
		return nil
	})
	if err != nil {
		zap.L().Error("Failed to create expense transactionally", zap.String("expense_id", expense.ID), zap.Error(err))
		return nil, err
	}

	invalidateDashboards(ctx, s.cache, participants)
	zap.L().Info("Expense created successfully",
		zap.String("expense_id", expense.ID),
		zap.String("payer_id", expense.PaidByUserID),
		zap.String("amount", expense.TotalAmount.StringFixed(2)))
	return expense, nil
}

// requireGroupParticipants checks that the caller and every party of a
// group expense belong to the group.
func (s *expenseService) requireGroupParticipants(ctx context.Context, groupID, userID string, participants []string) error {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.GroupNotFound()
		}
		zap.L().Error("Failed to get group", zap.String("group_id", groupID), zap.Error(err))
		return apperrors.DatabaseError("getting group", err)
	}

	members := make(map[string]struct{}, len(group.Members))
	for _, id := range group.MemberIDs() {
		members[id] = struct{}{}
	}
	for _, id := range participants {
		if _, ok := members[id]; !ok {
			return apperrors.InvalidRequest("Every participant of a group expense must be a group member.")
		}
	}
	return nil
}

func (s *expenseService) Delete(ctx context.Context, expenseID, userID string) error {
	zap.L().Info("Deleting expense", zap.String("expense_id", expenseID), zap.String("user_id", userID))
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.ExpenseNotFound()
		}
		zap.L().Error("Failed to get expense for deletion", zap.String("expense_id", expenseID), zap.Error(err))
		return apperrors.DatabaseError("getting expense", err)
	}

	if expense.CreatedBy != userID && expense.PaidByUserID != userID {
		return apperrors.PermissionDenied("delete this expense")
	}

	err = s.db.WithTx(ctx, func(q database.Querier) error {
		if err := s.expenseRepo.WithTx(q).Delete(ctx, expenseID); err != nil {
			if apperrors.IsNotFoundError(err) {
				return apperrors.ExpenseNotFound()
			}
			return apperrors.DatabaseError("deleting expense", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidateDashboards(ctx, s.cache, uniqueIDs(append([]string{expense.CreatedBy, expense.PaidByUserID}, splitUserIDs(expense.Splits)...)...))
	return nil
}

func splitUserIDs(splits []models.ExpenseSplit) []string {
	ids := make([]string, len(splits))
	for i, sp := range splits {
		ids[i] = sp.UserID
	}
	return ids
}
