package services

import (
	"context"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"
	"splitledger-backend/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// loadDirect fetches a user's group-less expenses and settlements in
// parallel. A non-empty counterpartID narrows the settlements to that pair.
func loadDirect(ctx context.Context, expenseRepo repository.ExpenseRepository, settlementRepo repository.SettlementRepository, userID, counterpartID string) ([]models.Expense, []models.Settlement, error) {
	var (
		expenses    []models.Expense
		settlements []models.Settlement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = expenseRepo.GetDirectByUserID(gctx, userID)
		if err != nil {
			zap.L().Error("Failed to get direct expenses", zap.String("user_id", userID), zap.Error(err))
			return apperrors.DatabaseError("getting direct expenses", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settlements, err = settlementRepo.GetDirect(gctx, userID, counterpartID)
		if err != nil {
			zap.L().Error("Failed to get direct settlements", zap.String("user_id", userID), zap.Error(err))
			return apperrors.DatabaseError("getting direct settlements", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return expenses, settlements, nil
}

func loadGroup(ctx context.Context, expenseRepo repository.ExpenseRepository, settlementRepo repository.SettlementRepository, groupID string) ([]models.Expense, []models.Settlement, error) {
	var (
		expenses    []models.Expense
		settlements []models.Settlement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = expenseRepo.GetByGroupID(gctx, groupID)
		if err != nil {
			zap.L().Error("Failed to get group expenses", zap.String("group_id", groupID), zap.Error(err))
			return apperrors.DatabaseError("getting group expenses", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settlements, err = settlementRepo.GetByGroupID(gctx, groupID)
		if err != nil {
			zap.L().Error("Failed to get group settlements", zap.String("group_id", groupID), zap.Error(err))
			return apperrors.DatabaseError("getting group settlements", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return expenses, settlements, nil
}
