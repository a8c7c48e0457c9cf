package services

import (
	"context"
	"time"

	"splitledger-backend/cache"
	"splitledger-backend/database"
	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"
	"splitledger-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SettlementService interface {
	Record(ctx context.Context, userID string, req *models.CreateSettlementRequest) (*models.Settlement, error)
}

type settlementService struct {
	settlementRepo repository.SettlementRepository
	groupRepo      repository.GroupRepository
	userRepo       repository.UserRepository
	cache          cache.DashboardCache
	db             database.TxRunner
}

func NewSettlementService(settlementRepo repository.SettlementRepository, groupRepo repository.GroupRepository, userRepo repository.UserRepository, c cache.DashboardCache, db database.TxRunner) SettlementService {
	return &settlementService{
		settlementRepo: settlementRepo,
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		cache:          c,
		db:             db,
	}
}

func (s *settlementService) Record(ctx context.Context, userID string, req *models.CreateSettlementRequest) (*models.Settlement, error) {
	settlement := &models.Settlement{
		ID:         uuid.New().String(),
		GroupID:    req.GroupID,
		PayerID:    req.PayerID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		Note:       req.Note,
		Date:       time.Now().UTC(),
	}
	if settlement.PayerID == "" {
		settlement.PayerID = userID
	}
	if req.Date != nil {
		settlement.Date = *req.Date
	}

	if err := settlement.ToLedger().Validate(); err != nil {
		return nil, err
	}
	if settlement.PayerID != userID && settlement.ReceiverID != userID {
		return nil, apperrors.PermissionDenied("record a settlement you are not part of")
	}

	parties := []string{settlement.PayerID, settlement.ReceiverID}
	if settlement.GroupID != nil {
		groupID := *settlement.GroupID
		for _, id := range parties {
			isMember, err := s.groupRepo.IsMember(ctx, groupID, id)
			if err != nil {
				return nil, apperrors.DatabaseError("checking membership", err)
			}
			if !isMember {
				if id == userID {
					return nil, apperrors.NotGroupMember()
				}
				return nil, apperrors.InvalidRequest("Both parties of a group settlement must be group members.")
			}
		}
	}

	if _, err := requireUsers(ctx, s.userRepo, parties); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(q database.Querier) error {
		if err := s.settlementRepo.WithTx(q).Create(ctx, settlement); err != nil {
			return apperrors.DatabaseError("creating settlement", err)
		}
		return nil
	})
	if err != nil {
		zap.L().Error("Failed to record settlement", zap.String("settlement_id", settlement.ID), zap.Error(err))
		return nil, err
	}

	invalidateDashboards(ctx, s.cache, parties)
	zap.L().Info("Settlement recorded",
		zap.String("settlement_id", settlement.ID),
		zap.String("payer_id", settlement.PayerID),
		zap.String("receiver_id", settlement.ReceiverID),
		zap.String("amount", settlement.Amount.StringFixed(2)))
	return settlement, nil
}
