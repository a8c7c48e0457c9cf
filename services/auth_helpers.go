package services

import (
	"context"

	"splitledger-backend/cache"
	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"
	"splitledger-backend/repository"

	"go.uber.org/zap"
)

func RequireGroupMembership(ctx context.Context, groupRepo repository.GroupRepository, groupID, userID string) error {
	isMember, err := groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.DatabaseError("checking membership", err)
	}
	if !isMember {
		return apperrors.NotGroupMember()
	}
	return nil
}

func resolveUser(ctx context.Context, userRepo repository.UserRepository, userID string) (*models.User, error) {
	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.UserNotFound()
		}
		zap.L().Error("Failed to get user", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.DatabaseError("getting user", err)
	}
	return user, nil
}

// requireUsers fails with UserNotFound unless every id resolves.
func requireUsers(ctx context.Context, userRepo repository.UserRepository, ids []string) (map[string]models.User, error) {
	users, err := userRepo.GetByIDs(ctx, ids)
	if err != nil {
		zap.L().Error("Failed to get users", zap.Strings("user_ids", ids), zap.Error(err))
		return nil, apperrors.DatabaseError("getting users", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			zap.L().Debug("Referenced user does not exist", zap.String("user_id", id))
			return nil, apperrors.UserNotFound()
		}
	}
	return users, nil
}

// invalidateDashboards drops cached dashboards. A failure only delays
// freshness until the entries expire, so it is logged rather than returned.
func invalidateDashboards(ctx context.Context, c cache.DashboardCache, userIDs []string) {
	if err := c.Invalidate(ctx, userIDs...); err != nil {
		zap.L().Warn("Failed to invalidate cached dashboards", zap.Strings("user_ids", userIDs), zap.Error(err))
	}
}

func uniqueIDs(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
