package services

import (
	"context"
	"strings"

	"splitledger-backend/database"
	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"
	"splitledger-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GroupService interface {
	Create(ctx context.Context, userID string, req *models.CreateGroupRequest) (*models.Group, error)
}

type groupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	db        database.TxRunner
}

func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, db database.TxRunner) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		db:        db,
	}
}

// Create makes a group administered by its creator. The creator is always a
// member; the other member ids are deduplicated and must all exist.
func (s *groupService) Create(ctx context.Context, userID string, req *models.CreateGroupRequest) (*models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.MissingRequiredField("Group name")
	}
	if len(name) > MaxGroupNameLength {
		return nil, apperrors.InvalidRequest("Group name is too long.")
	}
	description := strings.TrimSpace(req.Description)
	if len(description) > MaxGroupDescriptionLength {
		return nil, apperrors.InvalidRequest("Group description is too long.")
	}

	groupType := req.Type
	if groupType == "" {
		groupType = models.GroupTypeOther
	}
	if !groupType.Valid() {
		return nil, apperrors.InvalidFieldFormat("type", "TRIP, HOME, COUPLE or OTHER")
	}

	memberIDs := uniqueIDs(append([]string{userID}, req.MemberIDs...)...)
	users, err := requireUsers(ctx, s.userRepo, memberIDs)
	if err != nil {
		return nil, err
	}

	creator := userID
	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Type:        groupType,
		CreatedBy:   &creator,
	}

	err = s.db.WithTx(ctx, func(q database.Querier) error {
		txRepo := s.groupRepo.WithTx(q)
		if err := txRepo.Create(ctx, group); err != nil {
			return apperrors.DatabaseError("creating group", err)
		}
		for _, id := range memberIDs {
			if err := txRepo.AddMember(ctx, group.ID, id, roleFor(id, userID)); err != nil {
				return apperrors.DatabaseError("adding group member", err)
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("Failed to create group transactionally", zap.String("group_id", group.ID), zap.Error(err))
		return nil, err
	}

	group.Members = make([]models.User, len(memberIDs))
	for i, id := range memberIDs {
		member := users[id]
		member.Role = roleFor(id, userID)
		group.Members[i] = member
	}
	group.MemberCount = len(group.Members)

	zap.L().Info("Group created successfully",
		zap.String("group_id", group.ID),
		zap.String("created_by", userID),
		zap.Int("members", group.MemberCount))
	return group, nil
}

func roleFor(memberID, creatorID string) models.GroupRole {
	if memberID == creatorID {
		return models.GroupRoleAdmin
	}
	return models.GroupRoleMember
}
