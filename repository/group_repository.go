package repository

import (
	"context"
	"fmt"

	"splitledger-backend/database"
	"splitledger-backend/models"
)

type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*models.Group, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Group, error)
	GetMembers(ctx context.Context, groupID string) ([]models.User, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	Create(ctx context.Context, group *models.Group) error
	AddMember(ctx context.Context, groupID, userID string, role models.GroupRole) error
	WithTx(tx database.Querier) GroupRepository
}

type groupRepository struct {
	db *database.DB
	tx database.Querier
}

func NewGroupRepository(db *database.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) WithTx(tx database.Querier) GroupRepository {
	return &groupRepository{db: r.db, tx: tx}
}

func (r *groupRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	query := `SELECT id, name, description, type, created_by, created_at, updated_at FROM groups WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&group.ID, &group.Name, &group.Description, &group.Type, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting group by id: %w", err)
	}

	members, err := r.GetMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting group members: %w", err)
	}
	group.Members = members
	group.MemberCount = len(members)

	return &group, nil
}

func (r *groupRepository) GetByUserID(ctx context.Context, userID string) ([]models.Group, error) {
	query := `SELECT g.id, g.name, g.description, g.type, g.created_by, g.created_at, g.updated_at,
	          (SELECT COUNT(*) FROM group_members c WHERE c.group_id = g.id) AS member_count
	          FROM groups g
	          INNER JOIN group_members gm ON g.id = gm.group_id
	          WHERE gm.user_id = $1
	          ORDER BY g.updated_at DESC`

	rows, err := r.getQuerier().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("getting groups by user id: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.Type, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt, &group.MemberCount); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}
	return groups, nil
}

// GetMembers returns members in the order they joined.
func (r *groupRepository) GetMembers(ctx context.Context, groupID string) ([]models.User, error) {
	query := `SELECT u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at, gm.role
	          FROM users u
	          INNER JOIN group_members gm ON u.id = gm.user_id
	          WHERE gm.group_id = $1
	          ORDER BY gm.joined_at, u.id`

	rows, err := r.getQuerier().Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting group members: %w", err)
	}
	defer rows.Close()

	members := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt, &user.Role); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, user)
	}
	return members, rows.Err()
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`
	if err := r.getQuerier().QueryRow(ctx, query, groupID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking group membership: %w", err)
	}
	return exists, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	groupType := group.Type
	if groupType == "" {
		groupType = models.GroupTypeOther
	}

	query := `INSERT INTO groups (id, name, description, type, created_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	          RETURNING created_at, updated_at`

	err := r.getQuerier().QueryRow(ctx, query, group.ID, group.Name, group.Description, groupType, group.CreatedBy).
		Scan(&group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating group: %w", err)
	}
	group.Type = groupType
	return nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID string, role models.GroupRole) error {
	query := `INSERT INTO group_members (group_id, user_id, role, joined_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (group_id, user_id) DO NOTHING`

	_, err := r.getQuerier().Exec(ctx, query, groupID, userID, role)
	if err != nil {
		return fmt.Errorf("adding member to group: %w", err)
	}
	return nil
}
