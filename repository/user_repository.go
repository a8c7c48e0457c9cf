package repository

import (
	"context"
	"fmt"

	"splitledger-backend/database"
	"splitledger-backend/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	ListWithDirectActivity(ctx context.Context) ([]string, error)
	WithTx(tx database.Querier) UserRepository
}

type userRepository struct {
	db *database.DB
	tx database.Querier
}

func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx database.Querier) UserRepository {
	return &userRepository{db: r.db, tx: tx}
}

func (r *userRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, name, avatar_url, created_at, updated_at FROM users WHERE id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT id, email, name, avatar_url, created_at, updated_at FROM users WHERE id = ANY($1)`

	rows, err := r.getQuerier().Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("batch getting users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		result[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return result, nil
}

// ListWithDirectActivity returns the ids of users holding an unpaid split on
// a direct expense someone else paid.
func (r *userRepository) ListWithDirectActivity(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT es.user_id
	          FROM expense_splits es
	          INNER JOIN expenses e ON e.id = es.expense_id
	          WHERE e.group_id IS NULL AND es.paid = FALSE AND es.user_id <> e.paid_by_user_id
	          ORDER BY es.user_id`

	rows, err := r.getQuerier().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users with direct activity: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
