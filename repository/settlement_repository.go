package repository

import (
	"context"
	"fmt"

	"splitledger-backend/database"
	"splitledger-backend/models"
)

type SettlementRepository interface {
	// GetDirect returns group-less settlements involving userID. A non-empty
	// counterpartID narrows them to the ones between the two users.
	GetDirect(ctx context.Context, userID, counterpartID string) ([]models.Settlement, error)
	GetAllDirect(ctx context.Context) ([]models.Settlement, error)
	GetByGroupID(ctx context.Context, groupID string) ([]models.Settlement, error)
	Create(ctx context.Context, settlement *models.Settlement) error
	WithTx(tx database.Querier) SettlementRepository
}

type settlementRepository struct {
	db *database.DB
	tx database.Querier
}

func NewSettlementRepository(db *database.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) WithTx(tx database.Querier) SettlementRepository {
	return &settlementRepository{db: r.db, tx: tx}
}

func (r *settlementRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

const settlementColumns = `id, group_id, payer_id, receiver_id, amount, note, settled_at, created_at`

func (r *settlementRepository) GetDirect(ctx context.Context, userID, counterpartID string) ([]models.Settlement, error) {
	if counterpartID == "" {
		query := `SELECT ` + settlementColumns + `
		          FROM settlements
		          WHERE group_id IS NULL AND (payer_id = $1 OR receiver_id = $1)
		          ORDER BY settled_at, created_at`
		return r.querySettlements(ctx, "getting direct settlements", query, userID)
	}

	query := `SELECT ` + settlementColumns + `
	          FROM settlements
	          WHERE group_id IS NULL
	            AND ((payer_id = $1 AND receiver_id = $2) OR (payer_id = $2 AND receiver_id = $1))
	          ORDER BY settled_at, created_at`
	return r.querySettlements(ctx, "getting pairwise settlements", query, userID, counterpartID)
}

func (r *settlementRepository) GetAllDirect(ctx context.Context) ([]models.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
	          FROM settlements
	          WHERE group_id IS NULL
	          ORDER BY settled_at, created_at`
	return r.querySettlements(ctx, "getting all direct settlements", query)
}

func (r *settlementRepository) GetByGroupID(ctx context.Context, groupID string) ([]models.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
	          FROM settlements
	          WHERE group_id = $1
	          ORDER BY settled_at, created_at`
	return r.querySettlements(ctx, "getting settlements by group id", query, groupID)
}

func (r *settlementRepository) querySettlements(ctx context.Context, op, query string, args ...any) ([]models.Settlement, error) {
	rows, err := r.getQuerier().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	settlements := []models.Settlement{}
	for rows.Next() {
		var s models.Settlement
		if err := rows.Scan(&s.ID, &s.GroupID, &s.PayerID, &s.ReceiverID, &s.Amount, &s.Note, &s.Date, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return settlements, nil
}

func (r *settlementRepository) Create(ctx context.Context, s *models.Settlement) error {
	query := `INSERT INTO settlements (id, group_id, payer_id, receiver_id, amount, note, settled_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query,
		s.ID, s.GroupID, s.PayerID, s.ReceiverID, s.Amount, s.Note, s.Date,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating settlement: %w", err)
	}
	return nil
}
