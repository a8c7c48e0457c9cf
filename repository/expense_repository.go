package repository

import (
	"context"
	"fmt"
	"time"

	"splitledger-backend/database"
	"splitledger-backend/models"
)

type ExpenseRepository interface {
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	GetDirectByUserID(ctx context.Context, userID string) ([]models.Expense, error)
	GetDirectWithUnpaidSplits(ctx context.Context) ([]models.Expense, error)
	GetByGroupID(ctx context.Context, groupID string) ([]models.Expense, error)
	GetByParticipant(ctx context.Context, userID string, from, to time.Time) ([]models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id string) error
	WithTx(tx database.Querier) ExpenseRepository
}

type expenseRepository struct {
	db *database.DB
	tx database.Querier
}

func NewExpenseRepository(db *database.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) WithTx(tx database.Querier) ExpenseRepository {
	return &expenseRepository{db: r.db, tx: tx}
}

func (r *expenseRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

const expenseColumns = `e.id, e.group_id, e.paid_by_user_id, e.created_by, e.total_amount, e.description,
	          e.expense_date, e.created_at, e.updated_at`

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	var expense models.Expense
	query := `SELECT ` + expenseColumns + ` FROM expenses e WHERE e.id = $1`

	err := r.getQuerier().QueryRow(ctx, query, id).Scan(
		&expense.ID, &expense.GroupID, &expense.PaidByUserID, &expense.CreatedBy, &expense.TotalAmount,
		&expense.Description, &expense.Date, &expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting expense by id: %w", err)
	}

	splits, err := r.getSplitsByExpenseIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	expense.Splits = splits[id]
	return &expense, nil
}

// GetDirectByUserID returns group-less expenses the user paid for or holds a
// split in, oldest first.
func (r *expenseRepository) GetDirectByUserID(ctx context.Context, userID string) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + `
	          FROM expenses e
	          WHERE e.group_id IS NULL
	            AND (e.paid_by_user_id = $1
	                 OR EXISTS (SELECT 1 FROM expense_splits es WHERE es.expense_id = e.id AND es.user_id = $1))
	          ORDER BY e.expense_date, e.created_at`

	return r.queryExpenses(ctx, "getting direct expenses", query, userID)
}

func (r *expenseRepository) GetDirectWithUnpaidSplits(ctx context.Context) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + `
	          FROM expenses e
	          WHERE e.group_id IS NULL
	            AND EXISTS (SELECT 1 FROM expense_splits es
	                        WHERE es.expense_id = e.id AND es.paid = FALSE AND es.user_id <> e.paid_by_user_id)
	          ORDER BY e.expense_date, e.created_at`

	return r.queryExpenses(ctx, "getting direct expenses with unpaid splits", query)
}

func (r *expenseRepository) GetByGroupID(ctx context.Context, groupID string) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + `
	          FROM expenses e
	          WHERE e.group_id = $1
	          ORDER BY e.expense_date, e.created_at`

	return r.queryExpenses(ctx, "getting expenses by group id", query, groupID)
}

// GetByParticipant returns every expense, grouped or not, in which the user
// holds a split and whose date falls in [from, to).
func (r *expenseRepository) GetByParticipant(ctx context.Context, userID string, from, to time.Time) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + `
	          FROM expenses e
	          WHERE EXISTS (SELECT 1 FROM expense_splits es WHERE es.expense_id = e.id AND es.user_id = $1)
	            AND e.expense_date >= $2 AND e.expense_date < $3
	          ORDER BY e.expense_date`

	return r.queryExpenses(ctx, "getting expenses by participant", query, userID, from, to)
}

func (r *expenseRepository) queryExpenses(ctx context.Context, op, query string, args ...any) ([]models.Expense, error) {
	rows, err := r.getQuerier().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	expenseIDs := make([]string, 0)
	for rows.Next() {
		var expense models.Expense
		if err := rows.Scan(
			&expense.ID, &expense.GroupID, &expense.PaidByUserID, &expense.CreatedBy, &expense.TotalAmount,
			&expense.Description, &expense.Date, &expense.CreatedAt, &expense.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		expenses = append(expenses, expense)
		expenseIDs = append(expenseIDs, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(expenseIDs) == 0 {
		return expenses, nil
	}

	splits, err := r.getSplitsByExpenseIDs(ctx, expenseIDs)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].Splits = splits[expenses[i].ID]
	}
	return expenses, nil
}

func (r *expenseRepository) getSplitsByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]models.ExpenseSplit, error) {
	query := `SELECT es.id, es.expense_id, es.user_id, es.amount, es.paid, es.created_at, COALESCE(u.name, '')
	          FROM expense_splits es
	          LEFT JOIN users u ON u.id = es.user_id
	          WHERE es.expense_id = ANY($1)
	          ORDER BY es.created_at, es.id`

	rows, err := r.getQuerier().Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("batch getting splits: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.ExpenseSplit)
	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &split.Amount, &split.Paid, &split.CreatedAt, &split.UserName); err != nil {
			return nil, fmt.Errorf("scanning split: %w", err)
		}
		result[split.ExpenseID] = append(result[split.ExpenseID], split)
	}
	return result, rows.Err()
}

// Create inserts the expense and its splits. Callers run it inside WithTx so
// a failed split insert leaves nothing behind.
func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	query := `INSERT INTO expenses (id, group_id, paid_by_user_id, created_by, total_amount, description,
	          expense_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING created_at, updated_at`

	err := r.getQuerier().QueryRow(ctx, query,
		expense.ID, expense.GroupID, expense.PaidByUserID, expense.CreatedBy, expense.TotalAmount,
		expense.Description, expense.Date,
	).Scan(&expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	splitQuery := `INSERT INTO expense_splits (id, expense_id, user_id, amount, paid, created_at)
	               VALUES ($1, $2, $3, $4, $5, NOW())`
	for _, split := range expense.Splits {
		if _, err := r.getQuerier().Exec(ctx, splitQuery, split.ID, expense.ID, split.UserID, split.Amount, split.Paid); err != nil {
			return fmt.Errorf("creating expense split: %w", err)
		}
	}
	return nil
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM expenses WHERE id = $1`
	tag, err := r.getQuerier().Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting expense %s: not found", id)
	}
	return nil
}
