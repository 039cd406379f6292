package db

import (
	"context"
	"fmt"

	"finhealth-server/src/models"
)

const budgetColumns = `id, user_id, category, limit_amount, period, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }, b *models.Budget) error {
	return row.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.Period, &b.CreatedAt, &b.UpdatedAt)
}

func (s *Store) CreateBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, category, limit_amount, period)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + budgetColumns

	var b models.Budget
	if err := scanBudget(s.pool.QueryRow(ctx, query, budget.UserID, budget.Category, budget.Limit, budget.Period), &b); err != nil {
		return nil, mapErr("create budget", err)
	}
	return &b, nil
}

func (s *Store) GetBudgetByID(ctx context.Context, userID, budgetID int64) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`
	var b models.Budget
	if err := scanBudget(s.pool.QueryRow(ctx, query, budgetID, userID), &b); err != nil {
		return nil, mapErr("get budget", err)
	}
	return &b, nil
}

func (s *Store) ListBudgets(ctx context.Context, userID int64) ([]models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapErr("list budgets", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		var b models.Budget
		if err := scanBudget(rows, &b); err != nil {
			return nil, mapErr("scan budget", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *Store) UpdateBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	query := `
		UPDATE budgets
		SET category = $1, limit_amount = $2, period = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING ` + budgetColumns

	var b models.Budget
	err := scanBudget(s.pool.QueryRow(ctx, query, budget.Category, budget.Limit, budget.Period, budget.ID, budget.UserID), &b)
	if err != nil {
		return nil, mapErr("update budget", err)
	}
	return &b, nil
}

func (s *Store) DeleteBudget(ctx context.Context, userID, budgetID int64) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, budgetID, userID)
	if err != nil {
		return mapErr("delete budget", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete budget: %w", ErrNotFound)
	}
	return nil
}
