package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"finhealth-server/src/models"
)

const expenseColumns = `id, user_id, category, amount, date, description, payment_method, created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }, e *models.Expense) error {
	return row.Scan(&e.ID, &e.UserID, &e.Category, &e.Amount, &e.Date, &e.Description, &e.PaymentMethod, &e.CreatedAt, &e.UpdatedAt)
}

func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (user_id, category, amount, date, description, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + expenseColumns

	var out models.Expense
	err := scanExpense(s.pool.QueryRow(ctx, query, e.UserID, e.Category, e.Amount, e.Date, e.Description, e.PaymentMethod), &out)
	if err != nil {
		return nil, mapErr("create expense", err)
	}
	return &out, nil
}

func (s *Store) GetExpenseByID(ctx context.Context, userID, expenseID int64) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`
	var e models.Expense
	if err := scanExpense(s.pool.QueryRow(ctx, query, expenseID, userID), &e); err != nil {
		return nil, mapErr("get expense", err)
	}
	return &e, nil
}

// ListExpenses returns the user's expenses newest first.
func (s *Store) ListExpenses(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, "date >= $"+strconv.Itoa(len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where = append(where, "date < $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr("list expenses", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := scanExpense(rows, &e); err != nil {
			return nil, mapErr("scan expense", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	query := `
		UPDATE expenses
		SET category = $1, amount = $2, date = $3, description = $4, payment_method = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING ` + expenseColumns

	var out models.Expense
	err := scanExpense(s.pool.QueryRow(ctx, query, e.Category, e.Amount, e.Date, e.Description, e.PaymentMethod, e.ID, e.UserID), &out)
	if err != nil {
		return nil, mapErr("update expense", err)
	}
	return &out, nil
}

func (s *Store) UpdateExpenseCategory(ctx context.Context, userID, expenseID int64, category string) error {
	cmd, err := s.pool.Exec(ctx,
		`UPDATE expenses SET category = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		category, expenseID, userID)
	if err != nil {
		return mapErr("update expense category", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update expense category: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, expenseID, userID)
	if err != nil {
		return mapErr("delete expense", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete expense: %w", ErrNotFound)
	}
	return nil
}
