package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"finhealth-server/src/models"
)

const incomeColumns = `id, user_id, source, amount, date, description, created_at, updated_at`

func scanIncome(row interface{ Scan(...any) error }, i *models.Income) error {
	return row.Scan(&i.ID, &i.UserID, &i.Source, &i.Amount, &i.Date, &i.Description, &i.CreatedAt, &i.UpdatedAt)
}

func (s *Store) CreateIncome(ctx context.Context, i *models.Income) (*models.Income, error) {
	query := `
		INSERT INTO incomes (user_id, source, amount, date, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + incomeColumns

	var out models.Income
	if err := scanIncome(s.pool.QueryRow(ctx, query, i.UserID, i.Source, i.Amount, i.Date, i.Description), &out); err != nil {
		return nil, mapErr("create income", err)
	}
	return &out, nil
}

func (s *Store) GetIncomeByID(ctx context.Context, userID, incomeID int64) (*models.Income, error) {
	query := `SELECT ` + incomeColumns + ` FROM incomes WHERE id = $1 AND user_id = $2`
	var i models.Income
	if err := scanIncome(s.pool.QueryRow(ctx, query, incomeID, userID), &i); err != nil {
		return nil, mapErr("get income", err)
	}
	return &i, nil
}

func (s *Store) ListIncome(ctx context.Context, userID int64, f models.IncomeFilter) ([]models.Income, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, "date >= $"+strconv.Itoa(len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where = append(where, "date < $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + incomeColumns + ` FROM incomes WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr("list income", err)
	}
	defer rows.Close()

	income := []models.Income{}
	for rows.Next() {
		var i models.Income
		if err := scanIncome(rows, &i); err != nil {
			return nil, mapErr("scan income", err)
		}
		income = append(income, i)
	}
	return income, rows.Err()
}

func (s *Store) UpdateIncome(ctx context.Context, i *models.Income) (*models.Income, error) {
	query := `
		UPDATE incomes
		SET source = $1, amount = $2, date = $3, description = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING ` + incomeColumns

	var out models.Income
	if err := scanIncome(s.pool.QueryRow(ctx, query, i.Source, i.Amount, i.Date, i.Description, i.ID, i.UserID), &out); err != nil {
		return nil, mapErr("update income", err)
	}
	return &out, nil
}

func (s *Store) DeleteIncome(ctx context.Context, userID, incomeID int64) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM incomes WHERE id = $1 AND user_id = $2`, incomeID, userID)
	if err != nil {
		return mapErr("delete income", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete income: %w", ErrNotFound)
	}
	return nil
}
