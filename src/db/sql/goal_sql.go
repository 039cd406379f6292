package db

import (
	"context"
	"fmt"

	"finhealth-server/src/models"

	"github.com/shopspring/decimal"
)

const goalColumns = `id, user_id, name, target, current, deadline, category, created_at, updated_at`

func scanGoal(row interface{ Scan(...any) error }, g *models.Goal) error {
	return row.Scan(&g.ID, &g.UserID, &g.Name, &g.Target, &g.Current, &g.Deadline, &g.Category, &g.CreatedAt, &g.UpdatedAt)
}

func (s *Store) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	query := `
		INSERT INTO goals (user_id, name, target, current, deadline, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + goalColumns

	var g models.Goal
	err := scanGoal(s.pool.QueryRow(ctx, query, goal.UserID, goal.Name, goal.Target, goal.Current, goal.Deadline, goal.Category), &g)
	if err != nil {
		return nil, mapErr("create goal", err)
	}
	return &g, nil
}

func (s *Store) GetGoalByID(ctx context.Context, userID, goalID int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`
	var g models.Goal
	if err := scanGoal(s.pool.QueryRow(ctx, query, goalID, userID), &g); err != nil {
		return nil, mapErr("get goal", err)
	}
	return &g, nil
}

// ListGoals returns the user's goals by nearest deadline first.
func (s *Store) ListGoals(ctx context.Context, userID int64) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY deadline ASC, id ASC`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapErr("list goals", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		var g models.Goal
		if err := scanGoal(rows, &g); err != nil {
			return nil, mapErr("scan goal", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) UpdateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET name = $1, target = $2, current = $3, deadline = $4, category = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING ` + goalColumns

	var g models.Goal
	err := scanGoal(s.pool.QueryRow(ctx, query, goal.Name, goal.Target, goal.Current, goal.Deadline, goal.Category, goal.ID, goal.UserID), &g)
	if err != nil {
		return nil, mapErr("update goal", err)
	}
	return &g, nil
}

// ContributeToGoal adds amount to current in one statement so concurrent
// contributions are not lost.
func (s *Store) ContributeToGoal(ctx context.Context, userID, goalID int64, amount decimal.Decimal) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET current = current + $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING ` + goalColumns

	var g models.Goal
	if err := scanGoal(s.pool.QueryRow(ctx, query, amount, goalID, userID), &g); err != nil {
		return nil, mapErr("contribute to goal", err)
	}
	return &g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, goalID int64) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return mapErr("delete goal", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete goal: %w", ErrNotFound)
	}
	return nil
}
