package db

import (
	"context"
	"fmt"

	"finhealth-server/src/models"
)

const ruleColumns = `id, user_id, name, conditions, category, created_at, updated_at`

func scanRule(row interface{ Scan(...any) error }, r *models.CategoryRule) error {
	return row.Scan(&r.ID, &r.UserID, &r.Name, &r.Conditions, &r.Category, &r.CreatedAt, &r.UpdatedAt)
}

func (s *Store) CreateCategoryRule(ctx context.Context, rule *models.CategoryRule) (*models.CategoryRule, error) {
	query := `
		INSERT INTO category_rules (user_id, name, conditions, category)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + ruleColumns

	var r models.CategoryRule
	err := scanRule(s.pool.QueryRow(ctx, query, rule.UserID, rule.Name, []byte(rule.Conditions), rule.Category), &r)
	if err != nil {
		return nil, mapErr("create category rule", err)
	}
	return &r, nil
}

func (s *Store) GetCategoryRuleByID(ctx context.Context, userID, ruleID int64) (*models.CategoryRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM category_rules WHERE id = $1 AND user_id = $2`
	var r models.CategoryRule
	if err := scanRule(s.pool.QueryRow(ctx, query, ruleID, userID), &r); err != nil {
		return nil, mapErr("get category rule", err)
	}
	return &r, nil
}

// ListCategoryRules returns rules in evaluation order.
func (s *Store) ListCategoryRules(ctx context.Context, userID int64) ([]models.CategoryRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM category_rules WHERE user_id = $1 ORDER BY id`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapErr("list category rules", err)
	}
	defer rows.Close()

	rules := []models.CategoryRule{}
	for rows.Next() {
		var r models.CategoryRule
		if err := scanRule(rows, &r); err != nil {
			return nil, mapErr("scan category rule", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *Store) UpdateCategoryRule(ctx context.Context, rule *models.CategoryRule) (*models.CategoryRule, error) {
	query := `
		UPDATE category_rules
		SET name = $1, conditions = $2, category = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING ` + ruleColumns

	var r models.CategoryRule
	err := scanRule(s.pool.QueryRow(ctx, query, rule.Name, []byte(rule.Conditions), rule.Category, rule.ID, rule.UserID), &r)
	if err != nil {
		return nil, mapErr("update category rule", err)
	}
	return &r, nil
}

func (s *Store) DeleteCategoryRule(ctx context.Context, userID, ruleID int64) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM category_rules WHERE id = $1 AND user_id = $2`, ruleID, userID)
	if err != nil {
		return mapErr("delete category rule", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete category rule: %w", ErrNotFound)
	}
	return nil
}
