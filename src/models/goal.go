package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultGoalCategory = "Savings"

type Goal struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	Current   decimal.Decimal `json:"current"`
	Deadline  time.Time       `json:"deadline"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// Progress returns current/target as a percentage in [0, 100].
func (g Goal) Progress() decimal.Decimal {
	if !g.Target.IsPositive() {
		return decimal.Zero
	}
	p := g.Current.Div(g.Target).Mul(hundred)
	if p.GreaterThan(hundred) {
		return hundred
	}
	if p.IsNegative() {
		return decimal.Zero
	}
	return p.Round(1)
}

type GoalView struct {
	Goal
	Progress decimal.Decimal `json:"progress"`
}
