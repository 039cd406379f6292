package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

type Budget struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Period    string          `json:"period"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BudgetStatus is a budget joined with what was spent in its current period.
type BudgetStatus struct {
	Budget
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

func ValidPeriod(p string) bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}
