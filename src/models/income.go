package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Income struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Source      string          `json:"source"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type IncomeFilter struct {
	From time.Time
	To   time.Time
}
