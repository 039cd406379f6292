package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "Cash"

type Expense struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ExpenseFilter narrows a listing. Zero values mean no restriction; To is exclusive.
type ExpenseFilter struct {
	Category string
	From     time.Time
	To       time.Time
}
