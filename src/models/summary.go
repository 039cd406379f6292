package models

import "github.com/shopspring/decimal"

type Summary struct {
	TotalExpenses      decimal.Decimal            `json:"totalExpenses"`
	TotalIncome        decimal.Decimal            `json:"totalIncome"`
	NetSavings         decimal.Decimal            `json:"netSavings"`
	SavingsRate        decimal.Decimal            `json:"savingsRate"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expensesByCategory"`
}

type MonthTotals struct {
	Month    string          `json:"month"` // YYYY-MM
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type HealthScore struct {
	Score         int      `json:"score"`
	Grade         string   `json:"grade"`
	SavingsPoints int      `json:"savingsPoints"`
	BudgetPoints  int      `json:"budgetPoints"`
	GoalPoints    int      `json:"goalPoints"`
	Tips          []string `json:"tips"`
}
