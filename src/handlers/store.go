package handlers

import (
	"context"

	"finhealth-server/src/models"

	"github.com/shopspring/decimal"
)

// The interfaces below are satisfied by *db.Store. Handlers take only the
// slice of it they use.

type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, name, email string, passwordHash []byte) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, name, currency string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash []byte) error
	DeleteUser(ctx context.Context, id int64) error
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error)
	GetExpenseByID(ctx context.Context, userID, expenseID int64) (*models.Expense, error)
	ListExpenses(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error)
	UpdateExpenseCategory(ctx context.Context, userID, expenseID int64, category string) error
	DeleteExpense(ctx context.Context, userID, expenseID int64) error
}

type IncomeStore interface {
	CreateIncome(ctx context.Context, i *models.Income) (*models.Income, error)
	GetIncomeByID(ctx context.Context, userID, incomeID int64) (*models.Income, error)
	ListIncome(ctx context.Context, userID int64, f models.IncomeFilter) ([]models.Income, error)
	UpdateIncome(ctx context.Context, i *models.Income) (*models.Income, error)
	DeleteIncome(ctx context.Context, userID, incomeID int64) error
}

type BudgetStore interface {
	CreateBudget(ctx context.Context, b *models.Budget) (*models.Budget, error)
	GetBudgetByID(ctx context.Context, userID, budgetID int64) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID int64) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, b *models.Budget) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID int64) error
}

type GoalStore interface {
	CreateGoal(ctx context.Context, g *models.Goal) (*models.Goal, error)
	GetGoalByID(ctx context.Context, userID, goalID int64) (*models.Goal, error)
	ListGoals(ctx context.Context, userID int64) ([]models.Goal, error)
	UpdateGoal(ctx context.Context, g *models.Goal) (*models.Goal, error)
	ContributeToGoal(ctx context.Context, userID, goalID int64, amount decimal.Decimal) (*models.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID int64) error
}

type RuleStore interface {
	CreateCategoryRule(ctx context.Context, rule *models.CategoryRule) (*models.CategoryRule, error)
	GetCategoryRuleByID(ctx context.Context, userID, ruleID int64) (*models.CategoryRule, error)
	ListCategoryRules(ctx context.Context, userID int64) ([]models.CategoryRule, error)
	UpdateCategoryRule(ctx context.Context, rule *models.CategoryRule) (*models.CategoryRule, error)
	DeleteCategoryRule(ctx context.Context, userID, ruleID int64) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the full persistence surface the API needs.
type Store interface {
	UserStore
	ExpenseStore
	IncomeStore
	BudgetStore
	GoalStore
	RuleStore
	Pinger
}

// Cache holds derived analytics per user. *db.Cache implements it.
type Cache interface {
	Key(userID int64, parts ...string) string
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	InvalidateUser(userID int64)
}
