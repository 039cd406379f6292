package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	db "finhealth-server/src/db/sql"
	"finhealth-server/src/handlers"
	"finhealth-server/src/models"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory handlers.Store.
type fakeStore struct {
	mu sync.Mutex

	nextID   int64
	pingErr  error
	failList error

	users    map[int64]*models.User
	expenses map[int64]*models.Expense
	incomes  map[int64]*models.Income
	budgets  map[int64]*models.Budget
	goals    map[int64]*models.Goal
	rules    map[int64]*models.CategoryRule
}

var _ handlers.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]*models.User{},
		expenses: map[int64]*models.Expense{},
		incomes:  map[int64]*models.Income{},
		budgets:  map[int64]*models.Budget{},
		goals:    map[int64]*models.Goal{},
		rules:    map[int64]*models.CategoryRule{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, db.ErrNotFound)
}

// owned mirrors the users(id) foreign key and the NUMERIC(14,2) amount
// columns. Callers hold f.mu.
func (f *fakeStore) owned(what string, userID int64, amounts ...decimal.Decimal) error {
	if _, ok := f.users[userID]; !ok {
		return notFound(what)
	}
	for _, a := range amounts {
		if a.Abs().GreaterThan(models.MaxAmount) {
			return fmt.Errorf("%s: %w", what, db.ErrOutOfRange)
		}
	}
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

// Users

func (f *fakeStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("get user")
}

func (f *fakeStore) CreateUser(ctx context.Context, name, email string, hash []byte) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, fmt.Errorf("create user: %w", db.ErrDuplicate)
		}
	}
	u := &models.User{ID: f.id(), Name: name, Email: email, PasswordHash: hash, Currency: "USD", CreatedAt: time.Now()}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateUserProfile(ctx context.Context, id int64, name, currency string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, notFound("update user")
	}
	u.Name, u.Currency = name, currency
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateUserPassword(ctx context.Context, id int64, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return notFound("update password")
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return notFound("delete user")
	}
	delete(f.users, id)
	for k, e := range f.expenses {
		if e.UserID == id {
			delete(f.expenses, k)
		}
	}
	for k, i := range f.incomes {
		if i.UserID == id {
			delete(f.incomes, k)
		}
	}
	for k, b := range f.budgets {
		if b.UserID == id {
			delete(f.budgets, k)
		}
	}
	for k, g := range f.goals {
		if g.UserID == id {
			delete(f.goals, k)
		}
	}
	for k, r := range f.rules {
		if r.UserID == id {
			delete(f.rules, k)
		}
	}
	return nil
}

// Expenses

func (f *fakeStore) CreateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.owned("create expense", e.UserID, e.Amount); err != nil {
		return nil, err
	}
	cp := *e
	cp.ID = f.id()
	cp.CreatedAt, cp.UpdatedAt = time.Now(), time.Now()
	f.expenses[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetExpenseByID(ctx context.Context, userID, id int64) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[id]
	if !ok || e.UserID != userID {
		return nil, notFound("get expense")
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) ListExpenses(ctx context.Context, userID int64, flt models.ExpenseFilter) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	out := []models.Expense{}
	for _, e := range f.expenses {
		if e.UserID != userID {
			continue
		}
		if flt.Category != "" && e.Category != flt.Category {
			continue
		}
		if !flt.From.IsZero() && e.Date.Before(flt.From) {
			continue
		}
		if !flt.To.IsZero() && !e.Date.Before(flt.To) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeStore) UpdateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.expenses[e.ID]
	if !ok || cur.UserID != e.UserID {
		return nil, notFound("update expense")
	}
	cp := *e
	cp.UpdatedAt = time.Now()
	f.expenses[e.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) UpdateExpenseCategory(ctx context.Context, userID, id int64, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[id]
	if !ok || e.UserID != userID {
		return notFound("update expense category")
	}
	e.Category = category
	return nil
}

func (f *fakeStore) DeleteExpense(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[id]
	if !ok || e.UserID != userID {
		return notFound("delete expense")
	}
	delete(f.expenses, id)
	return nil
}

// Income

func (f *fakeStore) CreateIncome(ctx context.Context, i *models.Income) (*models.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.owned("create income", i.UserID, i.Amount); err != nil {
		return nil, err
	}
	cp := *i
	cp.ID = f.id()
	f.incomes[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetIncomeByID(ctx context.Context, userID, id int64) (*models.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.incomes[id]
	if !ok || i.UserID != userID {
		return nil, notFound("get income")
	}
	cp := *i
	return &cp, nil
}

func (f *fakeStore) ListIncome(ctx context.Context, userID int64, flt models.IncomeFilter) ([]models.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Income{}
	for _, i := range f.incomes {
		if i.UserID != userID {
			continue
		}
		if !flt.From.IsZero() && i.Date.Before(flt.From) {
			continue
		}
		if !flt.To.IsZero() && !i.Date.Before(flt.To) {
			continue
		}
		out = append(out, *i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.After(out[b].Date) })
	return out, nil
}

func (f *fakeStore) UpdateIncome(ctx context.Context, i *models.Income) (*models.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.incomes[i.ID]
	if !ok || cur.UserID != i.UserID {
		return nil, notFound("update income")
	}
	cp := *i
	f.incomes[i.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) DeleteIncome(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.incomes[id]
	if !ok || i.UserID != userID {
		return notFound("delete income")
	}
	delete(f.incomes, id)
	return nil
}

// Budgets

func (f *fakeStore) CreateBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.owned("create budget", b.UserID, b.Limit); err != nil {
		return nil, err
	}
	cp := *b
	cp.ID = f.id()
	f.budgets[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetBudgetByID(ctx context.Context, userID, id int64) (*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[id]
	if !ok || b.UserID != userID {
		return nil, notFound("get budget")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ListBudgets(ctx context.Context, userID int64) ([]models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Budget{}
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Category, out[j].Category) < 0 })
	return out, nil
}

func (f *fakeStore) UpdateBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.budgets[b.ID]
	if !ok || cur.UserID != b.UserID {
		return nil, notFound("update budget")
	}
	cp := *b
	f.budgets[b.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) DeleteBudget(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[id]
	if !ok || b.UserID != userID {
		return notFound("delete budget")
	}
	delete(f.budgets, id)
	return nil
}

// Goals

func (f *fakeStore) CreateGoal(ctx context.Context, g *models.Goal) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.owned("create goal", g.UserID, g.Target, g.Current); err != nil {
		return nil, err
	}
	cp := *g
	cp.ID = f.id()
	f.goals[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetGoalByID(ctx context.Context, userID, id int64) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return nil, notFound("get goal")
	}
	cp := *g
	return &cp, nil
}

func (f *fakeStore) ListGoals(ctx context.Context, userID int64) ([]models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Goal{}
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out, nil
}

func (f *fakeStore) UpdateGoal(ctx context.Context, g *models.Goal) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.goals[g.ID]
	if !ok || cur.UserID != g.UserID {
		return nil, notFound("update goal")
	}
	cp := *g
	f.goals[g.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) ContributeToGoal(ctx context.Context, userID, id int64, amount decimal.Decimal) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return nil, notFound("contribute to goal")
	}
	if err := f.owned("contribute to goal", userID, g.Current.Add(amount)); err != nil {
		return nil, err
	}
	g.Current = g.Current.Add(amount)
	cp := *g
	return &cp, nil
}

func (f *fakeStore) DeleteGoal(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return notFound("delete goal")
	}
	delete(f.goals, id)
	return nil
}

// Category rules

func (f *fakeStore) CreateCategoryRule(ctx context.Context, r *models.CategoryRule) (*models.CategoryRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.owned("create category rule", r.UserID); err != nil {
		return nil, err
	}
	cp := *r
	cp.ID = f.id()
	f.rules[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetCategoryRuleByID(ctx context.Context, userID, id int64) (*models.CategoryRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rules[id]
	if !ok || r.UserID != userID {
		return nil, notFound("get category rule")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ListCategoryRules(ctx context.Context, userID int64) ([]models.CategoryRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CategoryRule{}
	for _, r := range f.rules {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateCategoryRule(ctx context.Context, r *models.CategoryRule) (*models.CategoryRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rules[r.ID]
	if !ok || cur.UserID != r.UserID {
		return nil, notFound("update category rule")
	}
	cp := *r
	f.rules[r.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) DeleteCategoryRule(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rules[id]
	if !ok || r.UserID != userID {
		return notFound("delete category rule")
	}
	delete(f.rules, id)
	return nil
}

var errBoom = errors.New("boom")
