// Package analytics turns raw expenses, income, budgets and goals into the
// aggregates served by the analytics endpoints and read by the assistant.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"finhealth-server/src/models"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// Savings rate at which the savings component scores full marks.
	targetSavingsRate = decimal.NewFromInt(20)
)

const (
	savingsWeight = 40
	budgetWeight  = 30
	goalWeight    = 30
)

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// PeriodStart returns the first instant of the budget period containing t.
// Weeks start on Monday. Unknown periods are treated as monthly.
func PeriodStart(period string, t time.Time) time.Time {
	switch period {
	case models.PeriodWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.PeriodYearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return StartOfMonth(t)
	}
}

// EarliestPeriodStart is the oldest PeriodStart over the given budgets, so a
// single expense query can cover all of them.
func EarliestPeriodStart(budgets []models.Budget, now time.Time) time.Time {
	earliest := StartOfMonth(now)
	for _, b := range budgets {
		if s := PeriodStart(b.Period, now); s.Before(earliest) {
			earliest = s
		}
	}
	return earliest
}

func SavingsRate(income, expenses decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return income.Sub(expenses).Div(income).Mul(hundred).Round(1)
}

func Summarize(expenses []models.Expense, income []models.Income) models.Summary {
	s := models.Summary{
		TotalExpenses:      decimal.Zero,
		TotalIncome:        decimal.Zero,
		ExpensesByCategory: make(map[string]decimal.Decimal),
	}
	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
		s.ExpensesByCategory[e.Category] = s.ExpensesByCategory[e.Category].Add(e.Amount)
	}
	for _, i := range income {
		s.TotalIncome = s.TotalIncome.Add(i.Amount)
	}
	s.NetSavings = s.TotalIncome.Sub(s.TotalExpenses)
	s.SavingsRate = SavingsRate(s.TotalIncome, s.TotalExpenses)
	return s
}

// Trend buckets records into the last months calendar months ending with the
// month of now, oldest first. Records outside the window are ignored.
func Trend(expenses []models.Expense, income []models.Income, now time.Time, months int) []models.MonthTotals {
	if months <= 0 {
		return []models.MonthTotals{}
	}
	start := StartOfMonth(now).AddDate(0, -(months - 1), 0)
	out := make([]models.MonthTotals, months)
	index := make(map[string]int, months)
	for i := range out {
		key := start.AddDate(0, i, 0).Format("2006-01")
		out[i] = models.MonthTotals{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
		index[key] = i
	}
	for _, e := range expenses {
		if i, ok := index[e.Date.In(now.Location()).Format("2006-01")]; ok {
			out[i].Expenses = out[i].Expenses.Add(e.Amount)
		}
	}
	for _, inc := range income {
		if i, ok := index[inc.Date.In(now.Location()).Format("2006-01")]; ok {
			out[i].Income = out[i].Income.Add(inc.Amount)
		}
	}
	for i := range out {
		out[i].Net = out[i].Income.Sub(out[i].Expenses)
	}
	return out
}

// BudgetStatuses sums, for every budget, the expenses of its category that
// fall inside its current period.
func BudgetStatuses(budgets []models.Budget, expenses []models.Expense, now time.Time) []models.BudgetStatus {
	out := make([]models.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		since := PeriodStart(b.Period, now)
		spent := decimal.Zero
		for _, e := range expenses {
			if e.Category == b.Category && !e.Date.Before(since) {
				spent = spent.Add(e.Amount)
			}
		}
		out = append(out, models.BudgetStatus{Budget: b, Spent: spent, Remaining: b.Limit.Sub(spent)})
	}
	return out
}

func Exceeded(b models.BudgetStatus) bool {
	return b.Spent.GreaterThan(b.Limit)
}

func GoalViews(goals []models.Goal) []models.GoalView {
	out := make([]models.GoalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, models.GoalView{Goal: g, Progress: g.Progress()})
	}
	return out
}

// Score grades the user's financial health from this month's summary, the
// budget statuses and goal progress.
func Score(summary models.Summary, budgets []models.BudgetStatus, goals []models.Goal, now time.Time) models.HealthScore {
	var hs models.HealthScore

	rate := summary.SavingsRate
	switch {
	case rate.IsNegative():
		hs.SavingsPoints = 0
	case rate.GreaterThanOrEqual(targetSavingsRate):
		hs.SavingsPoints = savingsWeight
	default:
		hs.SavingsPoints = points(rate.Div(targetSavingsRate), savingsWeight)
	}

	var over []string
	for _, b := range budgets {
		if Exceeded(b) {
			over = append(over, b.Category)
		}
	}
	if len(budgets) == 0 {
		hs.BudgetPoints = budgetWeight
	} else {
		within := decimal.NewFromInt(int64(len(budgets) - len(over)))
		hs.BudgetPoints = points(within.Div(decimal.NewFromInt(int64(len(budgets)))), budgetWeight)
	}

	var overdue []string
	if len(goals) == 0 {
		hs.GoalPoints = goalWeight
	} else {
		total := decimal.Zero
		for _, g := range goals {
			p := g.Progress()
			total = total.Add(p)
			if g.Deadline.Before(now) && p.LessThan(hundred) {
				overdue = append(overdue, g.Name)
			}
		}
		mean := total.Div(decimal.NewFromInt(int64(len(goals))))
		hs.GoalPoints = points(mean.Div(hundred), goalWeight)
	}

	hs.Score = hs.SavingsPoints + hs.BudgetPoints + hs.GoalPoints
	hs.Grade = Grade(hs.Score)

	if summary.TotalIncome.IsZero() {
		hs.Tips = append(hs.Tips, "No income recorded this month. Add your income to get an accurate score.")
	} else if rate.LessThan(targetSavingsRate) {
		hs.Tips = append(hs.Tips, fmt.Sprintf("Your savings rate is %s%%. Aim to save at least %s%% of your income.", rate.StringFixed(1), targetSavingsRate))
	}
	if len(over) > 0 {
		sort.Strings(over)
		hs.Tips = append(hs.Tips, "You are over budget in: "+strings.Join(over, ", ")+".")
	}
	if len(overdue) > 0 {
		hs.Tips = append(hs.Tips, "Past their deadline: "+strings.Join(overdue, ", ")+". Consider extending them or adjusting the target.")
	}
	if len(hs.Tips) == 0 {
		hs.Tips = []string{"Great job! Your finances are on track."}
	}
	return hs
}

func Grade(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}

// points scales a [0, 1] fraction to weight, rounding half up.
func points(fraction decimal.Decimal, weight int) int {
	if fraction.IsNegative() {
		return 0
	}
	p := fraction.Mul(decimal.NewFromInt(int64(weight))).Round(0).IntPart()
	if p > int64(weight) {
		return weight
	}
	return int(p)
}
