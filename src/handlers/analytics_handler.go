package handlers

import (
	"context"
	"net/http"
	"strconv"

	"finhealth-server/src/analytics"
	"finhealth-server/src/models"
	"finhealth-server/src/util"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
)

type AnalyticsStore interface {
	ExpenseStore
	IncomeStore
	BudgetStore
	GoalStore
}

// monthView is the current month's picture of a user's finances. It backs
// the summary, the health score and the assistant, and is cached per user.
type monthView struct {
	Summary models.Summary
	Budgets []models.BudgetStatus
	Goals   []models.Goal
	Health  models.HealthScore
}

func loadMonthView(ctx context.Context, store AnalyticsStore, cache Cache, userID int64) (*monthView, error) {
	// Keyed by day so period boundaries roll over without a write.
	t := now()
	key := cache.Key(userID, "month", t.Format("2006-01-02"))
	if v, ok := cache.Get(key); ok {
		if mv, ok := v.(*monthView); ok {
			return mv, nil
		}
	}

	monthStart := analytics.StartOfMonth(t)
	monthEnd := monthStart.AddDate(0, 1, 0)

	budgets, err := store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := analytics.EarliestPeriodStart(budgets, t)
	expenses, err := store.ListExpenses(ctx, userID, models.ExpenseFilter{From: from})
	if err != nil {
		return nil, err
	}
	income, err := store.ListIncome(ctx, userID, models.IncomeFilter{From: monthStart, To: monthEnd})
	if err != nil {
		return nil, err
	}
	goals, err := store.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	thisMonth := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !e.Date.Before(monthStart) && e.Date.Before(monthEnd) {
			thisMonth = append(thisMonth, e)
		}
	}

	mv := &monthView{
		Summary: analytics.Summarize(thisMonth, income),
		Budgets: analytics.BudgetStatuses(budgets, expenses, t),
		Goals:   goals,
	}
	mv.Health = analytics.Score(mv.Summary, mv.Budgets, mv.Goals, t)

	cache.Set(key, mv)
	return mv, nil
}

func GetSummary(store AnalyticsStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		mv, err := loadMonthView(r.Context(), store, cache, userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to build summary")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		util.WriteJSON(w, http.StatusOK, mv.Summary)
	}
}

func GetHealthScore(store AnalyticsStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		mv, err := loadMonthView(r.Context(), store, cache, userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to build health score")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		util.WriteJSON(w, http.StatusOK, mv.Health)
	}
}

func GetTrend(store AnalyticsStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		months := defaultTrendMonths
		if s := r.URL.Query().Get("months"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > maxTrendMonths {
				util.WriteError(w, http.StatusBadRequest, "months must be between 1 and 24")
				return
			}
			months = n
		}

		t := now()
		key := cache.Key(userID, "trend", strconv.Itoa(months), t.Format("2006-01"))
		if v, ok := cache.Get(key); ok {
			if trend, ok := v.([]models.MonthTotals); ok {
				util.WriteJSON(w, http.StatusOK, trend)
				return
			}
		}

		from := analytics.StartOfMonth(t).AddDate(0, -(months - 1), 0)
		to := analytics.StartOfMonth(t).AddDate(0, 1, 0)
		expenses, err := store.ListExpenses(r.Context(), userID, models.ExpenseFilter{From: from, To: to})
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list expenses for trend")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		income, err := store.ListIncome(r.Context(), userID, models.IncomeFilter{From: from, To: to})
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list income for trend")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		trend := analytics.Trend(expenses, income, t, months)
		cache.Set(key, trend)
		util.WriteJSON(w, http.StatusOK, trend)
	}
}
