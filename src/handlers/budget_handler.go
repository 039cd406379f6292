package handlers

import (
	"context"
	"net/http"
	"strings"

	"finhealth-server/src/analytics"
	"finhealth-server/src/models"
	"finhealth-server/src/util"

	"github.com/shopspring/decimal"
)

type budgetRequest struct {
	Category *string          `json:"category"`
	Limit    *decimal.Decimal `json:"limit"`
	Period   *string          `json:"period"`
}

func (req budgetRequest) apply(b *models.Budget) string {
	if req.Category != nil {
		b.Category = strings.TrimSpace(*req.Category)
	}
	if req.Limit != nil {
		limit, ok := models.RoundAmount(*req.Limit)
		if !ok {
			return "Limit must not exceed 999999999999.99"
		}
		b.Limit = limit
	}
	if req.Period != nil {
		b.Period = strings.ToLower(strings.TrimSpace(*req.Period))
	}
	if b.Period == "" {
		b.Period = models.PeriodMonthly
	}
	if b.Category == "" {
		return "Category is required"
	}
	if !b.Limit.IsPositive() {
		return "Limit must be greater than zero"
	}
	if !models.ValidPeriod(b.Period) {
		return "Period must be weekly, monthly or yearly"
	}
	return ""
}

// budgetStatuses loads the expenses covering every budget's current period
// in one query and attaches spent and remaining.
func budgetStatuses(ctx context.Context, expenses ExpenseStore, userID int64, budgets []models.Budget) ([]models.BudgetStatus, error) {
	if len(budgets) == 0 {
		return []models.BudgetStatus{}, nil
	}
	t := now()
	spent, err := expenses.ListExpenses(ctx, userID, models.ExpenseFilter{From: analytics.EarliestPeriodStart(budgets, t)})
	if err != nil {
		return nil, err
	}
	return analytics.BudgetStatuses(budgets, spent, t), nil
}

func GetBudgets(store BudgetStore, expenses ExpenseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		budgets, err := store.ListBudgets(r.Context(), userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list budgets")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		statuses, err := budgetStatuses(r.Context(), expenses, userID, budgets)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to compute budget spending")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		util.WriteJSON(w, http.StatusOK, statuses)
	}
}

func GetBudgetByID(store BudgetStore, expenses ExpenseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		budgetID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid budget id")
			return
		}
		budget, err := store.GetBudgetByID(r.Context(), userID, budgetID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("budget_id", budgetID).Msg("failed to get budget")
			writeStoreError(w, err, "Budget not found")
			return
		}
		statuses, err := budgetStatuses(r.Context(), expenses, userID, []models.Budget{*budget})
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("budget_id", budgetID).Msg("failed to compute budget spending")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		util.WriteJSON(w, http.StatusOK, statuses[0])
	}
}

func CreateBudget(store BudgetStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req budgetRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode create budget request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Limit == nil {
			util.WriteError(w, http.StatusBadRequest, "Category and limit are required")
			return
		}

		budget := models.Budget{UserID: userID}
		if msg := req.apply(&budget); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		created, err := store.CreateBudget(r.Context(), &budget)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to create budget")
			writeStoreError(w, err, "User not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("budget_id", created.ID).Str("category", created.Category).Msg("created budget")
		util.WriteJSON(w, http.StatusCreated, created)
	}
}

func UpdateBudget(store BudgetStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		budgetID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid budget id")
			return
		}
		var req budgetRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode update budget request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		budget, err := store.GetBudgetByID(r.Context(), userID, budgetID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("budget_id", budgetID).Msg("failed to get budget for update")
			writeStoreError(w, err, "Budget not found")
			return
		}
		if msg := req.apply(budget); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		updated, err := store.UpdateBudget(r.Context(), budget)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("budget_id", budgetID).Msg("failed to update budget")
			writeStoreError(w, err, "Budget not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("budget_id", budgetID).Msg("updated budget")
		util.WriteJSON(w, http.StatusOK, updated)
	}
}

func DeleteBudget(store BudgetStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		budgetID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid budget id")
			return
		}
		if err := store.DeleteBudget(r.Context(), userID, budgetID); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("budget_id", budgetID).Msg("failed to delete budget")
			writeStoreError(w, err, "Budget not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("budget_id", budgetID).Msg("deleted budget")
		util.WriteMessage(w, http.StatusOK, "Budget deleted")
	}
}
