package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"finhealth-server/src/models"
	"finhealth-server/src/rules"
	"finhealth-server/src/util"

	"github.com/shopspring/decimal"
)

const DefaultExpenseCategory = "Other"

// expenseRequest is shared by create and update. Nil fields are left alone
// on update.
type expenseRequest struct {
	Category      *string          `json:"category"`
	Amount        *decimal.Decimal `json:"amount"`
	Date          *string          `json:"date"`
	Description   *string          `json:"description"`
	PaymentMethod *string          `json:"payment_method"`
}

// apply copies the request onto e and validates the result.
func (req expenseRequest) apply(e *models.Expense) string {
	if req.Category != nil {
		e.Category = strings.TrimSpace(*req.Category)
	}
	if req.Amount != nil {
		amount, ok := models.RoundAmount(*req.Amount)
		if !ok {
			return "Amount must not exceed 999999999999.99"
		}
		e.Amount = amount
	}
	if req.Date != nil {
		d, err := util.ParseDate(*req.Date, time.Local)
		if err != nil {
			return "Invalid date"
		}
		e.Date = d
	}
	if req.Description != nil {
		e.Description = strings.TrimSpace(*req.Description)
	}
	if req.PaymentMethod != nil {
		e.PaymentMethod = strings.TrimSpace(*req.PaymentMethod)
	}
	if e.PaymentMethod == "" {
		e.PaymentMethod = models.DefaultPaymentMethod
	}
	if !e.Amount.IsPositive() {
		return "Amount must be greater than zero"
	}
	return ""
}

// categorize runs the user's rules against e, falling back to Other.
func categorize(ctx context.Context, store RuleStore, e models.Expense) (string, error) {
	stored, err := store.ListCategoryRules(ctx, e.UserID)
	if err != nil {
		return "", err
	}
	if category, ok := rules.FirstMatch(rules.Compile(stored), rules.SubjectOf(e)); ok {
		return category, nil
	}
	return DefaultExpenseCategory, nil
}

func GetExpenses(store ExpenseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		from, to, err := parseRange(r)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter := models.ExpenseFilter{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			From:     from,
			To:       to,
		}
		expenses, err := store.ListExpenses(r.Context(), userID, filter)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list expenses")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		util.WriteJSON(w, http.StatusOK, expenses)
	}
}

func GetExpenseByID(store ExpenseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		expenseID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid expense id")
			return
		}
		expense, err := store.GetExpenseByID(r.Context(), userID, expenseID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("expense_id", expenseID).Msg("failed to get expense")
			writeStoreError(w, err, "Expense not found")
			return
		}
		util.WriteJSON(w, http.StatusOK, expense)
	}
}

func CreateExpense(store ExpenseStore, ruleStore RuleStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req expenseRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode create expense request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Amount == nil || req.Date == nil {
			util.WriteError(w, http.StatusBadRequest, "Amount and date are required")
			return
		}

		expense := models.Expense{UserID: userID}
		if msg := req.apply(&expense); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		if expense.Category == "" {
			category, err := categorize(r.Context(), ruleStore, expense)
			if err != nil {
				logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to load category rules")
				util.WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			expense.Category = category
		}

		created, err := store.CreateExpense(r.Context(), &expense)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to create expense")
			writeStoreError(w, err, "User not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("expense_id", created.ID).Str("category", created.Category).Msg("created expense")
		util.WriteJSON(w, http.StatusCreated, created)
	}
}

func UpdateExpense(store ExpenseStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		expenseID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid expense id")
			return
		}
		var req expenseRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode update expense request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		expense, err := store.GetExpenseByID(r.Context(), userID, expenseID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("expense_id", expenseID).Msg("failed to get expense for update")
			writeStoreError(w, err, "Expense not found")
			return
		}
		if msg := req.apply(expense); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		if expense.Category == "" {
			expense.Category = DefaultExpenseCategory
		}

		updated, err := store.UpdateExpense(r.Context(), expense)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("expense_id", expenseID).Msg("failed to update expense")
			writeStoreError(w, err, "Expense not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("expense_id", expenseID).Msg("updated expense")
		util.WriteJSON(w, http.StatusOK, updated)
	}
}

func DeleteExpense(store ExpenseStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		expenseID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid expense id")
			return
		}
		if err := store.DeleteExpense(r.Context(), userID, expenseID); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("expense_id", expenseID).Msg("failed to delete expense")
			writeStoreError(w, err, "Expense not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("expense_id", expenseID).Msg("deleted expense")
		util.WriteMessage(w, http.StatusOK, "Expense deleted")
	}
}
