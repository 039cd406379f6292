package handlers

import (
	"net/http"
	"strings"
	"time"

	"finhealth-server/src/models"
	"finhealth-server/src/util"

	"github.com/shopspring/decimal"
)

type incomeRequest struct {
	Source      *string          `json:"source"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
	Description *string          `json:"description"`
}

func (req incomeRequest) apply(i *models.Income) string {
	if req.Source != nil {
		i.Source = strings.TrimSpace(*req.Source)
	}
	if req.Amount != nil {
		amount, ok := models.RoundAmount(*req.Amount)
		if !ok {
			return "Amount must not exceed 999999999999.99"
		}
		i.Amount = amount
	}
	if req.Date != nil {
		d, err := util.ParseDate(*req.Date, time.Local)
		if err != nil {
			return "Invalid date"
		}
		i.Date = d
	}
	if req.Description != nil {
		i.Description = strings.TrimSpace(*req.Description)
	}
	if i.Source == "" {
		return "Source is required"
	}
	if !i.Amount.IsPositive() {
		return "Amount must be greater than zero"
	}
	return ""
}

func GetIncome(store IncomeStore) http.HandlerFunc {
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
		income, err := store.ListIncome(r.Context(), userID, models.IncomeFilter{From: from, To: to})
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list income")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		util.WriteJSON(w, http.StatusOK, income)
	}
}

func GetIncomeByID(store IncomeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		incomeID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid income id")
			return
		}
		income, err := store.GetIncomeByID(r.Context(), userID, incomeID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("income_id", incomeID).Msg("failed to get income")
			writeStoreError(w, err, "Income not found")
			return
		}
		util.WriteJSON(w, http.StatusOK, income)
	}
}

func CreateIncome(store IncomeStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req incomeRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode create income request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Amount == nil || req.Date == nil {
			util.WriteError(w, http.StatusBadRequest, "Source, amount and date are required")
			return
		}

		income := models.Income{UserID: userID}
		if msg := req.apply(&income); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		created, err := store.CreateIncome(r.Context(), &income)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to create income")
			writeStoreError(w, err, "User not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("income_id", created.ID).Msg("created income")
		util.WriteJSON(w, http.StatusCreated, created)
	}
}

func UpdateIncome(store IncomeStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		incomeID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid income id")
			return
		}
		var req incomeRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode update income request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		income, err := store.GetIncomeByID(r.Context(), userID, incomeID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("income_id", incomeID).Msg("failed to get income for update")
			writeStoreError(w, err, "Income not found")
			return
		}
		if msg := req.apply(income); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		updated, err := store.UpdateIncome(r.Context(), income)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("income_id", incomeID).Msg("failed to update income")
			writeStoreError(w, err, "Income not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("income_id", incomeID).Msg("updated income")
		util.WriteJSON(w, http.StatusOK, updated)
	}
}

func DeleteIncome(store IncomeStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		incomeID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid income id")
			return
		}
		if err := store.DeleteIncome(r.Context(), userID, incomeID); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("income_id", incomeID).Msg("failed to delete income")
			writeStoreError(w, err, "Income not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("income_id", incomeID).Msg("deleted income")
		util.WriteMessage(w, http.StatusOK, "Income deleted")
	}
}
