package handlers

import (
	"net/http"
	"strings"
	"time"

	"finhealth-server/src/analytics"
	"finhealth-server/src/models"
	"finhealth-server/src/util"

	"github.com/shopspring/decimal"
)

type goalRequest struct {
	Name     *string          `json:"name"`
	Target   *decimal.Decimal `json:"target"`
	Current  *decimal.Decimal `json:"current"`
	Deadline *string          `json:"deadline"`
	Category *string          `json:"category"`
}

func (req goalRequest) apply(g *models.Goal) string {
	if req.Name != nil {
		g.Name = strings.TrimSpace(*req.Name)
	}
	if req.Target != nil {
		target, ok := models.RoundAmount(*req.Target)
		if !ok {
			return "Target must not exceed 999999999999.99"
		}
		g.Target = target
	}
	if req.Current != nil {
		current, ok := models.RoundAmount(*req.Current)
		if !ok {
			return "Current amount must not exceed 999999999999.99"
		}
		g.Current = current
	}
	if req.Deadline != nil {
		d, err := util.ParseDate(*req.Deadline, time.Local)
		if err != nil {
			return "Invalid deadline"
		}
		g.Deadline = d
	}
	if req.Category != nil {
		g.Category = strings.TrimSpace(*req.Category)
	}
	if g.Category == "" {
		g.Category = models.DefaultGoalCategory
	}
	if g.Name == "" {
		return "Name is required"
	}
	if !g.Target.IsPositive() {
		return "Target must be greater than zero"
	}
	if g.Current.IsNegative() {
		return "Current amount cannot be negative"
	}
	return ""
}

func GetGoals(store GoalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		goals, err := store.ListGoals(r.Context(), userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list goals")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		util.WriteJSON(w, http.StatusOK, analytics.GoalViews(goals))
	}
}

func GetGoalByID(store GoalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		goalID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid goal id")
			return
		}
		goal, err := store.GetGoalByID(r.Context(), userID, goalID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("goal_id", goalID).Msg("failed to get goal")
			writeStoreError(w, err, "Goal not found")
			return
		}
		util.WriteJSON(w, http.StatusOK, models.GoalView{Goal: *goal, Progress: goal.Progress()})
	}
}

func CreateGoal(store GoalStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req goalRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode create goal request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Target == nil || req.Deadline == nil {
			util.WriteError(w, http.StatusBadRequest, "Name, target and deadline are required")
			return
		}

		goal := models.Goal{UserID: userID, Current: decimal.Zero}
		if msg := req.apply(&goal); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		created, err := store.CreateGoal(r.Context(), &goal)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to create goal")
			writeStoreError(w, err, "User not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("goal_id", created.ID).Str("name", created.Name).Msg("created goal")
		util.WriteJSON(w, http.StatusCreated, models.GoalView{Goal: *created, Progress: created.Progress()})
	}
}

func UpdateGoal(store GoalStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		goalID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid goal id")
			return
		}
		var req goalRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode update goal request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		goal, err := store.GetGoalByID(r.Context(), userID, goalID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("goal_id", goalID).Msg("failed to get goal for update")
			writeStoreError(w, err, "Goal not found")
			return
		}
		if msg := req.apply(goal); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		updated, err := store.UpdateGoal(r.Context(), goal)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("goal_id", goalID).Msg("failed to update goal")
			writeStoreError(w, err, "Goal not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("goal_id", goalID).Msg("updated goal")
		util.WriteJSON(w, http.StatusOK, models.GoalView{Goal: *updated, Progress: updated.Progress()})
	}
}

func ContributeToGoal(store GoalStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		goalID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid goal id")
			return
		}
		var req struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode contribution request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		amount, ok := models.RoundAmount(req.Amount)
		if !ok {
			util.WriteError(w, http.StatusBadRequest, "Amount must not exceed 999999999999.99")
			return
		}
		if !amount.IsPositive() {
			util.WriteError(w, http.StatusBadRequest, "Amount must be greater than zero")
			return
		}

		goal, err := store.ContributeToGoal(r.Context(), userID, goalID, amount)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("goal_id", goalID).Msg("failed to contribute to goal")
			writeStoreError(w, err, "Goal not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("goal_id", goalID).Str("amount", amount.String()).Msg("contributed to goal")
		util.WriteJSON(w, http.StatusOK, models.GoalView{Goal: *goal, Progress: goal.Progress()})
	}
}

func DeleteGoal(store GoalStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		goalID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid goal id")
			return
		}
		if err := store.DeleteGoal(r.Context(), userID, goalID); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("goal_id", goalID).Msg("failed to delete goal")
			writeStoreError(w, err, "Goal not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Int64("goal_id", goalID).Msg("deleted goal")
		util.WriteMessage(w, http.StatusOK, "Goal deleted")
	}
}
