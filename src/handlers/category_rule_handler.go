package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"finhealth-server/src/models"
	"finhealth-server/src/rules"
	"finhealth-server/src/util"
)

type ruleRequest struct {
	Name       *string         `json:"name"`
	Conditions json.RawMessage `json:"conditions"`
	Category   *string         `json:"category"`
}

func (req ruleRequest) apply(rule *models.CategoryRule) string {
	if req.Name != nil {
		rule.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		rule.Category = strings.TrimSpace(*req.Category)
	}
	if len(req.Conditions) > 0 {
		rule.Conditions = req.Conditions
	}
	if rule.Name == "" || rule.Category == "" {
		return "Name and category are required"
	}
	if _, err := rules.Parse(rule.Conditions); err != nil {
		return "Invalid conditions: " + err.Error()
	}
	return ""
}

func GetCategoryRules(store RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		list, err := store.ListCategoryRules(r.Context(), userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list category rules")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		util.WriteJSON(w, http.StatusOK, list)
	}
}

func GetCategoryRuleByID(store RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		ruleID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid rule id")
			return
		}
		rule, err := store.GetCategoryRuleByID(r.Context(), userID, ruleID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("rule_id", ruleID).Msg("failed to get category rule")
			writeStoreError(w, err, "Rule not found")
			return
		}
		util.WriteJSON(w, http.StatusOK, rule)
	}
}

func CreateCategoryRule(store RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req ruleRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode create category rule request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		rule := models.CategoryRule{UserID: userID}
		if msg := req.apply(&rule); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		created, err := store.CreateCategoryRule(r.Context(), &rule)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to create category rule")
			writeStoreError(w, err, "User not found")
			return
		}
		logger(r).Info().Int64("user_id", userID).Int64("rule_id", created.ID).Str("name", created.Name).Msg("created category rule")
		util.WriteJSON(w, http.StatusCreated, created)
	}
}

func UpdateCategoryRule(store RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		ruleID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid rule id")
			return
		}
		var req ruleRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode update category rule request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		rule, err := store.GetCategoryRuleByID(r.Context(), userID, ruleID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("rule_id", ruleID).Msg("failed to get category rule for update")
			writeStoreError(w, err, "Rule not found")
			return
		}
		if msg := req.apply(rule); msg != "" {
			util.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		updated, err := store.UpdateCategoryRule(r.Context(), rule)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("rule_id", ruleID).Msg("failed to update category rule")
			writeStoreError(w, err, "Rule not found")
			return
		}
		logger(r).Info().Int64("user_id", userID).Int64("rule_id", ruleID).Msg("updated category rule")
		util.WriteJSON(w, http.StatusOK, updated)
	}
}

func DeleteCategoryRule(store RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		ruleID, err := idParam(r, "id")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid rule id")
			return
		}
		if err := store.DeleteCategoryRule(r.Context(), userID, ruleID); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Int64("rule_id", ruleID).Msg("failed to delete category rule")
			writeStoreError(w, err, "Rule not found")
			return
		}
		logger(r).Info().Int64("user_id", userID).Int64("rule_id", ruleID).Msg("deleted category rule")
		util.WriteMessage(w, http.StatusOK, "Rule deleted")
	}
}

// ApplyCategoryRules re-runs the rules over all of the caller's expenses and
// recategorizes the ones a rule matches with a different category.
func ApplyCategoryRules(ruleStore RuleStore, expenses ExpenseStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		stored, err := ruleStore.ListCategoryRules(r.Context(), userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list category rules")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		compiled := rules.Compile(stored)

		all, err := expenses.ListExpenses(r.Context(), userID, models.ExpenseFilter{})
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to list expenses for rule application")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		updated := 0
		for _, e := range all {
			category, matched := rules.FirstMatch(compiled, rules.SubjectOf(e))
			if !matched || category == e.Category {
				continue
			}
			if err := expenses.UpdateExpenseCategory(r.Context(), userID, e.ID, category); err != nil {
				logger(r).Error().Err(err).Int64("user_id", userID).Int64("expense_id", e.ID).Msg("failed to recategorize expense")
				if updated > 0 {
					invalidate(cache, userID)
				}
				util.WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			updated++
		}
		if updated > 0 {
			invalidate(cache, userID)
		}

		logger(r).Info().Int64("user_id", userID).Int("updated", updated).Msg("applied category rules")
		util.WriteJSON(w, http.StatusOK, map[string]any{
			"message": "Category rules applied",
			"updated": updated,
		})
	}
}
