package handlers

import (
	"context"
	"net/http"
	"strings"

	"finhealth-server/src/assistant"
	"finhealth-server/src/models"
	"finhealth-server/src/util"
)

const maxChatMessageLength = 1000

type AssistantStore interface {
	AnalyticsStore
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

func Chat(store AssistantStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req struct {
			Message string `json:"message"`
		}
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode chat request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		message := strings.TrimSpace(req.Message)
		if message == "" {
			util.WriteError(w, http.StatusBadRequest, "Message is required")
			return
		}
		if len(message) > maxChatMessageLength {
			util.WriteError(w, http.StatusBadRequest, "Message is too long")
			return
		}

		user, err := store.GetUserByID(r.Context(), userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to get user for chat")
			writeStoreError(w, err, "User not found")
			return
		}
		mv, err := loadMonthView(r.Context(), store, cache, userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to build chat snapshot")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		resp := assistant.Reply(message, assistant.Snapshot{
			Name:     user.Name,
			Currency: user.Currency,
			Summary:  mv.Summary,
			Budgets:  mv.Budgets,
			Goals:    mv.Goals,
			Health:   mv.Health,
		})
		logger(r).Debug().Int64("user_id", userID).Str("intent", resp.Intent).Msg("assistant reply")
		util.WriteJSON(w, http.StatusOK, resp)
	}
}
