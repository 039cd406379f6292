package handlers

import (
	"net/http"
	"strings"

	"finhealth-server/src/util"

	"golang.org/x/crypto/bcrypt"
)

func GetProfile(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		user, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to get profile")
			writeStoreError(w, err, "User not found")
			return
		}
		util.WriteJSON(w, http.StatusOK, user)
	}
}

func UpdateProfile(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req struct {
			Name     *string `json:"name"`
			Currency *string `json:"currency"`
		}
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode update profile request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to get user for profile update")
			writeStoreError(w, err, "User not found")
			return
		}

		name, currency := user.Name, user.Currency
		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
			if name == "" {
				util.WriteError(w, http.StatusBadRequest, "Name cannot be empty")
				return
			}
		}
		if req.Currency != nil {
			currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
			if !util.ValidateCurrency(currency) {
				util.WriteError(w, http.StatusBadRequest, "Currency must be a three letter code")
				return
			}
		}

		updated, err := users.UpdateUserProfile(r.Context(), userID, name, currency)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to update profile")
			writeStoreError(w, err, "User not found")
			return
		}

		logger(r).Info().Int64("user_id", userID).Msg("user profile updated")
		util.WriteJSON(w, http.StatusOK, updated)
	}
}

func ChangePassword(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to decode change password request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to get user for password change")
			writeStoreError(w, err, "User not found")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			logger(r).Warn().Int64("user_id", userID).Msg("invalid current password attempt")
			util.WriteError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}

		if !util.ValidatePassword(req.NewPassword) {
			util.WriteError(w, http.StatusBadRequest, "Password must be between 6 and 72 characters")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to hash new password")
			util.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if err := users.UpdateUserPassword(r.Context(), userID, hash); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to update password")
			writeStoreError(w, err, "User not found")
			return
		}

		logger(r).Info().Int64("user_id", userID).Msg("user password changed")
		util.WriteMessage(w, http.StatusOK, "Password changed successfully")
	}
}

// DeleteProfile removes the user; expenses, income, budgets, goals and rules
// go with it through the foreign key cascade.
func DeleteProfile(users UserStore, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		if err := users.DeleteUser(r.Context(), userID); err != nil {
			logger(r).Error().Err(err).Int64("user_id", userID).Msg("failed to delete user")
			writeStoreError(w, err, "User not found")
			return
		}
		invalidate(cache, userID)

		logger(r).Info().Int64("user_id", userID).Msg("user deleted with all associated data")
		util.WriteMessage(w, http.StatusOK, "Account deleted")
	}
}
