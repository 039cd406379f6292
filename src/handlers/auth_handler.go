package handlers

import (
	"errors"
	"net/http"
	"strings"

	db "finhealth-server/src/db/sql"
	"finhealth-server/src/models"
	"finhealth-server/src/util"

	"golang.org/x/crypto/bcrypt"
)

var bcryptCost = bcrypt.DefaultCost

func Register(users UserStore, tokens *util.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			logger(r).Error().Err(err).Msg("failed to decode register request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = util.NormalizeEmail(req.Email)

		if req.Name == "" || req.Email == "" || req.Password == "" {
			util.WriteError(w, http.StatusBadRequest, "All fields are required")
			return
		}
		if !util.ValidateEmail(req.Email) {
			logger(r).Warn().Str("email", req.Email).Msg("email validation failed during registration")
			util.WriteError(w, http.StatusBadRequest, "Invalid email format")
			return
		}
		if !util.ValidatePassword(req.Password) {
			util.WriteError(w, http.StatusBadRequest, "Password must be between 6 and 72 characters")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			logger(r).Error().Err(err).Str("email", req.Email).Msg("failed to hash password")
			util.WriteError(w, http.StatusInternalServerError, "Server error during registration")
			return
		}

		user, err := users.CreateUser(r.Context(), req.Name, req.Email, hash)
		if err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				logger(r).Warn().Str("email", req.Email).Msg("registration failed, email already exists")
				util.WriteError(w, http.StatusBadRequest, "User already exists with this email")
				return
			}
			logger(r).Error().Err(err).Str("email", req.Email).Msg("failed to create user")
			util.WriteError(w, http.StatusInternalServerError, "Server error during registration")
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", user.ID).Msg("failed to generate token")
			util.WriteError(w, http.StatusInternalServerError, "Server error during registration")
			return
		}

		logger(r).Info().Int64("user_id", user.ID).Msg("successful registration")
		util.WriteJSON(w, http.StatusCreated, models.AuthResponse{
			Message: "Registration successful",
			Token:   token,
			User:    *user,
		})
	}
}

func Login(users UserStore, tokens *util.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &credentials); err != nil {
			logger(r).Error().Err(err).Msg("failed to decode login request body")
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		email := util.NormalizeEmail(credentials.Email)
		if email == "" || credentials.Password == "" {
			util.WriteError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		user, err := users.GetUserByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				logger(r).Warn().Str("email", email).Msg("login for unknown email")
				util.WriteError(w, http.StatusBadRequest, "Invalid email or password")
				return
			}
			logger(r).Error().Err(err).Str("email", email).Msg("failed to look up user during login")
			util.WriteError(w, http.StatusInternalServerError, "Server error during login")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			logger(r).Warn().Str("email", email).Str("remote", r.RemoteAddr).Msg("invalid password attempt")
			util.WriteError(w, http.StatusBadRequest, "Invalid email or password")
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			logger(r).Error().Err(err).Int64("user_id", user.ID).Msg("failed to generate token")
			util.WriteError(w, http.StatusInternalServerError, "Server error during login")
			return
		}

		logger(r).Info().Int64("user_id", user.ID).Msg("successful login")
		util.WriteJSON(w, http.StatusOK, models.AuthResponse{
			Message: "Login successful",
			Token:   token,
			User:    *user,
		})
	}
}
