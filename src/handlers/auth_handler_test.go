package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"finhealth-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Ada",
		"email":    "  Ada@Example.com ",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	reg := decode[models.AuthResponse](t, rec)
	assert.Equal(t, "Registration successful", reg.Message)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.Equal(t, "USD", reg.User.Currency)

	claims, err := a.tokens.Parse(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	rec = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ADA@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[models.AuthResponse](t, rec)
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestLoginFailures(t *testing.T) {
	a := newTestAPI(t)
	a.signUp("grace")

	tests := []struct {
		name string
		body any
		want string
	}{
		{"wrong password", map[string]string{"email": "grace@example.com", "password": "nope12345"}, "Invalid email or password"},
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": "secret123"}, "Invalid email or password"},
		{"missing password", map[string]string{"email": "grace@example.com"}, "Email and password are required"},
		{"malformed body", "{", "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorOf(t, rec))
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t)
	a.signUp("taken")

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing name", map[string]string{"email": "x@example.com", "password": "secret123"}, "All fields are required"},
		{"bad email", map[string]string{"name": "X", "email": "not-an-email", "password": "secret123"}, "Invalid email format"},
		{"short password", map[string]string{"name": "X", "email": "x@example.com", "password": "12345"}, "Password must be between 6 and 72 characters"},
		{"password over bcrypt limit", map[string]string{"name": "X", "email": "x@example.com", "password": strings.Repeat("p", 80)}, "Password must be between 6 and 72 characters"},
		{"duplicate email", map[string]string{"name": "X", "email": "TAKEN@example.com", "password": "secret123"}, "User already exists with this email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorOf(t, rec))
		})
	}
}

func TestProtectedRoutesCheckToken(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodGet, "/api/expenses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", errorOf(t, rec))

	rec = a.do(http.MethodGet, "/api/expenses", "not.a.token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid or expired token", errorOf(t, rec))
}

func TestProfileLifecycle(t *testing.T) {
	a := newTestAPI(t)
	token, userID := a.signUp("linus")

	rec := a.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[models.User](t, rec)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "linus", user.Name)

	rec = a.do(http.MethodPut, "/api/auth/profile", token, map[string]string{"currency": "eur"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user = decode[models.User](t, rec)
	assert.Equal(t, "EUR", user.Currency)
	assert.Equal(t, "linus", user.Name)

	rec = a.do(http.MethodPut, "/api/auth/profile", token, map[string]string{"currency": "euro"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/change-password", token, map[string]string{"current_password": "wrong", "new_password": "newsecret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/change-password", token, map[string]string{"current_password": "secret123", "new_password": strings.Repeat("p", 73)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/change-password", token, map[string]string{"current_password": "secret123", "new_password": "newsecret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "linus@example.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	a.do(http.MethodPost, "/api/expenses", token, map[string]any{"amount": 10, "date": "2025-06-01", "category": "Food"})

	rec = a.do(http.MethodDelete, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.store.expenses)

	rec = a.do(http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(errorOf(t, rec), "not found"))
}
