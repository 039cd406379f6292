package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"finhealth-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeCRUD(t *testing.T) {
	a := newTestAPI(t)
	token, userID := a.signUp("ada")

	rec := a.do(http.MethodPost, "/api/income", token, map[string]any{
		"source": "Salary", "amount": 3000, "date": "2025-06-01", "description": "June pay",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Income](t, rec)
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, "Salary", created.Source)

	rec = a.do(http.MethodPost, "/api/income", token, map[string]any{"source": "Gift", "amount": 50, "date": "2025-06-10"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodGet, "/api/income", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Income](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Gift", list[0].Source)

	path := fmt.Sprintf("/api/income/%d", created.ID)
	rec = a.do(http.MethodPut, path, token, map[string]any{"amount": 3100})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Income](t, rec)
	assert.Equal(t, "3100", updated.Amount.String())
	assert.Equal(t, "June pay", updated.Description)

	rec = a.do(http.MethodPut, path, token, map[string]any{"source": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Source is required", errorOf(t, rec))

	rec = a.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Income deleted", decode[map[string]string](t, rec)["message"])

	rec = a.do(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Income not found", errorOf(t, rec))
}

func TestCreateIncomeValidation(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.signUp("ada")

	rec := a.do(http.MethodPost, "/api/income", token, map[string]any{"source": "Salary", "date": "2025-06-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/income", token, map[string]any{"amount": 10, "date": "2025-06-01"})
	assert.Equal(t, "Source is required", errorOf(t, rec))

	rec = a.do(http.MethodPost, "/api/income", token, map[string]any{"source": "Salary", "amount": -1, "date": "2025-06-01"})
	assert.Equal(t, "Amount must be greater than zero", errorOf(t, rec))
}
