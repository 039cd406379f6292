package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finhealth-server/src/api"
	cachedb "finhealth-server/src/db"
	"finhealth-server/src/handlers"
	"finhealth-server/src/models"
	"finhealth-server/src/util"

	"github.com/stretchr/testify/require"
)

// fixedNow is a Wednesday.
var fixedNow = time.Date(2025, time.June, 18, 12, 0, 0, 0, time.Local)

type testAPI struct {
	t      *testing.T
	store  *fakeStore
	cache  *cachedb.Cache
	tokens *util.TokenManager
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	t.Cleanup(handlers.SetNow(fixedNow))

	cache, err := cachedb.NewCache(1000)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	a := &testAPI{
		t:      t,
		store:  newFakeStore(),
		cache:  cache,
		tokens: util.NewTokenManager("test-secret", time.Hour),
	}
	a.router = api.NewRouter(api.Deps{
		Store:          a.store,
		Cache:          cache,
		Tokens:         a.tokens,
		AllowedOrigins: []string{"*"},
	})
	return a
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signUp registers a user and returns its token and id.
func (a *testAPI) signUp(name string) (string, int64) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    fmt.Sprintf("%s@example.com", name),
		"password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[models.AuthResponse](a.t, rec)
	return resp.Token, resp.User.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
