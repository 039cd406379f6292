package middleware

import (
	"net/http"

	"finhealth-server/src/util"
)

// DemoModeMiddleware makes the API read-only, apart from signing in and
// chatting with the assistant.
func DemoModeMiddleware(isDemo bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/auth/login":     true,
		"/api/auth/register":  true,
		"/api/assistant/chat": true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isDemo && r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodOptions {
				if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
					next.ServeHTTP(w, r)
					return
				}
				util.WriteError(w, http.StatusForbidden, "Demo mode: only GET requests are allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
