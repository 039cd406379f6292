package middleware

import (
	"context"
	"net/http"
	"strings"

	"finhealth-server/src/util"

	"github.com/rs/zerolog/log"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFromContext returns the authenticated user id set by JWTAuthMiddleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// JWTAuthMiddleware rejects requests without a token with 401 and requests
// with a bad or expired token with 403.
func JWTAuthMiddleware(tokens *util.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				util.WriteError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				log.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("rejected invalid token")
				util.WriteError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}
