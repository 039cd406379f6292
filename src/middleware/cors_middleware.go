package middleware

import (
	"net/http"
	"time"

	"github.com/rs/cors"
)

// CORSMiddleware allows the configured origins; "*" allows any origin.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           int((5 * time.Minute).Seconds()),
	})
	return c.Handler
}
